package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment tables linking users to roles and permissions, globally and per
// service. Every table carries a composite unique index so duplicate grants
// are rejected by the database rather than silently doubled.
//
// The claims assembler reads these in primary-key order, which is assignment
// order: role lists in the issued token preserve the order grants were made.

// UserGlobalRole assigns a global role to a user.
type UserGlobalRole struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_global_role" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_global_role" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserGlobalPermission assigns a global permission directly to a user.
type UserGlobalPermission struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_global_perm" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	PermissionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_global_perm" json:"permission_id"`
	Permission   Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// UserServiceAssignment marks that a user is provisioned for a service.
// Per-service roles/permissions only surface in token claims for services
// the user is assigned to.
type UserServiceAssignment struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_assignment" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_assignment" json:"service_id"`
	Service     Service    `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL;" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// UserServiceRole assigns a role to a user scoped to one service.
type UserServiceRole struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_role" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_role" json:"service_id"`
	Service   Service   `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"-"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_role" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserServicePermission assigns a permission directly to a user scoped to one service.
type UserServicePermission struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_perm" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	ServiceID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_perm" json:"service_id"`
	Service      Service    `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"-"`
	PermissionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_perm" json:"permission_id"`
	Permission   Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
