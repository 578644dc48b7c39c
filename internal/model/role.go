package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission scopes. A GLOBAL permission applies account-wide; a SERVICE
// permission is meaningful only inside the service it belongs to.
const (
	ScopeGlobal  = "GLOBAL"
	ScopeService = "SERVICE"
)

// Permission is a capability code. GLOBAL permissions are unique by code;
// SERVICE permissions are unique by (service, code). The composite index
// below only covers rows with a service_id, because NULLs compare distinct
// inside a unique index. Global rows are covered by a partial unique index
// on (code) WHERE service_id IS NULL, created in database.Migrate.
type Permission struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Scope       string     `gorm:"type:varchar(16);not null;uniqueIndex:idx_permission_scope_code" json:"scope"`
	ServiceID   *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_permission_scope_code" json:"service_id,omitempty"`
	Service     *Service   `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"-"`
	Code        string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_permission_scope_code" json:"code"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Role is a named bundle of permissions, optionally scoped to a service.
// A nil ServiceID means the role is global. Unique by (service, name); like
// Permission, global names need the partial index from database.Migrate
// because the composite index skips NULL service_id rows.
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ServiceID   *uuid.UUID   `gorm:"type:uuid;index;uniqueIndex:idx_role_service_name" json:"service_id,omitempty"`
	Service     *Service     `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"-"`
	Name        string       `gorm:"type:varchar(64);not null;uniqueIndex:idx_role_service_name" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// RolePermission is the explicit join row between roles and permissions.
// Declared so the claims assembler can query it directly without preloading
// whole role graphs.
type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"role_id"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"permission_id"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
