package model

import (
	"time"

	"github.com/google/uuid"
)

// User statuses. Rows are never hard-deleted by the API, only marked
// DELETED, so the credit ledger history stays intact for audit.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
	UserStatusDeleted  = "DELETED"
)

// User is the central identity record. Credits holds the current balance;
// it is mutated exclusively through the credit repository so the ledger
// in credit_transactions always sums to it.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name             string     `gorm:"type:varchar(255)" json:"name"`
	Password         string     `gorm:"type:varchar(255);not null" json:"-"`
	Status           string     `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"status"`
	EmailConfirmed   bool       `gorm:"default:false" json:"email_confirmed"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	Credits          int64      `gorm:"not null;default:0" json:"credits"`
	InactiveAt       *time.Time `json:"inactive_at,omitempty"`
	InactiveReason   string     `gorm:"type:text" json:"inactive_reason,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	IsStaff          bool       `gorm:"default:false" json:"is_staff"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the user may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// MarkDeleted flags the user as deleted without removing the row.
func (u *User) MarkDeleted(now time.Time) {
	u.Status = UserStatusDeleted
	u.DeletedAt = &now
}

// Deactivate flags the user inactive with an optional reason.
func (u *User) Deactivate(now time.Time, reason string) {
	u.Status = UserStatusInactive
	u.InactiveAt = &now
	u.InactiveReason = reason
}

// Reactivate clears the inactive flags.
func (u *User) Reactivate() {
	u.Status = UserStatusActive
	u.InactiveAt = nil
	u.InactiveReason = ""
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
