package model

import (
	"time"

	"github.com/google/uuid"
)

// Service statuses
const (
	ServiceStatusActive   = "ACTIVE"
	ServiceStatusInactive = "INACTIVE"
)

// Service is a tenant/resource scope that roles and permissions can attach to.
// Each service authenticates machine-to-machine with its client_id/client_secret pair.
type Service struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	ClientID     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"client_id"`
	ClientSecret string    `gorm:"type:varchar(128);not null" json:"-"`
	Status       string    `gorm:"type:varchar(32);not null;default:'ACTIVE'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
