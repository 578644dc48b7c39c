package database

import (
	"userhub/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// PartialIndexes enforces uniqueness for the global rows of permissions and
// roles. Those rows carry a NULL service_id, and NULLs compare distinct, so
// the composite indexes from the model tags only cover the service-scoped
// rows. AutoMigrate cannot express a WHERE clause, hence the raw statements.
var PartialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_permission_global_code ON permissions (code) WHERE service_id IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_role_global_name ON roles (name) WHERE service_id IS NULL`,
}

// Migrate creates or updates the schema for all core models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Service{},
		&model.Permission{},
		&model.Role{},
		&model.RolePermission{},
		&model.UserGlobalRole{},
		&model.UserGlobalPermission{},
		&model.UserServiceAssignment{},
		&model.UserServiceRole{},
		&model.UserServicePermission{},
		&model.CreditTransaction{},
		&model.CreditPack{},
	)
	if err != nil {
		return err
	}

	for _, stmt := range PartialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
