package service

import (
	"testing"

	"userhub/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The models declare gen_random_uuid() column defaults, which only PostgreSQL
// understands, so the test schema is created with explicit DDL and tests set
// IDs themselves.
var testSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		password TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		email_confirmed INTEGER NOT NULL DEFAULT 0,
		email_confirmed_at DATETIME,
		credits INTEGER NOT NULL DEFAULT 0,
		inactive_at DATETIME,
		inactive_reason TEXT,
		deleted_at DATETIME,
		is_staff INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE services (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		client_id TEXT NOT NULL UNIQUE,
		client_secret TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE permissions (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL,
		service_id TEXT,
		code TEXT NOT NULL,
		description TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (scope, service_id, code)
	)`,
	`CREATE TABLE roles (
		id TEXT PRIMARY KEY,
		service_id TEXT,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (service_id, name)
	)`,
	`CREATE TABLE role_permissions (
		role_id TEXT NOT NULL,
		permission_id TEXT NOT NULL,
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE user_global_roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, role_id)
	)`,
	`CREATE TABLE user_global_permissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		permission_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, permission_id)
	)`,
	`CREATE TABLE user_service_assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		created_by_id TEXT,
		created_at DATETIME,
		UNIQUE (user_id, service_id)
	)`,
	`CREATE TABLE user_service_roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, service_id, role_id)
	)`,
	`CREATE TABLE user_service_permissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		permission_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, service_id, permission_id)
	)`,
	`CREATE TABLE credit_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME
	)`,
	`CREATE TABLE credit_packs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		credits INTEGER NOT NULL,
		price TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would get its own empty :memory: database, so
	// the pool is pinned to a single connection.
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	// The partial unique indexes use the same syntax on SQLite and PostgreSQL,
	// so the production statements run verbatim here.
	for _, stmt := range database.PartialIndexes {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
