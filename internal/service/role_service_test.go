package service

import (
	"testing"

	"userhub/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGlobalPermissionCodeUnique(t *testing.T) {
	db := newTestDB(t)
	seedPermission(t, db, "users.read", nil)

	dup := &model.Permission{
		ID:    uuid.New(),
		Scope: model.ScopeGlobal,
		Code:  "users.read",
	}
	require.Error(t, db.Create(dup).Error)

	var count int64
	require.NoError(t, db.Model(&model.Permission{}).Where("code = ?", "users.read").Count(&count).Error)
	require.EqualValues(t, 1, count)

	// The same code under a service scope is a separate namespace.
	svc := seedService(t, db, "qr")
	seedPermission(t, db, "users.read", &svc.ID)
}

func TestServicePermissionCodeUniquePerService(t *testing.T) {
	db := newTestDB(t)
	svc := seedService(t, db, "qr")
	seedPermission(t, db, "codes.create", &svc.ID)

	dup := &model.Permission{
		ID:        uuid.New(),
		Scope:     model.ScopeService,
		ServiceID: &svc.ID,
		Code:      "codes.create",
	}
	require.Error(t, db.Create(dup).Error)

	other := seedService(t, db, "billing")
	seedPermission(t, db, "codes.create", &other.ID)
}

func TestGlobalRoleNameUnique(t *testing.T) {
	db := newTestDB(t)
	seedRole(t, db, "admin", nil)

	dup := &model.Role{ID: uuid.New(), Name: "admin"}
	require.Error(t, db.Create(dup).Error)

	var count int64
	require.NoError(t, db.Model(&model.Role{}).Where("name = ?", "admin").Count(&count).Error)
	require.EqualValues(t, 1, count)

	// A service-scoped role may reuse the name, but only once per service.
	svc := seedService(t, db, "qr")
	seedRole(t, db, "admin", &svc.ID)
	scopedDup := &model.Role{ID: uuid.New(), ServiceID: &svc.ID, Name: "admin"}
	require.Error(t, db.Create(scopedDup).Error)
}
