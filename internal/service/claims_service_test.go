package service

import (
	"context"
	"testing"

	"userhub/internal/model"
	"userhub/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string, credits int64) *model.User {
	t.Helper()
	user := &model.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     "Test User",
		Password: "hashed",
		Status:   model.UserStatusActive,
		Credits:  credits,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedService(t *testing.T, db *gorm.DB, name string) *model.Service {
	t.Helper()
	svc := &model.Service{
		ID:           uuid.New(),
		Name:         name,
		ClientID:     "client-" + name,
		ClientSecret: "secret",
		Status:       model.ServiceStatusActive,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func seedPermission(t *testing.T, db *gorm.DB, code string, serviceID *uuid.UUID) *model.Permission {
	t.Helper()
	scope := model.ScopeGlobal
	if serviceID != nil {
		scope = model.ScopeService
	}
	perm := &model.Permission{
		ID:        uuid.New(),
		Scope:     scope,
		ServiceID: serviceID,
		Code:      code,
	}
	require.NoError(t, db.Create(perm).Error)
	return perm
}

func seedRole(t *testing.T, db *gorm.DB, name string, serviceID *uuid.UUID, perms ...*model.Permission) *model.Role {
	t.Helper()
	role := &model.Role{
		ID:        uuid.New(),
		ServiceID: serviceID,
		Name:      name,
	}
	require.NoError(t, db.Create(role).Error)
	for _, p := range perms {
		require.NoError(t, db.Create(&model.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}
	return role
}

func newClaimsServiceForTest(db *gorm.DB) ClaimsService {
	return NewClaimsService(repository.NewAssignmentRepository(db))
}

func TestAssembleClaimsNoGrants(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "empty@example.com", 0)

	claims, err := newClaimsServiceForTest(db).AssembleClaims(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, "empty@example.com", claims.Email)
	assert.NotNil(t, claims.GlobalPermissions)
	assert.Empty(t, claims.GlobalPermissions)
	assert.NotNil(t, claims.GlobalRoles)
	assert.Empty(t, claims.GlobalRoles)
	assert.NotNil(t, claims.Services)
	assert.Empty(t, claims.Services)
}

func TestAssembleClaimsMergesDirectAndRolePermissions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "merge@example.com", 0)
	repo := repository.NewAssignmentRepository(db)

	usersRead := seedPermission(t, db, "users.read", nil)
	usersWrite := seedPermission(t, db, "users.write", nil)
	creditsRead := seedPermission(t, db, "credits.read", nil)

	// "users.read" arrives both directly and via the role; it must appear once.
	support := seedRole(t, db, "support", nil, usersRead, usersWrite)
	require.NoError(t, repo.AssignGlobalPermission(ctx, user.ID, usersRead.ID))
	require.NoError(t, repo.AssignGlobalPermission(ctx, user.ID, creditsRead.ID))
	require.NoError(t, repo.AssignGlobalRole(ctx, user.ID, support.ID))

	claims, err := newClaimsServiceForTest(db).AssembleClaims(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, []string{"credits.read", "users.read", "users.write"}, claims.GlobalPermissions)
	assert.Equal(t, []string{"support"}, claims.GlobalRoles)
}

func TestAssembleClaimsRoleOrderFollowsAssignment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "order@example.com", 0)
	repo := repository.NewAssignmentRepository(db)

	editor := seedRole(t, db, "editor", nil)
	admin := seedRole(t, db, "admin", nil)

	// Assigned editor first, then admin: the claim keeps that order even
	// though "admin" sorts before "editor".
	require.NoError(t, repo.AssignGlobalRole(ctx, user.ID, editor.ID))
	require.NoError(t, repo.AssignGlobalRole(ctx, user.ID, admin.ID))

	claims, err := newClaimsServiceForTest(db).AssembleClaims(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, []string{"editor", "admin"}, claims.GlobalRoles)
}

func TestAssembleClaimsServiceScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "scoped@example.com", 0)
	repo := repository.NewAssignmentRepository(db)

	svcA := seedService(t, db, "qr-codes")
	svcB := seedService(t, db, "billing")

	scanRead := seedPermission(t, db, "scan.read", &svcA.ID)
	scanWrite := seedPermission(t, db, "scan.write", &svcA.ID)
	operator := seedRole(t, db, "operator", &svcA.ID, scanWrite)

	require.NoError(t, repo.AssignService(ctx, user.ID, svcA.ID, nil))
	require.NoError(t, repo.AssignServicePermission(ctx, user.ID, svcA.ID, scanRead.ID))
	require.NoError(t, repo.AssignServiceRole(ctx, user.ID, svcA.ID, operator.ID))

	// Grants for a service the user is not assigned to must not surface.
	invoiceRead := seedPermission(t, db, "invoice.read", &svcB.ID)
	require.NoError(t, repo.AssignServicePermission(ctx, user.ID, svcB.ID, invoiceRead.ID))

	claims, err := newClaimsServiceForTest(db).AssembleClaims(ctx, user)
	require.NoError(t, err)

	require.Len(t, claims.Services, 1)
	svcClaims, ok := claims.Services[svcA.ID.String()]
	require.True(t, ok)
	assert.Equal(t, []string{"scan.read", "scan.write"}, svcClaims.Permissions)
	assert.Equal(t, []string{"operator"}, svcClaims.Roles)

	// Global collections are untouched by service grants.
	assert.Empty(t, claims.GlobalPermissions)
	assert.Empty(t, claims.GlobalRoles)
}

func TestAssembleClaimsDeterministic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "stable@example.com", 0)
	repo := repository.NewAssignmentRepository(db)

	permB := seedPermission(t, db, "b.perm", nil)
	permA := seedPermission(t, db, "a.perm", nil)
	permC := seedPermission(t, db, "c.perm", nil)
	role := seedRole(t, db, "mixed", nil, permC, permA)

	require.NoError(t, repo.AssignGlobalPermission(ctx, user.ID, permB.ID))
	require.NoError(t, repo.AssignGlobalRole(ctx, user.ID, role.ID))

	svc := newClaimsServiceForTest(db)
	first, err := svc.AssembleClaims(ctx, user)
	require.NoError(t, err)
	second, err := svc.AssembleClaims(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.perm", "b.perm", "c.perm"}, first.GlobalPermissions)
	assert.Equal(t, first, second)
}

func TestAssembleClaimsAfterRevoke(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "revoke@example.com", 0)
	repo := repository.NewAssignmentRepository(db)

	perm := seedPermission(t, db, "users.read", nil)
	role := seedRole(t, db, "viewer", nil, perm)
	require.NoError(t, repo.AssignGlobalRole(ctx, user.ID, role.ID))

	svc := newClaimsServiceForTest(db)
	claims, err := svc.AssembleClaims(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.read"}, claims.GlobalPermissions)

	// Revocation shows up on the next assembly; already issued tokens keep
	// the stale claim until they expire.
	require.NoError(t, repo.RevokeGlobalRole(ctx, user.ID, role.ID))
	claims, err = svc.AssembleClaims(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, claims.GlobalPermissions)
	assert.Empty(t, claims.GlobalRoles)
}
