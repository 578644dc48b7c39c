package service

import (
	"context"
	"testing"

	"userhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogServiceForTest(db *gorm.DB) CatalogService {
	return NewCatalogService(
		repository.NewServiceRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewUserRepository(db),
	)
}

func TestListMembersFollowsAssignments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	svc := seedService(t, db, "qr")
	other := seedService(t, db, "billing")
	first := seedUser(t, db, "first@example.com", 0)
	second := seedUser(t, db, "second@example.com", 0)
	outsider := seedUser(t, db, "outsider@example.com", 0)

	repo := repository.NewAssignmentRepository(db)
	require.NoError(t, repo.AssignService(ctx, first.ID, svc.ID, nil))
	require.NoError(t, repo.AssignService(ctx, second.ID, svc.ID, nil))
	require.NoError(t, repo.AssignService(ctx, outsider.ID, other.ID, nil))

	catalog := newCatalogServiceForTest(db)
	members, err := catalog.ListMembers(ctx, svc.ID.String())
	require.NoError(t, err)

	require.Len(t, members, 2)
	assert.Equal(t, first.ID.String(), members[0].ID)
	assert.Equal(t, second.ID.String(), members[1].ID)
}

func TestListMembersEmptyService(t *testing.T) {
	db := newTestDB(t)
	svc := seedService(t, db, "qr")

	catalog := newCatalogServiceForTest(db)
	members, err := catalog.ListMembers(context.Background(), svc.ID.String())
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = catalog.ListMembers(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}
