package repository

import (
	"context"

	"userhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository manages roles, permissions, and the role→permission join.
type RoleRepository interface {
	CreateRole(ctx context.Context, role *model.Role) error
	UpdateRole(ctx context.Context, role *model.Role) error
	DeleteRole(ctx context.Context, id uuid.UUID) error
	FindRoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindRoleByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error)
	ListRoles(ctx context.Context, serviceID *uuid.UUID) ([]model.Role, error)

	CreatePermission(ctx context.Context, perm *model.Permission) error
	DeletePermission(ctx context.Context, id uuid.UUID) error
	FindPermissionByID(ctx context.Context, id uuid.UUID) (*model.Permission, error)
	ListPermissions(ctx context.Context, scope string, serviceID *uuid.UUID) ([]model.Permission, error)

	ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) CreateRole(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) UpdateRole(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Save(role).Error
}

func (r *roleRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Role{}).Error
}

func (r *roleRepository) FindRoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindRoleByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListRoles(ctx context.Context, serviceID *uuid.UUID) ([]model.Role, error) {
	db := GetDB(ctx, r.db).Preload("Permissions")
	if serviceID != nil {
		db = db.Where("service_id = ?", *serviceID)
	} else {
		db = db.Where("service_id IS NULL")
	}

	var roles []model.Role
	if err := db.Order("name asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) CreatePermission(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *roleRepository) DeletePermission(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Permission{}).Error
}

func (r *roleRepository) FindPermissionByID(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).First(&perm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *roleRepository) ListPermissions(ctx context.Context, scope string, serviceID *uuid.UUID) ([]model.Permission, error) {
	db := GetDB(ctx, r.db)
	if scope != "" {
		db = db.Where("scope = ?", scope)
	}
	if serviceID != nil {
		db = db.Where("service_id = ?", *serviceID)
	}

	var perms []model.Permission
	if err := db.Order("code asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *roleRepository) ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)

	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return err
	}

	var perms []model.Permission
	if len(permissionIDs) > 0 {
		if err := db.Where("id IN ?", permissionIDs).Find(&perms).Error; err != nil {
			return err
		}
	}

	return db.Model(&role).Association("Permissions").Replace(perms)
}
