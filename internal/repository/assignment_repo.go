package repository

import (
	"context"

	"userhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentRepository covers the grant tables the claims assembler reads
// and the admin grant/revoke operations that write them. Reads return rows
// in primary-key order, which is assignment order.
type AssignmentRepository interface {
	// Claims assembler reads (read-only).
	GlobalPermissionCodes(ctx context.Context, userID uuid.UUID) ([]string, error)
	GlobalRoles(ctx context.Context, userID uuid.UUID) ([]model.Role, error)
	ServiceAssignments(ctx context.Context, userID uuid.UUID) ([]model.UserServiceAssignment, error)
	ServicePermissionCodes(ctx context.Context, userID, serviceID uuid.UUID) ([]string, error)
	ServiceRoles(ctx context.Context, userID, serviceID uuid.UUID) ([]model.Role, error)
	PermissionCodesForRole(ctx context.Context, roleID uuid.UUID) ([]string, error)
	AssignedUsers(ctx context.Context, serviceID uuid.UUID) ([]model.User, error)

	// Admin grant management. Duplicate grants hit the composite unique
	// indexes and surface as storage errors.
	AssignGlobalRole(ctx context.Context, userID, roleID uuid.UUID) error
	RevokeGlobalRole(ctx context.Context, userID, roleID uuid.UUID) error
	AssignGlobalPermission(ctx context.Context, userID, permissionID uuid.UUID) error
	RevokeGlobalPermission(ctx context.Context, userID, permissionID uuid.UUID) error
	AssignService(ctx context.Context, userID, serviceID uuid.UUID, createdBy *uuid.UUID) error
	RevokeService(ctx context.Context, userID, serviceID uuid.UUID) error
	AssignServiceRole(ctx context.Context, userID, serviceID, roleID uuid.UUID) error
	RevokeServiceRole(ctx context.Context, userID, serviceID, roleID uuid.UUID) error
	AssignServicePermission(ctx context.Context, userID, serviceID, permissionID uuid.UUID) error
	RevokeServicePermission(ctx context.Context, userID, serviceID, permissionID uuid.UUID) error
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GlobalPermissionCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var codes []string
	err := GetDB(ctx, r.db).Model(&model.UserGlobalPermission{}).
		Joins("JOIN permissions ON permissions.id = user_global_permissions.permission_id").
		Where("user_global_permissions.user_id = ?", userID).
		Order("user_global_permissions.id asc").
		Pluck("permissions.code", &codes).Error
	return codes, err
}

func (r *assignmentRepository) GlobalRoles(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).Model(&model.Role{}).
		Joins("JOIN user_global_roles ON user_global_roles.role_id = roles.id").
		Where("user_global_roles.user_id = ?", userID).
		Order("user_global_roles.id asc").
		Find(&roles).Error
	return roles, err
}

func (r *assignmentRepository) ServiceAssignments(ctx context.Context, userID uuid.UUID) ([]model.UserServiceAssignment, error) {
	var assignments []model.UserServiceAssignment
	err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) ServicePermissionCodes(ctx context.Context, userID, serviceID uuid.UUID) ([]string, error) {
	var codes []string
	err := GetDB(ctx, r.db).Model(&model.UserServicePermission{}).
		Joins("JOIN permissions ON permissions.id = user_service_permissions.permission_id").
		Where("user_service_permissions.user_id = ? AND user_service_permissions.service_id = ?", userID, serviceID).
		Order("user_service_permissions.id asc").
		Pluck("permissions.code", &codes).Error
	return codes, err
}

func (r *assignmentRepository) ServiceRoles(ctx context.Context, userID, serviceID uuid.UUID) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).Model(&model.Role{}).
		Joins("JOIN user_service_roles ON user_service_roles.role_id = roles.id").
		Where("user_service_roles.user_id = ? AND user_service_roles.service_id = ?", userID, serviceID).
		Order("user_service_roles.id asc").
		Find(&roles).Error
	return roles, err
}

func (r *assignmentRepository) PermissionCodesForRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	var codes []string
	err := GetDB(ctx, r.db).Model(&model.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ?", roleID).
		Pluck("permissions.code", &codes).Error
	return codes, err
}

func (r *assignmentRepository) AssignedUsers(ctx context.Context, serviceID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Joins("JOIN user_service_assignments ON user_service_assignments.user_id = users.id").
		Where("user_service_assignments.service_id = ?", serviceID).
		Order("user_service_assignments.id asc").
		Find(&users).Error
	return users, err
}

func (r *assignmentRepository) AssignGlobalRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.UserGlobalRole{UserID: userID, RoleID: roleID}).Error
}

func (r *assignmentRepository) RevokeGlobalRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&model.UserGlobalRole{}).Error
}

func (r *assignmentRepository) AssignGlobalPermission(ctx context.Context, userID, permissionID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.UserGlobalPermission{UserID: userID, PermissionID: permissionID}).Error
}

func (r *assignmentRepository) RevokeGlobalPermission(ctx context.Context, userID, permissionID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&model.UserGlobalPermission{}).Error
}

func (r *assignmentRepository) AssignService(ctx context.Context, userID, serviceID uuid.UUID, createdBy *uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.UserServiceAssignment{
		UserID:      userID,
		ServiceID:   serviceID,
		CreatedByID: createdBy,
	}).Error
}

func (r *assignmentRepository) RevokeService(ctx context.Context, userID, serviceID uuid.UUID) error {
	// Removing the assignment also removes the per-service grants, so a
	// re-assigned user starts clean.
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND service_id = ?", userID, serviceID).
			Delete(&model.UserServiceRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND service_id = ?", userID, serviceID).
			Delete(&model.UserServicePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND service_id = ?", userID, serviceID).
			Delete(&model.UserServiceAssignment{}).Error
	})
}

func (r *assignmentRepository) AssignServiceRole(ctx context.Context, userID, serviceID, roleID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.UserServiceRole{
		UserID:    userID,
		ServiceID: serviceID,
		RoleID:    roleID,
	}).Error
}

func (r *assignmentRepository) RevokeServiceRole(ctx context.Context, userID, serviceID, roleID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND service_id = ? AND role_id = ?", userID, serviceID, roleID).
		Delete(&model.UserServiceRole{}).Error
}

func (r *assignmentRepository) AssignServicePermission(ctx context.Context, userID, serviceID, permissionID uuid.UUID) error {
	return GetDB(ctx, r.db).Create(&model.UserServicePermission{
		UserID:       userID,
		ServiceID:    serviceID,
		PermissionID: permissionID,
	}).Error
}

func (r *assignmentRepository) RevokeServicePermission(ctx context.Context, userID, serviceID, permissionID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND service_id = ? AND permission_id = ?", userID, serviceID, permissionID).
		Delete(&model.UserServicePermission{}).Error
}
