package service

import (
	"context"
	"fmt"

	"userhub/internal/model"
	"userhub/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	ServiceID   string   `json:"service_id"` // empty = global role
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required"`
}

type CreatePermissionRequest struct {
	Scope       string `json:"scope" binding:"required,oneof=GLOBAL SERVICE"`
	ServiceID   string `json:"service_id"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
}

type GrantRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	ServiceID   string               `json:"service_id,omitempty"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID          string `json:"id"`
	Scope       string `json:"scope"`
	ServiceID   string `json:"service_id,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RoleService manages roles, permissions, and global grants. Per-service
// grants live on CatalogService next to the service assignments they
// depend on.
type RoleService interface {
	ListRoles(ctx context.Context, serviceID string) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error
	UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest) (*RoleResponse, error)

	ListPermissions(ctx context.Context, scope, serviceID string) ([]PermissionResponse, error)
	CreatePermission(ctx context.Context, req CreatePermissionRequest) (*PermissionResponse, error)
	DeletePermission(ctx context.Context, id string) error

	AssignGlobalRole(ctx context.Context, roleID string, req GrantRequest) error
	RevokeGlobalRole(ctx context.Context, roleID, userID string) error
	AssignGlobalPermission(ctx context.Context, permissionID string, req GrantRequest) error
	RevokeGlobalPermission(ctx context.Context, permissionID, userID string) error
}

type roleService struct {
	roles       repository.RoleRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
}

func NewRoleService(roles repository.RoleRepository, assignments repository.AssignmentRepository, users repository.UserRepository) RoleService {
	return &roleService{roles: roles, assignments: assignments, users: users}
}

func toPermissionResponse(p model.Permission) PermissionResponse {
	res := PermissionResponse{
		ID:          p.ID.String(),
		Scope:       p.Scope,
		Code:        p.Code,
		Description: p.Description,
	}
	if p.ServiceID != nil {
		res.ServiceID = p.ServiceID.String()
	}
	return res
}

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	res := RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.ServiceID != nil {
		res.ServiceID = r.ServiceID.String()
	}
	return res
}

func parseOptionalServiceID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid service id: %w", err)
	}
	return &id, nil
}

func (s *roleService) ListRoles(ctx context.Context, serviceID string) ([]RoleResponse, error) {
	svcID, err := parseOptionalServiceID(serviceID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roles.ListRoles(ctx, svcID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roles.FindRoleByIDWithPermissions(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	svcID, err := parseOptionalServiceID(req.ServiceID)
	if err != nil {
		return nil, err
	}

	role := &model.Role{
		Name:        req.Name,
		Description: req.Description,
		ServiceID:   svcID,
	}
	if err := s.roles.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	if len(req.Permissions) > 0 {
		permIDs, err := parseUUIDs(req.Permissions)
		if err != nil {
			return nil, err
		}
		if err := s.roles.ReplaceRolePermissions(ctx, role.ID, permIDs); err != nil {
			return nil, fmt.Errorf("failed to attach permissions: %w", err)
		}
	}

	return s.GetRole(ctx, role.ID.String())
}

func (s *roleService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roles.FindRoleByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	role.Name = req.Name
	role.Description = req.Description
	if err := s.roles.UpdateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return s.GetRole(ctx, id)
}

func (s *roleService) DeleteRole(ctx context.Context, id string) error {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}
	return s.roles.DeleteRole(ctx, roleID)
}

func (s *roleService) UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest) (*RoleResponse, error) {
	rid, err := uuid.Parse(roleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	permIDs, err := parseUUIDs(req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	if err := s.roles.ReplaceRolePermissions(ctx, rid, permIDs); err != nil {
		return nil, fmt.Errorf("failed to update role permissions: %w", err)
	}

	return s.GetRole(ctx, roleID)
}

func (s *roleService) ListPermissions(ctx context.Context, scope, serviceID string) ([]PermissionResponse, error) {
	svcID, err := parseOptionalServiceID(serviceID)
	if err != nil {
		return nil, err
	}

	perms, err := s.roles.ListPermissions(ctx, scope, svcID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *roleService) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*PermissionResponse, error) {
	svcID, err := parseOptionalServiceID(req.ServiceID)
	if err != nil {
		return nil, err
	}

	if req.Scope == model.ScopeService && svcID == nil {
		return nil, fmt.Errorf("service_id is required for %s permissions", model.ScopeService)
	}
	if req.Scope == model.ScopeGlobal && svcID != nil {
		return nil, fmt.Errorf("%s permissions cannot reference a service", model.ScopeGlobal)
	}

	perm := &model.Permission{
		Scope:       req.Scope,
		ServiceID:   svcID,
		Code:        req.Code,
		Description: req.Description,
	}
	if err := s.roles.CreatePermission(ctx, perm); err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}

	resp := toPermissionResponse(*perm)
	return &resp, nil
}

func (s *roleService) DeletePermission(ctx context.Context, id string) error {
	permID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid permission id: %w", err)
	}
	return s.roles.DeletePermission(ctx, permID)
}

func (s *roleService) AssignGlobalRole(ctx context.Context, roleID string, req GrantRequest) error {
	rid, err := uuid.Parse(roleID)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if _, err := s.roles.FindRoleByID(ctx, rid); err != nil {
		return fmt.Errorf("role not found: %w", err)
	}
	return s.assignments.AssignGlobalRole(ctx, user.ID, rid)
}

func (s *roleService) RevokeGlobalRole(ctx context.Context, roleID, userID string) error {
	rid, err := uuid.Parse(roleID)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.assignments.RevokeGlobalRole(ctx, uid, rid)
}

func (s *roleService) AssignGlobalPermission(ctx context.Context, permissionID string, req GrantRequest) error {
	pid, err := uuid.Parse(permissionID)
	if err != nil {
		return fmt.Errorf("invalid permission id: %w", err)
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	perm, err := s.roles.FindPermissionByID(ctx, pid)
	if err != nil {
		return fmt.Errorf("permission not found: %w", err)
	}
	if perm.Scope != model.ScopeGlobal {
		return fmt.Errorf("permission %s is not global", perm.Code)
	}
	return s.assignments.AssignGlobalPermission(ctx, user.ID, pid)
}

func (s *roleService) RevokeGlobalPermission(ctx context.Context, permissionID, userID string) error {
	pid, err := uuid.Parse(permissionID)
	if err != nil {
		return fmt.Errorf("invalid permission id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.assignments.RevokeGlobalPermission(ctx, uid, pid)
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid id '%s': %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
