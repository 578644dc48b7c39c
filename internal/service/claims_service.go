package service

import (
	"context"
	"sort"

	"userhub/internal/model"
	"userhub/internal/repository"
)

// ServiceClaims is the per-service slice of an access token: the flattened
// permission codes and the roles they came from, for one service.
type ServiceClaims struct {
	Permissions []string `json:"permissions"`
	Roles       []string `json:"roles"`
}

// Claims is the full authorization claim set embedded into access tokens at
// issuance. Permissions are sorted and deduplicated; role lists keep
// assignment order and are not deduplicated. Downstream consumers rely on
// that asymmetry.
type Claims struct {
	Email             string                   `json:"email"`
	GlobalPermissions []string                 `json:"global_permissions"`
	GlobalRoles       []string                 `json:"global_roles"`
	Services          map[string]ServiceClaims `json:"services"`
}

// ClaimsService computes the effective authorization claims for a user.
//
// Role-derived permissions are flattened into the token at issuance so
// verifiers never need a database round trip. The price is staleness:
// revoking a grant only takes effect on the next issued token.
type ClaimsService interface {
	AssembleClaims(ctx context.Context, user *model.User) (*Claims, error)
}

type claimsService struct {
	assignments repository.AssignmentRepository
}

func NewClaimsService(assignments repository.AssignmentRepository) ClaimsService {
	return &claimsService{assignments: assignments}
}

// AssembleClaims is a pure read: it never mutates assignment state and is
// safe to call concurrently. A user with no grants gets empty collections,
// not an error.
func (s *claimsService) AssembleClaims(ctx context.Context, user *model.User) (*Claims, error) {
	globalPerms := make(map[string]struct{})

	directGlobal, err := s.assignments.GlobalPermissionCodes(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, code := range directGlobal {
		globalPerms[code] = struct{}{}
	}

	globalRoles, err := s.assignments.GlobalRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	roleNames := make([]string, 0, len(globalRoles))
	for _, role := range globalRoles {
		roleNames = append(roleNames, role.Name)
		codes, err := s.assignments.PermissionCodesForRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for _, code := range codes {
			globalPerms[code] = struct{}{}
		}
	}

	claims := &Claims{
		Email:             user.Email,
		GlobalPermissions: sortedKeys(globalPerms),
		GlobalRoles:       roleNames,
		Services:          make(map[string]ServiceClaims),
	}

	assignments, err := s.assignments.ServiceAssignments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, assignment := range assignments {
		svcPerms := make(map[string]struct{})

		direct, err := s.assignments.ServicePermissionCodes(ctx, user.ID, assignment.ServiceID)
		if err != nil {
			return nil, err
		}
		for _, code := range direct {
			svcPerms[code] = struct{}{}
		}

		svcRoles, err := s.assignments.ServiceRoles(ctx, user.ID, assignment.ServiceID)
		if err != nil {
			return nil, err
		}
		svcRoleNames := make([]string, 0, len(svcRoles))
		for _, role := range svcRoles {
			svcRoleNames = append(svcRoleNames, role.Name)
			codes, err := s.assignments.PermissionCodesForRole(ctx, role.ID)
			if err != nil {
				return nil, err
			}
			for _, code := range codes {
				svcPerms[code] = struct{}{}
			}
		}

		claims.Services[assignment.ServiceID.String()] = ServiceClaims{
			Permissions: sortedKeys(svcPerms),
			Roles:       svcRoleNames,
		}
	}

	return claims, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
