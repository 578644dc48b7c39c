package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"userhub/internal/model"
	"userhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const serviceTokenTTL = time.Hour

// --- DTOs ---

type CreateServiceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateServiceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

type ServiceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ClientID    string `json:"client_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// ServiceCredentialsResponse is returned once, on creation: the secret is
// not readable afterwards.
type ServiceCredentialsResponse struct {
	ServiceResponse
	ClientSecret string `json:"client_secret"`
}

type ServiceGrantRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type ServiceAuthRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

type ServiceTokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// CatalogService manages the service registry, user-service provisioning,
// and per-service role/permission grants.
type CatalogService interface {
	ListServices(ctx context.Context, page, limit int) ([]ServiceResponse, int64, error)
	GetService(ctx context.Context, id string) (*ServiceResponse, error)
	CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceCredentialsResponse, error)
	UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*ServiceResponse, error)
	DeleteService(ctx context.Context, id string) error
	AuthenticateService(ctx context.Context, req ServiceAuthRequest) (*ServiceTokenResponse, error)

	AssignUser(ctx context.Context, serviceID string, req ServiceGrantRequest, createdBy string) error
	RemoveUser(ctx context.Context, serviceID, userID string) error
	ListMembers(ctx context.Context, serviceID string) ([]UserResponse, error)
	AssignRole(ctx context.Context, serviceID, userID, roleID string) error
	RevokeRole(ctx context.Context, serviceID, userID, roleID string) error
	AssignPermission(ctx context.Context, serviceID, userID, permissionID string) error
	RevokePermission(ctx context.Context, serviceID, userID, permissionID string) error
}

type catalogService struct {
	services    repository.ServiceRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
}

func NewCatalogService(services repository.ServiceRepository, assignments repository.AssignmentRepository, users repository.UserRepository) CatalogService {
	return &catalogService{services: services, assignments: assignments, users: users}
}

func toServiceResponse(svc *model.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:          svc.ID.String(),
		Name:        svc.Name,
		Description: svc.Description,
		ClientID:    svc.ClientID,
		Status:      svc.Status,
		CreatedAt:   svc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *catalogService) ListServices(ctx context.Context, page, limit int) ([]ServiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	services, total, err := s.services.ListServices(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ServiceResponse, 0, len(services))
	for i := range services {
		res = append(res, *toServiceResponse(&services[i]))
	}
	return res, total, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*ServiceResponse, error) {
	svcID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid service id: %w", err)
	}

	svc, err := s.services.FindServiceByID(ctx, svcID)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}
	return toServiceResponse(svc), nil
}

func (s *catalogService) CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceCredentialsResponse, error) {
	clientID, err := randomHex(16)
	if err != nil {
		return nil, err
	}
	clientSecret, err := randomHex(32)
	if err != nil {
		return nil, err
	}

	svc := &model.Service{
		Name:         req.Name,
		Description:  req.Description,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Status:       model.ServiceStatusActive,
	}
	if err := s.services.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return &ServiceCredentialsResponse{
		ServiceResponse: *toServiceResponse(svc),
		ClientSecret:    clientSecret,
	}, nil
}

func (s *catalogService) UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*ServiceResponse, error) {
	svcID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid service id: %w", err)
	}

	svc, err := s.services.FindServiceByID(ctx, svcID)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}

	svc.Name = req.Name
	svc.Description = req.Description
	if req.Status != "" {
		svc.Status = req.Status
	}

	if err := s.services.UpdateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return toServiceResponse(svc), nil
}

func (s *catalogService) DeleteService(ctx context.Context, id string) error {
	svcID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid service id: %w", err)
	}
	return s.services.DeleteService(ctx, svcID)
}

// AuthenticateService exchanges a client_id/client_secret pair for a signed
// machine token. Failures are indistinguishable to the caller, so a wrong
// secret cannot be told apart from an unknown client.
func (s *catalogService) AuthenticateService(ctx context.Context, req ServiceAuthRequest) (*ServiceTokenResponse, error) {
	svc, err := s.services.FindServiceByClientID(ctx, req.ClientID)
	if err != nil {
		return nil, errors.New("invalid client credentials")
	}
	if subtle.ConstantTimeCompare([]byte(svc.ClientSecret), []byte(req.ClientSecret)) != 1 {
		return nil, errors.New("invalid client credentials")
	}
	if svc.Status != model.ServiceStatusActive {
		return nil, errors.New("service is not active")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        svc.ID.String(),
		"client_id":  svc.ClientID,
		"token_type": "service",
		"iat":        now.Unix(),
		"exp":        now.Add(serviceTokenTTL).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &ServiceTokenResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int64(serviceTokenTTL.Seconds()),
	}, nil
}

func (s *catalogService) AssignUser(ctx context.Context, serviceID string, req ServiceGrantRequest, createdBy string) error {
	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return fmt.Errorf("invalid service id: %w", err)
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if _, err := s.services.FindServiceByID(ctx, svcID); err != nil {
		return fmt.Errorf("service not found: %w", err)
	}

	var creator *uuid.UUID
	if createdBy != "" {
		if id, err := uuid.Parse(createdBy); err == nil {
			creator = &id
		}
	}

	return s.assignments.AssignService(ctx, user.ID, svcID, creator)
}

func (s *catalogService) ListMembers(ctx context.Context, serviceID string) ([]UserResponse, error) {
	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, fmt.Errorf("invalid service id: %w", err)
	}

	users, err := s.assignments.AssignedUsers(ctx, svcID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service members: %w", err)
	}

	members := make([]UserResponse, 0, len(users))
	for i := range users {
		members = append(members, *mapToUserResponse(&users[i]))
	}
	return members, nil
}

func (s *catalogService) RemoveUser(ctx context.Context, serviceID, userID string) error {
	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return fmt.Errorf("invalid service id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.assignments.RevokeService(ctx, uid, svcID)
}

func (s *catalogService) AssignRole(ctx context.Context, serviceID, userID, roleID string) error {
	svcID, uid, targetID, err := parseGrantIDs(serviceID, userID, roleID)
	if err != nil {
		return err
	}
	return s.assignments.AssignServiceRole(ctx, uid, svcID, targetID)
}

func (s *catalogService) RevokeRole(ctx context.Context, serviceID, userID, roleID string) error {
	svcID, uid, targetID, err := parseGrantIDs(serviceID, userID, roleID)
	if err != nil {
		return err
	}
	return s.assignments.RevokeServiceRole(ctx, uid, svcID, targetID)
}

func (s *catalogService) AssignPermission(ctx context.Context, serviceID, userID, permissionID string) error {
	svcID, uid, targetID, err := parseGrantIDs(serviceID, userID, permissionID)
	if err != nil {
		return err
	}
	return s.assignments.AssignServicePermission(ctx, uid, svcID, targetID)
}

func (s *catalogService) RevokePermission(ctx context.Context, serviceID, userID, permissionID string) error {
	svcID, uid, targetID, err := parseGrantIDs(serviceID, userID, permissionID)
	if err != nil {
		return err
	}
	return s.assignments.RevokeServicePermission(ctx, uid, svcID, targetID)
}

func parseGrantIDs(serviceID, userID, targetID string) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("invalid service id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	tid, err := uuid.Parse(targetID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return svcID, uid, tid, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate credentials: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
