package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"userhub/internal/model"
	"userhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// --- DTOs ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type UpdateUserRequest struct {
	Name   string `json:"name"`
	Status string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE DELETED"`
	Reason string `json:"reason"`
}

type UserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	EmailConfirmed bool   `json:"email_confirmed"`
	Credits        int64  `json:"credits"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type ProfileResponse struct {
	UserResponse
	Claims *Claims `json:"claims"`
}

// UserService covers registration, authentication, token issuance, and
// user administration.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, id string) (*ProfileResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo   repository.UserRepository
	claims ClaimsService
	txMgr  repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, claims ClaimsService, txMgr repository.TransactionManager) UserService {
	return &userService{repo: repo, claims: claims, txMgr: txMgr}
}

func mapToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:             user.ID.String(),
		Email:          user.Email,
		Name:           user.Name,
		Status:         user.Status,
		EmailConfirmed: user.EmailConfirmed,
		Credits:        user.Credits,
		CreatedAt:      user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashedPassword),
		Status:   model.UserStatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return mapToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !user.IsActive() {
		return nil, errors.New("account is not active")
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, errors.New("refresh token expired")
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, errors.New("user not found")
	}
	if !user.IsActive() {
		return nil, errors.New("account is not active")
	}

	// Rotate atomically: deleting the spent token and persisting the new
	// pair either both happen or neither does.
	var tokens *TokenResponse
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DeleteRefreshToken(txCtx, refreshToken); err != nil {
			return err
		}
		tokens, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

// issueTokens assembles the user's effective claims and embeds them into a
// signed access token. The claims are computed once per issuance; revoked
// grants only disappear from tokens issued afterwards.
func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	assembled, err := s.claims.AssembleClaims(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble claims: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                user.ID.String(),
		"email":              assembled.Email,
		"global_permissions": assembled.GlobalPermissions,
		"global_roles":       assembled.GlobalRoles,
		"services":           assembled.Services,
		"token_type":         "access",
		"iat":                now.Unix(),
		"exp":                now.Add(accessTokenTTL).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(refreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &TokenResponse{Token: tokenString, RefreshToken: refresh}, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *userService) GetProfile(ctx context.Context, id string) (*ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}

	assembled, err := s.claims.AssembleClaims(ctx, user)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		UserResponse: *mapToUserResponse(user),
		Claims:       assembled,
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return mapToUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var responses []UserResponse
	for i := range users {
		responses = append(responses, *mapToUserResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	if req.Status != "" && req.Status != user.Status {
		now := time.Now()
		switch req.Status {
		case model.UserStatusActive:
			user.Reactivate()
		case model.UserStatusInactive:
			user.Deactivate(now, req.Reason)
		case model.UserStatusDeleted:
			user.MarkDeleted(now)
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return mapToUserResponse(user), nil
}

// DeleteUser marks the account deleted; the row and its ledger stay.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.New("user not found")
	}

	user.MarkDeleted(time.Now())
	return s.repo.Update(ctx, user)
}
