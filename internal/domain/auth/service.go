package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/pkg/jwt"
	"github.com/campusquest/campusquest-api/internal/pkg/password"
)

// Service implements auth business logic
type Service struct {
	repo Repository
	jwt  *jwt.Service
}

// NewService creates auth service
func NewService(repo Repository, jwtService *jwt.Service) *Service {
	return &Service{repo: repo, jwt: jwtService}
}

// Register creates an account and returns it with an access token
func (s *Service) Register(ctx context.Context, email, name, plainPassword, role string) (*User, string, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with an access token
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if u == nil || !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Me returns the authenticated user's account
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
