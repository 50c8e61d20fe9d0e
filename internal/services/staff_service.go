package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/resolvehq/complaints-backend/internal/auth"
	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type StaffService struct {
	staff  repo.Staff
	tokens *auth.TokenManager
	log    *slog.Logger
}

func NewStaffService(staff repo.Staff, tokens *auth.TokenManager, log *slog.Logger) *StaffService {
	return &StaffService{staff: staff, tokens: tokens, log: log}
}

type LoginResult struct {
	User         models.StaffUser `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresAt    time.Time        `json:"expires_at"`
}

func (s *StaffService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := s.staff.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	access, refresh, exp, err := s.tokens.GeneratePair(u.ID, u.Username, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *StaffService) Refresh(ctx context.Context, token string) (LoginResult, error) {
	claims, isRefresh, err := s.tokens.ParseAny(token)
	if err != nil || !isRefresh {
		return LoginResult{}, ErrInvalidCredentials
	}
	u, err := s.staff.GetByUsername(ctx, claims.Username)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	access, refresh, exp, err := s.tokens.GeneratePair(u.ID, u.Username, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *StaffService) Create(ctx context.Context, username, password, role, name string) (models.StaffUser, error) {
	u := models.StaffUser{Username: username, Role: role, Name: name}
	if err := u.Validate(); err != nil {
		return models.StaffUser{}, err
	}
	if len(password) < 8 {
		return models.StaffUser{}, errors.New("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.StaffUser{}, err
	}
	u.PasswordHash = hash
	return s.staff.Create(ctx, u)
}

// SeedAdmin creates the bootstrap admin account on an empty staff table.
func (s *StaffService) SeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	n, err := s.staff.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Create(ctx, username, password, models.RoleAdmin, "Administrator"); err != nil {
		return err
	}
	s.log.Info("seeded initial admin user", "username", username)
	return nil
}
