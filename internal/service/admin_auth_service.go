package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
	"github.com/ventech/ventech_api/internal/utils"
)

type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	Count(ctx context.Context) (int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type TokenIssuer interface {
	Generate(userID, email, role string) (string, time.Time, error)
}

type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      *models.AdminUser `json:"user"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

const minPasswordLength = 8

type AdminAuthService struct {
	adminRepo AdminUserStore
	tokens    TokenIssuer
	signupKey string
	clock     clock.Clock
}

func NewAdminAuthService(adminRepo AdminUserStore, tokens TokenIssuer, signupKey string, clk clock.Clock) *AdminAuthService {
	if clk == nil {
		clk = clock.System{}
	}
	return &AdminAuthService{adminRepo: adminRepo, tokens: tokens, signupKey: signupKey, clock: clk}
}

func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return nil, utils.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.clock.Now()
	if err := s.adminRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	log.Info().Str("email", email).Msg("Login successful")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Signup creates an admin account. The caller must present the configured
// signup key; the very first account becomes the owner.
func (s *AdminAuthService) Signup(ctx context.Context, key string, req SignupRequest) (*models.AdminUser, error) {
	if s.signupKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.signupKey)) != 1 {
		return nil, utils.ErrInvalidSignupKey
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email", utils.ErrInvalidSignup)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: name and a password of at least %d characters are required",
			utils.ErrInvalidSignup, minPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := models.AdminRoleStaff
	if n, err := s.adminRepo.Count(ctx); err == nil && n == 0 {
		role = models.AdminRoleOwner
	}

	user := &models.AdminUser{
		Email:        strings.ToLower(addr.Address),
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         role,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("email", user.Email).Str("role", role).Msg("admin account created")
	return user, nil
}
