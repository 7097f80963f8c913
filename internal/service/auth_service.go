package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeEmailInUse         = "EMAIL_ALREADY_IN_USE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// AuthService coordinates citizen registration and login.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	hasher   *auth.PasswordHasher
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(hasher *auth.PasswordHasher, users repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokenMgr: tokens,
		hasher:   hasher,
		logger:   logger,
	}
}

// RegisterCitizen creates a CITIZEN account and returns a signed token.
func (s *AuthService) RegisterCitizen(ctx context.Context, email string, phone *string, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid email", map[string]any{"email": "invalid"})
	}
	if len(password) < 8 {
		return nil, "", time.Time{}, apperrors.NewValidationError("password too short", map[string]any{"password": "min 8 characters"})
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, "", time.Time{}, apperrors.NewValidationError("password too long", map[string]any{"password": "max 72 bytes"})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewBusinessRule(CodeEmailInUse, "email already registered", nil)
	} else if !isNoRows(err) {
		return nil, "", time.Time{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Email:        email,
		Phone:        trimmedOrNil(phone),
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleCitizen},
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, "", time.Time{}, apperrors.NewBusinessRule(CodeEmailInUse, "email already registered", nil)
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.logger.Info("citizen registered", zap.String("user_id", user.ID))
	return user, token, exp, nil
}

// Login authenticates any account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNoRows(err) {
			return nil, "", time.Time{}, apperrors.NewDomainError(CodeInvalidCredentials, "invalid credentials", 401, nil)
		}
		return nil, "", time.Time{}, err
	}
	if !user.Enabled {
		return nil, "", time.Time{}, apperrors.NewDomainError(CodeInvalidCredentials, "invalid credentials", 401, nil)
	}
	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		s.logger.Error("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return nil, "", time.Time{}, apperrors.NewDomainError(CodeInvalidCredentials, "invalid credentials", 401, nil)
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
