package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// Token is an issued bearer credential.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthService authenticates credentials and resolves bearer tokens to
// principals.
type AuthService struct {
	users  persistence.UserRepository
	issuer *TokenIssuer
	logger *slog.Logger
}

// NewAuthService wires dependencies for the auth service.
func NewAuthService(users persistence.UserRepository, issuer *TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, logger: defaultLogger(logger)}
}

// Login verifies an email and password pair and issues a bearer token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	if s == nil || s.users == nil || s.issuer == nil {
		return Token{}, fmt.Errorf("auth service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "auth_service", "login")

	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("login rejected", slog.String("error_kind", ErrorKind(ErrInvalidCredentials)))
			return Token{}, ErrInvalidCredentials
		}
		logger.Error("login lookup failed", slog.String("error", err.Error()))
		return Token{}, err
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		logger.Warn("login rejected", slog.String("error_kind", ErrorKind(ErrInvalidCredentials)))
		return Token{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		logger.Warn("login rejected", slog.String("error_kind", ErrorKind(ErrAccountDisabled)))
		return Token{}, ErrAccountDisabled
	}

	signed, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		logger.Error("token issue failed", slog.String("error", err.Error()))
		return Token{}, err
	}

	logger.Info("login succeeded", slog.String("user_id", user.ID))
	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// ValidateToken resolves a bearer token to a principal. Tokens for deleted
// or deactivated accounts are rejected.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.users == nil || s.issuer == nil {
		return Principal{}, fmt.Errorf("auth service not configured")
	}

	userID, err := s.issuer.Parse(token)
	if err != nil {
		return Principal{}, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	if !user.IsActive {
		return Principal{}, ErrAccountDisabled
	}

	return Principal{UserID: user.ID, Role: user.Role}, nil
}
