package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notekeeper/internal/auth"
	"notekeeper/internal/model"
	"notekeeper/internal/repository"
)

// TokenTypeBearer is reported to clients alongside issued tokens.
const TokenTypeBearer = "Bearer"

var (
	// ErrUserNotFound is returned when no account matches the username.
	ErrUserNotFound = errors.New("user not found")
	// ErrDisabledAccount is returned when the account exists but is disabled.
	ErrDisabledAccount = errors.New("account is disabled")
	// ErrBadCredentials is returned when the password does not match.
	ErrBadCredentials = errors.New("bad credentials")
)

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(username, role string) (token string, expiresAt time.Time, err error)
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	Role      string
	Username  string
}

// AuthService handles authentication operations.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
	}
}

// Authenticate verifies a username/password pair against the credential store.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.Enabled {
		return nil, ErrDisabledAccount
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// Login authenticates the user and issues a bearer token.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
		Role:      user.Role,
		Username:  user.Username,
	}, nil
}

// IsAuthenticationError reports whether err should be surfaced as a failed
// login rather than a server error.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrDisabledAccount) ||
		errors.Is(err, ErrBadCredentials)
}
