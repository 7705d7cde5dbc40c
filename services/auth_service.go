package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/store"
	"github.com/cppla/aiblog/utils"
)

// LoginResult is handed back to a client after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService registers users, checks passwords and resolves bearer tokens.
type AuthService struct {
	users   store.UserStore
	tokens  *utils.TokenManager
	revoked *utils.TokenBlacklist
	now     func() time.Time
}

// NewAuthService wires the credential store with token issuance and revocation.
func NewAuthService(users store.UserStore, tokens *utils.TokenManager, revoked *utils.TokenBlacklist) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Register creates a user. Duplicate usernames or emails are validation failures.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if n := utf8.RuneCountInString(username); n < 3 || n > 64 {
		return nil, invalid("username must be 3-64 characters")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email address is malformed")
	}
	if !utils.PasswordAcceptable(password) {
		return nil, invalid("password must be %d-%d characters", utils.MinPasswordLength, utils.MaxPasswordBytes)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           models.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, invalid("username or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the password for email and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrWrongPassword
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, UserID: user.ID, ExpiresAt: expiresAt}, nil
}

// GetUser looks a user up by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// Resolve verifies token and returns the identity it was issued for.
// Verification is stateless apart from the revocation lookup.
func (s *AuthService) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if s.revoked != nil && s.revoked.IsRevoked(ctx, token) {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidCredential)
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// Logout revokes token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
