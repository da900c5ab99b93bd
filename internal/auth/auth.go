// FilePath: internal/auth/auth.go

// Package auth implements registration and login against the user store and
// issues the HS256 bearer tokens the middleware verifies.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the original deployment's hashing cost.
const bcryptCost = 10

// Claims are the token claims carried by issued bearer tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles account registration and credential verification.
type Service struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service signing tokens with the given secret.
func NewService(users repository.UserRepository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register stores a new account with a bcrypt-hashed password. Duplicate
// usernames yield a conflict error with the exact public message.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.NewValidationError("username and password are required", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return errors.NewInternalError("Registration failed", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return errors.NewConflictError("Username already exists", err)
		}
		return errors.NewInternalError("Registration failed", err)
	}

	nuts.L.Infof("[Auth] Registered user %s", username)
	return nil
}

// Login verifies the credentials and issues a time-bounded bearer token.
// Unknown usernames and wrong passwords produce the identical error so the
// response never reveals which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", errors.NewAuthError("Invalid credentials", nil)
		}
		return "", errors.NewInternalError("Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.NewAuthError("Invalid credentials", nil)
	}

	now := time.Now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.NewInternalError("Login failed", err)
	}

	return token, nil
}

// VerifyToken parses and validates a bearer token issued by Login.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorizedError("unexpected signing method", nil)
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.NewUnauthorizedError("invalid token", err)
	}
	return claims, nil
}
