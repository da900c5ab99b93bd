// FilePath: internal/auth/auth_test.go
package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo is an in-memory UserRepository for tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return repository.ErrDuplicate
	}
	stored := *user
	r.users[user.Username] = &stored
	return nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func newTestService() *Service {
	return NewService(newMemUserRepo(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "s3cret"))

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "first-password"))

	err := svc.Register(ctx, "alice", "second-password")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, "Username already exists", apiErr.Message)

	// The first registration's hash still verifies.
	_, err = svc.Login(ctx, "alice", "first-password")
	assert.NoError(t, err)
}

func TestRegisterRequiresCredentials(t *testing.T) {
	svc := newTestService()

	err := svc.Register(context.Background(), "", "password")
	assert.True(t, errors.IsValidation(err))

	err = svc.Register(context.Background(), "bob", "")
	assert.True(t, errors.IsValidation(err))
}

func TestLoginInvalidCredentialsIndistinguishable(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "s3cret"))

	_, wrongPassword := svc.Login(ctx, "alice", "wrong")
	_, unknownUser := svc.Login(ctx, "nobody", "whatever")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)

	wpErr := wrongPassword.(*errors.APIError)
	uuErr := unknownUser.(*errors.APIError)
	assert.Equal(t, wpErr.Message, uuErr.Message)
	assert.Equal(t, wpErr.Code, uuErr.Code)
	assert.Equal(t, "Invalid credentials", wpErr.Message)
}

func TestTokenExpiry(t *testing.T) {
	users := newMemUserRepo()
	svc := NewService(users, "test-secret", -time.Minute) // already expired
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "s3cret"))
	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err, "expired tokens must not verify")
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	ctx := context.Background()

	issuer := NewService(newMemUserRepo(), "secret-a", time.Hour)
	require.NoError(t, issuer.Register(ctx, "alice", "s3cret"))
	token, err := issuer.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	verifier := NewService(newMemUserRepo(), "secret-b", time.Hour)
	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestPasswordsAreHashed(t *testing.T) {
	users := newMemUserRepo()
	svc := NewService(users, "test-secret", time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "s3cret"))

	stored, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "s3cret")
}
