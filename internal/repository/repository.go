// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
)

// ReadingRepository defines the interface for persisted telemetry rows.
// Inserts are append-only; rows are never updated.
type ReadingRepository interface {
	Insert(ctx context.Context, reading *models.Reading) error
	List(ctx context.Context, offset, limit int) ([]*models.Reading, error)
}

// UserRepository defines the interface for dashboard account storage
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
