// FilePath: internal/repository/postgres/postgres.users.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/database"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/repository"
	"github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

// PostgresUserRepo implements repository.UserRepository
type PostgresUserRepo struct {
	PostgresBaseRepo
}

// NewUserRepository creates the repo and initializes the users table
func NewUserRepository(db database.DB) (*PostgresUserRepo, error) {
	repo := &PostgresUserRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresUserRepo) initializeSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`

	if _, err := r.db.GetDB().Exec(query); err != nil {
		return errors.NewDatabaseError("failed to initialize users schema", err)
	}
	return nil
}

// Create inserts a new user. A username collision maps to
// repository.ErrDuplicate so callers do not need to know pq error codes.
func (r *PostgresUserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, username, password_hash, created_at
		) VALUES (
			$1, $2, $3, $4
		)`

	if user.ID == "" {
		user.ID = nuts.NID("usr", 12)
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.GetDB().ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		nuts.L.Errorf("[UserRepository] Failed to create user %s: %v", user.Username, err)
		return err
	}

	return nil
}

// GetByUsername retrieves a user by its unique username
func (r *PostgresUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1`

	user := &models.User{}
	err := r.db.GetDB().GetContext(ctx, user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		nuts.L.Errorf("[UserRepository] Failed to get user %s: %v", username, err)
		return nil, err
	}

	return user, nil
}
