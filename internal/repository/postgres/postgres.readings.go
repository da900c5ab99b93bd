// FilePath: internal/repository/postgres/postgres.readings.go
package postgres

import (
	"context"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/database"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// PostgresReadingRepo implements repository.ReadingRepository
type PostgresReadingRepo struct {
	PostgresBaseRepo
}

// NewReadingRepository creates the repo and initializes the readings table
func NewReadingRepository(db database.DB) (*PostgresReadingRepo, error) {
	repo := &PostgresReadingRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresReadingRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			temperature TEXT NOT NULL,
			humidity TEXT NOT NULL,
			bulb TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_timestamp
		 ON readings(timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize readings schema", err)
		}
	}
	return nil
}

// Insert appends one reading. Rows are never updated or merged.
func (r *PostgresReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO readings (
			id, temperature, humidity, bulb, timestamp, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	if reading.ID == "" {
		reading.ID = nuts.NID("rdg", 12)
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	reading.CreatedAt = time.Now().UTC()

	_, err := r.db.GetDB().ExecContext(ctx, query,
		reading.ID,
		reading.Temperature,
		reading.Humidity,
		reading.Bulb,
		reading.Timestamp,
		reading.CreatedAt,
	)

	if err != nil {
		nuts.L.Errorf("[ReadingRepository] Failed to insert reading: %v", err)
		return err
	}

	return nil
}

// List retrieves persisted readings, newest first
func (r *PostgresReadingRepo) List(ctx context.Context, offset, limit int) ([]*models.Reading, error) {
	query := `
		SELECT id, temperature, humidity, bulb, timestamp, created_at
		FROM readings
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2`

	readings := []*models.Reading{}
	err := r.db.GetDB().SelectContext(ctx, &readings, query, limit, offset)
	if err != nil {
		nuts.L.Errorf("[ReadingRepository] Failed to list readings: %v", err)
		return nil, err
	}

	return readings, nil
}
