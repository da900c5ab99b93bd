// FilePath: internal/state/state.go

// Package state holds the single live telemetry snapshot. The store is the
// only shared mutable value in the process; all access goes through the lock
// so a field-level actuator update can never interleave with a wholesale
// replace.
package state

import (
	"strings"
	"sync"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
)

// Store owns the current snapshot and the actuator state. Callers accept
// last-write-wins semantics; there is no history and no versioning.
//
// The actuator state is tracked separately from the snapshot's Bulb field:
// ingest replaces the snapshot verbatim (whatever casing the device sent)
// but only commands move the actuator.
type Store struct {
	mu       sync.RWMutex
	snapshot models.TelemetrySnapshot
	actuator string
}

// NewStore creates a store seeded with the sentinel placeholder values.
func NewStore() *Store {
	return &Store{
		snapshot: models.SentinelSnapshot(),
		actuator: models.BulbOff,
	}
}

// Snapshot returns a copy of the current snapshot. Never blocks on IO,
// never fails.
func (s *Store) Snapshot() models.TelemetrySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Actuator returns the current actuator state.
func (s *Store) Actuator() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actuator
}

// Replace swaps the snapshot wholesale and returns the stored value. A zero
// timestamp defaults to receipt time. The payload is stored verbatim; in
// particular the Bulb field keeps the casing the device submitted.
func (s *Store) Replace(snap models.TelemetrySnapshot) models.TelemetrySnapshot {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	return s.snapshot
}

// SetActuator validates and normalizes the requested state, then updates the
// actuator and the snapshot's Bulb field in place. Any value outside ON/OFF
// leaves the store untouched and returns a validation error.
func (s *Store) SetActuator(state string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(state))
	if normalized != models.BulbOn && normalized != models.BulbOff {
		return "", errors.NewValidationError("Invalid bulb state", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.actuator = normalized
	s.snapshot.Bulb = normalized
	return normalized, nil
}
