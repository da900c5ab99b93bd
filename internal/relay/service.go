// FilePath: internal/relay/service.go
package relay

import (
	"context"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/repository"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// persistTimeout bounds the detached persistence write. The ingest response
// never waits for it.
const persistTimeout = 10 * time.Second

// Service is the relay core: it owns the snapshot store and the hub, and
// drives persistence and cache mirroring on every mutation.
type Service struct {
	store    *state.Store
	hub      *Hub
	readings repository.ReadingRepository
	cache    SnapshotCache
}

// NewService wires the relay together and seeds the store from the snapshot
// cache when a previous run left one behind.
func NewService(store *state.Store, hub *Hub, readings repository.ReadingRepository, cache SnapshotCache) *Service {
	if cache == nil {
		cache = NopSnapshotCache{}
	}
	svc := &Service{
		store:    store,
		hub:      hub,
		readings: readings,
		cache:    cache,
	}

	snap, ok, err := cache.Load(context.Background())
	if err != nil {
		nuts.L.Warnf("[Relay] Failed to load cached snapshot: %v", err)
	} else if ok {
		store.Replace(snap)
		nuts.L.Infof("[Relay] Seeded snapshot from cache (captured %s)", snap.Timestamp.Format(time.RFC3339))
	}

	return svc
}

// Ingest replaces the snapshot wholesale with the device payload, persists it
// fire-and-forget, mirrors it to the cache and broadcasts it to every
// subscriber. The returned snapshot is what the store now holds.
//
// The payload is stored verbatim. A missing bulb field inherits the current
// actuator state; ingest never moves the actuator itself.
func (s *Service) Ingest(ctx context.Context, payload models.TelemetryPayload) models.TelemetrySnapshot {
	snap := models.TelemetrySnapshot{
		Bulb: s.store.Actuator(),
	}
	if payload.Temperature != nil {
		snap.Temperature = *payload.Temperature
	}
	if payload.Humidity != nil {
		snap.Humidity = *payload.Humidity
	}
	if payload.Bulb != "" {
		snap.Bulb = payload.Bulb
	}
	if payload.Timestamp != nil {
		snap.Timestamp = *payload.Timestamp
	}

	stored := s.store.Replace(snap)
	nuts.L.Infof("[Relay] Received data: temperature=%s humidity=%s bulb=%s",
		stored.Temperature, stored.Humidity, stored.Bulb)

	s.persistAsync(stored)
	s.mirror(stored)
	s.hub.Publish(stored)

	return stored
}

// Command validates and applies an actuator state change, then broadcasts the
// full snapshot. Validation errors propagate; the store is untouched.
func (s *Service) Command(ctx context.Context, requested string) (string, error) {
	normalized, err := s.store.SetActuator(requested)
	if err != nil {
		return "", err
	}

	nuts.L.Infof("[Relay] Bulb set: %s", normalized)

	stored := s.store.Snapshot()
	s.mirror(stored)
	s.hub.Publish(stored)

	return normalized, nil
}

// Current returns the snapshot the store holds right now.
func (s *Service) Current() models.TelemetrySnapshot {
	return s.store.Snapshot()
}

// ActuatorState returns the current actuator state.
func (s *Service) ActuatorState() string {
	return s.store.Actuator()
}

// Subscribe registers a live subscriber, primed with the current snapshot.
func (s *Service) Subscribe() *Subscriber {
	return s.hub.Subscribe(s.store.Snapshot())
}

// Unsubscribe removes a live subscriber.
func (s *Service) Unsubscribe(sub *Subscriber) {
	s.hub.Unsubscribe(sub)
}

// History returns persisted readings, newest first.
func (s *Service) History(ctx context.Context, offset, limit int) ([]*models.Reading, error) {
	return s.readings.List(ctx, offset, limit)
}

// persistAsync writes the reading on a detached goroutine. Storage being down
// must not fail the ingest response or delay the broadcast.
func (s *Service) persistAsync(snap models.TelemetrySnapshot) {
	if s.readings == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.readings.Insert(ctx, models.ReadingFromSnapshot(snap)); err != nil {
			nuts.L.Errorf("[Relay] Failed to persist reading: %v", err)
		}
	}()
}

// mirror saves the snapshot to the cache, fire-and-forget.
func (s *Service) mirror(snap models.TelemetrySnapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.cache.Save(ctx, snap); err != nil {
			nuts.L.Warnf("[Relay] Failed to mirror snapshot to cache: %v", err)
		}
	}()
}
