// FilePath: internal/relay/cache.go
package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/config"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// snapshotKey is the fixed redis key the latest snapshot lives under.
const snapshotKey = "iotdash:snapshot:latest"

// SnapshotCache mirrors the latest snapshot outside the process so the poll
// endpoint survives a restart. Save failures are logged and swallowed; the
// cache is never on the request path.
type SnapshotCache interface {
	Save(ctx context.Context, snap models.TelemetrySnapshot) error
	Load(ctx context.Context) (models.TelemetrySnapshot, bool, error)
}

// RedisSnapshotCache implements SnapshotCache on a redis string key.
type RedisSnapshotCache struct {
	client *redis.Client
}

// NewRedisSnapshotCache connects to redis and verifies the connection.
func NewRedisSnapshotCache(cfg config.RedisConfig) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	nuts.L.Infof("[SnapshotCache] Connected to redis at %s:%d", cfg.Host, cfg.Port)
	return &RedisSnapshotCache{client: client}, nil
}

func (c *RedisSnapshotCache) Save(ctx context.Context, snap models.TelemetrySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, data, 0).Err()
}

func (c *RedisSnapshotCache) Load(ctx context.Context) (models.TelemetrySnapshot, bool, error) {
	var snap models.TelemetrySnapshot

	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false, err
	}
	return snap, true, nil
}

// NopSnapshotCache is used when no redis host is configured.
type NopSnapshotCache struct{}

func (NopSnapshotCache) Save(ctx context.Context, snap models.TelemetrySnapshot) error {
	return nil
}

func (NopSnapshotCache) Load(ctx context.Context) (models.TelemetrySnapshot, bool, error) {
	return models.TelemetrySnapshot{}, false, nil
}
