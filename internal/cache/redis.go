// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for session action logs.
var DefaultQueueName = "solitaire_actions"

// DefaultSnapshotTTL is how long an autosaved session stays in Redis.
var DefaultSnapshotTTL = 24 * time.Hour

// ErrNoSnapshot is returned when no snapshot is stored for a session.
var ErrNoSnapshot = errors.New("no snapshot")

// ActionRecord holds the minimal info needed by the historian service.
type ActionRecord struct {
	SessionID     uuid.UUID              `json:"session_id"`
	ActionIndex   int                    `json:"action_index"`
	PlayerID      uuid.UUID              `json:"player_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client and pings it. The
// commands pass REDIS_ADDR and REDIS_DB through config.Load.
func ConnectRedis(addr string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// QueueName is the list the historian drains.
func QueueName() string {
	return getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
}

// PublishAction serializes the record to JSON and pushes it to the queue.
func PublishAction(ctx context.Context, record ActionRecord) error {
	return publishAction(ctx, Rdb, record)
}

func publishAction(ctx context.Context, rdb *redis.Client, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}

	queueName := QueueName()
	if err := rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

func snapshotKey(sessionID uuid.UUID) string {
	return "solitaire:snapshot:" + sessionID.String()
}

// SaveSnapshot stores an encoded save state for a session. It expires after
// SNAPSHOT_TTL (a Go duration, default 24h).
func SaveSnapshot(ctx context.Context, sessionID uuid.UUID, data []byte) error {
	ttl := getEnvDuration("SNAPSHOT_TTL", DefaultSnapshotTTL)
	if err := Rdb.Set(ctx, snapshotKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot for %s: %w", sessionID, err)
	}
	return nil
}

// LoadSnapshot fetches the stored save state for a session.
func LoadSnapshot(ctx context.Context, sessionID uuid.UUID) ([]byte, error) {
	data, err := Rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", sessionID, err)
	}
	return data, nil
}

// DeleteSnapshot removes a session's snapshot, e.g. after the game is won.
func DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error {
	return Rdb.Del(ctx, snapshotKey(sessionID)).Err()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// Snapshots exposes the snapshot functions as a value for callers that
// take a snapshot store. It uses the global Rdb.
type Snapshots struct{}

func (Snapshots) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, data []byte) error {
	return SaveSnapshot(ctx, sessionID, data)
}

func (Snapshots) LoadSnapshot(ctx context.Context, sessionID uuid.UUID) ([]byte, error) {
	return LoadSnapshot(ctx, sessionID)
}

func (Snapshots) DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error {
	return DeleteSnapshot(ctx, sessionID)
}

// PopAction blocks up to timeout for the next queued action. It returns
// nil, nil when the queue stayed empty.
func PopAction(ctx context.Context, timeout time.Duration) (*ActionRecord, error) {
	res, err := Rdb.BLPop(ctx, timeout, QueueName()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var rec ActionRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &rec, nil
}

// ActionQueue exposes PopAction as a value for the historian.
type ActionQueue struct{}

func (ActionQueue) Pop(ctx context.Context, timeout time.Duration) (*ActionRecord, error) {
	return PopAction(ctx, timeout)
}
