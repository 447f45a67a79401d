package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// Key prefix for the cross-instance assessment guard.
const assessLockPrefix = "pc:assess:"

// AnalysisCompletedEvent is the pub/sub fanout payload emitted after a
// daily assessment is stored. Consumers (dashboards, notifiers) treat it
// as a pointer, not a source of truth; the row in Postgres is.
type AnalysisCompletedEvent struct {
	Event        string    `json:"event"`
	UserID       uuid.UUID `json:"user_id"`
	AnalysisDate string    `json:"analysis_date"`
	FinalScore   int       `json:"final_score"`
	Level        string    `json:"level"`
	Trend        string    `json:"trend"`
}

const EventAnalysisCompleted = "analysis.completed"

// Client is the Redis surface the assessment flow needs: a completed-run
// fanout channel and a cross-instance per-user lock.
type Client interface {
	PublishAnalysisCompleted(ctx context.Context, ev AnalysisCompletedEvent) error
	AcquireUserLock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseUserLock(ctx context.Context, userID uuid.UUID) error
	Ping(ctx context.Context) error
	Close() error
}

type client struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewClient reads REDIS_ADDR (required), REDIS_PASSWORD, REDIS_DB and
// REDIS_CHANNEL, and verifies the connection with a ping before handing
// the client out.
func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &client{
		log:     log.With("service", "RedisClient"),
		rdb:     rdb,
		channel: envutil.String("REDIS_CHANNEL", "pulsecheck.events"),
	}, nil
}

func (c *client) PublishAnalysisCompleted(ctx context.Context, ev AnalysisCompletedEvent) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if ev.Event == "" {
		ev.Event = EventAnalysisCompleted
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, c.channel, raw).Err()
}

// AcquireUserLock takes the cross-instance assessment guard for one user.
// Returns false without error when another instance already holds it; the
// TTL bounds how long a crashed holder can block the user.
func (c *client) AcquireUserLock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, fmt.Errorf("redis client not initialized")
	}
	ok, err := c.rdb.SetNX(ctx, assessLockPrefix+userID.String(), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (c *client) ReleaseUserLock(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.rdb.Del(ctx, assessLockPrefix+userID.String()).Err()
}

func (c *client) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
