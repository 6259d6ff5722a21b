package counter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gkbsz/leadgate/internal/errors"
	"github.com/gkbsz/leadgate/internal/infrastructure/config"
)

// Store is the atomic counter primitive backing the fixed-window rate
// limiter. Implementations must make Incr atomic across concurrent callers;
// Expire must be idempotent (double-setting the TTL on a fresh window is
// harmless).
type Store interface {
	// Incr atomically increments the counter at key and returns the new count.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets the TTL on key. Called after the first increment of a window.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining lifetime of key. Implementations may return
	// a negative duration when the key has no expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Close() error
}

// New builds the configured store backend. A nil store (backend "off") makes
// the limiter fail open.
func New(cfg config.CounterConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(cfg.Redis, logger)
	case "rest":
		return NewRESTStore(cfg.REST, cfg.Timeout, logger)
	case "memory":
		return NewMemoryStore(), nil
	case "off":
		return nil, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown counter backend %q", cfg.Backend))
	}
}
