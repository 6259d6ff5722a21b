package ratelimit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gkbsz/leadgate/internal/infrastructure/counter"
)

const keyPrefix = "rl:"

// Decision is the result of a rate-limit check. Produced fresh per request.
type Decision struct {
	Allowed    bool
	Count      int64
	Remaining  int64
	ResetAfter time.Duration
}

// Limiter implements fixed-window counting over an external counter store.
// Bursts at window boundaries are an accepted imprecision of the scheme.
type Limiter struct {
	store  counter.Store
	limit  int64
	window time.Duration
	logger *zap.Logger
}

// NewLimiter creates a fixed-window limiter. A nil store disables counting;
// every check then admits.
func NewLimiter(store counter.Store, limit int, window time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limit:  int64(limit),
		window: window,
		logger: logger,
	}
}

// Allow increments the counter for key and decides admission. Rate limiting
// is a best-effort defense: any store failure fails OPEN so legitimate
// traffic is never blocked by counter outages.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if l.store == nil {
		return l.failOpen(nil)
	}

	storeKey := keyPrefix + key

	count, err := l.store.Incr(ctx, storeKey)
	if err != nil {
		return l.failOpen(err)
	}

	// First hit of a fresh window owns the expiry. Concurrent firsts may
	// both see count==1 observations race away; Expire is idempotent so a
	// double set is harmless.
	if count == 1 {
		if err := l.store.Expire(ctx, storeKey, l.window); err != nil {
			return l.failOpen(err)
		}
	}

	reset := l.window
	if ttl, err := l.store.TTL(ctx, storeKey); err == nil && ttl > 0 {
		reset = ttl
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	d := Decision{
		Allowed:    count <= l.limit,
		Count:      count,
		Remaining:  remaining,
		ResetAfter: reset,
	}

	if !d.Allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int64("limit", l.limit),
			zap.Duration("reset_after", reset))
	}

	return d
}

func (l *Limiter) failOpen(err error) Decision {
	if err != nil {
		l.logger.Error("counter store unavailable, admitting request", zap.Error(err))
	}
	return Decision{
		Allowed:    true,
		Remaining:  l.limit,
		ResetAfter: l.window,
	}
}

// Key derives the client identity key from the network address and,
// optionally, the calling origin host to reduce shared-IP false positives.
func Key(ip, origin string, byOrigin bool) string {
	if !byOrigin || origin == "" {
		return "ip:" + ip
	}

	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return "ip:" + ip + ":origin:" + host
}
