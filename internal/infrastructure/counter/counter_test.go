package counter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gkbsz/leadgate/internal/infrastructure/config"
)

func setupRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(config.RedisConfig{Addr: mr.Addr()}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("incr is monotonic per key", func(t *testing.T) {
		store, _ := setupRedisStore(t)

		for want := int64(1); want <= 3; want++ {
			got, err := store.Incr(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		other, err := store.Incr(ctx, "other")
		require.NoError(t, err)
		assert.Equal(t, int64(1), other)
	})

	t.Run("expire resets the counter after the window", func(t *testing.T) {
		store, mr := setupRedisStore(t)

		_, err := store.Incr(ctx, "k")
		require.NoError(t, err)
		require.NoError(t, store.Expire(ctx, "k", time.Minute))

		ttl, err := store.TTL(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, time.Minute, ttl)

		mr.FastForward(time.Minute + time.Second)

		count, err := store.Incr(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("connection failure", func(t *testing.T) {
		_, err := NewRedisStore(config.RedisConfig{Addr: "localhost:1"}, zaptest.NewLogger(t))
		assert.Error(t, err)
	})

	t.Run("missing addr", func(t *testing.T) {
		_, err := NewRedisStore(config.RedisConfig{}, zaptest.NewLogger(t))
		assert.Error(t, err)
	})
}

func TestRESTStore(t *testing.T) {
	ctx := context.Background()

	t.Run("speaks the upstash command protocol", func(t *testing.T) {
		var paths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			paths = append(paths, r.URL.Path)

			switch r.URL.Path {
			case "/INCR/rl:k":
				w.Write([]byte(`{"result":1}`))
			case "/EXPIRE/rl:k/300":
				w.Write([]byte(`{"result":1}`))
			case "/TTL/rl:k":
				w.Write([]byte(`{"result":299}`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		store, err := NewRESTStore(config.RESTConfig{URL: srv.URL, Token: "secret"},
			time.Second, zaptest.NewLogger(t))
		require.NoError(t, err)

		count, err := store.Incr(ctx, "rl:k")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, store.Expire(ctx, "rl:k", 5*time.Minute))

		ttl, err := store.TTL(ctx, "rl:k")
		require.NoError(t, err)
		assert.Equal(t, 299*time.Second, ttl)

		assert.Len(t, paths, 3)
	})

	t.Run("propagates endpoint errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid token"}`))
		}))
		defer srv.Close()

		store, err := NewRESTStore(config.RESTConfig{URL: srv.URL, Token: "bad"},
			time.Second, zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = store.Incr(ctx, "k")
		assert.Error(t, err)
	})

	t.Run("requires url and token", func(t *testing.T) {
		_, err := NewRESTStore(config.RESTConfig{URL: "http://x"}, time.Second, zaptest.NewLogger(t))
		assert.Error(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("counts and expires", func(t *testing.T) {
		now := time.Now()
		store := &memoryStore{
			entries: make(map[string]*memoryEntry),
			now:     func() time.Time { return now },
		}

		count, err := store.Incr(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.NoError(t, store.Expire(ctx, "k", time.Minute))

		count, err = store.Incr(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		// A fresh window starts once the entry has expired.
		now = now.Add(2 * time.Minute)
		count, err = store.Incr(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ttl without expiry is negative", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Incr(ctx, "k")
		require.NoError(t, err)

		ttl, err := store.TTL(ctx, "k")
		require.NoError(t, err)
		assert.Negative(t, ttl)
	})
}

func TestNew(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("memory backend", func(t *testing.T) {
		store, err := New(config.CounterConfig{Backend: "memory"}, logger)
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("off backend yields nil store", func(t *testing.T) {
		store, err := New(config.CounterConfig{Backend: "off"}, logger)
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(config.CounterConfig{Backend: "bogus"}, logger)
		assert.Error(t, err)
	})
}
