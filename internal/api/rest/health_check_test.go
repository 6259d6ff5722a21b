package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/gkbsz/leadgate/internal/infrastructure/counter"
)

type deadStore struct{}

func (deadStore) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("unreachable")
}
func (deadStore) Expire(context.Context, string, time.Duration) error {
	return errors.New("unreachable")
}
func (deadStore) TTL(context.Context, string) (time.Duration, error) {
	return 0, errors.New("unreachable")
}
func (deadStore) Close() error { return nil }

func TestHealthHandler(t *testing.T) {
	check := func(store counter.Store) *httptest.ResponseRecorder {
		h := NewHealthHandler(store, zaptest.NewLogger(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		return w
	}

	t.Run("reachable store", func(t *testing.T) {
		w := check(counter.NewMemoryStore())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"counter":"ok"`)
	})

	t.Run("no store configured", func(t *testing.T) {
		w := check(nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"counter":"off"`)
	})

	t.Run("dead store degrades but stays healthy", func(t *testing.T) {
		w := check(deadStore{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"counter":"degraded"`)
	})

	t.Run("get only", func(t *testing.T) {
		h := NewHealthHandler(nil, zaptest.NewLogger(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/healthz", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
