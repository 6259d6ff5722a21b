package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gkbsz/leadgate/internal/infrastructure/config"
)

func newTestClient(t *testing.T, apiURL string) *Client {
	t.Helper()
	return NewClient(config.TelegramConfig{
		Token:   "test-token",
		API:     apiURL,
		Timeout: 2 * time.Second,
		Rate:    1000,
		Burst:   10,
	}, zaptest.NewLogger(t))
}

func TestClient_Send(t *testing.T) {
	t.Run("posts sendMessage with HTML parse mode", func(t *testing.T) {
		var got sendMessageRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)

		status, body, err := client.Send(context.Background(), "12345", "<b>hello</b>")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `"ok":true`)

		assert.Equal(t, "12345", got.ChatID)
		assert.Equal(t, "<b>hello</b>", got.Text)
		assert.Equal(t, "HTML", got.ParseMode)
		assert.True(t, got.DisableWebPagePreview)
	})

	t.Run("api rejection surfaces as non-2xx with body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)

		status, body, err := client.Send(context.Background(), "0", "hi")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body, "chat not found")
	})

	t.Run("transport failure returns an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		client := newTestClient(t, srv.URL)

		_, _, err := client.Send(context.Background(), "12345", "hi")
		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Drain the body so the server can watch for the client hanging
			// up; otherwise r.Context() is never cancelled and Close hangs.
			io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, _, err := client.Send(ctx, "12345", "hi")
		assert.Error(t, err)
	})
}
