package counter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gkbsz/leadgate/internal/errors"
	"github.com/gkbsz/leadgate/internal/infrastructure/config"
)

// restStore implements Store against an Upstash-style redis REST endpoint:
// commands are path segments (GET {base}/INCR/{key}) authorized with a
// bearer token, responses are {"result": ...} JSON.
type restStore struct {
	base   string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewRESTStore creates a counter store speaking the redis-over-REST protocol.
func NewRESTStore(cfg config.RESTConfig, timeout time.Duration, logger *zap.Logger) (Store, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.URL == "" || cfg.Token == "" {
		return nil, apperrors.NewConfigError("counter REST url and token are required")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &restStore{
		base:   strings.TrimRight(cfg.URL, "/"),
		token:  cfg.Token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

type restResult struct {
	Result json.Number `json:"result"`
	Error  string      `json:"error"`
}

func (s *restStore) command(ctx context.Context, segments ...string) (int64, error) {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = url.PathEscape(seg)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.base+"/"+strings.Join(parts, "/"), nil)
	if err != nil {
		return 0, fmt.Errorf("building counter request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("counter REST call failed",
			zap.String("command", segments[0]),
			zap.Error(err))
		return 0, fmt.Errorf("counter REST call failed: %w", err)
	}
	defer resp.Body.Close()

	var result restResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding counter response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Error != "" {
		s.logger.Error("counter REST command rejected",
			zap.String("command", segments[0]),
			zap.Int("status", resp.StatusCode),
			zap.String("error", result.Error))
		return 0, fmt.Errorf("counter REST command %s: status %d %s",
			segments[0], resp.StatusCode, result.Error)
	}

	n, err := result.Result.Int64()
	if err != nil {
		return 0, fmt.Errorf("parsing counter result %q: %w", result.Result, err)
	}
	return n, nil
}

func (s *restStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.command(ctx, "INCR", key)
}

func (s *restStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	_, err := s.command(ctx, "EXPIRE", key, fmt.Sprintf("%d", secs))
	return err
}

func (s *restStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	secs, err := s.command(ctx, "TTL", key)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

func (s *restStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
