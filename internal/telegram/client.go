package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/gkbsz/leadgate/internal/errors"
	"github.com/gkbsz/leadgate/internal/infrastructure/config"
)

// Client is a thin Telegram Bot API client for sendMessage. Outbound calls
// are paced with a token bucket so bursts of submissions stay under the Bot
// API throughput ceiling.
type Client struct {
	base   string
	token  string
	http   *http.Client
	pacer  *rate.Limiter
	logger *zap.Logger
}

func NewClient(cfg config.TelegramConfig, logger *zap.Logger) *Client {
	sendRate := cfg.Rate
	if sendRate <= 0 {
		sendRate = 25
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		base:   strings.TrimRight(cfg.API, "/"),
		token:  cfg.Token,
		http:   &http.Client{Timeout: cfg.Timeout},
		pacer:  rate.NewLimiter(rate.Limit(sendRate), burst),
		logger: logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send delivers text to the chat and returns the transport status code plus
// the raw response payload for diagnostics. A non-nil error means the call
// never produced a response; API-level rejections come back as non-2xx
// status with the body intact.
func (c *Client) Send(ctx context.Context, chatID, text string) (int, string, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return 0, "", fmt.Errorf("send pacing aborted: %w", err)
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return 0, "", fmt.Errorf("encoding sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.base, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("building sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("telegram sendMessage transport failure",
			zap.String("chat", chatID),
			zap.Error(err))
		return 0, "", apperrors.NewTransportFailed("telegram sendMessage").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("reading sendMessage response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("telegram sendMessage rejected",
			zap.String("chat", chatID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
	}

	return resp.StatusCode, string(body), nil
}
