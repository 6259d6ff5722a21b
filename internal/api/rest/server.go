package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gkbsz/leadgate/internal/antibot"
	"github.com/gkbsz/leadgate/internal/dispatch"
	"github.com/gkbsz/leadgate/internal/infrastructure/config"
	"github.com/gkbsz/leadgate/internal/infrastructure/counter"
	"github.com/gkbsz/leadgate/internal/ratelimit"
	"github.com/gkbsz/leadgate/internal/telegram"
)

// Server wires the submission pipeline behind an HTTP listener.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpServer *http.Server
	store      counter.Store
}

// NewServer builds all pipeline dependencies. A counter store that cannot be
// reached at startup degrades to fail-open rate limiting instead of blocking
// the service; delivery credentials are checked per request, not here.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	store, err := counter.New(cfg.Counter, logger)
	if err != nil {
		logger.Warn("counter store unavailable, rate limiting degrades to fail-open",
			zap.String("backend", cfg.Counter.Backend),
			zap.Error(err))
		store = nil
	}

	limiter := ratelimit.NewLimiter(store, cfg.Rate.Limit, cfg.Rate.Window, logger)
	filter := antibot.NewFilter(cfg.AntiBot.MinFillTime)
	transport := telegram.NewClient(cfg.Telegram, logger)
	dispatcher := dispatch.NewDispatcher(transport, cfg.Telegram.Timeout, logger)

	submit := NewSubmitHandler(cfg, filter, limiter, dispatcher, logger)
	cors := NewCORSMiddleware(CORSConfig{
		AllowedOrigins: cfg.CORS.OriginList(),
		AllowAll:       len(cfg.CORS.OriginList()) == 0 && cfg.CORS.Policy == "allow",
		ExpandWWW:      cfg.CORS.WWW,
		MaxAge:         cfg.CORS.MaxAge,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/submit", cors.Middleware()(submit))
	mux.Handle("/healthz", NewHealthHandler(store, logger))
	mux.Handle("/metrics", MetricsHandler())

	var handler http.Handler = mux
	handler = metricsMiddleware(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// Start serves until SIGINT/SIGTERM, then drains within the shutdown timeout.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing counter store", zap.Error(err))
		}
	}

	return nil
}
