package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gkbsz/leadgate/internal/antibot"
	"github.com/gkbsz/leadgate/internal/compose"
	"github.com/gkbsz/leadgate/internal/dispatch"
	apperrors "github.com/gkbsz/leadgate/internal/errors"
	"github.com/gkbsz/leadgate/internal/infrastructure/config"
	"github.com/gkbsz/leadgate/internal/ratelimit"
	"github.com/gkbsz/leadgate/internal/submission"
)

const maxBodySize = 64 << 10

// SubmitHandler runs the submission pipeline:
// received -> authorized -> screened -> validated -> admitted -> composed ->
// dispatched -> responded. The authorized step lives in the CORS middleware
// wrapping this handler; every other step short-circuits here.
type SubmitHandler struct {
	cfg        *config.Config
	filter     *antibot.Filter
	limiter    *ratelimit.Limiter
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewSubmitHandler(
	cfg *config.Config,
	filter *antibot.Filter,
	limiter *ratelimit.Limiter,
	dispatcher *dispatch.Dispatcher,
	logger *zap.Logger,
) *SubmitHandler {
	return &SubmitHandler{
		cfg:        cfg,
		filter:     filter,
		limiter:    limiter,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("api.rest.submit"),
		now:        time.Now,
	}
}

func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, Response{OK: false, Error: "Method not allowed"})
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "submit",
		trace.WithAttributes(attribute.String("origin", r.Header.Get("Origin"))),
	)
	defer span.End()

	rc := submission.RequestContext{
		Origin:     r.Header.Get("Origin"),
		Referer:    r.Header.Get("Referer"),
		ClientIP:   clientIP(r),
		UserAgent:  r.UserAgent(),
		ReceivedAt: h.now(),
	}
	log := h.logger.With(zap.String("ip", rc.ClientIP), zap.String("origin", rc.Origin))

	var sub submission.Submission
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		recordSubmission(outcomeMalformed)
		writeJSON(w, http.StatusBadRequest, Response{OK: false, Error: "Malformed JSON"})
		return
	}

	// Screening runs before any external I/O so bots never consume
	// rate-limit quota or deliveries. Rejections answer with a plain
	// success so scripted abuse learns nothing from the response.
	if reason := h.filter.Check(sub.Honeypot, sub.Elapsed()); reason != antibot.ReasonNone {
		recordSubmission(outcomeBotRejected)
		span.SetAttributes(attribute.String("bot_reason", string(reason)))
		log.Info("submission screened out", zap.String("reason", string(reason)))
		writeError(w, apperrors.NewBotSuspected(string(reason)))
		return
	}

	if fields := sub.Validate(); len(fields) > 0 {
		recordSubmission(outcomeValidationFailed)
		writeError(w, apperrors.NewValidationFailed(fields))
		return
	}

	key := ratelimit.Key(rc.ClientIP, rc.Origin, h.cfg.Rate.ByOrigin)
	decision := h.limiter.Allow(ctx, key)
	if !decision.Allowed {
		recordSubmission(outcomeRateLimited)
		retryAfter := int(decision.ResetAfter.Seconds() + 0.5)
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.cfg.Rate.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		writeError(w, apperrors.NewRateLimited("Too many requests"))
		return
	}

	if !h.cfg.Telegram.Configured() {
		recordSubmission(outcomeConfigError)
		log.Error("telegram credentials missing, submission dropped")
		writeError(w, apperrors.NewConfigError("Server not configured"))
		return
	}

	msg := compose.Compose(&sub, rc)

	deliveries := []dispatch.Delivery{
		{Destination: h.cfg.Telegram.Chat, Text: msg.Public},
	}
	if h.cfg.Telegram.Admin != "" {
		deliveries = append(deliveries, dispatch.Delivery{Destination: h.cfg.Telegram.Admin, Text: msg.Internal})
	}

	outcomes := h.dispatcher.Dispatch(ctx, deliveries)

	// Public delivery is the contract with the submitter; the admin report
	// is a diagnostic aid, so its failure only degrades to a warning.
	public := outcomes[0]
	recordDelivery("public", public.OK)
	if !public.OK {
		recordSubmission(outcomeTransportFailed)
		log.Error("public delivery failed",
			zap.Int("status", public.Status),
			zap.String("body", public.Body),
			zap.Error(public.Err))
		h.alertAdmin(fmt.Sprintf("❗️Ошибка доставки заявки: статус %d\nIP: %s", public.Status, rc.ClientIP))
		writeError(w, apperrors.NewTransportFailed("Notification delivery failed").
			WithDetail("status", public.Status))
		return
	}

	if len(outcomes) > 1 {
		admin := outcomes[1]
		recordDelivery("admin", admin.OK)
		if !admin.OK {
			log.Warn("admin delivery failed",
				zap.Int("status", admin.Status),
				zap.Error(admin.Err))
		}
	}

	recordSubmission(outcomeAccepted)
	writeJSON(w, http.StatusOK, Response{OK: true})
}

// alertAdmin sends a best-effort operator notification. Fire-and-forget: the
// user response never waits on it and failures are only logged.
func (h *SubmitHandler) alertAdmin(text string) {
	if h.cfg.Telegram.Admin == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.Telegram.Timeout)
		defer cancel()
		h.dispatcher.Dispatch(ctx, []dispatch.Delivery{
			{Destination: h.cfg.Telegram.Admin, Text: text},
		})
	}()
}

// clientIP extracts the client network address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
