package antibot

import (
	"strings"
	"time"
)

// Reason explains why a submission was flagged as automated.
type Reason string

const (
	// ReasonNone marks a submission that passed screening.
	ReasonNone Reason = ""
	// ReasonHoneypot marks a submission that filled the hidden trap field.
	ReasonHoneypot Reason = "honeypot"
	// ReasonTooFast marks a submission filled faster than a human plausibly could.
	ReasonTooFast Reason = "too_fast"
)

// Filter screens submissions with cheap stateless heuristics. It runs before
// any external I/O so bots never consume rate-limit quota or deliveries.
type Filter struct {
	minFillTime time.Duration
}

func NewFilter(minFillTime time.Duration) *Filter {
	return &Filter{minFillTime: minFillTime}
}

// Check returns the rejection reason, or ReasonNone when the submission
// looks human. honeypot is the hidden field value; elapsed is the
// client-reported time since form render.
func (f *Filter) Check(honeypot string, elapsed time.Duration) Reason {
	if strings.TrimSpace(honeypot) != "" {
		return ReasonHoneypot
	}
	if elapsed < f.minFillTime {
		return ReasonTooFast
	}
	return ReasonNone
}
