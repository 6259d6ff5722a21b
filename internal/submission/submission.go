package submission

import (
	"strings"
	"time"
)

// Submission is the raw form payload as posted by the landing page.
// PhoneE164 is the only phone field trusted downstream: country inference
// and diagnostics key off it, never off the free-form Phone.
type Submission struct {
	Name          string `json:"name" validate:"fullname"`
	Email         string `json:"email" validate:"emailaddr"`
	Phone         string `json:"phone"`
	PhoneE164     string `json:"phone_e164" validate:"e164"`
	Subscribe     bool   `json:"subscribe"`
	Agree         *bool  `json:"agree,omitempty" validate:"omitempty,eq=true"`
	Message       string `json:"message,omitempty"`
	PolicyVersion string `json:"policy_version,omitempty"`
	URL           string `json:"url,omitempty"`
	UA            string `json:"ua,omitempty"`
	Honeypot      string `json:"hp"`
	ElapsedMS     int64  `json:"t"`
	CountryName   string `json:"country_name,omitempty"`
	CountryISO    string `json:"country_iso,omitempty"`
	CountryDial   string `json:"country_dial,omitempty"`
}

// Elapsed returns the client-reported time since form render.
func (s *Submission) Elapsed() time.Duration {
	return time.Duration(s.ElapsedMS) * time.Millisecond
}

// TrimmedName returns the name with surrounding whitespace removed.
func (s *Submission) TrimmedName() string {
	return strings.TrimSpace(s.Name)
}

// RequestContext carries the per-request transport facts the form payload
// cannot be trusted for. Immutable once constructed.
type RequestContext struct {
	Origin     string
	Referer    string
	ClientIP   string
	UserAgent  string
	ReceivedAt time.Time
}
