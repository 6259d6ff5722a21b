package compose

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gkbsz/leadgate/internal/submission"
)

func testRequestContext() submission.RequestContext {
	return submission.RequestContext{
		Origin:     "https://example.com",
		Referer:    "https://example.com/landing",
		ClientIP:   "1.2.3.4",
		UserAgent:  "Mozilla/5.0",
		ReceivedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCompose(t *testing.T) {
	sub := &submission.Submission{
		Name:       "Ann",
		Email:      "ann@x.com",
		Phone:      "8 999 123-45-67",
		PhoneE164:  "+79991234567",
		Subscribe:  true,
		URL:        "https://example.com/promo",
		CountryISO: "ru",
	}

	msg := Compose(sub, testRequestContext())

	t.Run("public body carries the contact card", func(t *testing.T) {
		assert.Contains(t, msg.Public, "Ann")
		assert.Contains(t, msg.Public, "ann@x.com")
		assert.Contains(t, msg.Public, "+79991234567")
		assert.Contains(t, msg.Public, "Russia")
		assert.Contains(t, msg.Public, "🇷🇺")
		assert.Contains(t, msg.Public, "да")
		assert.Contains(t, msg.Public, "https://example.com/promo")
		assert.NotContains(t, msg.Public, "1.2.3.4", "network address stays internal")
	})

	t.Run("internal body adds diagnostics", func(t *testing.T) {
		assert.Contains(t, msg.Internal, "1.2.3.4")
		assert.Contains(t, msg.Internal, "https://example.com")
		assert.Contains(t, msg.Internal, "Mozilla/5.0")
		assert.Contains(t, msg.Internal, "2025-06-01T12:00:00Z")
		assert.Contains(t, msg.Internal, "8 999 123-45-67")
	})

	t.Run("composition is idempotent", func(t *testing.T) {
		again := Compose(sub, testRequestContext())
		assert.Equal(t, msg, again)
	})
}

func TestCompose_EscapesUserText(t *testing.T) {
	sub := &submission.Submission{
		Name:      "<b>Ann</b>",
		Email:     "ann@x.com",
		PhoneE164: "+79991234567",
		Message:   `<script>alert("x")</script>`,
	}

	msg := Compose(sub, testRequestContext())

	assert.NotContains(t, msg.Public, "<b>")
	assert.Contains(t, msg.Public, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.NotContains(t, msg.Internal, "<script>")
}

func TestCompose_CountryResolution(t *testing.T) {
	rc := testRequestContext()

	t.Run("supplied name wins", func(t *testing.T) {
		sub := &submission.Submission{PhoneE164: "+79991234567", CountryName: "Россия"}
		assert.Contains(t, Compose(sub, rc).Public, "Россия")
	})

	t.Run("inferred from canonical phone", func(t *testing.T) {
		sub := &submission.Submission{PhoneE164: "+4915112345678"}
		assert.Contains(t, Compose(sub, rc).Public, "Germany")
	})

	t.Run("iso code as last resort", func(t *testing.T) {
		sub := &submission.Submission{CountryISO: "de"}
		assert.Contains(t, Compose(sub, rc).Public, "DE")
	})

	t.Run("unknown marker, never a guess", func(t *testing.T) {
		sub := &submission.Submission{}
		assert.Contains(t, Compose(sub, rc).Public, UnknownCountry)
	})
}

func TestCompose_PageFallsBackToReferer(t *testing.T) {
	sub := &submission.Submission{Name: "Ann", Email: "ann@x.com", PhoneE164: "+79991234567"}

	msg := Compose(sub, testRequestContext())
	assert.Contains(t, msg.Public, "https://example.com/landing")
}

func TestInferCountry(t *testing.T) {
	tests := []struct {
		e164 string
		want string
		ok   bool
	}{
		{"+79991234567", "Russia", true},
		{"+77012345678", "Kazakhstan", true}, // longest prefix beats "+7"
		{"+380501234567", "Ukraine", true},
		{"+12025550123", "United States / Canada", true},
		{"+4915112345678", "Germany", true},
		{"+99812345678", "Uzbekistan", true},
		{"+8881234567", "", false},
		{"+", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.e164, func(t *testing.T) {
			got, ok := InferCountry(tt.e164)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagEmoji(t *testing.T) {
	assert.Equal(t, "🇷🇺", flagEmoji("RU"))
	assert.Equal(t, "🇷🇺", flagEmoji("ru"))
	assert.Equal(t, "🇩🇪", flagEmoji("de"))
	assert.Equal(t, "🏳️", flagEmoji(""))
	assert.Equal(t, "🏳️", flagEmoji("x"))
	assert.Equal(t, "🏳️", flagEmoji("12"))
}

func TestDialCodes_NoBlankEntries(t *testing.T) {
	for code, name := range dialCodes {
		assert.NotEmpty(t, strings.TrimSpace(name), "dial code %s has no country name", code)
		assert.LessOrEqual(t, len(code), maxDialCodeLen)
	}
}
