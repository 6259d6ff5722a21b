package antibot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Check(t *testing.T) {
	filter := NewFilter(400 * time.Millisecond)

	tests := []struct {
		name     string
		honeypot string
		elapsed  time.Duration
		want     Reason
	}{
		{"human submission", "", time.Second, ReasonNone},
		{"filled honeypot", "trap", time.Second, ReasonHoneypot},
		{"whitespace honeypot passes", "   ", time.Second, ReasonNone},
		{"too fast", "", 200 * time.Millisecond, ReasonTooFast},
		{"exactly at threshold", "", 400 * time.Millisecond, ReasonNone},
		{"zero elapsed", "", 0, ReasonTooFast},
		{"honeypot wins over timing", "trap", 0, ReasonHoneypot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Check(tt.honeypot, tt.elapsed))
		})
	}
}
