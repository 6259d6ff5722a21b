package compose

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gkbsz/leadgate/internal/submission"
)

// UnknownCountry is the explicit marker used when no country can be derived.
const UnknownCountry = "Unknown"

// Message holds the two notification bodies rendered for one submission.
// Public goes to the low-privilege contact channel, Internal to the admin
// channel with full diagnostics.
type Message struct {
	Public   string
	Internal string
}

// Compose renders the notification bodies for a validated submission. Pure
// function of its inputs: the timestamp comes from rc.ReceivedAt, so equal
// inputs always produce equal bodies. All user-supplied text is HTML-escaped
// before embedding because the bodies are sent with Telegram parse_mode=HTML.
func Compose(sub *submission.Submission, rc submission.RequestContext) Message {
	country := resolveCountry(sub)
	page := firstNonEmpty(sub.URL, rc.Referer)

	var pub strings.Builder
	pub.WriteString("📨 Новая заявка\n")
	fmt.Fprintf(&pub, "%s Страна: %s\n", flagEmoji(sub.CountryISO), esc(country))
	fmt.Fprintf(&pub, "📞 Телефон: %s\n", esc(firstNonEmpty(sub.PhoneE164, sub.Phone)))
	fmt.Fprintf(&pub, "👤 Имя: %s\n", esc(sub.TrimmedName()))
	fmt.Fprintf(&pub, "✉️ Email: %s\n", esc(sub.Email))
	fmt.Fprintf(&pub, "🔔 Подписка: %s\n", yesNo(sub.Subscribe))
	fmt.Fprintf(&pub, "🔗 Страница: %s", esc(orDash(page)))

	ua := firstNonEmpty(sub.UA, rc.UserAgent)

	var in strings.Builder
	in.WriteString("🧾 Полная заявка\n")
	fmt.Fprintf(&in, "Время: %s\n", rc.ReceivedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&in, "IP: %s\n", esc(orDash(rc.ClientIP)))
	fmt.Fprintf(&in, "Origin: %s\n", esc(orDash(rc.Origin)))
	fmt.Fprintf(&in, "Referer: %s\n", esc(orDash(page)))
	fmt.Fprintf(&in, "UA: %s\n", esc(orDash(ua)))
	in.WriteString("\nПоля формы:\n")
	fmt.Fprintf(&in, "- Имя: %s\n", esc(sub.TrimmedName()))
	fmt.Fprintf(&in, "- Email: %s\n", esc(sub.Email))
	fmt.Fprintf(&in, "- Телефон (raw): %s\n", esc(orDash(sub.Phone)))
	fmt.Fprintf(&in, "- Телефон (E.164): %s\n", esc(sub.PhoneE164))
	fmt.Fprintf(&in, "- Подписка: %s\n", yesNo(sub.Subscribe))
	fmt.Fprintf(&in, "- Политика: %s\n", esc(orDash(sub.PolicyVersion)))
	if sub.Message != "" {
		fmt.Fprintf(&in, "- Сообщение: %s\n", esc(sub.Message))
	}
	in.WriteString("\nГео:\n")
	fmt.Fprintf(&in, "- ISO2: %s\n", esc(orDash(sub.CountryISO)))
	fmt.Fprintf(&in, "- Название: %s\n", esc(orDash(sub.CountryName)))
	fmt.Fprintf(&in, "- Dial code: %s", esc(orDash(sub.CountryDial)))

	return Message{Public: pub.String(), Internal: in.String()}
}

// resolveCountry picks the country shown on the public card: a supplied name
// wins, then inference from the canonical phone, then the bare ISO code.
func resolveCountry(sub *submission.Submission) string {
	if sub.CountryName != "" {
		return sub.CountryName
	}
	if name, ok := InferCountry(sub.PhoneE164); ok {
		return name
	}
	if sub.CountryISO != "" {
		return strings.ToUpper(sub.CountryISO)
	}
	return UnknownCountry
}

// flagEmoji converts an ISO2 code to its regional-indicator flag.
// An absent or short code renders the white flag.
func flagEmoji(iso2 string) string {
	up := strings.ToUpper(strings.TrimSpace(iso2))
	if len(up) != 2 || up[0] < 'A' || up[0] > 'Z' || up[1] < 'A' || up[1] > 'Z' {
		return "🏳️"
	}
	return string([]rune{
		rune(0x1F1E6 + int(up[0]-'A')),
		rune(0x1F1E6 + int(up[1]-'A')),
	})
}

func esc(s string) string { return html.EscapeString(s) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
