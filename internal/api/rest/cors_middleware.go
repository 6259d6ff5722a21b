package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/gkbsz/leadgate/internal/errors"
)

// CORSConfig configures the origin authorizer.
type CORSConfig struct {
	// AllowedOrigins may contain full origins ("https://example.com") or
	// bare hostnames ("example.com"). Matching is exact after
	// normalization; there is no wildcard or subdomain inference.
	AllowedOrigins []string

	// AllowAll admits every origin. This is the explicit policy for an
	// empty allow-list; the default policy is deny-all.
	AllowAll bool

	// ExpandWWW also admits the www-variant of each configured entry
	// (and the bare variant of www-prefixed entries).
	ExpandWWW bool

	// MaxAge is the preflight cache hint.
	MaxAge time.Duration
}

// CORSMiddleware authorizes calling origins and answers preflights. Denied
// origins get a 403 on every method; preflights are always answered but only
// reflect the origin back when admission succeeds.
type CORSMiddleware struct {
	origins  map[string]bool // normalized scheme+host entries
	hosts    map[string]bool // entries configured without a scheme
	allowAll bool
	maxAge   string
}

// NewCORSMiddleware creates the origin authorizer from configuration.
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	origins := make(map[string]bool)
	hosts := make(map[string]bool)

	add := func(entry string) {
		entry = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(entry), "/"))
		if entry == "" {
			return
		}
		if strings.Contains(entry, "://") {
			origins[entry] = true
		} else {
			hosts[entry] = true
		}
	}

	for _, entry := range config.AllowedOrigins {
		add(entry)
		if config.ExpandWWW {
			add(wwwVariant(entry))
		}
	}

	return &CORSMiddleware{
		origins:  origins,
		hosts:    hosts,
		allowAll: config.AllowAll,
		maxAge:   strconv.Itoa(int(config.MaxAge.Seconds())),
	}
}

// Middleware returns the CORS middleware function.
func (c *CORSMiddleware) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := c.isOriginAllowed(origin)

			headers := w.Header()
			headers.Add("Vary", "Origin")
			headers.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type")
			if allowed && origin != "" {
				headers.Set("Access-Control-Allow-Origin", origin)
			}

			if r.Method == http.MethodOptions {
				if !allowed {
					// Preflight answers carry no body either way.
					w.WriteHeader(http.StatusForbidden)
					return
				}
				headers.Set("Access-Control-Max-Age", c.maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// Method is checked before origin so a wrong-method probe gets
			// its 405 from the handler regardless of the Origin header.
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				recordSubmission(outcomeOriginDenied)
				writeError(w, apperrors.NewOriginDenied("Forbidden origin"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed applies the exact-match policy: scheme+host compare for
// entries carrying a scheme, host-only compare otherwise.
func (c *CORSMiddleware) isOriginAllowed(origin string) bool {
	if c.allowAll {
		return true
	}
	if origin == "" {
		return false
	}

	normalized := strings.ToLower(strings.TrimSuffix(origin, "/"))
	if c.origins[normalized] {
		return true
	}

	host := normalized
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return c.hosts[host]
}

// wwwVariant flips an entry between its www and bare forms.
func wwwVariant(entry string) string {
	scheme := ""
	host := entry
	if i := strings.Index(entry, "://"); i >= 0 {
		scheme = entry[:i+3]
		host = entry[i+3:]
	}
	if strings.HasPrefix(host, "www.") {
		return scheme + strings.TrimPrefix(host, "www.")
	}
	return scheme + "www." + host
}
