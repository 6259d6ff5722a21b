package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Environment string `koanf:"environment"`

	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	CORS      CORSConfig      `koanf:"cors"`
	AntiBot   AntiBotConfig   `koanf:"antibot"`
	Rate      RateConfig      `koanf:"rate"`
	Counter   CounterConfig   `koanf:"counter"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CORSConfig drives the origin authorizer. Origins is a comma-separated
// allow-list; entries may be full origins or bare hostnames. Policy decides
// what an empty allow-list means: "deny" (default) or "allow".
type CORSConfig struct {
	Origins string        `koanf:"origins"`
	Policy  string        `koanf:"policy"`
	WWW     bool          `koanf:"www"`
	MaxAge  time.Duration `koanf:"max_age"`
}

// OriginList splits the configured allow-list into trimmed entries.
func (c CORSConfig) OriginList() []string {
	var out []string
	for _, o := range strings.Split(c.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type AntiBotConfig struct {
	// MinFillTime is the minimum plausible human form-fill duration.
	MinFillTime time.Duration `koanf:"min_fill_time"`
}

type RateConfig struct {
	Limit    int           `koanf:"limit"`
	Window   time.Duration `koanf:"window"`
	ByOrigin bool          `koanf:"byorigin"`
}

// CounterConfig selects the rate-limit counter store backend.
// "redis" talks to a redis server, "rest" to an Upstash-style REST endpoint,
// "memory" is a single-instance in-process fallback, "off" disables counting
// entirely (the limiter then fails open).
type CounterConfig struct {
	Backend string        `koanf:"backend"`
	Timeout time.Duration `koanf:"timeout"`
	Redis   RedisConfig   `koanf:"redis"`
	REST    RESTConfig    `koanf:"rest"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type RESTConfig struct {
	URL   string `koanf:"url"`
	Token string `koanf:"token"`
}

type TelegramConfig struct {
	Token   string        `koanf:"token"`
	Chat    string        `koanf:"chat"`
	Admin   string        `koanf:"admin"`
	API     string        `koanf:"api"`
	Timeout time.Duration `koanf:"timeout"`
	Rate    float64       `koanf:"rate"`
	Burst   int           `koanf:"burst"`
}

// Configured reports whether the minimum delivery credentials are present.
// A missing credential is surfaced per-request as a 500, not at startup,
// so the preflight path keeps working while the operator fixes env vars.
func (t TelegramConfig) Configured() bool {
	return t.Token != "" && t.Chat != ""
}

type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Environment: "development",
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		CORS: CORSConfig{
			Policy: "deny",
			WWW:    true,
			MaxAge: time.Hour,
		},
		AntiBot: AntiBotConfig{
			MinFillTime: 400 * time.Millisecond,
		},
		Rate: RateConfig{
			Limit:  20,
			Window: 5 * time.Minute,
		},
		Counter: CounterConfig{
			Backend: "memory",
			Timeout: 3 * time.Second,
		},
		Telegram: TelegramConfig{
			API:     "https://api.telegram.org",
			Timeout: 5 * time.Second,
			Rate:    25,
			Burst:   5,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional; environment variables always win.
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// LEADGATE_SERVER__READ_TIMEOUT -> server.read_timeout
	if err := k.Load(env.Provider("LEADGATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "LEADGATE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.CORS.Policy {
	case "deny", "allow":
	default:
		return fmt.Errorf("cors.policy must be \"deny\" or \"allow\", got %q", c.CORS.Policy)
	}

	switch c.Counter.Backend {
	case "redis", "rest", "memory", "off":
	default:
		return fmt.Errorf("counter.backend must be one of redis, rest, memory, off; got %q", c.Counter.Backend)
	}

	if c.Rate.Limit <= 0 {
		return fmt.Errorf("rate.limit must be positive, got %d", c.Rate.Limit)
	}
	if c.Rate.Window <= 0 {
		return fmt.Errorf("rate.window must be positive, got %s", c.Rate.Window)
	}

	return nil
}
