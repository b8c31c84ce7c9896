package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	TrustProxy     bool          `yaml:"trust_proxy" env:"TRUST_PROXY"` // honor X-Forwarded-For for throttling
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"FORMAT"` // json|console
	Sampling bool   `yaml:"sampling" env:"SAMPLING"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url" env:"URL"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" env:"URL"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"` // product cache TTL
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"ISSUER"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
}

// LinksConfig controls how redemption links are rendered: {BaseURL}/g/{token}.
type LinksConfig struct {
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

type EmailConfig struct {
	Mode     string `yaml:"mode" env:"MODE"` // smtp | log
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	From     string `yaml:"from" env:"FROM"`
	Lang     string `yaml:"lang" env:"LANG"`
	// TLS is one of mandatory (STARTTLS required), opportunistic, implicit (SMTPS) or none.
	TLS     string        `yaml:"tls" env:"TLS"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// ThrottleConfig limits public token routes per token and per client IP.
type ThrottleConfig struct {
	PerTokenLimit int           `yaml:"per_token_limit" env:"PER_TOKEN_LIMIT"`
	PerIPLimit    int           `yaml:"per_ip_limit" env:"PER_IP_LIMIT"`
	Window        time.Duration `yaml:"window" env:"WINDOW"`
}

type WorkerConfig struct {
	Workers int `yaml:"workers" env:"WORKERS"`
	Queue   int `yaml:"queue" env:"QUEUE"`
}

type ReconcilerConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
	GraceAge time.Duration `yaml:"grace_age" env:"GRACE_AGE"`
}

type Config struct {
	HTTP       HTTPConfig       `yaml:"http" envPrefix:"HTTP_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Database   DatabaseConfig   `yaml:"database" envPrefix:"DATABASE_"`
	Redis      RedisConfig      `yaml:"redis" envPrefix:"REDIS_"`
	Auth       AuthConfig       `yaml:"auth" envPrefix:"AUTH_"`
	Links      LinksConfig      `yaml:"links" envPrefix:"LINKS_"`
	Email      EmailConfig      `yaml:"email" envPrefix:"EMAIL_"`
	Throttle   ThrottleConfig   `yaml:"throttle" envPrefix:"THROTTLE_"`
	Worker     WorkerConfig     `yaml:"worker" envPrefix:"WORKER_"`
	Reconciler ReconcilerConfig `yaml:"reconciler" envPrefix:"RECONCILER_"`

	Runtime RuntimeConfig `yaml:"-"`
}

// EnvPrefix is prepended to every environment override, e.g. GIFTING_DATABASE_URL.
const EnvPrefix = "GIFTING_"

// LoadConfig reads the YAML file at path (missing file is allowed when the
// environment supplies the required values), applies GIFTING_* overrides, then defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Email.Mode == "" {
		cfg.Email.Mode = "log"
	}
	if cfg.Email.Lang == "" {
		cfg.Email.Lang = "en"
	}
	if cfg.Email.TLS == "" {
		cfg.Email.TLS = "mandatory"
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 587
		if cfg.Email.TLS == "implicit" {
			cfg.Email.Port = 465
		}
	}
	if cfg.Email.Timeout <= 0 {
		cfg.Email.Timeout = 15 * time.Second
	}
	if cfg.Throttle.PerTokenLimit <= 0 {
		cfg.Throttle.PerTokenLimit = 30
	}
	if cfg.Throttle.PerIPLimit <= 0 {
		cfg.Throttle.PerIPLimit = 120
	}
	if cfg.Throttle.Window <= 0 {
		cfg.Throttle.Window = time.Minute
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.Queue <= 0 {
		cfg.Worker.Queue = 256
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = 10 * time.Minute
	}
	if cfg.Reconciler.GraceAge <= 0 {
		cfg.Reconciler.GraceAge = 5 * time.Minute
	}
	cfg.Links.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Links.BaseURL), "/")
}

// Validate performs the minimal checks needed to start the service.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Links.BaseURL == "" {
		return errors.New("links.base_url is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 bytes")
	}
	switch c.Email.Mode {
	case "log":
	case "smtp":
		if c.Email.Host == "" || c.Email.From == "" {
			return errors.New("email.host and email.from are required in smtp mode")
		}
		switch c.Email.TLS {
		case "mandatory", "opportunistic", "implicit", "none":
		default:
			return fmt.Errorf("email.tls must be mandatory, opportunistic, implicit or none, got %q", c.Email.TLS)
		}
	default:
		return fmt.Errorf("email.mode %q is not supported", c.Email.Mode)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
