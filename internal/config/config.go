// Package config loads the console server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/janisto/enseada-console/internal/platform/pagination"
)

// Backend names the data source list views read from.
type Backend string

// Supported backends.
const (
	BackendMemory    Backend = "memory"
	BackendFirestore Backend = "firestore"
	BackendUpstream  Backend = "upstream"
)

// Config is the server configuration.
type Config struct {
	Port     string  `env:"PORT"      envDefault:"8080"`
	Backend  Backend `env:"BACKEND"   envDefault:"memory"`
	LogLevel string  `env:"LOG_LEVEL" envDefault:"info"`

	// PageSize is the page size of new views.
	PageSize int `env:"PAGE_SIZE" envDefault:"25"`

	// MaxViews caps open views. Zero means unlimited.
	MaxViews int `env:"MAX_VIEWS" envDefault:"1000"`

	// ViewIdleTimeout evicts views nobody has read for this long. Zero disables eviction.
	ViewIdleTimeout time.Duration `env:"VIEW_IDLE_TIMEOUT" envDefault:"30m"`

	// CORSAllowedOrigins is a comma-separated origin list. Empty allows any origin.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// SeedData fills the memory backend with sample resources.
	SeedData bool `env:"SEED_DATA" envDefault:"true"`

	Upstream UpstreamConfig `envPrefix:"UPSTREAM_"`
	Firebase FirebaseConfig
}

// UpstreamConfig configures the Enseada REST backend.
type UpstreamConfig struct {
	URL   string `env:"URL"`
	Token string `env:"TOKEN"`
	// RPS limits outgoing requests per second. Zero disables limiting.
	RPS   float64 `env:"RPS"   envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
}

// FirebaseConfig configures the Firestore backend.
type FirebaseConfig struct {
	ProjectID   string `env:"FIREBASE_PROJECT_ID"`
	Credentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Load reads a .env file when present, then parses the environment.
func Load() (Config, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return parse(env.Options{})
}

// Parse parses cfg from the given variables instead of the process environment.
func Parse(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.PageSize < 1 || c.PageSize > pagination.MaxLimit {
		c.PageSize = pagination.DefaultLimit
	}
	if c.MaxViews < 0 {
		c.MaxViews = 0
	}
	if c.ViewIdleTimeout < 0 {
		c.ViewIdleTimeout = 0
	}

	origins := c.CORSAllowedOrigins[:0]
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins

	c.Upstream.URL = strings.TrimRight(strings.TrimSpace(c.Upstream.URL), "/")
	if c.Upstream.RPS < 0 {
		c.Upstream.RPS = 0
	}
	if c.Upstream.Burst < 1 {
		c.Upstream.Burst = 1
	}
}

// Validate reports settings the selected backend cannot start with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendFirestore:
		if c.Firebase.ProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
		return nil
	case BackendUpstream:
		if c.Upstream.URL == "" {
			return errors.New("UPSTREAM_URL is required for the upstream backend")
		}
		u, err := url.Parse(c.Upstream.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("UPSTREAM_URL %q must be an absolute http(s) URL", c.Upstream.URL)
		}
		return nil
	default:
		return fmt.Errorf("unknown BACKEND %q (want memory, firestore or upstream)", c.Backend)
	}
}
