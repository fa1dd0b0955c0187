package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PSREC_"

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "psrec.yml"

// Config holds every runtime setting of the service and the crawler.
type Config struct {
	Addr        string `koanf:"addr"`
	Env         string `koanf:"env"`
	Debug       bool   `koanf:"debug"`
	DatabaseURL string `koanf:"database_url"`
	JWTSecret   string `koanf:"jwt_secret"`
	CookieName  string `koanf:"cookie_name"`
	CORSOrigins string `koanf:"cors_origins"`

	// APIBaseURL points the page renderers at a remote backend. Empty means
	// the pages call this process directly.
	APIBaseURL string `koanf:"api_base_url"`

	SolvedACBaseURL  string        `koanf:"solvedac_base_url"`
	SolvedACTimeout  time.Duration `koanf:"solvedac_timeout"`
	SolvedACMaxPages int           `koanf:"solvedac_max_pages"`

	RecommendLimit int `koanf:"recommend_limit"`
	SimilarUsers   int `koanf:"similar_users"`

	DemoScript  string        `koanf:"demo_script"`
	DemoTimeout time.Duration `koanf:"demo_timeout"`

	CrawlInterval    time.Duration `koanf:"crawl_interval"`
	CrawlConcurrency int           `koanf:"crawl_concurrency"`
	CrawlPages       int           `koanf:"crawl_pages"`
	CrawlPerPage     int           `koanf:"crawl_per_page"`
	CrawlMaxPage     int           `koanf:"crawl_max_page"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Addr:             ":8080",
		Env:              "development",
		CookieName:       "token",
		CORSOrigins:      "*",
		SolvedACBaseURL:  "https://solved.ac/api/v3",
		SolvedACTimeout:  10 * time.Second,
		SolvedACMaxPages: 5,
		RecommendLimit:   10,
		SimilarUsers:     10,
		DemoTimeout:      5 * time.Second,
		CrawlInterval:    500 * time.Millisecond,
		CrawlConcurrency: 4,
		CrawlPages:       5,
		CrawlPerPage:     5,
		CrawlMaxPage:     249,
	}
}

// Load reads .env, then layers the YAML file at path and PSREC_* variables
// over the defaults. The unprefixed DATABASE_URL, JWT_SECRET and PORT are
// used when their prefixed forms are absent.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyLegacyEnv(cfg, k)

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "psrec-dev-secret"
	}

	return cfg, nil
}

func applyLegacyEnv(cfg *Config, k *koanf.Koanf) {
	if !k.Exists("database_url") {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			cfg.DatabaseURL = v
		}
	}
	if !k.Exists("jwt_secret") {
		if v := os.Getenv("JWT_SECRET"); v != "" {
			cfg.JWTSecret = v
		}
	}
	if !k.Exists("addr") {
		if v := os.Getenv("PORT"); v != "" {
			cfg.Addr = ":" + strings.TrimPrefix(v, ":")
		}
	}
}

// IsProduction reports whether env is set to production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// UsesDatabase reports whether storage is backed by Postgres.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required in %s", c.Env)
	}
	if c.CookieName == "" {
		return fmt.Errorf("cookie_name is required")
	}
	if c.SolvedACBaseURL == "" {
		return fmt.Errorf("solvedac_base_url is required")
	}
	if c.RecommendLimit <= 0 {
		return fmt.Errorf("recommend_limit must be positive")
	}
	if c.SimilarUsers <= 0 {
		return fmt.Errorf("similar_users must be positive")
	}
	if c.CrawlConcurrency <= 0 {
		return fmt.Errorf("crawl_concurrency must be positive")
	}
	if c.CrawlInterval < 0 || c.DemoTimeout < 0 || c.SolvedACTimeout < 0 {
		return fmt.Errorf("durations must be non-negative")
	}
	return nil
}
