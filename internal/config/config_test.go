package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "psrec.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.RecommendLimit != 10 {
		t.Errorf("expected default recommend_limit 10, got %d", cfg.RecommendLimit)
	}
	if cfg.CrawlInterval != 500*time.Millisecond {
		t.Errorf("expected default crawl_interval 500ms, got %s", cfg.CrawlInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CookieName != "token" {
		t.Errorf("cookie_name: got %q", cfg.CookieName)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development jwt secret")
	}
}

func TestLoadLayering(t *testing.T) {
	path := writeFile(t, "addr: \":9000\"\nrecommend_limit: 20\ndemo_timeout: 2s\ncookie_name: sess\n")
	t.Setenv("PSREC_RECOMMEND_LIMIT", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr: got %q, want :9000", cfg.Addr)
	}
	if cfg.RecommendLimit != 7 {
		t.Errorf("recommend_limit: env should win, got %d", cfg.RecommendLimit)
	}
	if cfg.DemoTimeout != 2*time.Second {
		t.Errorf("demo_timeout: got %s", cfg.DemoTimeout)
	}
	if cfg.CookieName != "sess" {
		t.Errorf("cookie_name: got %q", cfg.CookieName)
	}
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://legacy")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("PORT", "3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://legacy" || !cfg.UsesDatabase() {
		t.Errorf("database_url: got %q", cfg.DatabaseURL)
	}
	if cfg.JWTSecret != "legacy-secret" {
		t.Errorf("jwt_secret: got %q", cfg.JWTSecret)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("addr: got %q", cfg.Addr)
	}
}

func TestLoadPrefixedBeatsLegacy(t *testing.T) {
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("PSREC_JWT_SECRET", "prefixed")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "prefixed" {
		t.Errorf("jwt_secret: got %q, want prefixed", cfg.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWTSecret = "x"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.RecommendLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for recommend_limit 0")
	}
}

func TestValidateProductionNeedsSecret(t *testing.T) {
	t.Setenv("PSREC_ENV", "production")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production env")
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing jwt_secret to fail in production")
	}
}
