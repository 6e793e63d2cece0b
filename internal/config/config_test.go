package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGIN", "DATABASE_URL", "REDIS_ADDR", "AUTH_SECRET",
		"ACCESS_TOKEN_TTL_MINUTES", "REPORT_CACHE_TTL_SECONDS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
	if cfg.AllowedOrigin != "http://127.0.0.1:3000" {
		t.Fatalf("unexpected default origin %q", cfg.AllowedOrigin)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" {
		t.Fatalf("database and redis must default to unset")
	}
	if cfg.AuthSecret != "" {
		t.Fatalf("auth secret must not have a default")
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected token TTL 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.ReportCacheTTLSeconds != 60 {
		t.Fatalf("expected report TTL 60, got %d", cfg.ReportCacheTTLSeconds)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadOverridesAndBadNumbers(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("AUTH_SECRET", "  s3cret-s3cret-s3cret-s3cret-abcd  ")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "abc")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "-5")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Fatalf("expected port override, got %q", cfg.Port)
	}
	if cfg.AuthSecret != "s3cret-s3cret-s3cret-s3cret-abcd" {
		t.Fatalf("auth secret must be trimmed, got %q", cfg.AuthSecret)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("bad token TTL must fall back to 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.ReportCacheTTLSeconds != 60 {
		t.Fatalf("negative report TTL must fall back to 60, got %d", cfg.ReportCacheTTLSeconds)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.RedisDB)
	}
}
