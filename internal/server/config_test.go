package server

import (
	"testing"
)

// TestNewConfigDefaults tests that NewConfig returns the documented default
// values for every setting.
func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Port != ":7000" {
		t.Errorf("Expected default port :7000, got %q", cfg.Port)
	}
	if cfg.HTTPPort != ":8080" {
		t.Errorf("Expected default HTTP port :8080, got %q", cfg.HTTPPort)
	}
	if cfg.InitialPoolSize != 10 {
		t.Errorf("Expected default pool size 10, got %d", cfg.InitialPoolSize)
	}
	if cfg.ReadBufferSize != 2048 {
		t.Errorf("Expected default buffer size 2048, got %d", cfg.ReadBufferSize)
	}
}

// TestNewConfigFromEnv tests that environment variables override defaults
// and that malformed values fall back to them.
func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("HTTP_PORT", ":9090")
	t.Setenv("INITIAL_POOL_SIZE", "25")
	t.Setenv("READ_BUFFER_SIZE", "4096")
	t.Setenv("ALLOWED_ORIGINS", "http://example.com, http://other.example.com")

	cfg := NewConfigFromEnv()

	if cfg.Port != ":9000" {
		t.Errorf("Expected port :9000, got %q", cfg.Port)
	}
	if cfg.HTTPPort != ":9090" {
		t.Errorf("Expected HTTP port :9090, got %q", cfg.HTTPPort)
	}
	if cfg.InitialPoolSize != 25 {
		t.Errorf("Expected pool size 25, got %d", cfg.InitialPoolSize)
	}
	if cfg.ReadBufferSize != 4096 {
		t.Errorf("Expected buffer size 4096, got %d", cfg.ReadBufferSize)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://example.com" {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
}

// TestNewConfigFromEnvInvalidNumbers tests that non-numeric or non-positive
// numeric settings keep their defaults.
func TestNewConfigFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("INITIAL_POOL_SIZE", "not-a-number")
	t.Setenv("READ_BUFFER_SIZE", "-5")

	cfg := NewConfigFromEnv()

	if cfg.InitialPoolSize != 10 {
		t.Errorf("Expected default pool size 10, got %d", cfg.InitialPoolSize)
	}
	if cfg.ReadBufferSize != 2048 {
		t.Errorf("Expected default buffer size 2048, got %d", cfg.ReadBufferSize)
	}
}

// TestSetConfigSanitizes tests that SetConfig repairs zero values and that
// passing nil restores defaults.
func TestSetConfigSanitizes(t *testing.T) {
	defer SetConfig(nil)

	SetConfig(&Config{})
	cfg := currentConfig()
	if cfg.Port != ":7000" || cfg.InitialPoolSize != 10 || cfg.ReadBufferSize != 2048 {
		t.Errorf("Sanitized config has unexpected values: %+v", cfg)
	}

	SetConfig(&Config{Port: ":7100", InitialPoolSize: 3})
	cfg = currentConfig()
	if cfg.Port != ":7100" {
		t.Errorf("Expected port :7100, got %q", cfg.Port)
	}
	if cfg.InitialPoolSize != 3 {
		t.Errorf("Expected pool size 3, got %d", cfg.InitialPoolSize)
	}

	SetConfig(nil)
	cfg = currentConfig()
	if cfg.Port != ":7000" {
		t.Errorf("Expected defaults restored, got port %q", cfg.Port)
	}
}

// TestOriginNormalization tests origin canonicalization and wildcard
// handling used by the gateway's upgrade check.
func TestOriginNormalization(t *testing.T) {
	normalized, allowAll := normalizeOrigins([]string{
		" HTTP://Example.COM ",
		"*",
		"not a url",
		"",
	})

	if !allowAll {
		t.Error("Wildcard origin not detected")
	}
	if len(normalized) != 1 || normalized[0] != "http://example.com" {
		t.Errorf("Unexpected normalized origins: %v", normalized)
	}
}
