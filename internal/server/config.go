// Package server provides configuration helpers that define runtime defaults
// and validation for the relay and its WebSocket gateway.
package server

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds the relay configuration: the TCP listen address, the HTTP
// gateway address, pool sizing, the per-read buffer size, and the origins
// allowed to open gateway connections.
type Config struct {
	Port            string
	HTTPPort        string
	InitialPoolSize int
	ReadBufferSize  int
	AllowedOrigins  []string
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port:            ":7000",
		HTTPPort:        ":8080",
		InitialPoolSize: 10,
		ReadBufferSize:  2048,
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":7000"
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = ":8080"
	}

	if cfg.InitialPoolSize <= 0 {
		cfg.InitialPoolSize = 10
	}

	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 2048
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		defaultCfg := defaultConfig()
		sanitizeConfig(defaultCfg)
		return
	}

	sanitized := Config{
		Port:            cfg.Port,
		HTTPPort:        cfg.HTTPPort,
		InitialPoolSize: cfg.InitialPoolSize,
		ReadBufferSize:  cfg.ReadBufferSize,
		AllowedOrigins:  append([]string(nil), cfg.AllowedOrigins...),
	}
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are not set.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	// Load SERVER_PORT
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}

	// Load HTTP_PORT
	if port := os.Getenv("HTTP_PORT"); port != "" {
		cfg.HTTPPort = port
	}

	// Load INITIAL_POOL_SIZE
	if size := os.Getenv("INITIAL_POOL_SIZE"); size != "" {
		cfg.InitialPoolSize = parseIntValue(size, cfg.InitialPoolSize)
	}

	// Load READ_BUFFER_SIZE
	if size := os.Getenv("READ_BUFFER_SIZE"); size != "" {
		cfg.ReadBufferSize = parseIntValue(size, cfg.ReadBufferSize)
	}

	// Load ALLOWED_ORIGINS
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	return &cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}
