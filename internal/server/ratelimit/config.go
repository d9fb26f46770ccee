package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig reads RATE_LIMIT_* environment variables. Unset or malformed
// values keep their defaults.
func LoadConfig() *Config {
	if !envValue("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envValue("RATE_LIMIT_DEFAULT_LIMIT", 600, strconv.Atoi),
		DefaultWindow:   envValue("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envValue("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		IdleTimeout:     envValue("RATE_LIMIT_IDLE_TIMEOUT", time.Hour, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: photo fitting and rendering (strictest)
		{Path: "/qr", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/vcard", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		// Tier 2: card store writes
		{Path: "/cards", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/cards/", Method: "DELETE", Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 3: card downloads; everything else uses the default limit
		{Path: "/cards/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 50},
	}
}

// envValue parses the named variable, falling back to def when it is unset
// or does not parse.
func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList turns "1.2.3.4, 5.6.7.8" into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
		result[ip] = true
	}
	return result
}
