package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadConfig.
const (
	EnvEnabled         = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvExtractLimit    = "RATE_LIMIT_EXTRACT_LIMIT"
	EnvExtractWindow   = "RATE_LIMIT_EXTRACT_WINDOW"
	EnvExtractBurst    = "RATE_LIMIT_EXTRACT_BURST"
	EnvWhitelist       = "RATE_LIMIT_WHITELIST"
	EnvBlacklist       = "RATE_LIMIT_BLACKLIST"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends in "/"
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, Limit when 0
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool(EnvEnabled, true) {
		return &Config{Enabled: false}
	}

	extract := EndpointConfig{
		Limit:  getEnvInt(EnvExtractLimit, 20),
		Window: getEnvDuration(EnvExtractWindow, time.Hour),
		Burst:  getEnvInt(EnvExtractBurst, 3),
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt(EnvDefaultLimit, 600),
		DefaultWindow:   getEnvDuration(EnvDefaultWindow, time.Minute),
		CleanupInterval: getEnvDuration(EnvCleanupInterval, 5*time.Minute),
		Whitelist:       parseIPList(getEnvString(EnvWhitelist, "")),
		Blacklist:       parseIPList(getEnvString(EnvBlacklist, "")),
		EndpointConfigs: ExtractionEndpoints(extract),
	}
}

// ExtractionEndpoints applies limits to every route that triggers a
// completion call. Everything else falls back to the default limit.
func ExtractionEndpoints(limits EndpointConfig) []EndpointConfig {
	paths := []string{"/generate", "/api/extract"}
	configs := make([]EndpointConfig, 0, len(paths))
	for _, p := range paths {
		ec := limits
		ec.Path = p
		ec.Method = http.MethodPost
		configs = append(configs, ec)
	}
	return configs
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
