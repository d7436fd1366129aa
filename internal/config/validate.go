package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the Config contains valid values.
// Returns an error describing the first invalid field found.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: DASHBOARD_PORT must be 1-65535, got %d", c.Port)
	}

	if c.HealthPort < 1 || c.HealthPort > 65535 {
		return fmt.Errorf("config: KGD_HEALTH_PORT must be 1-65535, got %d", c.HealthPort)
	}

	if c.HealthPort == c.Port {
		return fmt.Errorf("config: KGD_HEALTH_PORT and DASHBOARD_PORT must differ, both are %d", c.Port)
	}

	if c.ClientCacheSize < 1 {
		return fmt.Errorf("config: KGD_CLIENT_CACHE_SIZE must be >= 1, got %d", c.ClientCacheSize)
	}

	if c.RequestTimeout < time.Second {
		return fmt.Errorf("config: KGD_REQUEST_TIMEOUT must be >= 1s, got %v", c.RequestTimeout)
	}

	if strings.TrimSpace(c.GPUResource) == "" {
		return fmt.Errorf("config: KGD_GPU_RESOURCE must not be empty")
	}

	if len(c.GPUTypeLabels) == 0 {
		return fmt.Errorf("config: GPU type label list must not be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: KGD_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("config: KGD_LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}

	return nil
}
