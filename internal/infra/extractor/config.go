package extractor

import (
	"fmt"
	"time"

	pkgconfig "studyforge/internal/pkg/config"
)

// FetchConfig holds configuration for url-type source fetching.
//
// Security settings:
//   - DenyPrivateIPs: blocks URLs resolving to private/loopback ranges (SSRF)
//   - MaxBodySize: caps response size to prevent memory exhaustion
//   - MaxRedirects: bounds redirect chains
//   - Timeout: bounds a single request
type FetchConfig struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 30s
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes, enforced while
	// reading. Default: 10 MiB
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow; each target
	// is re-validated. Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether targets resolving to private networks
	// are rejected. Should always be true in production. Default: true
	DenyPrivateIPs bool

	// UserAgent identifies outbound requests.
	UserAgent string
}

// DefaultFetchConfig returns production-ready defaults for URL fetching.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:        30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "StudyForgeBot/1.0",
	}
}

// LoadFetchConfig loads URL fetch configuration from environment variables,
// falling back to defaults with a warning on invalid values.
//
// Environment variables:
//   - URL_FETCH_TIMEOUT: per-request timeout (default: 30s)
//   - URL_FETCH_MAX_BODY_SIZE: response size cap in bytes (default: 10 MiB)
//   - URL_FETCH_DENY_PRIVATE_IPS: SSRF guard toggle (default: true)
func LoadFetchConfig() FetchConfig {
	cfg := DefaultFetchConfig()

	timeoutResult := pkgconfig.LoadEnvDuration("URL_FETCH_TIMEOUT", cfg.Timeout, pkgconfig.ValidatePositiveDuration)
	cfg.Timeout = timeoutResult.Value.(time.Duration)

	sizeResult := pkgconfig.LoadEnvInt64("URL_FETCH_MAX_BODY_SIZE", cfg.MaxBodySize, pkgconfig.ValidatePositiveInt64)
	cfg.MaxBodySize = sizeResult.Value.(int64)

	denyResult := pkgconfig.LoadEnvBool("URL_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	cfg.DenyPrivateIPs = denyResult.Value.(bool)

	return cfg
}

// Validate checks the configuration for unsafe values.
func (c FetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize < 1024 {
		return fmt.Errorf("max body size must be at least 1KB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}
