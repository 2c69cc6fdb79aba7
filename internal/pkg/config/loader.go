// Package config provides fail-open environment loading for service
// configuration. Loaders never return errors: an unset variable yields the
// default silently, while a malformed or out-of-range value yields the
// default plus a warning so the caller can log it and count the fallback.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult carries the outcome of a single environment lookup.
// Value holds the loaded (or default) value, Warnings one message per
// fallback applied, and FallbackApplied reports whether the default was
// substituted for an invalid value.
//
//	result := LoadEnvDuration("MAINTENANCE_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)
//	if result.FallbackApplied {
//		logger.Warn("config fallback", "warning", result.Warnings[0])
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func fallbackResult(envKey, rawValue string, reason error, defaultValue interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value: defaultValue,
		Warnings: []string{fmt.Sprintf(
			"%s=%q rejected (%v), using default '%v'",
			envKey, rawValue, reason, defaultValue)},
		FallbackApplied: true,
	}
}

func loadedResult(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

// LoadEnvString reads a string variable, returning defaultValue when the
// variable is unset or empty. No validation is applied; use
// LoadEnvWithFallback when the value must be checked.
//
//	schedule := LoadEnvString("CLEANUP_CRON", "0 3 * * *")
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback reads a string variable and runs it through validator.
// An unset variable yields the default with no warning; a value the
// validator rejects yields the default with a warning. A nil validator
// accepts any non-empty value.
//
//	result := LoadEnvWithFallback("MATERIALS_REFRESH_CRON", "*/15 * * * *", ValidateCronSchedule)
//	schedule := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return loadedResult(defaultValue)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(envKey, value, err, defaultValue)
		}
	}
	return loadedResult(value)
}

// LoadEnvDuration reads a Go duration string ("30s", "5m", "1h30m") from the
// environment. Unparseable values and values the validator rejects both fall
// back to the default with a warning.
//
//	result := LoadEnvDuration("MAINTENANCE_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)
//	timeout := result.Value.(time.Duration)
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loadedResult(defaultValue)
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}
	return loadedResult(parsed)
}

// LoadEnvInt reads a base-10 integer from the environment. Unparseable
// values and values the validator rejects both fall back to the default
// with a warning.
//
//	result := LoadEnvInt("WORKER_HEALTH_PORT", 9091, func(v int) error {
//		return ValidateIntRange(v, 1024, 65535)
//	})
//	port := result.Value.(int)
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loadedResult(defaultValue)
	}

	parsed, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, fmt.Errorf("not a valid integer"), defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}
	return loadedResult(parsed)
}

// LoadEnvBool reads a boolean from the environment, accepting the forms
// strconv.ParseBool does ("1", "t", "true", "0", "f", "false" and their
// uppercase variants). Anything else falls back to the default with a
// warning.
//
//	result := LoadEnvBool("EXTRACT_VERIFY_TLS", true)
//	verify := result.Value.(bool)
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loadedResult(defaultValue)
	}

	parsed, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, fmt.Errorf("expected 'true' or 'false'"), defaultValue)
	}
	return loadedResult(parsed)
}
