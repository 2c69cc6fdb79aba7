package config

import (
	"fmt"
	"os"
	"strconv"
)

// LoadEnvInt64 reads an int64 from the environment. It mirrors LoadEnvInt
// for values that can exceed the int32 range on 32-bit builds, such as file
// size limits in bytes.
//
//	result := LoadEnvInt64("MATERIAL_MAX_FILE_SIZE", 52428800, ValidatePositiveInt64)
//	maxBytes := result.Value.(int64)
func LoadEnvInt64(envKey string, defaultValue int64, validator func(int64) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loadedResult(defaultValue)
	}

	parsed, err := strconv.ParseInt(valueStr, 10, 64)
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

// ValidatePositiveInt64 rejects values that are zero or negative. Suitable
// as a validator for LoadEnvInt64 when loading size limits.
func ValidatePositiveInt64(value int64) error {
	if value <= 0 {
		return fmt.Errorf("value must be positive, got %d", value)
	}
	return nil
}
