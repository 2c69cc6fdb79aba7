package storage

import (
	"fmt"
	"strings"

	pkgconfig "studyforge/internal/pkg/config"
)

// DefaultMaxFileSize is the default upload size limit (10 MiB).
const DefaultMaxFileSize = 10 << 20

// defaultAllowedExtensions is the default extension allow-list, without dots.
var defaultAllowedExtensions = []string{"pdf", "docx", "doc", "txt", "md"}

// Config holds blob store configuration.
type Config struct {
	// Root is the directory owning the temp/ and materials/ subtrees.
	Root string

	// MaxFileSize is the maximum accepted upload size in bytes.
	MaxFileSize int64

	// AllowedExtensions is the lower-cased extension allow-list (no dots).
	AllowedExtensions []string
}

// DefaultConfig returns the default blob store configuration rooted at dir.
func DefaultConfig(root string) Config {
	return Config{
		Root:              root,
		MaxFileSize:       DefaultMaxFileSize,
		AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
	}
}

// LoadConfig loads blob store configuration from environment variables.
//
// Environment variables:
//   - MATERIAL_STORAGE_ROOT: storage root directory (default: ./data)
//   - MATERIAL_MAX_FILE_SIZE: size limit in bytes (default: 10 MiB)
//   - MATERIAL_ALLOWED_TYPES: comma-separated extension allow-list
func LoadConfig() Config {
	cfg := DefaultConfig(pkgconfig.LoadEnvString("MATERIAL_STORAGE_ROOT", "./data"))

	sizeResult := pkgconfig.LoadEnvInt64("MATERIAL_MAX_FILE_SIZE", DefaultMaxFileSize, pkgconfig.ValidatePositiveInt64)
	cfg.MaxFileSize = sizeResult.Value.(int64)

	if raw := pkgconfig.LoadEnvString("MATERIAL_ALLOWED_TYPES", ""); raw != "" {
		cfg.AllowedExtensions = splitExtensionList(raw)
	}

	return cfg
}

// Validate checks the configuration for obvious misconfiguration.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("storage root cannot be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("extension allow-list cannot be empty")
	}
	return nil
}

// allowsExtension reports whether ext (without dot, any case) is allow-listed.
func (c Config) allowsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func splitExtensionList(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, part := range parts {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
