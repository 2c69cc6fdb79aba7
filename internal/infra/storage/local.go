// Package storage provides the local blob store for material files.
// It owns a root directory with two subtrees: temp/ for freshly uploaded,
// not-yet-validated files and materials/{projectID}/{materialID}/ for accepted
// files promoted out of temp.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"studyforge/internal/domain/entity"
)

// Local is a filesystem-backed blob store.
// All methods are safe for concurrent use as long as distinct material ids are
// involved; concurrent writes for the same material id are last-writer-wins.
type Local struct {
	config Config
	logger *slog.Logger
}

// NewLocal creates a blob store over the given configuration.
func NewLocal(config Config, logger *slog.Logger) (*Local, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{config: config, logger: logger}, nil
}

// TempDir returns the staging directory for not-yet-validated uploads.
func (s *Local) TempDir() string {
	return filepath.Join(s.config.Root, "temp")
}

// MaterialDir returns the permanent directory for one material's file.
func (s *Local) MaterialDir(projectID, materialID uuid.UUID) string {
	return filepath.Join(s.config.Root, "materials", projectID.String(), materialID.String())
}

// Initialize idempotently creates the temp/ and materials/ subtrees.
func (s *Local) Initialize() error {
	for _, dir := range []string{s.TempDir(), filepath.Join(s.config.Root, "materials")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}
	return nil
}

// StageUpload writes an incoming upload to a unique file under temp/ and
// returns its absolute path. The extension of originalName is preserved so
// later validation can re-check it.
func (s *Local) StageUpload(originalName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.TempDir(), 0o755); err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.TempDir(), uuid.NewString()+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// CreateMaterialStorage idempotently creates and returns the per-material
// directory.
func (s *Local) CreateMaterialStorage(projectID, materialID uuid.UUID) (string, error) {
	dir := s.MaterialDir(projectID, materialID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create material directory: %w", err)
	}
	return dir, nil
}

// SaveMaterialFile promotes a staged temp file into the per-material directory
// under the canonical name "material<ext>" and deletes the temp file.
//
// The extension is re-validated against the allow-list here even though the
// upload validator normally runs first; this operation must stay independently
// safe when called on its own. An existing destination is overwritten: each
// material id is unique, so a collision only occurs when the same material is
// deliberately re-saved.
func (s *Local) SaveMaterialFile(tempPath string, projectID, materialID uuid.UUID) (string, error) {
	ext := strings.ToLower(filepath.Ext(tempPath))
	if !s.config.allowsExtension(ext) {
		return "", &entity.ValidationError{
			Field:   "extension",
			Message: fmt.Sprintf("file extension %q is not allowed", ext),
		}
	}

	dir, err := s.CreateMaterialStorage(projectID, materialID)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, "material"+ext)
	if err := copyFile(tempPath, dst); err != nil {
		return "", fmt.Errorf("promote staged file: %w", err)
	}

	if err := os.Remove(tempPath); err != nil {
		// The copy succeeded; a leftover temp file is a cleanup concern,
		// not a save failure.
		s.logger.Warn("failed to remove staged file after promotion",
			slog.String("temp_path", tempPath),
			slog.Any("error", err))
	}

	return dst, nil
}

// ValidateFileSize reports whether a file of the given size is accepted.
func (s *Local) ValidateFileSize(bytes int64) bool {
	return bytes > 0 && bytes <= s.config.MaxFileSize
}

// ValidateFileType reports whether the filename's extension is allow-listed.
func (s *Local) ValidateFileType(filename string) bool {
	return s.config.allowsExtension(filepath.Ext(filename))
}

// MaxFileSize returns the configured upload size limit in bytes.
func (s *Local) MaxFileSize() int64 {
	return s.config.MaxFileSize
}

// RemoveMaterialStorage deletes a material's on-disk directory.
// Used when a material row is deleted; missing directories are not an error.
func (s *Local) RemoveMaterialStorage(projectID, materialID uuid.UUID) error {
	if err := os.RemoveAll(s.MaterialDir(projectID, materialID)); err != nil {
		return fmt.Errorf("remove material directory: %w", err)
	}
	return nil
}

// CleanupTemp clears and recreates the temp/ subtree.
// This is best-effort maintenance: failures are logged, never returned, so a
// stuck temp file can never break the cleanup schedule.
func (s *Local) CleanupTemp() {
	if err := os.RemoveAll(s.TempDir()); err != nil {
		s.logger.Warn("failed to clear temp directory",
			slog.String("dir", s.TempDir()),
			slog.Any("error", err))
		return
	}
	if err := os.MkdirAll(s.TempDir(), 0o755); err != nil {
		s.logger.Warn("failed to recreate temp directory",
			slog.String("dir", s.TempDir()),
			slog.Any("error", err))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
