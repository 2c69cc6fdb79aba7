// Package material orchestrates the ingestion lifecycle of a material: row
// creation, file promotion, content extraction and status transitions.
package material

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyforge/internal/domain/entity"
	"studyforge/internal/infra/extractor"
	"studyforge/internal/observability/metrics"
	"studyforge/internal/repository"
	"studyforge/internal/utils/text"
)

// BlobStore is the slice of the blob store the orchestrator needs.
// The production implementation is storage.Local.
type BlobStore interface {
	SaveMaterialFile(tempPath string, projectID, materialID uuid.UUID) (string, error)
	ValidateFileSize(bytes int64) bool
	ValidateFileType(filename string) bool
	MaxFileSize() int64
	RemoveMaterialStorage(projectID, materialID uuid.UUID) error
}

// Extractor converts a material source into plain text.
type Extractor interface {
	Extract(ctx context.Context, source entity.MaterialSource) (string, error)
}

// Service drives materials through pending → processing → {completed, error}.
type Service struct {
	repo      repository.MaterialRepository
	store     BlobStore
	extractor Extractor
	logger    *slog.Logger
}

// NewService creates a material Service with the provided dependencies.
func NewService(repo repository.MaterialRepository, store BlobStore, ext Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		store:     store,
		extractor: ext,
		logger:    logger,
	}
}

// ProcessMaterial ingests one source into a new material row and returns the
// completed record.
//
// Every invocation creates a new row; retries are the caller's responsibility
// and are not deduplicated here. Any failure after the row exists marks it
// error (best-effort) and returns the original failure.
func (s *Service) ProcessMaterial(ctx context.Context, source entity.MaterialSource, projectID uuid.UUID) (*entity.Material, error) {
	if err := entity.ValidateMaterialSource(source); err != nil {
		return nil, err
	}

	start := time.Now()

	material := &entity.Material{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     source.Title,
		FocusArea: source.FocusArea,
		Metadata:  entity.MaterialMetadata{SourceLanguage: source.Language},
		Status:    entity.StatusPending,
		CreatedAt: time.Now(),
	}

	// Row creation failure leaves nothing to mark; propagate directly.
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}

	s.logger.Info("material processing started",
		slog.String("material_id", material.ID.String()),
		slog.String("project_id", projectID.String()),
		slog.String("type", source.Type))

	if err := s.repo.UpdateStatus(ctx, material.ID, entity.StatusProcessing); err != nil {
		s.markError(ctx, material.ID, err)
		return nil, fmt.Errorf("transition to processing: %w", err)
	}

	update, err := s.ingest(ctx, source, material)
	if err != nil {
		var extractionErr *entity.ExtractionError
		if errors.As(err, &extractionErr) {
			metrics.RecordExtractionError(extractionErr.Format)
		}
		metrics.RecordMaterialProcessed(false)
		s.markError(ctx, material.ID, err)
		return nil, err
	}

	if err := s.repo.UpdateContent(ctx, material.ID, *update, entity.StatusCompleted); err != nil {
		metrics.RecordMaterialProcessed(false)
		s.markError(ctx, material.ID, err)
		return nil, fmt.Errorf("persist extracted content: %w", err)
	}

	metrics.RecordMaterialProcessed(true)
	metrics.RecordProcessingDuration(time.Since(start))
	metrics.RecordExtractedContent(len(update.Content))

	completed, err := s.repo.Get(ctx, material.ID)
	if err != nil {
		return nil, fmt.Errorf("reload material %s: %w", material.ID, err)
	}
	if completed == nil {
		return nil, fmt.Errorf("reload material %s: %w", material.ID, entity.ErrNotFound)
	}

	s.logger.Info("material processing completed",
		slog.String("material_id", material.ID.String()),
		slog.Int("content_length", len(completed.Content)))

	return completed, nil
}

// ingest promotes a file-based source into permanent storage, extracts its
// text and assembles the content update. File fields stay nil for inline and
// url sources.
func (s *Service) ingest(ctx context.Context, source entity.MaterialSource, material *entity.Material) (*repository.ContentUpdate, error) {
	update := &repository.ContentUpdate{
		Metadata: material.Metadata,
	}

	if path, ok := stagedFilePath(source); ok {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &entity.ExtractionError{Format: extractor.NormalizeType(source.Type), Err: err}
		}

		if !s.store.ValidateFileSize(info.Size()) {
			return nil, &entity.ValidationError{
				Field:   "file_size",
				Message: fmt.Sprintf("file size %d exceeds limit %d", info.Size(), s.store.MaxFileSize()),
			}
		}
		if !s.store.ValidateFileType(path) {
			return nil, &entity.ValidationError{
				Field:   "file_type",
				Message: fmt.Sprintf("file type of %q is not allowed", path),
			}
		}

		permanent, err := s.store.SaveMaterialFile(path, material.ProjectID, material.ID)
		if err != nil {
			return nil, err
		}

		tag := extractor.NormalizeType(source.Type)
		size := info.Size()
		update.FilePath = &permanent
		update.FileType = &tag
		update.FileSize = &size
		source.Content = permanent
	}

	content, err := s.extractor.Extract(ctx, source)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update.Content = content
	update.Metadata.WordCount = text.CountWords(content)
	update.Metadata.ProcessedAt = &now

	return update, nil
}

// Get retrieves a material by id; a missing row is entity.ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	material, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get material %s: %w", id, err)
	}
	if material == nil {
		return nil, fmt.Errorf("get material %s: %w", id, entity.ErrNotFound)
	}
	return material, nil
}

// ListByProject retrieves all materials owned by a project, newest first.
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entity.Material, error) {
	materials, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list materials for project %s: %w", projectID, err)
	}
	return materials, nil
}

// Delete removes a material row and its on-disk directory.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	material, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete material %s: %w", id, err)
	}

	if err := s.store.RemoveMaterialStorage(material.ProjectID, id); err != nil {
		return fmt.Errorf("delete material %s storage: %w", id, err)
	}

	s.logger.Info("material deleted",
		slog.String("material_id", id.String()),
		slog.String("project_id", material.ProjectID.String()))
	return nil
}

// UpdateMetadata replaces a material's metadata document. Callers use this to
// write back generated objectives and templates.
func (s *Service) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entity.MaterialMetadata) error {
	if err := s.repo.UpdateMetadata(ctx, id, metadata); err != nil {
		return fmt.Errorf("update material %s metadata: %w", id, err)
	}
	return nil
}

// markError transitions a failed material to error status. Best-effort: its
// own failure is logged but never replaces the original error.
func (s *Service) markError(ctx context.Context, id uuid.UUID, cause error) {
	if err := s.repo.UpdateStatus(ctx, id, entity.StatusError); err != nil {
		s.logger.Error("failed to mark material as error",
			slog.String("material_id", id.String()),
			slog.Any("original_error", cause),
			slog.Any("update_error", err))
		return
	}
	s.logger.Warn("material marked as error",
		slog.String("material_id", id.String()),
		slog.Any("error", cause))
}

// stagedFilePath reports whether the source content names a staged file on
// disk. url sources are never file-based; inline text is never an absolute
// path to an existing regular file.
func stagedFilePath(source entity.MaterialSource) (string, bool) {
	if extractor.NormalizeType(source.Type) == "url" {
		return "", false
	}
	if !filepath.IsAbs(source.Content) || strings.ContainsRune(source.Content, '\n') {
		return "", false
	}
	info, err := os.Stat(source.Content)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return source.Content, true
}
