// Package repository defines the persistence boundary of the ingestion core.
// Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"github.com/google/uuid"

	"studyforge/internal/domain/entity"
)

// ContentUpdate carries everything the orchestrator persists after a
// successful extraction: the extracted text, the permanent file fields (nil
// for inline-text sources) and the refreshed metadata. Written in a single
// statement so a reader never observes content without its file info.
type ContentUpdate struct {
	Content  string
	FilePath *string
	FileType *string
	FileSize *int64
	Metadata entity.MaterialMetadata
}

// MaterialRepository is the persistence boundary for materials.
// The backing store is a relational table keyed by id, foreign-keyed to
// projects with ON DELETE CASCADE, holding metadata as serialized JSON.
type MaterialRepository interface {
	// Create inserts a new material row. The caller supplies the id.
	Create(ctx context.Context, material *entity.Material) error
	// Get retrieves a material by id.
	// Returns (nil, nil) if the material is not found.
	Get(ctx context.Context, id uuid.UUID) (*entity.Material, error)
	// ListByProject retrieves all materials owned by a project, newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entity.Material, error)
	// UpdateStatus transitions a material's lifecycle status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.MaterialStatus) error
	// UpdateContent persists extraction output and flips the status in one statement.
	UpdateContent(ctx context.Context, id uuid.UUID, update ContentUpdate, status entity.MaterialStatus) error
	// UpdateMetadata replaces the material's metadata document.
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entity.MaterialMetadata) error
	// Delete removes a material row. Removing the on-disk directory is the
	// caller's responsibility.
	Delete(ctx context.Context, id uuid.UUID) error
}
