// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Material and
// ContentTemplate, along with their validation rules and domain-specific errors.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaterialStatus represents the processing state of a material.
// The lifecycle is pending → processing → {completed, error}; both
// completed and error are terminal.
type MaterialStatus string

const (
	StatusPending    MaterialStatus = "pending"
	StatusProcessing MaterialStatus = "processing"
	StatusCompleted  MaterialStatus = "completed"
	StatusError      MaterialStatus = "error"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s MaterialStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Material represents a teacher-uploaded or pasted source document together with
// its extracted text and generated metadata.
//
// Invariants:
//   - Content is empty only while Status is pending.
//   - FilePath, FileType and FileSize are set only when the source was file-based;
//     inline-text materials keep all three nil.
type Material struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Title     string
	Content   string
	FocusArea string
	Metadata  MaterialMetadata
	FilePath  *string
	FileType  *string
	FileSize  *int64
	Status    MaterialStatus
	CreatedAt time.Time
}

// MaterialMetadata is the structured metadata attached to a material.
// It is persisted as a single JSON column; each field has exactly one writer
// (the pipeline for WordCount/ProcessedAt, the generation service callers for
// Objectives and Templates) so the shape cannot drift between producers.
type MaterialMetadata struct {
	Objectives     []string          `json:"objectives,omitempty"`
	Templates      []ContentTemplate `json:"templates,omitempty"`
	WordCount      int               `json:"word_count,omitempty"`
	SourceLanguage string            `json:"source_language,omitempty"`
	ProcessedAt    *time.Time        `json:"processed_at,omitempty"`
}

// MaterialSource is the transient input consumed once to produce a Material.
// Type carries a file extension ("pdf", "docx", ...) or the literal "url";
// Content is either raw inline text or an absolute path to a staged temp file.
type MaterialSource struct {
	Type      string
	Content   string
	Title     string
	FocusArea string
	Language  string
}
