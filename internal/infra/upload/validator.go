// Package upload provides content-based validation of uploaded material files.
// Validation combines the client-declared filename extension with magic-byte
// sniffing of the staged file; on any rejection the staged file is deleted
// before the error is returned, so callers must never rely on the file still
// existing after a failed validation.
package upload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"studyforge/internal/domain/entity"
)

// Resolved MIME types for the two container formats byte-sniffing cannot
// disambiguate on its own.
const (
	mimeWordOOXML  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeWordLegacy = "application/msword"
	mimeMarkdown   = "text/markdown"
)

// Config holds the validator's allow-lists. Both lists are caller policy, not
// hard-coded: a deployment that accepts only PDFs passes a one-element list.
type Config struct {
	// AllowedExtensions is the lower-cased declared-extension allow-list (no dots).
	AllowedExtensions []string

	// AllowedMIMETypes is the companion allow-list for resolved MIME types.
	AllowedMIMETypes []string
}

// DefaultConfig returns the default allow-lists for teaching material uploads.
func DefaultConfig() Config {
	return Config{
		AllowedExtensions: []string{"txt", "pdf", "doc", "docx", "md"},
		AllowedMIMETypes: []string{
			"text/plain",
			"application/pdf",
			mimeWordLegacy,
			mimeWordOOXML,
			mimeMarkdown,
		},
	}
}

// Validator validates staged uploads before they enter the pipeline.
type Validator struct {
	config Config
	logger *slog.Logger
}

// NewValidator creates a validator with the given allow-lists.
func NewValidator(config Config, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{config: config, logger: logger}
}

// ValidateUploadedFile inspects the staged file at stagedPath against the
// client-declared originalName and returns the file's resolved MIME type.
//
// Checks run in order, fail-fast, and every rejection deletes the staged file
// before returning:
//  1. the declared filename's extension must be allow-listed;
//  2. the file content is sniffed (magic bytes); a .md file that sniffs as
//     plain text or an unrecognized type resolves to text/markdown, since
//     sniffing cannot distinguish Markdown from plain text;
//  3. a generic ZIP container with a .docx extension resolves to the Word
//     OOXML MIME type, and a generic compound-binary container with a .doc
//     extension resolves to the legacy Word MIME type; both container
//     formats are ambiguous to pure byte inspection;
//  4. the resolved MIME type must be allow-listed.
//
// actorID is recorded in the acceptance audit log and may be empty.
func (v *Validator) ValidateUploadedFile(stagedPath, originalName, actorID string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if !contains(v.config.AllowedExtensions, ext) {
		return "", v.reject(stagedPath, originalName, &entity.ValidationError{
			Field:   "extension",
			Message: fmt.Sprintf("file extension %q is not allowed", ext),
		})
	}

	detected, err := mimetype.DetectFile(stagedPath)
	if err != nil {
		return "", v.reject(stagedPath, originalName, fmt.Errorf("sniff file content: %w", err))
	}

	resolved := v.resolveMIME(detected, ext)

	if !contains(v.config.AllowedMIMETypes, resolved) {
		return "", v.reject(stagedPath, originalName, &entity.ValidationError{
			Field:   "content_type",
			Message: fmt.Sprintf("detected content type %q is not allowed", resolved),
		})
	}

	v.logger.Info("upload accepted",
		slog.String("actor_id", actorID),
		slog.String("filename", originalName),
		slog.String("content_type", resolved))

	return resolved, nil
}

// resolveMIME applies the domain special cases on top of raw sniffing output.
func (v *Validator) resolveMIME(detected *mimetype.MIME, ext string) string {
	switch {
	case detected.Is("application/zip") && ext == "docx":
		return mimeWordOOXML
	case detected.Is("application/x-ole-storage") && ext == "doc":
		return mimeWordLegacy
	case ext == "md" && (detected.Is("text/plain") || detected.Is("application/octet-stream")):
		return mimeMarkdown
	}
	// Strip any parameters ("; charset=utf-8") so allow-list matching stays
	// on the bare media type.
	mime := detected.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// reject deletes the staged file and logs the rejection, then hands back the
// original error unchanged.
func (v *Validator) reject(stagedPath, originalName string, cause error) error {
	if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		v.logger.Warn("failed to delete rejected staged file",
			slog.String("staged_path", stagedPath),
			slog.Any("error", err))
	}
	v.logger.Warn("upload rejected",
		slog.String("filename", originalName),
		slog.Any("error", cause))
	return cause
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
