// Package extractor converts material sources into plain text.
// It dispatches on a normalized type tag to a format-specific strategy:
// inline/file text, PDF, Word documents, raw Markdown and URL fetch.
package extractor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"studyforge/internal/domain/entity"
)

// URLFetcher fetches a URL and returns its raw response body as text.
// The production implementation is *Fetcher in this package.
type URLFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Service is the content extraction dispatcher.
type Service struct {
	fetcher URLFetcher
	logger  *slog.Logger
}

// NewService creates an extraction service. fetcher may be nil when url-type
// sources are not expected; extracting a url source without one fails with an
// ExtractionError.
func NewService(fetcher URLFetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, logger: logger}
}

// NormalizeType lower-cases a type tag and strips one leading dot, so ".PDF",
// "pdf" and "PDF" all dispatch identically.
func NormalizeType(tag string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
}

// Extract returns the plain text for a material source, or a typed error.
// Failures are logged with context and returned unchanged; extraction never
// silently degrades to empty content.
func (s *Service) Extract(ctx context.Context, source entity.MaterialSource) (string, error) {
	tag := NormalizeType(source.Type)

	content, err := s.dispatch(ctx, tag, source.Content)
	if err != nil {
		s.logger.Error("content extraction failed",
			slog.String("type", tag),
			slog.Any("error", err))
		return "", err
	}
	return content, nil
}

func (s *Service) dispatch(ctx context.Context, tag, content string) (string, error) {
	switch tag {
	case "txt", "text":
		return s.extractText(content)
	case "pdf":
		return extractPDF(content)
	case "doc", "docx":
		return extractWord(content, tag)
	case "md", "markdown":
		// Raw Markdown source is the extracted text; no conversion.
		return content, nil
	case "url":
		return s.extractURL(ctx, content)
	default:
		return "", &entity.UnsupportedTypeError{Type: tag}
	}
}

// extractText reads content as a UTF-8 file when it looks like an absolute
// path to a regular file, and treats it as the text itself otherwise.
func (s *Service) extractText(content string) (string, error) {
	if !looksLikeFilePath(content) {
		return content, nil
	}

	data, err := os.ReadFile(content)
	if err != nil {
		return "", &entity.ExtractionError{Format: "txt", Err: err}
	}
	return string(data), nil
}

func (s *Service) extractURL(ctx context.Context, url string) (string, error) {
	if s.fetcher == nil {
		return "", &entity.ExtractionError{Format: "url", Err: errNoFetcher}
	}

	body, err := s.fetcher.FetchText(ctx, url)
	if err != nil {
		return "", &entity.ExtractionError{Format: "url", Err: err}
	}
	return body, nil
}

// looksLikeFilePath reports whether content is an absolute path naming an
// existing regular file. Pasted text never stats successfully, so inline
// content that merely resembles a path still passes through as text.
func looksLikeFilePath(content string) bool {
	if !filepath.IsAbs(content) || strings.ContainsRune(content, '\n') {
		return false
	}
	info, err := os.Stat(content)
	return err == nil && info.Mode().IsRegular()
}
