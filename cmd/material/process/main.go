// Package main provides a CLI command for ingesting a teaching material.
// Usage: studyforge-material-process --project UUID [--file PATH | --text TEXT | --url URL] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studyforge/internal/domain/entity"
	"studyforge/internal/infra/adapter/persistence/postgres"
	"studyforge/internal/infra/db"
	"studyforge/internal/infra/extractor"
	"studyforge/internal/infra/storage"
	"studyforge/internal/infra/upload"
	"studyforge/internal/usecase/material"

	"github.com/google/uuid"
)

// MaterialOutput represents the JSON output format for a processed material.
type MaterialOutput struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	WordCount   int        `json:"word_count"`
	FileType    *string    `json:"file_type,omitempty"`
	FileSize    *int64     `json:"file_size,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func main() {
	var (
		projectID    string
		filePath     string
		inlineText   string
		sourceURL    string
		title        string
		focusArea    string
		language     string
		outputFormat string
	)

	flag.StringVar(&projectID, "project", "", "Project UUID the material belongs to (required)")
	flag.StringVar(&filePath, "file", "", "Path to a material file (txt, pdf, doc, docx, md)")
	flag.StringVar(&inlineText, "text", "", "Inline text content")
	flag.StringVar(&sourceURL, "url", "", "URL to fetch the material from")
	flag.StringVar(&title, "title", "", "Material title")
	flag.StringVar(&focusArea, "focus", "", "Focus area for downstream generation")
	flag.StringVar(&language, "lang", "", "Source language of the material")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	pid, err := uuid.Parse(projectID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid or missing --project UUID\n")
		printUsage()
		os.Exit(1)
	}

	sourceCount := 0
	for _, v := range []string{filePath, inlineText, sourceURL} {
		if v != "" {
			sourceCount++
		}
	}
	if sourceCount != 1 {
		fmt.Fprintf(os.Stderr, "Error: Exactly one of --file, --text or --url is required\n")
		printUsage()
		os.Exit(1)
	}

	logger := initLogger()

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	storageConfig := storage.LoadConfig()
	if err := storageConfig.Validate(); err != nil {
		logger.Error("invalid storage configuration", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Invalid storage configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewLocal(storageConfig, logger)
	if err != nil {
		logger.Error("failed to create storage", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to create storage: %v\n", err)
		os.Exit(1)
	}
	if err := store.Initialize(); err != nil {
		logger.Error("failed to initialize storage", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	fetcher := extractor.NewFetcher(extractor.LoadFetchConfig(), logger)
	extractorService := extractor.NewService(fetcher, logger)
	repo := postgres.NewMaterialRepo(database)
	svc := material.NewService(repo, store, extractorService, logger)

	source := entity.MaterialSource{
		Title:     title,
		FocusArea: focusArea,
		Language:  language,
	}

	switch {
	case filePath != "":
		staged, tag, err := stageFile(store, logger, filePath)
		if err != nil {
			logger.Error("failed to stage file", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Failed to stage file: %v\n", err)
			os.Exit(1)
		}
		source.Type = tag
		source.Content = staged
		if source.Title == "" {
			source.Title = filepath.Base(filePath)
		}
	case sourceURL != "":
		source.Type = "url"
		source.Content = sourceURL
		if source.Title == "" {
			source.Title = sourceURL
		}
	default:
		source.Type = "txt"
		source.Content = inlineText
		if source.Title == "" {
			source.Title = "Pasted text"
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("Processing material",
		slog.String("project_id", pid.String()),
		slog.String("source_type", source.Type))

	processed, err := svc.ProcessMaterial(ctx, source, pid)
	if err != nil {
		logger.Error("material processing failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Material processing failed: %v\n", err)
		os.Exit(1)
	}

	if outputFormat == "json" {
		outputJSON(processed)
	} else {
		outputText(processed)
	}
}

// stageFile copies a local file into the staging area and validates it by
// extension and sniffed content type before it enters the pipeline.
func stageFile(store *storage.Local, logger *slog.Logger, path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	staged, err := store.StageUpload(name, f)
	if err != nil {
		return "", "", fmt.Errorf("stage upload: %w", err)
	}

	validator := upload.NewValidator(upload.DefaultConfig(), logger)
	if _, err := validator.ValidateUploadedFile(staged, name, "cli"); err != nil {
		return "", "", err
	}

	tag := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return staged, tag, nil
}

// outputText prints the processed material in human-readable format.
func outputText(m *entity.Material) {
	fmt.Printf("Material %s (%s)\n", m.ID, m.Status)
	fmt.Printf("Title: %s\n", m.Title)
	fmt.Printf("Words: %d\n", m.Metadata.WordCount)
	if m.FileType != nil {
		fmt.Printf("File type: %s\n", *m.FileType)
	}
	if m.Metadata.ProcessedAt != nil {
		fmt.Printf("Processed at: %s\n", m.Metadata.ProcessedAt.Format(time.RFC3339))
	}
}

// outputJSON prints the processed material in JSON format.
func outputJSON(m *entity.Material) {
	output := MaterialOutput{
		ID:          m.ID.String(),
		ProjectID:   m.ProjectID.String(),
		Title:       m.Title,
		Status:      string(m.Status),
		WordCount:   m.Metadata.WordCount,
		FileType:    m.FileType,
		FileSize:    m.FileSize,
		ProcessedAt: m.Metadata.ProcessedAt,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage: studyforge-material-process --project UUID [--file PATH | --text TEXT | --url URL] [--output json]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  studyforge-material-process --project 3f1c... --file lecture.pdf")
	fmt.Fprintln(os.Stderr, "  studyforge-material-process --project 3f1c... --text 'Photosynthesis converts light...' --title Photosynthesis")
	fmt.Fprintln(os.Stderr, "  studyforge-material-process --project 3f1c... --url https://example.com/notes --output json")
}

// initLogger initializes and returns a structured logger.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
