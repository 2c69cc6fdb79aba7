// Package main provides a CLI command for suggesting question templates
// for a processed material.
// Usage: studyforge-material-templates --material UUID [--save] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"studyforge/internal/config"
	"studyforge/internal/domain/entity"
	"studyforge/internal/infra/adapter/persistence/postgres"
	"studyforge/internal/infra/completion"
	"studyforge/internal/infra/db"
	"studyforge/internal/usecase/generation"

	"github.com/google/uuid"
)

// TemplatesOutput represents the JSON output format for template suggestion.
type TemplatesOutput struct {
	MaterialID string                   `json:"material_id"`
	Templates  []entity.ContentTemplate `json:"templates"`
	Saved      bool                     `json:"saved"`
}

func main() {
	var (
		materialID   string
		configPath   string
		save         bool
		outputFormat string
	)

	flag.StringVar(&materialID, "material", "", "Material UUID (required)")
	flag.StringVar(&configPath, "config", os.Getenv("GENERATION_CONFIG"), "Path to generation config YAML")
	flag.BoolVar(&save, "save", false, "Persist the templates into the material metadata")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	id, err := uuid.Parse(materialID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid or missing --material UUID\n")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: studyforge-material-templates --material UUID [--save] [--output json]")
		os.Exit(1)
	}

	logger := initLogger()

	generationConfig, err := config.LoadGenerationConfig(configPath)
	if err != nil {
		logger.Error("failed to load generation configuration", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to load generation configuration: %v\n", err)
		os.Exit(1)
	}

	client, err := completion.NewFromEnv(logger)
	if err != nil {
		logger.Error("failed to create completion client", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to create completion client: %v\n", err)
		os.Exit(1)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	repo := postgres.NewMaterialRepo(database)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mat, err := repo.Get(ctx, id)
	if err != nil {
		logger.Error("failed to load material", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to load material: %v\n", err)
		os.Exit(1)
	}
	if mat == nil {
		fmt.Fprintf(os.Stderr, "Error: Material %s not found\n", id)
		os.Exit(1)
	}
	if mat.Status != entity.StatusCompleted {
		fmt.Fprintf(os.Stderr, "Error: Material %s is %s; templates need extracted content\n", id, mat.Status)
		os.Exit(1)
	}

	svc := generation.NewService(client, generationConfig, logger)

	logger.Info("Suggesting question templates",
		slog.String("material_id", id.String()),
		slog.Int("objective_count", len(mat.Metadata.Objectives)))

	templates := svc.SuggestQuestionTemplates(ctx, mat.Content, mat.Metadata.Objectives, mat.FocusArea, mat.Metadata.SourceLanguage)

	if save {
		metadata := mat.Metadata
		metadata.Templates = templates
		if err := repo.UpdateMetadata(ctx, id, metadata); err != nil {
			logger.Error("failed to save templates", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Failed to save templates: %v\n", err)
			os.Exit(1)
		}
	}

	if outputFormat == "json" {
		outputJSON(id, templates, save)
	} else {
		outputText(templates)
	}
}

// outputText prints templates in human-readable format.
func outputText(templates []entity.ContentTemplate) {
	if len(templates) == 0 {
		fmt.Println("No templates could be suggested.")
		return
	}
	fmt.Printf("Question templates (%d):\n", len(templates))
	for i, tmpl := range templates {
		fmt.Printf("%d. %s\n", i+1, tmpl.Pattern)
		if tmpl.Grade != "" || tmpl.Subject != "" {
			fmt.Printf("   Grade: %s  Subject: %s\n", tmpl.Grade, tmpl.Subject)
		}
		if len(tmpl.Constraints) > 0 {
			fmt.Printf("   Constraints: %s\n", strings.Join(tmpl.Constraints, "; "))
		}
	}
}

// outputJSON prints templates in JSON format.
func outputJSON(id uuid.UUID, templates []entity.ContentTemplate, saved bool) {
	output := TemplatesOutput{
		MaterialID: id.String(),
		Templates:  templates,
		Saved:      saved,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
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
