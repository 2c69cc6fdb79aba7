// Package main provides a CLI command for extracting learning objectives
// from a processed material.
// Usage: studyforge-material-objectives --material UUID [--save] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"studyforge/internal/config"
	"studyforge/internal/domain/entity"
	"studyforge/internal/infra/adapter/persistence/postgres"
	"studyforge/internal/infra/completion"
	"studyforge/internal/infra/db"
	"studyforge/internal/usecase/generation"

	"github.com/google/uuid"
)

// ObjectivesOutput represents the JSON output format for objective extraction.
type ObjectivesOutput struct {
	MaterialID string   `json:"material_id"`
	Objectives []string `json:"objectives"`
	Saved      bool     `json:"saved"`
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
	flag.BoolVar(&save, "save", false, "Persist the objectives into the material metadata")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	id, err := uuid.Parse(materialID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid or missing --material UUID\n")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: studyforge-material-objectives --material UUID [--save] [--output json]")
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
		fmt.Fprintf(os.Stderr, "Error: Material %s is %s; objectives need extracted content\n", id, mat.Status)
		os.Exit(1)
	}

	svc := generation.NewService(client, generationConfig, logger)

	logger.Info("Extracting learning objectives", slog.String("material_id", id.String()))

	objectives := svc.ExtractLearningObjectives(ctx, mat.Content, mat.FocusArea, mat.Metadata.SourceLanguage)

	if save {
		metadata := mat.Metadata
		metadata.Objectives = objectives
		if err := repo.UpdateMetadata(ctx, id, metadata); err != nil {
			logger.Error("failed to save objectives", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Failed to save objectives: %v\n", err)
			os.Exit(1)
		}
	}

	if outputFormat == "json" {
		outputJSON(id, objectives, save)
	} else {
		outputText(objectives)
	}
}

// outputText prints objectives in human-readable format.
func outputText(objectives []string) {
	if len(objectives) == 0 {
		fmt.Println("No objectives could be extracted.")
		return
	}
	fmt.Printf("Learning objectives (%d):\n", len(objectives))
	for i, objective := range objectives {
		fmt.Printf("%d. %s\n", i+1, objective)
	}
}

// outputJSON prints objectives in JSON format.
func outputJSON(id uuid.UUID, objectives []string, saved bool) {
	output := ObjectivesOutput{
		MaterialID: id.String(),
		Objectives: objectives,
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
