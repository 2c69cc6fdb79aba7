// Package main provides a CLI command for generating questions from a
// material's saved templates.
// Usage: studyforge-material-question --material UUID [--index N] [--output json]
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

// QuestionOutput represents the JSON output format for generated questions.
type QuestionOutput struct {
	MaterialID string                     `json:"material_id"`
	Questions  []entity.GeneratedQuestion `json:"questions"`
}

func main() {
	var (
		materialID   string
		configPath   string
		index        int
		outputFormat string
	)

	flag.StringVar(&materialID, "material", "", "Material UUID (required)")
	flag.StringVar(&configPath, "config", os.Getenv("GENERATION_CONFIG"), "Path to generation config YAML")
	flag.IntVar(&index, "index", -1, "Template index to generate from (-1 generates from all templates)")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	id, err := uuid.Parse(materialID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid or missing --material UUID\n")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: studyforge-material-question --material UUID [--index N] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  studyforge-material-question --material 3f1c...")
		fmt.Fprintln(os.Stderr, "  studyforge-material-question --material 3f1c... --index 0 --output json")
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

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
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
		fmt.Fprintf(os.Stderr, "Error: Material %s is %s; questions need extracted content\n", id, mat.Status)
		os.Exit(1)
	}
	templates := mat.Metadata.Templates
	if len(templates) == 0 {
		fmt.Fprintf(os.Stderr, "Error: Material %s has no saved templates; run studyforge-material-templates --save first\n", id)
		os.Exit(1)
	}
	if index >= len(templates) {
		fmt.Fprintf(os.Stderr, "Error: Template index %d out of range (material has %d templates)\n", index, len(templates))
		os.Exit(1)
	}

	svc := generation.NewService(client, generationConfig, logger)

	var results []entity.GeneratedQuestion
	if index >= 0 {
		logger.Info("Generating question",
			slog.String("material_id", id.String()),
			slog.Int("template_index", index))

		question, err := svc.GenerateQuestionAt(ctx, id, index, templates[index], mat.Content, mat.Metadata.SourceLanguage)
		if err != nil {
			logger.Error("question generation failed", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Question generation failed: %v\n", err)
			os.Exit(1)
		}
		results = []entity.GeneratedQuestion{question}
	} else {
		logger.Info("Generating question batch",
			slog.String("material_id", id.String()),
			slog.Int("template_count", len(templates)))

		results, err = svc.GenerateQuestionSet(ctx, id, templates, mat.Content, mat.Metadata.SourceLanguage)
		if err != nil {
			logger.Error("question batch failed", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Question batch failed: %v\n", err)
			os.Exit(1)
		}
	}

	if outputFormat == "json" {
		outputJSON(id, results)
	} else {
		outputText(results)
	}
}

// outputText prints generated questions in human-readable format.
func outputText(results []entity.GeneratedQuestion) {
	for _, r := range results {
		fmt.Printf("[%d] %s\n", r.TemplateIndex, r.Question)
	}
}

// outputJSON prints generated questions in JSON format.
func outputJSON(id uuid.UUID, results []entity.GeneratedQuestion) {
	output := QuestionOutput{
		MaterialID: id.String(),
		Questions:  results,
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
