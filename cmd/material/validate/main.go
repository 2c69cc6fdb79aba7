// Package main provides a CLI command for grading a student answer against
// a question and rubric.
// Usage: studyforge-material-validate --question TEXT --answer TEXT --criteria TEXT [--threshold N] [--output json]
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
	"studyforge/internal/infra/completion"
	"studyforge/internal/usecase/generation"
)

func main() {
	var (
		question     string
		answer       string
		criteria     string
		threshold    float64
		minScore     float64
		maxScore     float64
		configPath   string
		outputFormat string
	)

	flag.StringVar(&question, "question", "", "Question text (required)")
	flag.StringVar(&answer, "answer", "", "Student answer (required)")
	flag.StringVar(&criteria, "criteria", "", "Grading criteria (required)")
	flag.Float64Var(&threshold, "threshold", -1, "Passing score threshold (default from generation config)")
	flag.Float64Var(&minScore, "min", 0, "Minimum score of the scale")
	flag.Float64Var(&maxScore, "max", 100, "Maximum score of the scale")
	flag.StringVar(&configPath, "config", os.Getenv("GENERATION_CONFIG"), "Path to generation config YAML")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	if question == "" || answer == "" || criteria == "" {
		fmt.Fprintf(os.Stderr, "Error: --question, --answer and --criteria are all required\n")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: studyforge-material-validate --question TEXT --answer TEXT --criteria TEXT [--threshold N] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  studyforge-material-validate --question 'Explain photosynthesis' --answer '...' --criteria 'Mentions light energy and glucose'")
		fmt.Fprintln(os.Stderr, "  studyforge-material-validate --question '...' --answer '...' --criteria '...' --threshold 80 --output json")
		os.Exit(1)
	}

	logger := initLogger()

	generationConfig, err := config.LoadGenerationConfig(configPath)
	if err != nil {
		logger.Error("failed to load generation configuration", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to load generation configuration: %v\n", err)
		os.Exit(1)
	}

	if threshold < 0 {
		threshold = float64(generationConfig.DefaultThreshold())
	}

	client, err := completion.NewFromEnv(logger)
	if err != nil {
		logger.Error("failed to create completion client", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to create completion client: %v\n", err)
		os.Exit(1)
	}

	svc := generation.NewService(client, generationConfig, logger)

	rule := entity.ValidationRule{
		Criteria:  criteria,
		Threshold: threshold,
		MinScore:  minScore,
		MaxScore:  maxScore,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("Validating answer", slog.Float64("threshold", threshold))

	result := svc.ValidateResponse(ctx, question, answer, rule)

	if outputFormat == "json" {
		outputJSON(result)
	} else {
		outputText(result)
	}

	if !result.IsValid {
		os.Exit(2)
	}
}

// outputText prints the validation result in human-readable format.
func outputText(result entity.ValidationResult) {
	verdict := "FAIL"
	if result.IsValid {
		verdict = "PASS"
	}
	fmt.Printf("%s (score %.1f)\n", verdict, result.Score)
	if result.Feedback != "" {
		fmt.Printf("Feedback: %s\n", result.Feedback)
	}
}

// outputJSON prints the validation result in JSON format.
func outputJSON(result entity.ValidationResult) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
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
