// Package generation builds prompts for the four structured generation
// operations, sends them through a completion client and parses the model's
// free-text responses into typed results.
//
// Error handling differs per operation: the two suggestion operations
// (objectives, templates) degrade to an empty slice on any failure, question
// generation propagates failures, and answer validation always returns a
// rubric-shaped result.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"studyforge/internal/config"
	"studyforge/internal/domain/entity"
	"studyforge/internal/infra/completion"
	"studyforge/internal/observability/metrics"
)

const (
	// questionParallelism bounds concurrent completion calls in batch
	// generation (rate-limited endpoint).
	questionParallelism = 5
)

// Service provides the structured generation use cases.
type Service struct {
	client completion.Client
	config *config.GenerationConfig
	logger *slog.Logger
}

// NewService creates a generation Service with the provided dependencies.
// A nil cfg uses the default generation configuration.
func NewService(client completion.Client, cfg *config.GenerationConfig, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = config.DefaultGenerationConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// ExtractLearningObjectives asks the model for learning objectives covering
// the material. Any completion or parse failure degrades to an empty slice;
// a best-effort partial result is more useful than a hard failure in an
// authoring workflow.
func (s *Service) ExtractLearningObjectives(ctx context.Context, content, focusArea, sourceLanguage string) []string {
	prompt := s.buildObjectivesPrompt(content, focusArea, sourceLanguage)
	start := time.Now()

	raw, err := s.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		metrics.RecordGeneration("objectives", false, time.Since(start))
		s.logger.Warn("objective extraction failed, returning none",
			slog.String("focus_area", focusArea),
			slog.Any("error", err))
		return []string{}
	}

	var objectives []string
	if err := decodeResponse("objectives", raw, &objectives); err != nil {
		metrics.RecordGeneration("objectives", false, time.Since(start))
		s.logger.Warn("objective response unparseable, returning none",
			slog.Any("error", err))
		return []string{}
	}

	metrics.RecordGeneration("objectives", true, time.Since(start))
	if objectives == nil {
		return []string{}
	}
	return objectives
}

// SuggestQuestionTemplates asks the model for reusable question templates.
// Like objective extraction, failures degrade to an empty slice.
func (s *Service) SuggestQuestionTemplates(ctx context.Context, content string, objectives []string, focusArea, sourceLanguage string) []entity.ContentTemplate {
	prompt := s.buildTemplatesPrompt(content, objectives, focusArea, sourceLanguage)
	start := time.Now()

	raw, err := s.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		metrics.RecordGeneration("templates", false, time.Since(start))
		s.logger.Warn("template suggestion failed, returning none",
			slog.String("focus_area", focusArea),
			slog.Any("error", err))
		return []entity.ContentTemplate{}
	}

	var templates []entity.ContentTemplate
	if err := decodeResponse("templates", raw, &templates); err != nil {
		metrics.RecordGeneration("templates", false, time.Since(start))
		s.logger.Warn("template response unparseable, returning none",
			slog.Any("error", err))
		return []entity.ContentTemplate{}
	}

	metrics.RecordGeneration("templates", true, time.Since(start))
	if templates == nil {
		return []entity.ContentTemplate{}
	}
	return templates
}

// GenerateQuestion instantiates one template against the material context and
// returns the bare question text. There is no safe empty default here, so
// failures propagate to the caller.
func (s *Service) GenerateQuestion(ctx context.Context, tmpl entity.ContentTemplate, materialContext, sourceLanguage string) (string, error) {
	if tmpl.Pattern == "" {
		return "", &entity.ValidationError{Field: "pattern", Message: "template pattern is required"}
	}

	prompt := s.buildQuestionPrompt(tmpl, materialContext, sourceLanguage)
	start := time.Now()

	raw, err := s.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		metrics.RecordGeneration("question", false, time.Since(start))
		return "", fmt.Errorf("generate question: %w", err)
	}

	question := stripQuotes(raw)
	if question == "" {
		metrics.RecordGeneration("question", false, time.Since(start))
		return "", &entity.ResponseParseError{
			Operation: "question",
			Raw:       snippet(raw),
			Err:       fmt.Errorf("model returned no question text"),
		}
	}

	metrics.RecordGeneration("question", true, time.Since(start))
	return question, nil
}

// GenerateQuestionBatch runs GenerateQuestion for each template with bounded
// parallelism. Results preserve template order. The first failure cancels
// outstanding calls and is returned.
func (s *Service) GenerateQuestionBatch(ctx context.Context, tmpls []entity.ContentTemplate, materialContext, sourceLanguage string) ([]string, error) {
	questions := make([]string, len(tmpls))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(questionParallelism)

	for i, tmpl := range tmpls {
		eg.Go(func() error {
			question, err := s.GenerateQuestion(egCtx, tmpl, materialContext, sourceLanguage)
			if err != nil {
				return fmt.Errorf("template %d: %w", i, err)
			}
			questions[i] = question
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return questions, nil
}

// GenerateQuestionAt wraps one GenerateQuestion call in the ephemeral
// result envelope, stamping the material, the template's position in the
// material's metadata array, and the generation time.
func (s *Service) GenerateQuestionAt(ctx context.Context, materialID uuid.UUID, templateIndex int, tmpl entity.ContentTemplate, materialContext, sourceLanguage string) (entity.GeneratedQuestion, error) {
	question, err := s.GenerateQuestion(ctx, tmpl, materialContext, sourceLanguage)
	if err != nil {
		return entity.GeneratedQuestion{}, err
	}
	return entity.GeneratedQuestion{
		MaterialID:    materialID,
		TemplateIndex: templateIndex,
		Question:      question,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// GenerateQuestionSet runs GenerateQuestionBatch over all of a material's
// templates and wraps each question in the result envelope. Template order
// is preserved, so TemplateIndex matches the metadata array position.
func (s *Service) GenerateQuestionSet(ctx context.Context, materialID uuid.UUID, tmpls []entity.ContentTemplate, materialContext, sourceLanguage string) ([]entity.GeneratedQuestion, error) {
	questions, err := s.GenerateQuestionBatch(ctx, tmpls, materialContext, sourceLanguage)
	if err != nil {
		return nil, err
	}

	generatedAt := time.Now().UTC()
	set := make([]entity.GeneratedQuestion, len(questions))
	for i, question := range questions {
		set[i] = entity.GeneratedQuestion{
			MaterialID:    materialID,
			TemplateIndex: i,
			Question:      question,
			GeneratedAt:   generatedAt,
		}
	}
	return set, nil
}

// ValidateResponse grades a student answer against a rubric. This is the one
// operation that never returns an error: any failure is converted into an
// invalid result with score 0 and explanatory feedback, because the call site
// always needs a renderable outcome. Model-reported scores outside the rule's
// range are clamped.
func (s *Service) ValidateResponse(ctx context.Context, question, answer string, rule entity.ValidationRule) entity.ValidationResult {
	if err := rule.Validate(); err != nil {
		return entity.ValidationResult{
			IsValid:  false,
			Score:    0,
			Feedback: fmt.Sprintf("Validation could not run: %v", err),
		}
	}

	prompt := s.buildValidationPrompt(question, answer, rule)
	start := time.Now()

	raw, err := s.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		metrics.RecordGeneration("validation", false, time.Since(start))
		s.logger.Warn("answer validation call failed",
			slog.Any("error", err))
		return entity.ValidationResult{
			IsValid:  false,
			Score:    0,
			Feedback: "Validation is temporarily unavailable; the answer could not be graded.",
		}
	}

	var result entity.ValidationResult
	if err := decodeResponse("validation", raw, &result); err != nil {
		metrics.RecordGeneration("validation", false, time.Since(start))
		s.logger.Warn("validation response unparseable",
			slog.Any("error", err))
		return entity.ValidationResult{
			IsValid:  false,
			Score:    0,
			Feedback: "The grader returned an unreadable response; the answer could not be scored.",
		}
	}

	metrics.RecordGeneration("validation", true, time.Since(start))
	result.Score = rule.ClampScore(result.Score)
	return result
}
