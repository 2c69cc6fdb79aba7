package generation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"studyforge/internal/domain/entity"
	"studyforge/internal/usecase/generation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient implements completion.Client with a canned response or a
// per-call function. Safe for the concurrent batch tests.
type stubClient struct {
	response string
	err      error
	fn       func(system, user string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (s *stubClient) Complete(_ context.Context, system, user string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, user)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(system, user)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubClient) Ping(_ context.Context) error { return nil }

func testRule() entity.ValidationRule {
	return entity.ValidationRule{
		Criteria:  "Answer must mention the denominator.",
		Threshold: 70,
		MinScore:  0,
		MaxScore:  100,
	}
}

func TestService_ExtractLearningObjectives(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     []string
	}{
		{
			name:     "clean JSON array",
			response: `["Understand fractions", "Compare decimals"]`,
			want:     []string{"Understand fractions", "Compare decimals"},
		},
		{
			name:     "conversational wrapping tolerated",
			response: "Of course! Here you go:\n[\"Understand fractions\"]\nAnything else?",
			want:     []string{"Understand fractions"},
		},
		{
			name:     "completion failure degrades to empty",
			err:      errors.New("endpoint down"),
			want:     []string{},
		},
		{
			name:     "unparseable response degrades to empty",
			response: "I'd rather not produce JSON today.",
			want:     []string{},
		},
		{
			name:     "JSON null degrades to empty",
			response: "null",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{response: tt.response, err: tt.err}
			svc := generation.NewService(client, nil, nil)

			got := svc.ExtractLearningObjectives(context.Background(), "material content", "fractions", "english")

			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got, "must never return nil")
		})
	}
}

func TestService_ExtractLearningObjectives_PromptContents(t *testing.T) {
	client := &stubClient{response: `[]`}
	svc := generation.NewService(client, nil, nil)

	svc.ExtractLearningObjectives(context.Background(), "the material body", "fractions", "spanish")

	require.Len(t, client.calls, 1)
	prompt := client.calls[0]
	assert.Contains(t, prompt, "the material body")
	assert.Contains(t, prompt, "fractions")
	assert.Contains(t, prompt, "spanish")
	assert.Contains(t, prompt, "JSON array")
}

func TestService_ExtractLearningObjectives_TruncatesLongContent(t *testing.T) {
	client := &stubClient{response: `[]`}
	svc := generation.NewService(client, nil, nil)

	long := strings.Repeat("a", 300_000)
	svc.ExtractLearningObjectives(context.Background(), long, "", "english")

	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0], "...[content truncated]...")
	assert.Less(t, len(client.calls[0]), 70_000)
}

func TestService_SuggestQuestionTemplates(t *testing.T) {
	t.Run("templates parsed", func(t *testing.T) {
		client := &stubClient{response: `Here are two:
[
  {"pattern": "What is {concept}?", "constraints": ["one sentence"], "grade": "5", "subject": "math", "objectives": ["Understand fractions"]},
  {"pattern": "Explain {concept} with an example.", "constraints": [], "grade": "5", "subject": "math", "objectives": []}
]`}
		svc := generation.NewService(client, nil, nil)

		got := svc.SuggestQuestionTemplates(context.Background(), "content", []string{"Understand fractions"}, "fractions", "english")

		require.Len(t, got, 2)
		assert.Equal(t, "What is {concept}?", got[0].Pattern)
		assert.Equal(t, []string{"one sentence"}, got[0].Constraints)
		assert.Equal(t, "Explain {concept} with an example.", got[1].Pattern)
	})

	t.Run("objectives embedded in prompt", func(t *testing.T) {
		client := &stubClient{response: `[]`}
		svc := generation.NewService(client, nil, nil)

		svc.SuggestQuestionTemplates(context.Background(), "content", []string{"obj-one", "obj-two"}, "", "english")

		require.Len(t, client.calls, 1)
		assert.Contains(t, client.calls[0], "obj-one; obj-two")
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		client := &stubClient{err: errors.New("timeout")}
		svc := generation.NewService(client, nil, nil)

		got := svc.SuggestQuestionTemplates(context.Background(), "content", nil, "", "english")

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestService_GenerateQuestion(t *testing.T) {
	template := entity.ContentTemplate{Pattern: "What is {concept}?"}

	t.Run("surrounding quotes stripped", func(t *testing.T) {
		client := &stubClient{response: `"What is a fraction?"`}
		svc := generation.NewService(client, nil, nil)

		got, err := svc.GenerateQuestion(context.Background(), template, "context", "english")

		require.NoError(t, err)
		assert.Equal(t, "What is a fraction?", got)
	})

	t.Run("unquoted answer kept", func(t *testing.T) {
		client := &stubClient{response: "What is a fraction?"}
		svc := generation.NewService(client, nil, nil)

		got, err := svc.GenerateQuestion(context.Background(), template, "context", "english")

		require.NoError(t, err)
		assert.Equal(t, "What is a fraction?", got)
	})

	t.Run("completion failure propagates", func(t *testing.T) {
		client := &stubClient{err: errors.New("endpoint down")}
		svc := generation.NewService(client, nil, nil)

		_, err := svc.GenerateQuestion(context.Background(), template, "context", "english")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "generate question")
	})

	t.Run("blank response is a parse error", func(t *testing.T) {
		client := &stubClient{response: `""`}
		svc := generation.NewService(client, nil, nil)

		_, err := svc.GenerateQuestion(context.Background(), template, "context", "english")

		var parseErr *entity.ResponseParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("empty template pattern rejected", func(t *testing.T) {
		client := &stubClient{response: "irrelevant"}
		svc := generation.NewService(client, nil, nil)

		_, err := svc.GenerateQuestion(context.Background(), entity.ContentTemplate{}, "context", "english")

		var validationErr *entity.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Empty(t, client.calls, "no completion call for an invalid template")
	})
}

func TestService_GenerateQuestionBatch(t *testing.T) {
	t.Run("order preserved", func(t *testing.T) {
		// Answer depends on which template pattern appears in the prompt,
		// so out-of-order completion would be visible in the result.
		client := &stubClient{fn: func(_, user string) (string, error) {
			for i := 0; i < 10; i++ {
				if strings.Contains(user, fmt.Sprintf("pattern-%d", i)) {
					return fmt.Sprintf(`"question-%d"`, i), nil
				}
			}
			return "", errors.New("unknown template")
		}}
		svc := generation.NewService(client, nil, nil)

		templates := make([]entity.ContentTemplate, 10)
		for i := range templates {
			templates[i] = entity.ContentTemplate{Pattern: fmt.Sprintf("pattern-%d {x}", i)}
		}

		got, err := svc.GenerateQuestionBatch(context.Background(), templates, "context", "english")

		require.NoError(t, err)
		require.Len(t, got, 10)
		for i, question := range got {
			assert.Equal(t, fmt.Sprintf("question-%d", i), question)
		}
	})

	t.Run("failure reports template index", func(t *testing.T) {
		client := &stubClient{fn: func(_, user string) (string, error) {
			if strings.Contains(user, "bad-pattern") {
				return "", errors.New("endpoint down")
			}
			return `"fine"`, nil
		}}
		svc := generation.NewService(client, nil, nil)

		templates := []entity.ContentTemplate{
			{Pattern: "good-pattern {x}"},
			{Pattern: "bad-pattern {x}"},
		}

		_, err := svc.GenerateQuestionBatch(context.Background(), templates, "context", "english")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "template 1")
	})

	t.Run("no templates yields no questions", func(t *testing.T) {
		svc := generation.NewService(&stubClient{}, nil, nil)

		got, err := svc.GenerateQuestionBatch(context.Background(), nil, "context", "english")

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestService_GenerateQuestionAt(t *testing.T) {
	t.Run("wraps question in result envelope", func(t *testing.T) {
		client := &stubClient{response: `"What is 3/4 of 20?"`}
		svc := generation.NewService(client, nil, nil)
		materialID := uuid.New()
		before := time.Now().UTC()

		got, err := svc.GenerateQuestionAt(context.Background(), materialID, 2,
			entity.ContentTemplate{Pattern: "Calculate {fraction} of {number}"}, "context", "english")

		require.NoError(t, err)
		assert.Equal(t, materialID, got.MaterialID)
		assert.Equal(t, 2, got.TemplateIndex)
		assert.Equal(t, "What is 3/4 of 20?", got.Question)
		assert.Nil(t, got.Rubric)
		assert.False(t, got.GeneratedAt.Before(before))
	})

	t.Run("generation failure propagates", func(t *testing.T) {
		client := &stubClient{err: errors.New("endpoint down")}
		svc := generation.NewService(client, nil, nil)

		_, err := svc.GenerateQuestionAt(context.Background(), uuid.New(), 0,
			entity.ContentTemplate{Pattern: "Explain {concept}"}, "context", "english")

		require.Error(t, err)
	})
}

func TestService_GenerateQuestionSet(t *testing.T) {
	t.Run("indices follow template positions", func(t *testing.T) {
		client := &stubClient{fn: func(_, user string) (string, error) {
			for i := 0; i < 3; i++ {
				if strings.Contains(user, fmt.Sprintf("pattern-%d", i)) {
					return fmt.Sprintf(`"question-%d"`, i), nil
				}
			}
			return "", errors.New("unknown template")
		}}
		svc := generation.NewService(client, nil, nil)
		materialID := uuid.New()

		templates := []entity.ContentTemplate{
			{Pattern: "pattern-0 {x}"},
			{Pattern: "pattern-1 {x}"},
			{Pattern: "pattern-2 {x}"},
		}

		got, err := svc.GenerateQuestionSet(context.Background(), materialID, templates, "context", "english")

		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, q := range got {
			assert.Equal(t, materialID, q.MaterialID)
			assert.Equal(t, i, q.TemplateIndex)
			assert.Equal(t, fmt.Sprintf("question-%d", i), q.Question)
			assert.False(t, q.GeneratedAt.IsZero())
		}
	})

	t.Run("batch failure yields no set", func(t *testing.T) {
		client := &stubClient{err: errors.New("endpoint down")}
		svc := generation.NewService(client, nil, nil)

		got, err := svc.GenerateQuestionSet(context.Background(), uuid.New(),
			[]entity.ContentTemplate{{Pattern: "p {x}"}}, "context", "english")

		require.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestService_ValidateResponse(t *testing.T) {
	t.Run("well-formed grading result", func(t *testing.T) {
		client := &stubClient{response: `{"isValid": true, "score": 85, "feedback": "Mentions the denominator."}`}
		svc := generation.NewService(client, nil, nil)

		got := svc.ValidateResponse(context.Background(), "What is a fraction?", "A part of a whole.", testRule())

		assert.True(t, got.IsValid)
		assert.Equal(t, 85.0, got.Score)
		assert.Equal(t, "Mentions the denominator.", got.Feedback)
	})

	t.Run("out-of-range score clamped", func(t *testing.T) {
		client := &stubClient{response: `{"isValid": true, "score": 150, "feedback": "Excellent."}`}
		svc := generation.NewService(client, nil, nil)

		got := svc.ValidateResponse(context.Background(), "q", "a", testRule())

		assert.Equal(t, 100.0, got.Score)
	})

	t.Run("non-JSON response never errors", func(t *testing.T) {
		client := &stubClient{response: "The answer seems fine to me."}
		svc := generation.NewService(client, nil, nil)

		got := svc.ValidateResponse(context.Background(), "q", "a", testRule())

		assert.False(t, got.IsValid)
		assert.Equal(t, 0.0, got.Score)
		assert.NotEmpty(t, got.Feedback)
	})

	t.Run("completion failure never errors", func(t *testing.T) {
		client := &stubClient{err: errors.New("endpoint down")}
		svc := generation.NewService(client, nil, nil)

		got := svc.ValidateResponse(context.Background(), "q", "a", testRule())

		assert.False(t, got.IsValid)
		assert.Equal(t, 0.0, got.Score)
		assert.NotEmpty(t, got.Feedback)
	})

	t.Run("incoherent rule reported in feedback", func(t *testing.T) {
		client := &stubClient{response: `{"isValid": true, "score": 85, "feedback": "ok"}`}
		svc := generation.NewService(client, nil, nil)

		rule := testRule()
		rule.MinScore = 50
		rule.MaxScore = 10

		got := svc.ValidateResponse(context.Background(), "q", "a", rule)

		assert.False(t, got.IsValid)
		assert.Empty(t, client.calls, "no completion call for an incoherent rule")
	})

	t.Run("prompt names the score bounds", func(t *testing.T) {
		client := &stubClient{response: `{"isValid": false, "score": 0, "feedback": "no"}`}
		svc := generation.NewService(client, nil, nil)

		svc.ValidateResponse(context.Background(), "q", "a", testRule())

		require.Len(t, client.calls, 1)
		prompt := client.calls[0]
		assert.Contains(t, prompt, "between 0 and 100")
		assert.Contains(t, prompt, "at least 70")
		assert.Contains(t, prompt, "isValid")
	})
}
