package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentTemplate is an LLM-suggested question pattern scoped to one material.
// Pattern contains {placeholder} markers that GenerateQuestion fills in; a
// template has no identity of its own and is addressed by its position in the
// material's metadata array.
type ContentTemplate struct {
	Pattern     string   `json:"pattern"`
	Constraints []string `json:"constraints"`
	Grade       string   `json:"grade"`
	Subject     string   `json:"subject"`
	Objectives  []string `json:"objectives"`
}

// QuestionRubric holds scoring guidance generated alongside a question.
type QuestionRubric struct {
	CriteriaWeights   map[string]float64 `json:"criteria_weights,omitempty"`
	ValidationChecks  []string           `json:"validation_checks,omitempty"`
	ScoringGuidelines string             `json:"scoring_guidelines,omitempty"`
}

// GeneratedQuestion is the ephemeral output of question generation.
// Persistence is the caller's responsibility; this core never stores it.
type GeneratedQuestion struct {
	MaterialID    uuid.UUID       `json:"material_id"`
	TemplateIndex int             `json:"template_index"`
	Question      string          `json:"question"`
	Rubric        *QuestionRubric `json:"rubric,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
