package entity

import "fmt"

// ValidationRule is a teacher-defined grading rubric: free-text criteria, a
// pass threshold and the inclusive score boundaries the model must respect.
type ValidationRule struct {
	Criteria  string  `json:"criteria"`
	Threshold float64 `json:"threshold"`
	MinScore  float64 `json:"min_score"`
	MaxScore  float64 `json:"max_score"`
}

// Validate checks that the rule's numeric boundaries are coherent.
func (r ValidationRule) Validate() error {
	if r.Criteria == "" {
		return &ValidationError{Field: "criteria", Message: "criteria is required"}
	}
	if r.MinScore > r.MaxScore {
		return &ValidationError{
			Field:   "min_score",
			Message: fmt.Sprintf("min score %.2f exceeds max score %.2f", r.MinScore, r.MaxScore),
		}
	}
	if r.Threshold < r.MinScore || r.Threshold > r.MaxScore {
		return &ValidationError{
			Field:   "threshold",
			Message: fmt.Sprintf("threshold %.2f outside score range [%.2f, %.2f]", r.Threshold, r.MinScore, r.MaxScore),
		}
	}
	return nil
}

// ClampScore bounds a model-reported score to the rule's inclusive range.
func (r ValidationRule) ClampScore(score float64) float64 {
	if score < r.MinScore {
		return r.MinScore
	}
	if score > r.MaxScore {
		return r.MaxScore
	}
	return score
}

// ValidationResult is the rubric-shaped outcome of grading one student answer.
// It is handed back to the caller and never persisted by this core.
type ValidationResult struct {
	IsValid  bool    `json:"isValid"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}
