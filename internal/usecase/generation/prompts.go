package generation

import (
	"fmt"
	"strings"

	"studyforge/internal/domain/entity"
	"studyforge/internal/utils/text"
)

// systemPrompt is shared by all generation operations.
const systemPrompt = "You are an assistant for teachers building study materials. " +
	"Always respond with only the requested JSON value and no other text."

// buildObjectivesPrompt asks the model for learning objectives as a JSON
// array of strings.
func (s *Service) buildObjectivesPrompt(content, focusArea, sourceLanguage string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Identify at most %d learning objectives a student should achieve from the following material.\n",
		s.config.MaxObjectives())
	if focusArea != "" {
		fmt.Fprintf(&b, "Focus on this area: %s\n", focusArea)
	}
	fmt.Fprintf(&b, "Write the objectives in %s.\n", s.config.LanguageInstruction(sourceLanguage))
	b.WriteString("Return only a JSON array of strings.\n\nMaterial:\n")
	b.WriteString(text.TruncateForPrompt(content, s.config.TokenBudget()))

	return b.String()
}

// buildTemplatesPrompt asks the model for question templates as a JSON array
// of objects matching the ContentTemplate shape.
func (s *Service) buildTemplatesPrompt(content string, objectives []string, focusArea, sourceLanguage string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Suggest at most %d reusable question templates for the following material.\n",
		s.config.MaxTemplates())
	b.WriteString("Each template uses {placeholder} markers for the parts that vary between questions.\n")
	if len(objectives) > 0 {
		fmt.Fprintf(&b, "The templates should cover these learning objectives: %s\n",
			strings.Join(objectives, "; "))
	}
	if focusArea != "" {
		fmt.Fprintf(&b, "Focus on this area: %s\n", focusArea)
	}
	fmt.Fprintf(&b, "Write the templates in %s.\n", s.config.LanguageInstruction(sourceLanguage))
	b.WriteString(`Return only a JSON array of objects with keys "pattern", "constraints" (array of strings), "grade", "subject" and "objectives" (array of strings).`)
	b.WriteString("\n\nMaterial:\n")
	b.WriteString(text.TruncateForPrompt(content, s.config.TokenBudget()))

	return b.String()
}

// buildQuestionPrompt asks the model to instantiate one template against the
// material context, answering with the bare question text.
func (s *Service) buildQuestionPrompt(tmpl entity.ContentTemplate, materialContext, sourceLanguage string) string {
	var b strings.Builder

	b.WriteString("Write one study question by filling in the {placeholder} markers of this template using the material below.\n")
	fmt.Fprintf(&b, "Template: %s\n", tmpl.Pattern)
	if len(tmpl.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(tmpl.Constraints, "; "))
	}
	if tmpl.Grade != "" {
		fmt.Fprintf(&b, "Target grade level: %s\n", tmpl.Grade)
	}
	if tmpl.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", tmpl.Subject)
	}
	fmt.Fprintf(&b, "Write the question in %s.\n", s.config.LanguageInstruction(sourceLanguage))
	b.WriteString("Return only the question text as a JSON string, with no explanation.\n\nMaterial:\n")
	b.WriteString(text.TruncateForPrompt(materialContext, s.config.TokenBudget()))

	return b.String()
}

// buildValidationPrompt asks the model to grade a student answer against a
// rubric, bounding the score to the rule's range.
func (s *Service) buildValidationPrompt(question, answer string, rule entity.ValidationRule) string {
	var b strings.Builder

	b.WriteString("Grade the student answer below against the rubric.\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Student answer: %s\n", answer)
	fmt.Fprintf(&b, "Rubric: %s\n", rule.Criteria)
	fmt.Fprintf(&b, "The score must be a number between %g and %g inclusive; the answer passes when the score is at least %g.\n",
		rule.MinScore, rule.MaxScore, rule.Threshold)
	b.WriteString(`Return only a JSON object with keys "isValid" (boolean), "score" (number) and "feedback" (string).`)

	return b.String()
}
