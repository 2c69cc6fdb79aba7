// Package config loads application-level configuration files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"studyforge/internal/utils/text"
)

// GenerationConfig represents question generation configuration.
type GenerationConfig struct {
	Generation struct {
		Language struct {
			// Mode selects how the response language is chosen:
			// "match-source" instructs the model to answer in the material's
			// language, "fixed" always uses the Fixed value.
			Mode  string `yaml:"mode"`
			Fixed string `yaml:"fixed"`
		} `yaml:"language"`
		Objectives struct {
			MaxCount int `yaml:"max_count"`
		} `yaml:"objectives"`
		Templates struct {
			MaxCount int `yaml:"max_count"`
		} `yaml:"templates"`
		Validation struct {
			DefaultThreshold int `yaml:"default_threshold"`
		} `yaml:"validation"`
		Truncation struct {
			TokenBudget int `yaml:"token_budget"`
		} `yaml:"truncation"`
	} `yaml:"generation"`
}

// DefaultGenerationConfig returns the configuration used when no file is given.
func DefaultGenerationConfig() *GenerationConfig {
	var config GenerationConfig
	config.Generation.Language.Mode = "match-source"
	config.Generation.Language.Fixed = "english"
	config.Generation.Objectives.MaxCount = 5
	config.Generation.Templates.MaxCount = 3
	config.Generation.Validation.DefaultThreshold = 70
	config.Generation.Truncation.TokenBudget = text.DefaultTokenBudget
	return &config
}

// LoadGenerationConfig loads generation configuration from a YAML file.
// An empty path returns the defaults.
// The path parameter is expected to come from a trusted source (command-line argument or hardcoded default).
func LoadGenerationConfig(path string) (*GenerationConfig, error) {
	if path == "" {
		return DefaultGenerationConfig(), nil
	}

	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultGenerationConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateGenerationConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateGenerationConfig validates the loaded configuration.
func validateGenerationConfig(config *GenerationConfig) error {
	switch config.Generation.Language.Mode {
	case "match-source", "fixed":
	default:
		return fmt.Errorf("language mode must be match-source or fixed, got %q", config.Generation.Language.Mode)
	}

	if config.Generation.Language.Mode == "fixed" && config.Generation.Language.Fixed == "" {
		return fmt.Errorf("fixed language mode requires a language name")
	}

	if config.Generation.Objectives.MaxCount <= 0 {
		return fmt.Errorf("objectives max_count must be positive")
	}

	if config.Generation.Templates.MaxCount <= 0 {
		return fmt.Errorf("templates max_count must be positive")
	}

	if config.Generation.Validation.DefaultThreshold < 0 || config.Generation.Validation.DefaultThreshold > 100 {
		return fmt.Errorf("validation default_threshold must be within [0, 100]")
	}

	if config.Generation.Truncation.TokenBudget <= 0 {
		return fmt.Errorf("truncation token_budget must be positive")
	}

	return nil
}

// LanguageInstruction returns the language directive embedded in prompts.
// For match-source mode the material's detected language wins; the fixed
// language is only a fallback when detection produced nothing.
func (c *GenerationConfig) LanguageInstruction(sourceLanguage string) string {
	if c.Generation.Language.Mode == "fixed" || sourceLanguage == "" {
		return c.Generation.Language.Fixed
	}
	return sourceLanguage
}

// MaxObjectives returns the objective count requested from the model.
func (c *GenerationConfig) MaxObjectives() int {
	return c.Generation.Objectives.MaxCount
}

// MaxTemplates returns the template count requested from the model.
func (c *GenerationConfig) MaxTemplates() int {
	return c.Generation.Templates.MaxCount
}

// DefaultThreshold returns the validation pass threshold used when a rubric
// does not carry its own.
func (c *GenerationConfig) DefaultThreshold() int {
	return c.Generation.Validation.DefaultThreshold
}

// TokenBudget returns the prompt content truncation budget in tokens.
func (c *GenerationConfig) TokenBudget() int {
	return c.Generation.Truncation.TokenBudget
}
