package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "generation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGenerationConfig_EmptyPathUsesDefaults(t *testing.T) {
	config, err := LoadGenerationConfig("")

	require.NoError(t, err)
	assert.Equal(t, "match-source", config.Generation.Language.Mode)
	assert.Equal(t, 5, config.MaxObjectives())
	assert.Equal(t, 3, config.MaxTemplates())
	assert.Equal(t, 70, config.DefaultThreshold())
	assert.Equal(t, 16000, config.TokenBudget())
}

func TestLoadGenerationConfig_ValidFile(t *testing.T) {
	path := writeConfigFile(t, `
generation:
  language:
    mode: fixed
    fixed: japanese
  objectives:
    max_count: 8
  templates:
    max_count: 4
  validation:
    default_threshold: 60
  truncation:
    token_budget: 8000
`)

	config, err := LoadGenerationConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "fixed", config.Generation.Language.Mode)
	assert.Equal(t, "japanese", config.Generation.Language.Fixed)
	assert.Equal(t, 8, config.MaxObjectives())
	assert.Equal(t, 4, config.MaxTemplates())
	assert.Equal(t, 60, config.DefaultThreshold())
	assert.Equal(t, 8000, config.TokenBudget())
}

func TestLoadGenerationConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
generation:
  objectives:
    max_count: 10
`)

	config, err := LoadGenerationConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 10, config.MaxObjectives())
	assert.Equal(t, "match-source", config.Generation.Language.Mode)
	assert.Equal(t, 3, config.MaxTemplates())
}

func TestLoadGenerationConfig_MissingFile(t *testing.T) {
	_, err := LoadGenerationConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadGenerationConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "generation: [not: a: mapping")

	_, err := LoadGenerationConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadGenerationConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown language mode",
			yaml: `
generation:
  language:
    mode: guess
`,
			wantErr: "language mode",
		},
		{
			name: "fixed mode without language",
			yaml: `
generation:
  language:
    mode: fixed
    fixed: ""
`,
			wantErr: "requires a language name",
		},
		{
			name: "zero objectives",
			yaml: `
generation:
  objectives:
    max_count: 0
`,
			wantErr: "objectives max_count",
		},
		{
			name: "threshold above 100",
			yaml: `
generation:
  validation:
    default_threshold: 150
`,
			wantErr: "default_threshold",
		},
		{
			name: "negative token budget",
			yaml: `
generation:
  truncation:
    token_budget: -1
`,
			wantErr: "token_budget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)

			_, err := LoadGenerationConfig(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerationConfig_LanguageInstruction(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		fixed  string
		source string
		want   string
	}{
		{
			name:   "match-source follows material language",
			mode:   "match-source",
			fixed:  "english",
			source: "spanish",
			want:   "spanish",
		},
		{
			name:   "match-source falls back when undetected",
			mode:   "match-source",
			fixed:  "english",
			source: "",
			want:   "english",
		},
		{
			name:   "fixed ignores material language",
			mode:   "fixed",
			fixed:  "japanese",
			source: "spanish",
			want:   "japanese",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGenerationConfig()
			config.Generation.Language.Mode = tt.mode
			config.Generation.Language.Fixed = tt.fixed

			assert.Equal(t, tt.want, config.LanguageInstruction(tt.source))
		})
	}
}
