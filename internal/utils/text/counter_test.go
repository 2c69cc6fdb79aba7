package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studyforge/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "ascii text", input: "hello", want: 5},
		{name: "accented text", input: "héllo", want: 5},
		{name: "cjk text", input: "こんにちは", want: 5},
		{name: "mixed text", input: "hello世界", want: 7},
		{name: "empty string", input: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.CountRunes(tt.input))
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "simple sentence", input: "the quick brown fox", want: 4},
		{name: "collapsed whitespace", input: "a\t b\n\n c", want: 3},
		{name: "leading and trailing space", input: "  word  ", want: 1},
		{name: "empty string", input: "", want: 0},
		{name: "whitespace only", input: " \n\t ", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.CountWords(tt.input))
		})
	}
}
