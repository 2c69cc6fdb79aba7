package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"studyforge/internal/domain/entity"
)

// maxRawSnippet bounds how much of a bad model response is retained in errors.
const maxRawSnippet = 200

// extractJSON locates the first '[' or '{' in raw and the last matching ']'
// or '}', returning the substring between them. Models often wrap their JSON
// answer in conversational text ("Sure! Here are the objectives: [...]"); the
// wrapping is tolerated and discarded.
func extractJSON(raw string) (string, error) {
	openBracket := strings.IndexByte(raw, '[')
	openBrace := strings.IndexByte(raw, '{')

	start := openBracket
	closer := byte(']')
	if start == -1 || (openBrace != -1 && openBrace < start) {
		start = openBrace
		closer = '}'
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON value found in response")
	}

	end := strings.LastIndexByte(raw, closer)
	if end <= start {
		return "", fmt.Errorf("unterminated JSON value in response")
	}

	return raw[start : end+1], nil
}

// decodeResponse extracts the JSON value from a raw model response and
// unmarshals it into out. Failures are wrapped as a ResponseParseError
// carrying a bounded snippet of the offending response.
func decodeResponse(operation, raw string, out interface{}) error {
	payload, err := extractJSON(raw)
	if err != nil {
		return &entity.ResponseParseError{Operation: operation, Raw: snippet(raw), Err: err}
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &entity.ResponseParseError{Operation: operation, Raw: snippet(raw), Err: err}
	}
	return nil
}

func snippet(raw string) string {
	if len(raw) > maxRawSnippet {
		return raw[:maxRawSnippet]
	}
	return raw
}

// stripQuotes removes one pair of matching surrounding quote characters.
// Models asked for a bare question string frequently return it quoted.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '"' && first != '\'' && first != '`') {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
