package completion_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studyforge/internal/infra/completion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig creates a default test configuration pointing at the given server
func testConfig(baseURL string) *completion.Config {
	return &completion.Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "test-model",
		MaxTokens:   256,
		Temperature: 0.7,
		Timeout:     10 * time.Second,
	}
}

func TestOpenAICompatible_Complete(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "[\"Understand fractions\", \"Compare decimals\"]"
				},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	client := completion.NewOpenAICompatible(testConfig(server.URL))

	output, err := client.Complete(context.Background(), "You are a teacher.", "List objectives.")

	require.NoError(t, err)
	assert.Equal(t, `["Understand fractions", "Compare decimals"]`, output)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "test-model", gotBody["model"])

	// Both prompts must be forwarded as separate messages
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	second := messages[1].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are a teacher.", first["content"])
	assert.Equal(t, "user", second["role"])
	assert.Equal(t, "List objectives.", second["content"])
}

func TestOpenAICompatible_Complete_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	client := completion.NewOpenAICompatible(testConfig(server.URL + "/"))

	_, err := client.Complete(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", gotPath)
}

func TestOpenAICompatible_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model crashed","type":"server_error"}}`))
	}))
	defer server.Close()

	client := completion.NewOpenAICompatible(testConfig(server.URL))

	output, err := client.Complete(context.Background(), "system", "user")

	require.Error(t, err)
	assert.Empty(t, output)
	assert.Contains(t, err.Error(), "completion")
}

func TestOpenAICompatible_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := completion.NewOpenAICompatible(testConfig(server.URL))

	output, err := client.Complete(context.Background(), "system", "user")

	require.Error(t, err)
	assert.Empty(t, output)
	assert.Contains(t, err.Error(), "empty response")
}

func TestOpenAICompatible_Ping(t *testing.T) {
	t.Run("server reachable", func(t *testing.T) {
		var gotPath string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"test-model","object":"model"}]}`))
		}))
		defer server.Close()

		client := completion.NewOpenAICompatible(testConfig(server.URL))

		err := client.Ping(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "/v1/models", gotPath)
	})

	t.Run("server unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := completion.NewOpenAICompatible(testConfig(server.URL))

		err := client.Ping(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreachable")
	})
}
