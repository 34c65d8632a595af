package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
)

// fakeCompletionServer emulates the OpenAI-compatible chat completion
// endpoint and captures the last request body.
func fakeCompletionServer(t *testing.T, content string, lastBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*lastBody = body
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestGenerator(t *testing.T, baseURL string) *Generator {
	t.Helper()
	return NewGenerator("test-token", baseURL, "test-model", logger.NewTestLogger(t))
}

func TestGenerateRoundOne(t *testing.T) {
	var lastBody map[string]any
	srv := fakeCompletionServer(t, "```html\n<html><body>todo</body></html>\n```", &lastBody)
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL+"/v1")
	artifact, err := gen.Generate(context.Background(), "a todo list", 1, "", []string{"logo.png"})
	require.NoError(t, err)

	assert.Equal(t, "<html><body>todo</body></html>", artifact, "fences must be stripped")

	messages := lastBody["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)["content"].(string)
	user := messages[1].(map[string]any)["content"].(string)
	assert.Contains(t, system, "single, complete HTML file")
	assert.Contains(t, user, "a todo list")
	assert.Contains(t, user, "logo.png")
}

func TestGenerateRevisionIncludesExistingArtifact(t *testing.T) {
	var lastBody map[string]any
	srv := fakeCompletionServer(t, "<html><body>v2</body></html>", &lastBody)
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL+"/v1")
	artifact, err := gen.Generate(context.Background(), "add dark mode", 2, "<html>v1</html>", nil)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>v2</body></html>", artifact)

	messages := lastBody["messages"].([]any)
	system := messages[0].(map[string]any)["content"].(string)
	user := messages[1].(map[string]any)["content"].(string)
	assert.Contains(t, system, "update an existing HTML file")
	assert.Contains(t, user, "<html>v1</html>")
	assert.Contains(t, user, "add dark mode")
}

func TestGenerateEmptyContentFails(t *testing.T) {
	srv := fakeCompletionServer(t, "```html\n```", nil)
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL+"/v1")
	_, err := gen.Generate(context.Background(), "a todo list", 1, "", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationFailed, apperrors.CodeOf(err))
}

func TestGenerateServiceErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "bad request"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL+"/v1")
	_, err := gen.Generate(context.Background(), "a todo list", 1, "", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationFailed, apperrors.CodeOf(err))
}
