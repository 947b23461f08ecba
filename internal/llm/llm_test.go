package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/specforge/internal/config"
)

func TestStatic(t *testing.T) {
	g := Static(`{"name":"x"}`)
	out, err := g.Generate(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.txt")
	require.NoError(t, os.WriteFile(path, []byte("```json\n{}\n```"), 0600))

	g, err := LoadStatic(path)
	require.NoError(t, err)
	assert.Equal(t, Static("```json\n{}\n```"), g)

	_, err = LoadStatic(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var seen string
	g := Func(func(_ context.Context, prompt string) (string, error) {
		seen = prompt
		return "ok", nil
	})
	out, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "hello", seen)
}

func TestNew_Providers(t *testing.T) {
	t.Setenv("SPECFORGE_TEST_KEY", "secret")

	g, err := New(context.Background(), &config.Config{Provider: "openai", APIKeyEnv: "SPECFORGE_TEST_KEY"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	g, err = New(context.Background(), &config.Config{Provider: "gemini", APIKeyEnv: "SPECFORGE_TEST_KEY"})
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, g)
}

func TestNew_Errors(t *testing.T) {
	t.Setenv("SPECFORGE_EMPTY_KEY", "")

	_, err := New(context.Background(), &config.Config{Provider: "openai", APIKeyEnv: "SPECFORGE_EMPTY_KEY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPECFORGE_EMPTY_KEY")

	_, err = New(context.Background(), &config.Config{Provider: "gemini", APIKeyEnv: "SPECFORGE_EMPTY_KEY"})
	require.Error(t, err)

	_, err = New(context.Background(), &config.Config{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNew_OpenAICompatibleWithoutKey(t *testing.T) {
	g, err := New(context.Background(), &config.Config{Provider: "openai", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)
}

func TestOpenAI_Generate(t *testing.T) {
	var got struct {
		Model          string `json:"model"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"name\":\"P\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := NewOpenAI("k", "test-model", srv.URL)
	out, err := g.Generate(context.Background(), "plan it")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"P"}`, out)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "plan it", got.Messages[0].Content)
}

func TestOpenAI_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", "", srv.URL).Generate(context.Background(), "p")
	require.Error(t, err)
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", "", srv.URL).Generate(context.Background(), "p")
	require.Error(t, err)
}
