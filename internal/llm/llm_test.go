package llm_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/bookrec/internal/config"
	"github.com/edgard/bookrec/internal/llm"
	"github.com/edgard/bookrec/internal/logger"
)

const geminiReply = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": " Good Omens\nIt is funny."}]},
    "finishReason": "STOP"
  }]
}`

func geminiConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:    "gemini",
		Model:       "gemini-test",
		APIKey:      "test-key",
		BaseURL:     baseURL,
		MaxTokens:   300,
		Temperature: 0.5,
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := llm.New(context.Background(), config.LLMConfig{Provider: "gpt2"}, logger.Discard())
	require.Error(t, err)
}

func TestNewGemini_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := geminiConfig("")
	cfg.APIKey = ""
	_, err := llm.NewGemini(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
}

func TestGemini_Generate(t *testing.T) {
	t.Parallel()

	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, geminiReply)
	}))
	defer server.Close()

	g, err := llm.New(context.Background(), geminiConfig(server.URL), logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "gemini/gemini-test", g.Name())

	out, err := g.Generate(context.Background(), "Recommendation:", llm.Options{MaxTokens: 300})
	require.NoError(t, err)
	assert.Equal(t, " Good Omens\nIt is funny.", out)
	assert.Contains(t, body, `"maxOutputTokens":300`)
	assert.Contains(t, body, `"candidateCount":1`)
	assert.Contains(t, body, "Recommendation:")
}

func TestGemini_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error": {"code": 503, "message": "overloaded", "status": "UNAVAILABLE"}}`)
			return
		}
		_, _ = io.WriteString(w, geminiReply)
	}))
	defer server.Close()

	g, err := llm.NewGemini(context.Background(), geminiConfig(server.URL), logger.Discard())
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "prompt", llm.Options{MaxTokens: 10})
	require.NoError(t, err)
	assert.Contains(t, out, "Good Omens")
	assert.Equal(t, int32(2), calls.Load())
}

func TestGemini_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"code": 400, "message": "bad request", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	g, err := llm.NewGemini(context.Background(), geminiConfig(server.URL), logger.Discard())
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "prompt", llm.Options{MaxTokens: 10})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGemini_EmptyCandidatesIsNotAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates": []}`)
	}))
	defer server.Close()

	g, err := llm.NewGemini(context.Background(), geminiConfig(server.URL), logger.Discard())
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "prompt", llm.Options{MaxTokens: 10})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOllama_GenerateAndPing(t *testing.T) {
	t.Parallel()

	var generateBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/generate":
			raw, _ := io.ReadAll(r.Body)
			generateBody = string(raw)
			_, _ = io.WriteString(w, `{"model":"tiny","response":" Dune\n2. Other","done":true,"done_reason":"length"}`+"\n")
		case "/api/show":
			_, _ = io.WriteString(w, `{"modelfile":"FROM tiny"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := config.LLMConfig{Provider: "ollama", Model: "tiny", BaseURL: server.URL, Timeout: 5 * time.Second}
	g, err := llm.New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "ollama/tiny", g.Name())

	require.NoError(t, g.Ping(context.Background()))

	out, err := g.Generate(context.Background(), "Recommendation:", llm.Options{MaxTokens: 300})
	require.NoError(t, err)
	assert.Equal(t, " Dune\n2. Other", out)
	assert.Contains(t, generateBody, `"raw":true`)
	assert.Contains(t, generateBody, `"num_predict":300`)
}

func TestOllama_PingMissingModel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"model 'tiny' not found"}`)
	}))
	defer server.Close()

	g, err := llm.NewOllama(config.LLMConfig{Model: "tiny", BaseURL: server.URL}, logger.Discard())
	require.NoError(t, err)
	require.Error(t, g.Ping(context.Background()))
}
