package describer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch4uTR/TarimKocum/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func geminiResponseBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			},
		}},
	}
}

func TestDescribeSuccessTrimsWhitespace(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		gotPrompt = req.Contents[0].Parts[0].Text
		require.Len(t, req.SafetySettings, 1)
		assert.Equal(t, "HARM_CATEGORY_DANGEROUS_CONTENT", req.SafetySettings[0].Category)

		_ = json.NewEncoder(w).Encode(geminiResponseBody("  Elma kara lekesi mantar kaynaklı bir hastalıktır.  \n"))
	}))
	defer server.Close()

	g := NewGemini(config.GeminiConfig{APIKey: "test-key", Endpoint: server.URL}, testLogger())

	got := g.Describe(context.Background(), "Apple___Apple_scab")
	assert.Equal(t, "Elma kara lekesi mantar kaynaklı bir hastalıktır.", got)

	// The prompt embeds the normalized label: trimmed, lower-cased,
	// underscores replaced with spaces.
	assert.Contains(t, gotPrompt, "'apple   apple scab'")
}

func TestDescribeMissingKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	g := NewGemini(config.GeminiConfig{APIKey: "", Endpoint: server.URL}, testLogger())

	got := g.Describe(context.Background(), "Apple___Apple_scab")
	assert.Equal(t, "API key not found - Description unavailable", got)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDescribeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	g := NewGemini(
		config.GeminiConfig{APIKey: "test-key", Endpoint: server.URL},
		testLogger(),
		WithTimeout(50*time.Millisecond),
	)

	got := g.Describe(context.Background(), "Late_blight")
	assert.Equal(t, "Could not get description for Late_blight - Request timed out", got)
}

func TestDescribeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewGemini(config.GeminiConfig{APIKey: "test-key", Endpoint: server.URL}, testLogger())

	got := g.Describe(context.Background(), "Late_blight")
	assert.True(t, strings.HasPrefix(got, "Could not process description for Late_blight. Error:"), got)
}

func TestDescribeEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	g := NewGemini(config.GeminiConfig{APIKey: "test-key", Endpoint: server.URL}, testLogger())

	got := g.Describe(context.Background(), "Late_blight")
	assert.NotEmpty(t, got)
	assert.True(t, strings.HasPrefix(got, "Could not process description for Late_blight."), got)
}
