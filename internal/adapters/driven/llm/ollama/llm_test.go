package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
)

func TestChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: message{Role: "assistant", Content: " They share SQL.\n"},
			Done:    true,
		})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	out, err := svc.Chat(context.Background(),
		[]driven.ChatMessage{{Role: "user", Content: "Compare."}},
		driven.ChatOptions{MaxTokens: 300, StopWords: []string{"\n\n"}})
	require.NoError(t, err)
	assert.Equal(t, "They share SQL.", out)

	assert.Equal(t, DefaultLLMModel, got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "5m0s", got.KeepAlive)
	require.NotNil(t, got.Options)
	assert.Equal(t, 300, got.Options.NumPredict)
	assert.Equal(t, []string{"\n\n"}, got.Options.Stop)
}

func TestChat_NoOptions(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_ = json.NewEncoder(w).Encode(chatResponse{Message: message{Content: "ok"}})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, KeepAlive: time.Hour})
	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.NotContains(t, raw, "options")
	assert.Equal(t, "1h0m0s", raw["keep_alive"])
}

func TestChat_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Message: message{Content: "  "}, Done: true, DoneReason: "stop"})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestChat_BusyIsRateLimited(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "server busy", status)
		}))

		svc := NewLLMService(LLMConfig{BaseURL: server.URL})
		_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
		server.Close()

		assert.ErrorIs(t, err, domain.ErrRateLimited, "status %d", status)
		assert.ErrorContains(t, err, "server busy")
	}
}

func TestChat_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL + "/"})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())

	down := NewLLMService(LLMConfig{BaseURL: server.URL + "/missing"})
	assert.ErrorContains(t, down.Ping(context.Background()), "status 404")
}
