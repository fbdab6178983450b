package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectorFor maps a prompt to a deterministic vector so order can be checked.
func vectorFor(prompt string) []float64 {
	return []float64{float64(len(prompt)), 1}
}

func newEmbedServer(t *testing.T, inFlight *atomic.Int32, peak *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inFlight != nil {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if strings.Contains(req.Prompt, "boom") {
			http.Error(w, "model exploded", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: vectorFor(req.Prompt)})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultConcurrency, svc.concurrency)
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestEmbed(t *testing.T) {
	server := newEmbedServer(t, nil, nil)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	vec, err := svc.Embed(context.Background(), "graph theory")
	require.NoError(t, err)
	assert.Equal(t, []float32{12, 1}, vec)
}

func TestEmbed_ServerError(t *testing.T) {
	server := newEmbedServer(t, nil, nil)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "model exploded")
}

func TestEmbedBatch_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := newEmbedServer(t, &inFlight, &peak)
	svc := NewEmbeddingService(Config{BaseURL: server.URL, Concurrency: 2})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff"}
	vecs, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vecs[i][0], "vector %d out of order", i)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestEmbedBatch_FailureAborts(t *testing.T) {
	server := newEmbedServer(t, nil, nil)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"fine", "boom", "also fine"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed text 1")
	assert.Nil(t, vecs)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:0"})

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close())
}
