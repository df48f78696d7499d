package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

func newTestConfig(host string) config.Config {
	var cfg config.Config
	cfg.Embedding.Host = host
	cfg.Embedding.Model = "nomic-embed-text"
	return cfg
}

func TestOpenAIAdapter_GenerateEmbeddings(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel, _ = body["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,1]}],"model":"nomic-embed-text"}`))
	}))
	defer srv.Close()

	svc, err := NewOpenAIAdapter(newTestConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	vec, err := svc.GenerateEmbeddings(context.Background(), "fintech founder")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, 1}, vec.Slice())
	assert.Equal(t, "nomic-embed-text", gotModel)
}

func TestOpenAIAdapter_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model loading","type":"server_error"}}`))
	}))
	defer srv.Close()

	svc, err := NewOpenAIAdapter(newTestConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	_, err = svc.GenerateEmbeddings(context.Background(), "text")
	assert.Error(t, err)
}

func TestOpenAIAdapter_RequiresEndpoint(t *testing.T) {
	_, err := NewOpenAIAdapter(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}
