package server

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"ai-llm-demos-be/internal/bootstrap"
	"ai-llm-demos-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			LogFilePath:        filepath.Join(dir, "logs", "app.log"),
			CorsAllowedOrigins: "http://localhost:3000",
			BodyLimitBytes:     1 << 20,
		},
		Ai: config.AIConfig{
			LLMProvider:        "ollama",
			LLMModel:           "llama3",
			LLMTimeout:         time.Second,
			EmbeddingProvider:  "ollama",
			EmbeddingModel:     "nomic-embed-text",
			BreakerMaxFailures: 3,
			BreakerOpenTimeout: time.Second,
		},
		Essay: config.EssayConfig{
			VectorStorePath:     filepath.Join(dir, "store.json"),
			BatchSize:           100,
			TopK:                5,
			SimilarityThreshold: 0.7,
			QueryCacheTTL:       time.Minute,
		},
		Routing: config.RoutingConfig{InventoryBaseURL: "http://127.0.0.1:1", InventoryTimeout: time.Second, MaxToolRounds: 6},
	}
}

func TestServerWiring(t *testing.T) {
	cfg := testConfig(t)
	container, err := bootstrap.NewContainer(cfg)
	require.NoError(t, err)
	app := New(cfg, container).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","storedEssays":0,"vectorStorePersisted":false,"llmBreaker":"closed"}`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/ai4ne/simple_llm", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestUnknownProviderFailsBootstrap(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ai.EmbeddingProvider = "word2vec"

	_, err := bootstrap.NewContainer(cfg)
	assert.ErrorContains(t, err, "unsupported embedding provider")
}
