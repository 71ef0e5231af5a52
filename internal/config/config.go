package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Ai      AIConfig
	Essay   EssayConfig
	Routing RoutingConfig
	Events  EventsConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	BodyLimitBytes     int
}

type AIConfig struct {
	LLMProvider    string // "ollama" or "openai"
	LLMModel       string // e.g. "llama3", "gpt-4o-mini"
	LLMBaseURL     string
	LLMApiKey      string
	LLMTemperature float64
	LLMTimeout     time.Duration

	EmbeddingProvider string // "openai", "ollama" or "gemini"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingApiKey   string

	// Circuit breaker around the LLM provider
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

type EssayConfig struct {
	CsvPath             string
	VectorStorePath     string
	BatchSize           int
	BatchDelay          time.Duration
	TopK                int
	SimilarityThreshold float64
	QueryCacheTTL       time.Duration
}

type RoutingConfig struct {
	InventoryBaseURL string
	InventoryTimeout time.Duration
	MaxToolRounds    int
}

// EventsConfig controls the in-process event bus. An empty NatsURL keeps events local (logged only).
type EventsConfig struct {
	Topic             string
	BufferSize        int64
	NatsURL           string
	NatsStream        string
	NatsSubjectPrefix string
	RelayMaxAttempts  int
	RelayBackoff      time.Duration
}

type TracingConfig struct {
	Enabled      bool
	OtlpEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			BodyLimitBytes:     getEnvAsInt("APP_BODY_LIMIT_BYTES", 1*1024*1024),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
			LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
			LLMApiKey:      getEnv("OPENAI_API_KEY", ""),
			LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),

			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingApiKey:   getEnv("EMBEDDING_API_KEY", getEnv("OPENAI_API_KEY", "")),

			BreakerMaxFailures: getEnvAsInt("LLM_BREAKER_MAX_FAILURES", 5),
			BreakerOpenTimeout: getEnvAsDuration("LLM_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Essay: EssayConfig{
			CsvPath:             getEnv("ESSAY_CSV_PATH", "data/ielts_writing_dataset.csv"),
			VectorStorePath:     getEnv("VECTOR_STORE_PATH", "data/vector_store.json"),
			BatchSize:           getEnvAsInt("INGEST_BATCH_SIZE", 100),
			BatchDelay:          getEnvAsDuration("INGEST_BATCH_DELAY", 5*time.Second),
			TopK:                getEnvAsInt("SCORING_TOP_K", 5),
			SimilarityThreshold: getEnvAsFloat("SCORING_SIMILARITY_THRESHOLD", 0.7),
			QueryCacheTTL:       getEnvAsDuration("EMBEDDING_CACHE_TTL", 30*time.Minute),
		},
		Routing: RoutingConfig{
			InventoryBaseURL: getEnv("INVENTORY_BASE_URL", "http://localhost:8000"),
			InventoryTimeout: getEnvAsDuration("INVENTORY_TIMEOUT", 30*time.Second),
			MaxToolRounds:    getEnvAsInt("ROUTING_MAX_TOOL_ROUNDS", 6),
		},
		Events: EventsConfig{
			Topic:             getEnv("EVENTS_TOPIC", "ai-demo-events"),
			BufferSize:        int64(getEnvAsInt("EVENTS_BUFFER_SIZE", 64)),
			NatsURL:           getEnv("NATS_URL", ""),
			NatsStream:        getEnv("NATS_STREAM", "AI_DEMO_EVENTS"),
			NatsSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "ai-demo"),
			RelayMaxAttempts:  getEnvAsInt("EVENTS_RELAY_MAX_ATTEMPTS", 5),
			RelayBackoff:      getEnvAsDuration("EVENTS_RELAY_BACKOFF", 500*time.Millisecond),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "ai-llm-demos-backend"),
		},
	}
}

// ResolveVectorStorePath makes the store path absolute and creates its parent directories.
func (c *EssayConfig) ResolveVectorStorePath() (string, error) {
	abs, err := filepath.Abs(c.VectorStorePath)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", err
	}
	c.VectorStorePath = abs
	return abs, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("5s", "250ms") or plain milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
