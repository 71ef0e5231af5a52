package bootstrap

import (
	"fmt"
	"log"

	"ai-llm-demos-be/internal/config"
	"ai-llm-demos-be/internal/controller"
	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/internal/pkg/metrics"
	"ai-llm-demos-be/internal/service"
	"ai-llm-demos-be/pkg/embedding"
	"ai-llm-demos-be/pkg/events"
	embeddingopenai "ai-llm-demos-be/pkg/embedding/openai"
	"ai-llm-demos-be/pkg/inventory"
	"ai-llm-demos-be/pkg/llm"
	"ai-llm-demos-be/pkg/llm/breaker"
	"ai-llm-demos-be/pkg/llm/factory"
	natspub "ai-llm-demos-be/pkg/nats"
	"ai-llm-demos-be/pkg/vectorstore"
)

type Container struct {
	// Controllers
	EssayController   controller.IEssayController
	RoutingController controller.IRoutingController
	HealthController  controller.IHealthController

	// Startup
	EssayLoader service.IEssayLoaderService
	VectorStore vectorstore.VectorStore
	EventRelay  service.IEventRelayService

	Logger logger.ILogger

	closers []func()
}

// Close releases the event bus and any broker connection.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus, relayed to NATS when configured
	bus := events.NewBus(cfg.Events.Topic, cfg.Events.BufferSize)
	closers := []func(){func() { _ = bus.Close() }}

	var sink events.IPublisher
	if cfg.Events.NatsURL != "" {
		publisher, err := natspub.NewPublisher(cfg.Events.NatsURL, cfg.Events.NatsStream, cfg.Events.NatsSubjectPrefix)
		if err != nil {
			return nil, err
		}
		closers = append(closers, publisher.Close)
		sink = publisher
		log.Printf("[INFO] Relaying events to NATS: %s", cfg.Events.NatsURL)
	}

	// 3. Embeddings + vector store
	embeddingProvider, err := newEmbeddingProvider(cfg.Ai)
	if err != nil {
		return nil, err
	}
	if cfg.Essay.QueryCacheTTL > 0 {
		embeddingProvider = embedding.NewCachedProvider(embeddingProvider, cfg.Essay.QueryCacheTTL)
	}
	store := vectorstore.NewSimpleStore(embeddingProvider)

	// 4. LLM, guarded by a circuit breaker
	baseProvider, err := factory.NewLLMProvider(factory.Params{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     cfg.Ai.LLMBaseURL,
		ApiKey:      cfg.Ai.LLMApiKey,
		Temperature: cfg.Ai.LLMTemperature,
		Timeout:     cfg.Ai.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	llmProvider := breaker.Wrap(baseProvider, breaker.Settings{
		Name:        cfg.Ai.LLMProvider,
		MaxFailures: cfg.Ai.BreakerMaxFailures,
		OpenTimeout: cfg.Ai.BreakerOpenTimeout,
		OnStateChange: func(name, from, to string) {
			metrics.RecordBreakerTransition(to)
			sysLogger.Warn("LLM", "Circuit breaker state changed", map[string]interface{}{
				"provider": name,
				"from":     from,
				"to":       to,
			})
		},
	})

	// 5. Services
	inventoryClient := inventory.NewClient(cfg.Routing.InventoryBaseURL, cfg.Routing.InventoryTimeout)

	essayLoader := service.NewEssayLoaderService(store, sysLogger, service.LoaderOptions{
		StorePath:  cfg.Essay.VectorStorePath,
		BatchSize:  cfg.Essay.BatchSize,
		BatchDelay: cfg.Essay.BatchDelay,
		Events:     bus,
	})
	scoringService := service.NewScoringService(store, llmProvider, sysLogger, service.ScoringOptions{
		TopK:                cfg.Essay.TopK,
		SimilarityThreshold: cfg.Essay.SimilarityThreshold,
		Events:              bus,
	})
	routingService := service.NewRoutingService(inventoryClient, llmProvider, sysLogger, cfg.Routing.MaxToolRounds)

	eventRelay := service.NewEventRelayService(bus, sink, sysLogger, service.RelayOptions{
		MaxAttempts: cfg.Events.RelayMaxAttempts,
		Backoff:     cfg.Events.RelayBackoff,
	})

	// 6. Controllers
	return &Container{
		EssayController:   controller.NewEssayController(scoringService),
		RoutingController: controller.NewRoutingController(routingService),
		HealthController:  controller.NewHealthController(store, cfg.Essay.VectorStorePath, breakerState(llmProvider)),

		EssayLoader: essayLoader,
		VectorStore: store,
		EventRelay:  eventRelay,
		Logger:      sysLogger,

		closers: closers,
	}, nil
}

func newEmbeddingProvider(cfg config.AIConfig) (embedding.EmbeddingProvider, error) {
	switch cfg.EmbeddingProvider {
	case "ollama":
		baseURL := cfg.EmbeddingBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.EmbeddingModel)
		return embedding.NewOllamaProvider(baseURL, cfg.EmbeddingModel), nil
	case "gemini":
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.EmbeddingModel)
		return embedding.NewGeminiProvider(cfg.EmbeddingApiKey, cfg.EmbeddingModel), nil
	case "openai":
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.EmbeddingModel)
		return embeddingopenai.NewProvider(cfg.EmbeddingApiKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

func breakerState(p llm.LLMProvider) controller.BreakerState {
	switch b := p.(type) {
	case *breaker.ToolProvider:
		return b.State
	case *breaker.Provider:
		return b.State
	}
	return nil
}
