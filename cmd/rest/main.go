package main

import (
	"context"
	"log"

	"ai-llm-demos-be/internal/bootstrap"
	"ai-llm-demos-be/internal/config"
	"ai-llm-demos-be/internal/pkg/metrics"
	"ai-llm-demos-be/internal/server"
	"ai-llm-demos-be/internal/tracer"
	"ai-llm-demos-be/pkg/vectorstore"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Resolve the vector store file (parents are created)
	storePath, err := cfg.Essay.ResolveVectorStorePath()
	if err != nil {
		log.Fatalf("[FATAL] Unable to prepare vector store path: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to bootstrap: %v", err)
	}
	defer container.Logger.Sync()
	defer container.Close()

	if err := container.EventRelay.Start(context.Background()); err != nil {
		log.Fatalf("[FATAL] Failed to start event relay: %v", err)
	}

	// 5. Load the persisted store, then ingest the CSV if nothing was persisted.
	// Both finish before the server starts; the store is not locked for reads.
	loaded, err := vectorstore.LoadIfPersisted(container.VectorStore, storePath)
	if err != nil {
		log.Fatalf("[FATAL] Error loading vector store: %v", err)
	}
	if loaded {
		log.Printf("[INFO] Loaded existing vector store from: %s (%d documents)", storePath, container.VectorStore.Count())
	}

	if _, err := container.EssayLoader.LoadEssays(context.Background(), cfg.Essay.CsvPath); err != nil {
		log.Printf("[ERROR] Essay ingestion failed, scoring will run without references: %v", err)
	}
	metrics.SetStoredDocuments(container.VectorStore.Count())

	// 6. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
