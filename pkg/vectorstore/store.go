// Package vectorstore provides the similarity index used by the essay scorer.
//
// The store is process-wide state with a single writer. Callers must finish
// ingestion (Upsert/Save) before serving reads; no locking is done here.
package vectorstore

import (
	"context"
	"errors"
)

var ErrCorruptStore = errors.New("vector store file is corrupt")

// Document is a text plus free-form metadata, stored alongside its embedding.
type Document struct {
	ID        string                 `json:"id"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`

	// Score is the similarity to the last query; only set on search results.
	Score float64 `json:"-"`
}

// Searcher is the read side consumed by the scoring pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, similarityThreshold float64) ([]Document, error)
}

// Writer is the write side consumed by the ingestion loader.
type Writer interface {
	Upsert(ctx context.Context, batch []Document) error
	Save(path string) error
}

type VectorStore interface {
	Searcher
	Writer
	Load(path string) error
	Count() int
}
