package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"ai-llm-demos-be/pkg/embedding"

	"github.com/google/uuid"
)

const snapshotVersion = 1

// SimpleStore is an in-memory store with brute-force cosine search and a JSON
// snapshot file for persistence.
type SimpleStore struct {
	embedder  embedding.EmbeddingProvider
	documents []Document
	index     map[string]int
}

var _ VectorStore = &SimpleStore{}

type snapshot struct {
	Version   int        `json:"version"`
	Documents []Document `json:"documents"`
}

func NewSimpleStore(embedder embedding.EmbeddingProvider) *SimpleStore {
	return &SimpleStore{
		embedder: embedder,
		index:    make(map[string]int),
	}
}

// Upsert embeds the batch and stores it. Documents whose ID already exists are overwritten in place.
func (s *SimpleStore) Upsert(ctx context.Context, batch []Document) error {
	if len(batch) == 0 {
		return nil
	}

	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	vectors, err := embedding.GenerateAll(ctx, s.embedder, texts, embedding.TaskTypeDocument)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	for i, doc := range batch {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		doc.Embedding = vectors[i]
		doc.Score = 0

		if pos, ok := s.index[doc.ID]; ok {
			s.documents[pos] = doc
			continue
		}
		s.index[doc.ID] = len(s.documents)
		s.documents = append(s.documents, doc)
	}
	return nil
}

// Search returns up to topK documents whose cosine similarity to query is at
// least similarityThreshold, most similar first.
func (s *SimpleStore) Search(ctx context.Context, query string, topK int, similarityThreshold float64) ([]Document, error) {
	if topK <= 0 || len(s.documents) == 0 {
		return []Document{}, nil
	}

	res, err := s.embedder.Generate(ctx, query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := res.Embedding.Values

	matches := make([]Document, 0, topK)
	for _, doc := range s.documents {
		score := cosineSimilarity(queryVector, doc.Embedding)
		if score < similarityThreshold {
			continue
		}
		hit := doc
		hit.Score = score
		matches = append(matches, hit)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Load replaces the store contents with the snapshot at path.
func (s *SimpleStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptStore, path, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptStore, path, snap.Version)
	}

	index := make(map[string]int, len(snap.Documents))
	for i, doc := range snap.Documents {
		if doc.ID == "" {
			return fmt.Errorf("%w: %s: document %d has no id", ErrCorruptStore, path, i)
		}
		index[doc.ID] = i
	}

	s.documents = snap.Documents
	s.index = index
	return nil
}

// Save writes the snapshot to a temp file next to path and renames it into place,
// so a crash mid-write leaves the previous file intact.
func (s *SimpleStore) Save(path string) error {
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Documents: s.documents})
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *SimpleStore) Count() int {
	return len(s.documents)
}

// IsPersisted reports whether path holds a non-empty store file.
func IsPersisted(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

// LoadIfPersisted loads path when it exists and is non-empty. A missing file is not an error.
func LoadIfPersisted(store VectorStore, path string) (bool, error) {
	if !IsPersisted(path) {
		return false, nil
	}
	if err := store.Load(path); err != nil {
		return false, err
	}
	return true, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
