package service

import (
	"context"
	"fmt"
	"sync"

	"ai-llm-demos-be/pkg/llm"
	"ai-llm-demos-be/pkg/vectorstore"
)

// recordingWriter captures the sequence of store writes.
type recordingWriter struct {
	events    []string
	upserted  int
	failAfter int // fail the Nth upsert (1-based); 0 never fails
	calls     int
}

func (w *recordingWriter) Upsert(_ context.Context, batch []vectorstore.Document) error {
	w.calls++
	if w.failAfter > 0 && w.calls == w.failAfter {
		return fmt.Errorf("embedding quota exceeded")
	}
	w.events = append(w.events, fmt.Sprintf("upsert:%d", len(batch)))
	w.upserted += len(batch)
	return nil
}

func (w *recordingWriter) Save(string) error {
	w.events = append(w.events, "save")
	return nil
}

type stubSearcher struct {
	docs      []vectorstore.Document
	err       error
	lastQuery string
	lastTopK  int
}

func (s *stubSearcher) Search(_ context.Context, query string, topK int, _ float64) ([]vectorstore.Document, error) {
	s.lastQuery = query
	s.lastTopK = topK
	return s.docs, s.err
}

// stubLLM answers every call with a fixed reply.
type stubLLM struct {
	reply   string
	err     error
	panics  bool
	prompts []string
	history [][]llm.Message
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.history = append(s.history, history)
	return s.reply, s.err
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	if s.panics {
		panic("provider exploded")
	}
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

// toolLLM invokes the given tool script before answering.
type toolLLM struct {
	stubLLM
	script []scriptedCall
	errs   []error
}

type scriptedCall struct {
	tool string
	args string
}

func (t *toolLLM) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, _ ...llm.Option) (string, error) {
	t.history = append(t.history, history)
	byName := make(map[string]llm.Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	for _, call := range t.script {
		_, err := byName[call.tool].Handler(ctx, call.args)
		t.errs = append(t.errs, err)
	}
	return t.reply, t.err
}

type stubInventory struct {
	mu           sync.Mutex
	devicesCalls int
	routeCalls   int
	err          error
}

func (s *stubInventory) FetchDevices(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devicesCalls++
	return `[{"id":"dpu-1","manual_text":"100GbE"}]`, s.err
}

func (s *stubInventory) FetchTopology(context.Context) (string, error) {
	return `{"topology":{"nodes":[{"id":"1"},{"id":"2"}],"connections":[{"from":"1","to":"2"}]}}`, s.err
}

func (s *stubInventory) Route(context.Context, []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routeCalls++
	return `{"paths":[["1","2"]]}`, s.err
}
