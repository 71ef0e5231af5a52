package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/pkg/embedding"
	"ai-llm-demos-be/pkg/events"
	"ai-llm-demos-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubEvaluation = `Here is the evaluation:
{
  "taskResponse": 6,
  "coherenceCohesion": 7,
  "lexicalResource": 6.5,
  "grammaticalRangeAccuracy": 6,
  "overallBand": 6.5,
  "examinerFeedback": "A clear, well organised answer.",
  "suggestions": {
    "taskResponse": "Extend the second argument.",
    "coherenceCohesion": "Use fewer linking words.",
    "lexicalResource": "Avoid repeating 'important'.",
    "grammaticalRangeAccuracy": "Check subject-verb agreement."
  }
}`

type unusedEmbedder struct{}

func (unusedEmbedder) Generate(context.Context, string, string) (*embedding.EmbeddingResponse, error) {
	return nil, errors.New("empty store should not embed")
}

func essayRequest() *dto.EssayRequest {
	return &dto.EssayRequest{
		Question: strings.Repeat("Some people believe technology isolates us. ", 3),
		Essay:    strings.TrimSpace(strings.Repeat("Technology connects people  across distances , but it can also replace real contact . ", 20)),
	}
}

func newScoring(searcher vectorstore.Searcher, llmStub *stubLLM) IScoringService {
	return NewScoringService(searcher, llmStub, logger.NewNopLogger(), ScoringOptions{TopK: 5, SimilarityThreshold: 0.7})
}

func TestScoreEssayEndToEndWithEmptyStore(t *testing.T) {
	store := vectorstore.NewSimpleStore(unusedEmbedder{})
	llmStub := &stubLLM{reply: stubEvaluation}

	res := newScoring(store, llmStub).ScoreEssay(context.Background(), essayRequest())

	assert.Equal(t, 6.5, res.OverallBand)
	assert.Equal(t, 7.0, res.CoherenceCohesion)
	assert.Len(t, res.Suggestions, 4)
	for _, key := range []string{"taskResponse", "coherenceCohesion", "lexicalResource", "grammaticalRangeAccuracy"} {
		assert.Contains(t, res.Suggestions, key)
	}

	require.Len(t, llmStub.prompts, 1)
	assert.NotContains(t, llmStub.prompts[0], "Example Essays for Reference")
}

func TestScoreEssayBuildsQueryAndPrompt(t *testing.T) {
	searcher := &stubSearcher{docs: []vectorstore.Document{{Content: "REFERENCE ESSAY BAND 8"}}}
	llmStub := &stubLLM{reply: stubEvaluation}
	req := &dto.EssayRequest{Question: "Discuss both views.", Essay: "First  line .\nSecond line"}

	newScoring(searcher, llmStub).ScoreEssay(context.Background(), req)

	assert.Equal(t, "Discuss both views.\nFirst line. Second line", searcher.lastQuery)
	assert.Equal(t, 5, searcher.lastTopK)
	assert.Contains(t, llmStub.prompts[0], " Example ---\nREFERENCE ESSAY BAND 8\n\n")
	assert.Contains(t, llmStub.prompts[0], "Essay to evaluate:\nFirst line. Second line\n\n")
}

func TestScoreEssayFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		searcher *stubSearcher
		llm      *stubLLM
		cause    string
	}{
		{name: "search fails", searcher: &stubSearcher{err: errors.New("index offline")}, llm: &stubLLM{reply: stubEvaluation}, cause: "index offline"},
		{name: "llm fails", searcher: &stubSearcher{}, llm: &stubLLM{err: errors.New("rate limited")}, cause: "rate limited"},
		{name: "reply not json", searcher: &stubSearcher{}, llm: &stubLLM{reply: "I refuse."}, cause: "parse evaluation reply"},
		{name: "provider panics", searcher: &stubSearcher{}, llm: &stubLLM{panics: true}, cause: "provider exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newScoring(tt.searcher, tt.llm).ScoreEssay(context.Background(), essayRequest())
			require.NotNil(t, res)

			for _, score := range []float64{res.TaskResponse, res.CoherenceCohesion, res.LexicalResource, res.GrammaticalRangeAccuracy, res.OverallBand} {
				assert.Equal(t, 1.0, score)
			}
			assert.True(t, strings.HasPrefix(res.ExaminerFeedback, "Could not evaluate properly. "))
			assert.Contains(t, res.ExaminerFeedback, tt.cause)
			assert.Equal(t, map[string]string{"general": "Please check your essay format and try again."}, res.Suggestions)
		})
	}
}

func TestScoreEssayPublishesEvents(t *testing.T) {
	sink := &recordingSink{}
	opts := ScoringOptions{TopK: 5, SimilarityThreshold: 0.7, Events: sink}

	ok := NewScoringService(&stubSearcher{}, &stubLLM{reply: stubEvaluation}, logger.NewNopLogger(), opts)
	ok.ScoreEssay(context.Background(), essayRequest())

	failing := NewScoringService(&stubSearcher{}, &stubLLM{err: errors.New("timeout")}, logger.NewNopLogger(), opts)
	failing.ScoreEssay(context.Background(), essayRequest())

	got := sink.received()
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeEssayScored, got[0].EventType())
	assert.Equal(t, 6.5, got[0].Payload()["overall_band"])
	assert.Equal(t, false, got[0].Payload()["fallback"])
	assert.Equal(t, true, got[1].Payload()["fallback"])
}
