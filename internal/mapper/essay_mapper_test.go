package mapper

import (
	"testing"

	"ai-llm-demos-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestToDocumentMetadata(t *testing.T) {
	doc := NewEssayMapper().ToDocument(&entity.EssayDocument{
		Content:    "content",
		BandScore:  "6.5",
		Question:   "q",
		Topic:      "tech",
		WordCount:  250,
		SourceLine: 7,
	})

	assert.Empty(t, doc.ID)
	assert.Equal(t, "content", doc.Content)
	assert.Equal(t, map[string]interface{}{
		"type":        "task2_essay",
		"band":        "6.5",
		"question":    "q",
		"topic":       "tech",
		"word_count":  250,
		"source_line": 7,
	}, doc.Metadata)
}

func TestNilConversions(t *testing.T) {
	m := NewEssayMapper()
	assert.Nil(t, m.ToEvaluationResponse(nil))
	assert.Nil(t, NewRoutingMapper().ToRouteResponse(nil))
}
