package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoringBuilderIncludesEssayAndCriteria(t *testing.T) {
	out := NewScoringBuilder("Some people think X.", "I believe X is right.", nil).Build()

	assert.True(t, strings.HasPrefix(out, "You are an experienced IELTS examiner."))
	assert.Contains(t, out, "Question: Some people think X.\n\n")
	assert.Contains(t, out, "Essay to evaluate:\nI believe X is right.\n\n")
	assert.Contains(t, out, "1. Task Response (TR): Address all parts, develop position, support ideas\n")
	assert.Contains(t, out, "4. Grammatical Range & Accuracy (GRA): Sentence structures, grammar, punctuation\n")
	assert.NotContains(t, out, "Example Essays for Reference")
}

func TestScoringBuilderExamplesInOrder(t *testing.T) {
	out := NewScoringBuilder("q", "e", []string{"first reference", "second reference"}).Build()

	assert.Contains(t, out, "Example Essays for Reference:\n Example ---\nfirst reference\n\n Example ---\nsecond reference\n\n")
	assert.Less(t, strings.Index(out, "first reference"), strings.Index(out, "second reference"))
	assert.Less(t, strings.Index(out, "second reference"), strings.Index(out, "Provide evaluation"))
}

func TestScoringBuilderOutputSchema(t *testing.T) {
	out := NewScoringBuilder("q", "e", nil).Build()

	for _, key := range []string{"taskResponse", "coherenceCohesion", "lexicalResource", "grammaticalRangeAccuracy", "overallBand"} {
		assert.Contains(t, out, "  \""+key+"\": [score 1-9],\n")
	}
	assert.Contains(t, out, "\"examinerFeedback\": \"[detailed feedback]\"")
	assert.Contains(t, out, "    \"grammaticalRangeAccuracy\": \"[specific suggestions]\"\n  }\n}\n")
}
