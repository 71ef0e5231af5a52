package response

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReply = `{
  "taskResponse": 6,
  "coherenceCohesion": 6.5,
  "lexicalResource": 7,
  "grammaticalRangeAccuracy": 6,
  "overallBand": 6.5,
  "examinerFeedback": "Clear position.",
  "suggestions": {
    "taskResponse": "Develop examples.",
    "coherenceCohesion": "Vary linkers.",
    "lexicalResource": "Fewer repetitions.",
    "grammaticalRangeAccuracy": "Check articles."
  }
}`

func TestParseEvaluationFullReply(t *testing.T) {
	got, err := ParseEvaluation(fullReply)
	require.NoError(t, err)

	assert.Equal(t, 6.0, got.TaskResponse)
	assert.Equal(t, 6.5, got.CoherenceCohesion)
	assert.Equal(t, 6.5, got.OverallBand)
	assert.Equal(t, "Clear position.", got.ExaminerFeedback)
	assert.Len(t, got.Suggestions, 4)
	assert.Equal(t, "Check articles.", got.Suggestions["grammaticalRangeAccuracy"])
}

func TestParseEvaluationSkipsLeadingCommentary(t *testing.T) {
	got, err := ParseEvaluation("Sure! Here is my evaluation:\n" + fullReply + "\nHope this helps.")
	require.NoError(t, err)
	assert.Equal(t, 6.5, got.OverallBand)
}

func TestParseEvaluationNumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  float64
	}{
		{name: "string number", reply: `{"taskResponse": "7"}`, want: 7.0},
		{name: "padded string", reply: `{"taskResponse": " 6.5 "}`, want: 6.5},
		{name: "unparseable string", reply: `{"taskResponse": "seven"}`, want: DefaultScore},
		{name: "NaN string", reply: `{"taskResponse": "NaN"}`, want: DefaultScore},
		{name: "Inf string", reply: `{"taskResponse": "Inf"}`, want: DefaultScore},
		{name: "negative infinity string", reply: `{"taskResponse": "-infinity"}`, want: DefaultScore},
		{name: "boolean", reply: `{"taskResponse": true}`, want: DefaultScore},
		{name: "null", reply: `{"taskResponse": null}`, want: DefaultScore},
		{name: "absent", reply: `{}`, want: DefaultScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvaluation(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.TaskResponse)
		})
	}
}

func TestParseEvaluationDefaults(t *testing.T) {
	got, err := ParseEvaluation(`{"taskResponse": 7}`)
	require.NoError(t, err)

	assert.Equal(t, DefaultScore, got.OverallBand)
	assert.Equal(t, NoFeedback, got.ExaminerFeedback)
	assert.Equal(t, map[string]string{GeneralSuggestionKey: GeneralSuggestionText}, got.Suggestions)
}

func TestParseEvaluationSuggestionCoercion(t *testing.T) {
	got, err := ParseEvaluation(`{"examinerFeedback": 8, "suggestions": {"taskResponse": "ok", "lexicalResource": null, "grammaticalRangeAccuracy": 3}}`)
	require.NoError(t, err)

	assert.Equal(t, "8", got.ExaminerFeedback)
	assert.Equal(t, map[string]string{"taskResponse": "ok", "grammaticalRangeAccuracy": "3"}, got.Suggestions)

	got, err = ParseEvaluation(`{"suggestions": ["not", "a", "map"]}`)
	require.NoError(t, err)
	assert.Equal(t, GeneralSuggestionText, got.Suggestions[GeneralSuggestionKey])
}

func TestParseEvaluationRejectsNonObjects(t *testing.T) {
	for _, reply := range []string{"", "I cannot grade this.", "null", "[1,2]"} {
		_, err := ParseEvaluation(reply)
		assert.Error(t, err, reply)
	}
}

func TestFallback(t *testing.T) {
	got := Fallback(errors.New("llm timeout"))

	for _, score := range []float64{got.TaskResponse, got.CoherenceCohesion, got.LexicalResource, got.GrammaticalRangeAccuracy, got.OverallBand} {
		assert.Equal(t, FallbackScore, score)
	}
	assert.Equal(t, "Could not evaluate properly. llm timeout", got.ExaminerFeedback)
	assert.Equal(t, map[string]string{"general": "Please check your essay format and try again."}, got.Suggestions)
}
