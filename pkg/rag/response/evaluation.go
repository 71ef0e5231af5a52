package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultScore          = 5.0
	FallbackScore         = 1.0
	NoFeedback            = "No feedback provided"
	FallbackFeedback      = "Could not evaluate properly. "
	GeneralSuggestionKey  = "general"
	GeneralSuggestionText = "Please check your essay format and try again."
)

var errEmptyEvaluation = errors.New("evaluation reply is not a JSON object")

// Evaluation is the examiner's verdict on one essay.
type Evaluation struct {
	TaskResponse             float64           `json:"taskResponse"`
	CoherenceCohesion        float64           `json:"coherenceCohesion"`
	LexicalResource          float64           `json:"lexicalResource"`
	GrammaticalRangeAccuracy float64           `json:"grammaticalRangeAccuracy"`
	OverallBand              float64           `json:"overallBand"`
	ExaminerFeedback         string            `json:"examinerFeedback"`
	Suggestions              map[string]string `json:"suggestions"`
}

// ParseEvaluation reads the model's reply. Any text before the first '{' and
// anything after the first complete JSON value is ignored. Missing or
// unreadable fields fall back to their defaults; only a reply that is not a
// JSON object at all is an error.
func ParseEvaluation(reply string) (*Evaluation, error) {
	raw := strings.TrimSpace(reply)
	if idx := strings.Index(raw, "{"); idx > 0 {
		raw = raw[idx:]
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&fields); err != nil {
		return nil, fmt.Errorf("parse evaluation reply: %w", err)
	}
	if fields == nil {
		return nil, errEmptyEvaluation
	}

	return &Evaluation{
		TaskResponse:             scoreOf(fields, "taskResponse"),
		CoherenceCohesion:        scoreOf(fields, "coherenceCohesion"),
		LexicalResource:          scoreOf(fields, "lexicalResource"),
		GrammaticalRangeAccuracy: scoreOf(fields, "grammaticalRangeAccuracy"),
		OverallBand:              scoreOf(fields, "overallBand"),
		ExaminerFeedback:         feedbackOf(fields["examinerFeedback"]),
		Suggestions:              suggestionsOf(fields["suggestions"]),
	}, nil
}

// Fallback is the degraded evaluation returned whenever scoring fails.
func Fallback(cause error) *Evaluation {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Evaluation{
		TaskResponse:             FallbackScore,
		CoherenceCohesion:        FallbackScore,
		LexicalResource:          FallbackScore,
		GrammaticalRangeAccuracy: FallbackScore,
		OverallBand:              FallbackScore,
		ExaminerFeedback:         FallbackFeedback + msg,
		Suggestions:              defaultSuggestions(),
	}
}

func scoreOf(fields map[string]interface{}, key string) float64 {
	switch v := fields[key].(type) {
	case nil:
		return DefaultScore
	case float64:
		if isFinite(v) {
			return v
		}
	case string:
		// ParseFloat accepts "NaN" and "Inf", which cannot be encoded as JSON.
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && isFinite(f) {
			return f
		}
	}
	return DefaultScore
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func feedbackOf(v interface{}) string {
	if v == nil {
		return NoFeedback
	}
	return stringify(v)
}

func suggestionsOf(v interface{}) map[string]string {
	out := make(map[string]string)
	if raw, ok := v.(map[string]interface{}); ok {
		for key, value := range raw {
			if value == nil {
				continue
			}
			out[key] = stringify(value)
		}
	}
	if len(out) == 0 {
		return defaultSuggestions()
	}
	return out
}

func defaultSuggestions() map[string]string {
	return map[string]string{GeneralSuggestionKey: GeneralSuggestionText}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
