// Package essay holds the text normalisation applied to IELTS essays before they
// are embedded or scored.
package essay

import (
	"regexp"
	"strings"
)

// DefaultTopic is returned when no topic can be derived from a question.
const DefaultTopic = "general"

var (
	whitespacePattern  = regexp.MustCompile(`\s+`)
	punctuationPattern = regexp.MustCompile(`\s([.,;:!?])`)

	// Stock IELTS task phrasing. Order matters: "agree" is removed before
	// "disagree", so "disagree" collapses to "dis".
	questionWords = []string{
		"discuss", "to what extent", "advantages", "disadvantages",
		"opinion", "view", "agree", "disagree",
	}
)

// Preprocessor is stateless; the zero value is ready to use.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Clean collapses whitespace runs and drops the space in front of punctuation.
func (p *Preprocessor) Clean(text string) string {
	if text == "" {
		return ""
	}
	cleaned := whitespacePattern.ReplaceAllString(text, " ")
	cleaned = punctuationPattern.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}

// CountWords counts whitespace separated tokens.
func (p *Preprocessor) CountWords(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

// ExtractTopic strips task phrasing from a question and keeps its first clause.
func (p *Preprocessor) ExtractTopic(question string) string {
	if question == "" {
		return DefaultTopic
	}

	lowercase := strings.ToLower(question)
	for _, word := range questionWords {
		lowercase = strings.ReplaceAll(lowercase, word, "")
	}

	firstSentence := lowercase
	if idx := strings.IndexAny(lowercase, ".,"); idx >= 0 {
		firstSentence = lowercase[:idx]
	}

	topic := strings.TrimSpace(firstSentence)
	if topic == "" {
		return DefaultTopic
	}
	return topic
}
