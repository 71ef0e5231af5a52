package prompt

import (
	"strings"
)

// Criterion is one of the four IELTS Writing Task 2 marking criteria.
type Criterion struct {
	Key        string // JSON key in the evaluation reply
	Label      string
	Definition string
}

var Criteria = []Criterion{
	{Key: "taskResponse", Label: "Task Response (TR)", Definition: "Address all parts, develop position, support ideas"},
	{Key: "coherenceCohesion", Label: "Coherence & Cohesion (CC)", Definition: "Logical organization, paragraphing, linking devices"},
	{Key: "lexicalResource", Label: "Lexical Resource (LR)", Definition: "Vocabulary range, accuracy, collocations"},
	{Key: "grammaticalRangeAccuracy", Label: "Grammatical Range & Accuracy (GRA)", Definition: "Sentence structures, grammar, punctuation"},
}

// ScoringBuilder builds the examiner prompt for a single essay
type ScoringBuilder struct {
	question string
	essay    string
	examples []string
}

// NewScoringBuilder takes the cleaned essay and the raw text of retrieved reference essays.
func NewScoringBuilder(question, essay string, examples []string) *ScoringBuilder {
	return &ScoringBuilder{
		question: question,
		essay:    essay,
		examples: examples,
	}
}

func (b *ScoringBuilder) Build() string {
	var prompt strings.Builder

	b.writeRole(&prompt)
	b.writeCriteria(&prompt)
	b.writeExamples(&prompt)
	b.writeOutputFormat(&prompt)

	return prompt.String()
}

func (b *ScoringBuilder) writeRole(prompt *strings.Builder) {
	prompt.WriteString("You are an experienced IELTS examiner. Evaluate this essay based on IELTS Writing Task 2 criteria.\n\n")
	prompt.WriteString("Question: ")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n")
	prompt.WriteString("Essay to evaluate:\n")
	prompt.WriteString(b.essay)
	prompt.WriteString("\n\n")
}

func (b *ScoringBuilder) writeCriteria(prompt *strings.Builder) {
	prompt.WriteString("Scoring Criteria:\n")
	for i, c := range Criteria {
		prompt.WriteString(string(rune('1' + i)))
		prompt.WriteString(". ")
		prompt.WriteString(c.Label)
		prompt.WriteString(": ")
		prompt.WriteString(c.Definition)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\n")
}

// writeExamples is a no-op when retrieval found nothing.
func (b *ScoringBuilder) writeExamples(prompt *strings.Builder) {
	if len(b.examples) == 0 {
		return
	}

	prompt.WriteString("Example Essays for Reference:\n")
	for _, example := range b.examples {
		prompt.WriteString(" Example ---\n")
		prompt.WriteString(example)
		prompt.WriteString("\n\n")
	}
}

func (b *ScoringBuilder) writeOutputFormat(prompt *strings.Builder) {
	prompt.WriteString("Provide evaluation in this exact JSON format:\n")
	prompt.WriteString("{\n")
	for _, c := range Criteria {
		prompt.WriteString("  \"" + c.Key + "\": [score 1-9],\n")
	}
	prompt.WriteString("  \"overallBand\": [score 1-9],\n")
	prompt.WriteString("  \"examinerFeedback\": \"[detailed feedback]\",\n")
	prompt.WriteString("  \"suggestions\": {\n")
	for i, c := range Criteria {
		prompt.WriteString("    \"" + c.Key + "\": \"[specific suggestions]\"")
		if i < len(Criteria)-1 {
			prompt.WriteString(",")
		}
		prompt.WriteString("\n")
	}
	prompt.WriteString("  }\n")
	prompt.WriteString("}\n")
}
