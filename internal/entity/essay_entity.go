package entity

// EssayDocument is one reference essay built from a CSV row.
type EssayDocument struct {
	Content    string
	BandScore  string
	Question   string
	Topic      string
	WordCount  int
	SourceLine int
}

const EssayDocumentType = "task2_essay"
