package dto

// EssayRequest is the body of POST /ai/scoreEssay.
type EssayRequest struct {
	Question string `json:"question" label:"Question" validate:"required,min=10,max=2000"`
	Essay    string `json:"essay" label:"Essay content" validate:"required,min=100,max=6000"`
	TaskType string `json:"taskType"` // defaults to "2"
}

type EvaluationResponse struct {
	TaskResponse             float64           `json:"taskResponse"`
	CoherenceCohesion        float64           `json:"coherenceCohesion"`
	LexicalResource          float64           `json:"lexicalResource"`
	GrammaticalRangeAccuracy float64           `json:"grammaticalRangeAccuracy"`
	OverallBand              float64           `json:"overallBand"`
	ExaminerFeedback         string            `json:"examinerFeedback"`
	Suggestions              map[string]string `json:"suggestions"`
}
