package mapper

import (
	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/internal/entity"
	"ai-llm-demos-be/pkg/rag/response"
	"ai-llm-demos-be/pkg/vectorstore"
)

type EssayMapper struct{}

func NewEssayMapper() *EssayMapper {
	return &EssayMapper{}
}

// ToDocument builds the vector store record. The ID is left empty so the store assigns one.
func (m *EssayMapper) ToDocument(e *entity.EssayDocument) vectorstore.Document {
	return vectorstore.Document{
		Content: e.Content,
		Metadata: map[string]interface{}{
			"type":        entity.EssayDocumentType,
			"band":        e.BandScore,
			"question":    e.Question,
			"topic":       e.Topic,
			"word_count":  e.WordCount,
			"source_line": e.SourceLine,
		},
	}
}

func (m *EssayMapper) ToEvaluationResponse(e *response.Evaluation) *dto.EvaluationResponse {
	if e == nil {
		return nil
	}
	return &dto.EvaluationResponse{
		TaskResponse:             e.TaskResponse,
		CoherenceCohesion:        e.CoherenceCohesion,
		LexicalResource:          e.LexicalResource,
		GrammaticalRangeAccuracy: e.GrammaticalRangeAccuracy,
		OverallBand:              e.OverallBand,
		ExaminerFeedback:         e.ExaminerFeedback,
		Suggestions:              e.Suggestions,
	}
}
