package service

import (
	"context"
	"fmt"

	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/internal/mapper"
	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/internal/pkg/metrics"
	"ai-llm-demos-be/pkg/essay"
	"ai-llm-demos-be/pkg/events"
	"ai-llm-demos-be/pkg/llm"
	"ai-llm-demos-be/pkg/rag/prompt"
	"ai-llm-demos-be/pkg/rag/response"
	"ai-llm-demos-be/pkg/vectorstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultTaskType = "2"

// IScoringService grades IELTS Task 2 essays against retrieved reference essays.
// ScoreEssay never fails: any error yields the degraded fallback evaluation.
type IScoringService interface {
	ScoreEssay(ctx context.Context, request *dto.EssayRequest) *dto.EvaluationResponse
}

type ScoringOptions struct {
	TopK                int
	SimilarityThreshold float64
	Events              events.IPublisher // optional
}

type scoringService struct {
	searcher     vectorstore.Searcher
	llmProvider  llm.LLMProvider
	preprocessor *essay.Preprocessor
	mapper       *mapper.EssayMapper
	logger       logger.ILogger
	opts         ScoringOptions
}

func NewScoringService(searcher vectorstore.Searcher, llmProvider llm.LLMProvider, log logger.ILogger, opts ScoringOptions) IScoringService {
	return &scoringService{
		searcher:     searcher,
		llmProvider:  llmProvider,
		preprocessor: essay.NewPreprocessor(),
		mapper:       mapper.NewEssayMapper(),
		logger:       log,
		opts:         opts,
	}
}

func (s *scoringService) ScoreEssay(ctx context.Context, request *dto.EssayRequest) (res *dto.EvaluationResponse) {
	ctx, span := otel.Tracer("essay-scoring").Start(ctx, "ScoreEssay")
	defer span.End()

	references := 0
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			res = s.fallback(err, references)
		}
	}()

	evaluation, n, err := s.score(ctx, request)
	references = n
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.fallback(err, references)
	}

	span.SetAttributes(attribute.Float64("essay.overall_band", evaluation.OverallBand))
	metrics.RecordScoring("ok", references)
	s.publishScored(ctx, evaluation.OverallBand, references, false)
	return s.mapper.ToEvaluationResponse(evaluation)
}

func (s *scoringService) score(ctx context.Context, request *dto.EssayRequest) (*response.Evaluation, int, error) {
	// 1. Clean essay and build the retrieval query
	cleaned := s.preprocessor.Clean(request.Essay)
	query := request.Question + "\n" + cleaned

	// 2. Retrieve similar reference essays
	similar, err := s.searcher.Search(ctx, query, s.opts.TopK, s.opts.SimilarityThreshold)
	if err != nil {
		return nil, 0, fmt.Errorf("similarity search failed: %w", err)
	}
	s.logger.Info("SCORING", "Found similar essays", map[string]interface{}{
		"count":     len(similar),
		"top_k":     s.opts.TopK,
		"threshold": s.opts.SimilarityThreshold,
	})

	examples := make([]string, 0, len(similar))
	for _, doc := range similar {
		examples = append(examples, doc.Content)
	}

	// 3. Build the examiner prompt
	promptText := prompt.NewScoringBuilder(request.Question, cleaned, examples).Build()
	s.logger.Debug("SCORING", "Prompt for AI", map[string]interface{}{"prompt": promptText})

	// 4. Ask the model
	reply, err := s.llmProvider.Generate(ctx, promptText, llm.WithJSONFormat())
	if err != nil {
		return nil, len(similar), fmt.Errorf("llm call failed: %w", err)
	}
	s.logger.Debug("SCORING", "AI response", map[string]interface{}{"reply": reply})

	// 5. Parse the verdict
	evaluation, err := response.ParseEvaluation(reply)
	if err != nil {
		return nil, len(similar), err
	}
	return evaluation, len(similar), nil
}

func (s *scoringService) fallback(err error, references int) *dto.EvaluationResponse {
	s.logger.Warn("SCORING", "Returning fallback evaluation", map[string]interface{}{"error": err.Error()})
	metrics.RecordScoring("fallback", references)
	evaluation := response.Fallback(err)
	s.publishScored(context.Background(), evaluation.OverallBand, references, true)
	return s.mapper.ToEvaluationResponse(evaluation)
}

func (s *scoringService) publishScored(ctx context.Context, band float64, references int, fallback bool) {
	publishEvent(ctx, s.opts.Events, s.logger, events.New(events.TypeEssayScored, map[string]interface{}{
		"overall_band": band,
		"references":   references,
		"fallback":     fallback,
	}))
}
