package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ai-llm-demos-be/internal/entity"
	"ai-llm-demos-be/internal/mapper"
	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/internal/pkg/metrics"
	"ai-llm-demos-be/pkg/essay"
	"ai-llm-demos-be/pkg/events"
	"ai-llm-demos-be/pkg/vectorstore"
)

const (
	minColumns = 9

	colTaskType     = 0
	colQuestion     = 1
	colEssay        = 2
	colComment      = 3
	colOverallScore = 8

	skipColumns    = "too_few_columns"
	skipTaskType   = "not_task_2"
	skipMissing    = "missing_fields"
	skipParseError = "parse_error"
)

// IEssayLoaderService populates the vector store from the reference essay CSV.
type IEssayLoaderService interface {
	LoadEssays(ctx context.Context, csvPath string) (*IngestionSummary, error)
}

type IngestionSummary struct {
	AlreadyLoaded   bool
	TotalLines      int
	Processed       int
	Skipped         int
	SkippedByReason map[string]int
	Batches         int
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type LoaderOptions struct {
	StorePath  string
	BatchSize  int
	BatchDelay time.Duration
	Sleep      SleepFunc // nil means a real timer
	Events     events.IPublisher
}

type essayLoaderService struct {
	store        vectorstore.Writer
	preprocessor *essay.Preprocessor
	mapper       *mapper.EssayMapper
	logger       logger.ILogger
	opts         LoaderOptions
}

func NewEssayLoaderService(store vectorstore.Writer, log logger.ILogger, opts LoaderOptions) IEssayLoaderService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &essayLoaderService{
		store:        store,
		preprocessor: essay.NewPreprocessor(),
		mapper:       mapper.NewEssayMapper(),
		logger:       log,
		opts:         opts,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LoadEssays is a no-op when the store file already exists and is non-empty.
// Batches persisted before a failure stay on disk.
func (s *essayLoaderService) LoadEssays(ctx context.Context, csvPath string) (*IngestionSummary, error) {
	// 1. Idempotence guard
	if vectorstore.IsPersisted(s.opts.StorePath) {
		s.logger.Info("INGEST", "Vector store already loaded, skipping CSV processing", map[string]interface{}{
			"store_path": s.opts.StorePath,
		})
		return &IngestionSummary{AlreadyLoaded: true}, nil
	}

	// 2. Parse rows into documents
	file, err := os.Open(csvPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCSVNotFound, csvPath)
		}
		return nil, fmt.Errorf("open essay CSV: %w", err)
	}
	defer file.Close()

	docs, summary, err := s.parse(file)
	if err != nil {
		s.logger.Error("INGEST", "Critical error during CSV processing", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.logger.Info("INGEST", "Processing summary", map[string]interface{}{
		"total_lines": summary.TotalLines,
		"processed":   summary.Processed,
		"skipped":     summary.Skipped,
		"by_reason":   summary.SkippedByReason,
	})

	if len(docs) == 0 {
		return summary, ErrNoValidDocuments
	}

	// 3. Upsert in throttled batches, persisting after each one
	if err := s.upsertBatches(ctx, docs, summary); err != nil {
		s.logger.Error("INGEST", "Critical error during batch upsert", map[string]interface{}{
			"error":   err.Error(),
			"batches": summary.Batches,
		})
		return summary, err
	}

	publishEvent(ctx, s.opts.Events, s.logger, events.New(events.TypeEssaysIngested, map[string]interface{}{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"batches":   summary.Batches,
	}))
	return summary, nil
}

func (s *essayLoaderService) parse(r io.Reader) ([]vectorstore.Document, *IngestionSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	summary := &IngestionSummary{SkippedByReason: make(map[string]int)}
	skip := func(line int, reason, detail string) {
		summary.Skipped++
		summary.SkippedByReason[reason]++
		metrics.RecordSkippedRow(reason)
		s.logger.Debug("INGEST", "Skipped CSV row", map[string]interface{}{
			"line":   line,
			"reason": reason,
			"detail": detail,
		})
	}

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, summary, nil
		}
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}

	var docs []vectorstore.Document
	lineNumber := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNumber++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skip(lineNumber, skipParseError, parseErr.Error())
				continue
			}
			return nil, nil, fmt.Errorf("read CSV line %d: %w", lineNumber, err)
		}

		if len(row) < minColumns {
			skip(lineNumber, skipColumns, fmt.Sprintf("only %d columns found", len(row)))
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[colTaskType]), "2") {
			skip(lineNumber, skipTaskType, "task type "+strings.TrimSpace(row[colTaskType]))
			continue
		}

		question := strings.TrimSpace(row[colQuestion])
		rawEssay := strings.TrimSpace(row[colEssay])
		overall := strings.TrimSpace(row[colOverallScore])
		if question == "" || rawEssay == "" || overall == "" {
			skip(lineNumber, skipMissing, "question, essay or overall score is empty")
			continue
		}

		cleaned := s.preprocessor.Clean(rawEssay)
		doc := &entity.EssayDocument{
			Content:    buildEssayContent(question, cleaned, row[colComment], overall),
			BandScore:  overall,
			Question:   question,
			Topic:      s.preprocessor.ExtractTopic(question),
			WordCount:  s.preprocessor.CountWords(cleaned),
			SourceLine: lineNumber,
		}
		docs = append(docs, s.mapper.ToDocument(doc))
		summary.Processed++
	}

	summary.TotalLines = lineNumber - 1
	return docs, summary, nil
}

func (s *essayLoaderService) upsertBatches(ctx context.Context, docs []vectorstore.Document, summary *IngestionSummary) error {
	total := len(docs)
	for start := 0; start < total; start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > total {
			end = total
		}

		if err := s.store.Upsert(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
		if err := s.store.Save(s.opts.StorePath); err != nil {
			return fmt.Errorf("vector store persistence failed: %w", err)
		}
		summary.Batches++
		metrics.RecordIngested(end - start)

		s.logger.Info("INGEST", "Processed batch", map[string]interface{}{
			"done":     end,
			"total":    total,
			"progress": fmt.Sprintf("%.1f%%", float64(end)*100/float64(total)),
		})

		// Rate limit against the embedding provider.
		if end < total {
			if err := s.opts.Sleep(ctx, s.opts.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildEssayContent renders the text that gets embedded and later shown to the examiner model.
func buildEssayContent(question, essayText, examinerComment, overall string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "IELTS Writing Task 2 Essay (Band %s)\n\nQuestion:\n%s\n\nEssay:\n%s\n\n", overall, question, essayText)
	if examinerComment != "" {
		fmt.Fprintf(&b, "Examiner Comments:\n%s\n\n", examinerComment)
	}
	fmt.Fprintf(&b, "Scores:\n- Overall: %s", overall)
	return b.String()
}
