// Package processing runs uploaded documents through extraction, cleaning
// and AI analysis in a pool of background workers.
package processing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"handoc/internal/analyzer"
	"handoc/internal/logger"
	"handoc/internal/model"
	"handoc/internal/pdf"
	"handoc/internal/repository"
	"handoc/internal/storage"
	"handoc/internal/textclean"
)

// Analyzer is the part of analyzer.Analyzer the processor needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts analyzer.Options) (*analyzer.Result, error)
}

type Processor struct {
	documents   repository.DocumentRepository
	analyses    repository.AnalysisRepository
	users       repository.UserRepository
	store       storage.Storage
	analyzer    Analyzer
	log         *logger.Logger
	maxFileSize int64
	now         func() time.Time
}

func NewProcessor(repos repository.Repositories, store storage.Storage, a Analyzer, log *logger.Logger, maxFileSize int64) *Processor {
	return &Processor{
		documents:   repos.Documents,
		analyses:    repos.Analyses,
		users:       repos.Users,
		store:       store,
		analyzer:    a,
		log:         log.With("processing"),
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// Process takes a document from uploaded to completed. Any failure after the
// document is loaded marks it failed with the error message and is returned.
func (p *Processor) Process(ctx context.Context, documentID string) error {
	doc, err := p.documents.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}

	doc.StartProcessing(p.now().UTC())
	if err := p.documents.Update(ctx, doc); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	analysis, err := p.run(ctx, doc)
	if err != nil {
		doc.FailProcessing(failureMessage(err), p.now().UTC())
		if uerr := p.documents.Update(context.WithoutCancel(ctx), doc); uerr != nil {
			p.log.Error("mark_failed_failed", uerr, map[string]any{"document_id": doc.ID})
		}
		return err
	}

	doc.PageCount = &analysis.TotalPages
	doc.WordCount = &analysis.TotalWords
	doc.Language = &analysis.Language
	doc.CompleteProcessing(p.now().UTC())
	if err := p.documents.Update(ctx, doc); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (p *Processor) run(ctx context.Context, doc *model.Document) (*model.Analysis, error) {
	data, err := storage.ReadObject(ctx, p.store, doc.StoragePath, p.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", doc.StoragePath, err)
	}

	extracted, err := pdf.Extract(data)
	if err != nil {
		return nil, err
	}
	cleaned := textclean.Clean(extracted.Text, textclean.DefaultOptions())

	premium := false
	if u, err := p.users.FindByID(ctx, doc.UserID); err == nil {
		premium = u.IsPremiumActive(p.now())
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	res, err := p.analyzer.Analyze(ctx, cleaned.CleanedText, analyzer.Options{
		Language: promptLanguage(cleaned.Language),
		Premium:  premium,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	now := p.now().UTC()
	a := &model.Analysis{
		ID:                 uuid.NewString(),
		DocumentID:         doc.ID,
		RawText:            extracted.Text,
		CleanedText:        cleaned.CleanedText,
		Summary:            res.Summary,
		Keywords:           res.Keywords,
		QAPairs:            res.QAPairs,
		ImportantSentences: res.ImportantSentences,
		AIModel:            res.Model,
		Language:           cleaned.Language,
		ProcessingTime:     res.ProcessingTime,
		ConfidenceScore:    res.ConfidenceScore,
		TotalPages:         extracted.PageCount,
		TotalWords:         cleaned.Statistics.WordCount,
		TotalSentences:     cleaned.Statistics.SentenceCount,
		TotalParagraphs:    cleaned.Statistics.ParagraphCount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.analyses.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return a, nil
}

// Reanalyze runs the analyzer again over the stored cleaned text of an
// existing analysis and saves the result as a new analysis.
func (p *Processor) Reanalyze(ctx context.Context, prev *model.Analysis, premium bool) (*model.Analysis, error) {
	res, err := p.analyzer.Analyze(ctx, prev.CleanedText, analyzer.Options{
		Language: promptLanguage(prev.Language),
		Premium:  premium,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	now := p.now().UTC()
	a := &model.Analysis{
		ID:                 uuid.NewString(),
		DocumentID:         prev.DocumentID,
		RawText:            prev.RawText,
		CleanedText:        prev.CleanedText,
		Summary:            res.Summary,
		Keywords:           res.Keywords,
		QAPairs:            res.QAPairs,
		ImportantSentences: res.ImportantSentences,
		AIModel:            res.Model,
		Language:           prev.Language,
		ProcessingTime:     res.ProcessingTime,
		ConfidenceScore:    res.ConfidenceScore,
		TotalPages:         prev.TotalPages,
		TotalWords:         prev.TotalWords,
		TotalSentences:     prev.TotalSentences,
		TotalParagraphs:    prev.TotalParagraphs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.analyses.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return a, nil
}

func promptLanguage(lang string) string {
	if lang == model.LanguageUnknown || lang == "" {
		return model.LanguageKorean
	}
	return lang
}

// failureMessage keeps the user-facing PDF errors as they are and prefixes
// everything else.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, pdf.ErrNoText), errors.Is(err, pdf.ErrNoPages),
		errors.Is(err, pdf.ErrOpen), errors.Is(err, pdf.ErrNotPDF):
		return err.Error()
	}
	return "문서 처리 중 오류가 발생했습니다: " + err.Error()
}
