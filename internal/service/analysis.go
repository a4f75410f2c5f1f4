package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"handoc/internal/analyzer"
	"handoc/internal/model"
	"handoc/internal/report"
	"handoc/internal/repository"
	"handoc/internal/storage"
	"handoc/internal/textclean"
)

// ExportURLExpiry is how long a presigned export link stays valid.
const ExportURLExpiry = time.Hour

// Analyzer runs the AI tasks over cleaned text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts analyzer.Options) (*analyzer.Result, error)
}

// Reanalyzer creates a new analysis from an existing one.
type Reanalyzer interface {
	Reanalyze(ctx context.Context, prev *model.Analysis, premium bool) (*model.Analysis, error)
}

type AnalysisListQuery struct {
	Page          int
	Limit         int
	Language      string
	AIModel       string
	MinConfidence *float64
	SortBy        string
	SortOrder     string
}

type TextAnalysisInput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type TextAnalysisResult struct {
	Summary            string                    `json:"summary"`
	Keywords           []model.Keyword           `json:"keywords"`
	QAPairs            []model.QAPair            `json:"qa_pairs"`
	ImportantSentences []model.ImportantSentence `json:"important_sentences"`
	Statistics         textclean.Statistics      `json:"statistics"`
	ProcessingTime     float64                   `json:"processing_time"`
	ConfidenceScore    float64                   `json:"confidence_score"`
}

type MarkdownResult struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

type ExportResult struct {
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AnalysisService exposes the analyses of one owner's documents.
type AnalysisService interface {
	List(ctx context.Context, userID string, q AnalysisListQuery) (*model.ListResult[model.Analysis], error)
	Get(ctx context.Context, userID, id string) (*model.Analysis, error)

	// ByDocument returns the newest analysis of the document, or ErrNoAnalysis.
	ByDocument(ctx context.Context, userID, documentID string) (*model.Analysis, error)

	// AnalyzeText cleans and analyses the text without storing anything.
	AnalyzeText(ctx context.Context, user *model.User, in TextAnalysisInput) (*TextAnalysisResult, error)

	// Reanalyze runs the analysis again over the stored text of a completed document.
	Reanalyze(ctx context.Context, user *model.User, documentID string, usePremiumModel bool) (*model.Analysis, error)

	Summary(ctx context.Context, userID, id string) (*model.AnalysisSummary, error)
	Markdown(ctx context.Context, userID, id string) (*MarkdownResult, error)

	// Export renders the report, stores it under exports/ and returns a presigned URL.
	Export(ctx context.Context, userID, id, format string) (*ExportResult, error)

	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*model.AnalysisStats, error)
}

type analysisService struct {
	analyses   repository.AnalysisRepository
	docs       repository.DocumentRepository
	store      storage.Storage
	analyzer   Analyzer
	reanalyzer Reanalyzer
	now        func() time.Time
}

func NewAnalysisService(repos repository.Repositories, store storage.Storage, a Analyzer, r Reanalyzer) AnalysisService {
	return &analysisService{
		analyses:   repos.Analyses,
		docs:       repos.Documents,
		store:      store,
		analyzer:   a,
		reanalyzer: r,
		now:        time.Now,
	}
}

func (s *analysisService) List(ctx context.Context, userID string, q AnalysisListQuery) (*model.ListResult[model.Analysis], error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if q.MinConfidence != nil && (*q.MinConfidence < 0 || *q.MinConfidence > 1) {
		return nil, invalid("min_confidence", "0에서 1 사이여야 합니다")
	}
	sort, err := normalizeSort(q.SortBy, q.SortOrder, "created_at", "created_at", "confidence_score", "processing_time")
	if err != nil {
		return nil, err
	}

	res, err := s.analyses.List(ctx, repository.AnalysisFilter{
		UserID:        userID,
		Language:      q.Language,
		AIModel:       q.AIModel,
		MinConfidence: q.MinConfidence,
		Sort:          sort,
		Page:          repository.PageQuery{Limit: limit, Offset: (page - 1) * limit},
	})
	if err != nil {
		return nil, err
	}
	out := model.NewListResult(res.Items, res.Total, page, limit)
	return &out, nil
}

func (s *analysisService) Get(ctx context.Context, userID, id string) (*model.Analysis, error) {
	a, _, err := s.owned(ctx, userID, id)
	return a, err
}

// owned loads the analysis and its document, hiding analyses of other users.
func (s *analysisService) owned(ctx context.Context, userID, id string) (*model.Analysis, *model.Document, error) {
	if id == "" {
		return nil, nil, ErrIDRequired
	}
	a, err := s.analyses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAnalysisNotFound
		}
		return nil, nil, err
	}
	doc, err := s.docs.FindByID(ctx, a.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAnalysisNotFound
		}
		return nil, nil, err
	}
	if doc.UserID != userID {
		return nil, nil, ErrAnalysisNotFound
	}
	return a, doc, nil
}

func (s *analysisService) ownedDocument(ctx context.Context, userID, documentID string) (*model.Document, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.UserID != userID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *analysisService) ByDocument(ctx context.Context, userID, documentID string) (*model.Analysis, error) {
	if _, err := s.ownedDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}
	a, err := s.analyses.LatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoAnalysis
		}
		return nil, err
	}
	return a, nil
}

func (s *analysisService) AnalyzeText(ctx context.Context, user *model.User, in TextAnalysisInput) (*TextAnalysisResult, error) {
	cleaned := textclean.Clean(in.Text, textclean.DefaultOptions())
	if strings.TrimSpace(cleaned.CleanedText) == "" {
		return nil, invalid("text", "분석할 텍스트를 입력해주세요")
	}
	lang := in.Language
	if lang == "" {
		lang = cleaned.Language
	}
	if lang != model.LanguageKorean && lang != model.LanguageEnglish {
		lang = model.LanguageKorean
	}

	res, err := s.analyzer.Analyze(ctx, cleaned.CleanedText, analyzer.Options{
		Language: lang,
		Premium:  user.IsPremiumActive(s.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	return &TextAnalysisResult{
		Summary:            res.Summary,
		Keywords:           res.Keywords,
		QAPairs:            res.QAPairs,
		ImportantSentences: res.ImportantSentences,
		Statistics:         cleaned.Statistics,
		ProcessingTime:     res.ProcessingTime,
		ConfidenceScore:    res.ConfidenceScore,
	}, nil
}

func (s *analysisService) Reanalyze(ctx context.Context, user *model.User, documentID string, usePremiumModel bool) (*model.Analysis, error) {
	doc, err := s.ownedDocument(ctx, user.ID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != model.StatusCompleted {
		return nil, ErrNotCompleted
	}
	premium := user.IsPremiumActive(s.now())
	if usePremiumModel && !premium {
		return nil, ErrForbidden
	}

	prev, err := s.analyses.LatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoAnalysis
		}
		return nil, err
	}
	return s.reanalyzer.Reanalyze(ctx, prev, premium)
}

func (s *analysisService) Summary(ctx context.Context, userID, id string) (*model.AnalysisSummary, error) {
	a, _, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	o := a.Overview()
	return &o, nil
}

func (s *analysisService) Markdown(ctx context.Context, userID, id string) (*MarkdownResult, error) {
	a, _, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &MarkdownResult{
		Content:  report.Markdown(a),
		Filename: report.Filename(a.ID, report.FormatMarkdown),
	}, nil
}

func (s *analysisService) Export(ctx context.Context, userID, id, format string) (*ExportResult, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return nil, invalid("format", err.Error())
	}
	a, doc, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	content, err := report.Render(doc.OriginalFilename, a, f)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}

	now := s.now()
	key := storage.ExportKey(a.ID, f.Extension(), now)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: f.ContentType(),
	}); err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, ExportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	return &ExportResult{
		URL:       url,
		Filename:  report.Filename(a.ID, f),
		Format:    string(f),
		ExpiresAt: now.Add(ExportURLExpiry).UTC(),
	}, nil
}

func (s *analysisService) Delete(ctx context.Context, userID, id string) error {
	if _, _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.analyses.Delete(ctx, id)
}

func (s *analysisService) Stats(ctx context.Context, userID string) (*model.AnalysisStats, error) {
	return s.analyses.Stats(ctx, userID)
}
