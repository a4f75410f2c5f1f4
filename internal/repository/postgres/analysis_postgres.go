package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"handoc/internal/model"
	"handoc/internal/repository"
)

type AnalysisPostgres struct {
	db *sql.DB
}

func NewAnalysisPostgres(db *sql.DB) *AnalysisPostgres {
	return &AnalysisPostgres{db: db}
}

var _ repository.AnalysisRepository = (*AnalysisPostgres)(nil)

const analysisColumns = `a.id, a.document_id, a.raw_text, a.cleaned_text, a.summary,
		a.keywords, a.qa_pairs, a.important_sentences, a.ai_model, a.language,
		a.processing_time, a.confidence_score, a.total_pages, a.total_words, a.total_sentences,
		a.total_paragraphs, a.created_at, a.updated_at`

// analysisListColumns leaves out the text bodies, which can be megabytes.
const analysisListColumns = `a.id, a.document_id, '', '', a.summary,
		a.keywords, a.qa_pairs, a.important_sentences, a.ai_model, a.language,
		a.processing_time, a.confidence_score, a.total_pages, a.total_words, a.total_sentences,
		a.total_paragraphs, a.created_at, a.updated_at`

var analysisSortColumns = map[string]string{
	"created_at":       "a.created_at",
	"confidence_score": "a.confidence_score",
	"processing_time":  "a.processing_time",
}

func scanAnalysis(row scanner) (*model.Analysis, error) {
	var a model.Analysis
	var keywords, qa, sentences []byte
	if err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.RawText,
		&a.CleanedText,
		&a.Summary,
		&keywords,
		&qa,
		&sentences,
		&a.AIModel,
		&a.Language,
		&a.ProcessingTime,
		&a.ConfidenceScore,
		&a.TotalPages,
		&a.TotalWords,
		&a.TotalSentences,
		&a.TotalParagraphs,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(keywords, &a.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	if err := decodeJSON(qa, &a.QAPairs); err != nil {
		return nil, fmt.Errorf("decode qa_pairs: %w", err)
	}
	if err := decodeJSON(sentences, &a.ImportantSentences); err != nil {
		return nil, fmt.Errorf("decode important_sentences: %w", err)
	}
	return &a, nil
}

func decodeJSON[T any](b []byte, dst *[]T) error {
	*dst = []T{}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func encodeJSON[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func (r *AnalysisPostgres) Create(ctx context.Context, a *model.Analysis) error {
	keywords, err := encodeJSON(a.Keywords)
	if err != nil {
		return err
	}
	qa, err := encodeJSON(a.QAPairs)
	if err != nil {
		return err
	}
	sentences, err := encodeJSON(a.ImportantSentences)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO analyses (id, document_id, raw_text, cleaned_text, summary, keywords, qa_pairs,
			important_sentences, ai_model, language, processing_time, confidence_score, total_pages,
			total_words, total_sentences, total_paragraphs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.db.ExecContext(ctx, q,
		a.ID,
		a.DocumentID,
		a.RawText,
		a.CleanedText,
		a.Summary,
		keywords,
		qa,
		sentences,
		a.AIModel,
		a.Language,
		a.ProcessingTime,
		a.ConfidenceScore,
		a.TotalPages,
		a.TotalWords,
		a.TotalSentences,
		a.TotalParagraphs,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnalysisPostgres) FindByID(ctx context.Context, id string) (*model.Analysis, error) {
	const q = `SELECT ` + analysisColumns + ` FROM analyses a WHERE a.id = $1`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AnalysisPostgres) LatestByDocument(ctx context.Context, documentID string) (*model.Analysis, error) {
	const q = `SELECT ` + analysisColumns + ` FROM analyses a
		WHERE a.document_id = $1
		ORDER BY a.created_at DESC
		LIMIT 1`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, documentID))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AnalysisPostgres) List(ctx context.Context, f repository.AnalysisFilter) (*repository.PageResult[model.Analysis], error) {
	var w where
	w.add("d.user_id = $%d", f.UserID)
	if f.Language != "" {
		w.add("a.language = $%d", f.Language)
	}
	if f.AIModel != "" {
		w.add("a.ai_model = $%d", f.AIModel)
	}
	if f.MinConfidence != nil {
		w.add("a.confidence_score >= $%d", *f.MinConfidence)
	}
	const from = ` FROM analyses a JOIN documents d ON d.id = a.document_id`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(f.Page)
	q := `SELECT ` + analysisListColumns + from + w.String() +
		orderBy(f.Sort, analysisSortColumns, "a.created_at", "a.id") + limit
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Analysis]{Items: items, Total: total}, nil
}

func (r *AnalysisPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	return err
}

func (r *AnalysisPostgres) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE document_id = $1`, documentID)
	return err
}

func (r *AnalysisPostgres) Stats(ctx context.Context, userID string) (*model.AnalysisStats, error) {
	const from = ` FROM analyses a JOIN documents d ON d.id = a.document_id WHERE d.user_id = $1`

	s := &model.AnalysisStats{
		LanguageDistribution: map[string]int{},
		ModelUsage:           map[string]int{},
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(a.processing_time), 0), COALESCE(AVG(a.confidence_score), 0)`+from,
		userID,
	).Scan(&s.TotalAnalyses, &s.AverageProcessingTime, &s.AverageConfidenceScore); err != nil {
		return nil, err
	}

	if err := r.countBy(ctx, `SELECT a.language, COUNT(*)`+from+` GROUP BY a.language`, userID, s.LanguageDistribution); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, `SELECT a.ai_model, COUNT(*)`+from+` GROUP BY a.ai_model`, userID, s.ModelUsage); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *AnalysisPostgres) countBy(ctx context.Context, q, userID string, into map[string]int) error {
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}
