package postgres

import (
	"context"
	"database/sql"

	"handoc/internal/model"
	"handoc/internal/repository"
)

type FeedbackPostgres struct {
	db *sql.DB
}

func NewFeedbackPostgres(db *sql.DB) *FeedbackPostgres {
	return &FeedbackPostgres{db: db}
}

var _ repository.FeedbackRepository = (*FeedbackPostgres)(nil)

func (r *FeedbackPostgres) Create(ctx context.Context, f *model.Feedback) error {
	const q = `
		INSERT INTO feedback (id, user_id, analysis_id, rating, comment, feedback_type,
			user_agent, ip_address, page_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, q,
		f.ID,
		f.UserID,
		f.AnalysisID,
		f.Rating,
		f.Comment,
		string(f.Type),
		f.UserAgent,
		f.IPAddress,
		f.PageURL,
		f.CreatedAt,
	)
	return err
}
