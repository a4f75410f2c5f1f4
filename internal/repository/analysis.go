package repository

import (
	"context"

	"handoc/internal/model"
)

type AnalysisFilter struct {
	UserID        string
	Language      string
	AIModel       string
	MinConfidence *float64
	Sort          Sort
	Page          PageQuery
}

type AnalysisRepository interface {
	Create(ctx context.Context, a *model.Analysis) error
	FindByID(ctx context.Context, id string) (*model.Analysis, error)

	// LatestByDocument returns the newest analysis of a document or ErrNotFound.
	LatestByDocument(ctx context.Context, documentID string) (*model.Analysis, error)

	// List omits raw and cleaned text.
	List(ctx context.Context, f AnalysisFilter) (*PageResult[model.Analysis], error)
	Delete(ctx context.Context, id string) error
	DeleteByDocument(ctx context.Context, documentID string) error
	Stats(ctx context.Context, userID string) (*model.AnalysisStats, error)
}
