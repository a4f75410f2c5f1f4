package repository

import (
	"context"

	"handoc/internal/model"
)

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
}
