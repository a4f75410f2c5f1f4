package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"handoc/internal/model"
	"handoc/internal/repository"
)

type MockFeedbackRepository struct {
	mock.Mock
}

var _ repository.FeedbackRepository = (*MockFeedbackRepository)(nil)

func (m *MockFeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	return m.Called(ctx, f).Error(0)
}
