package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"handoc/internal/model"
	"handoc/internal/service"
)

type MockFeedbackService struct {
	mock.Mock
}

var _ service.FeedbackService = (*MockFeedbackService)(nil)

func (m *MockFeedbackService) Submit(ctx context.Context, user *model.User, in service.FeedbackInput, meta service.RequestMeta) (*model.Feedback, error) {
	args := m.Called(ctx, user, in, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Feedback), args.Error(1)
}
