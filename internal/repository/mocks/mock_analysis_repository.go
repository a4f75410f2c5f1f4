package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"handoc/internal/model"
	"handoc/internal/repository"
)

type MockAnalysisRepository struct {
	mock.Mock
}

var _ repository.AnalysisRepository = (*MockAnalysisRepository)(nil)

func (m *MockAnalysisRepository) Create(ctx context.Context, a *model.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnalysisRepository) FindByID(ctx context.Context, id string) (*model.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) LatestByDocument(ctx context.Context, documentID string) (*model.Analysis, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) List(ctx context.Context, f repository.AnalysisFilter) (*repository.PageResult[model.Analysis], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Analysis]), args.Error(1)
}

func (m *MockAnalysisRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAnalysisRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	return m.Called(ctx, documentID).Error(0)
}

func (m *MockAnalysisRepository) Stats(ctx context.Context, userID string) (*model.AnalysisStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisStats), args.Error(1)
}
