package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"handoc/internal/model"
	"handoc/internal/service"
)

type MockAnalysisService struct {
	mock.Mock
}

var _ service.AnalysisService = (*MockAnalysisService)(nil)

func (m *MockAnalysisService) List(ctx context.Context, userID string, q service.AnalysisListQuery) (*model.ListResult[model.Analysis], error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ListResult[model.Analysis]), args.Error(1)
}

func (m *MockAnalysisService) Get(ctx context.Context, userID, id string) (*model.Analysis, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *MockAnalysisService) ByDocument(ctx context.Context, userID, documentID string) (*model.Analysis, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *MockAnalysisService) AnalyzeText(ctx context.Context, user *model.User, in service.TextAnalysisInput) (*service.TextAnalysisResult, error) {
	args := m.Called(ctx, user, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TextAnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) Reanalyze(ctx context.Context, user *model.User, documentID string, usePremiumModel bool) (*model.Analysis, error) {
	args := m.Called(ctx, user, documentID, usePremiumModel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *MockAnalysisService) Summary(ctx context.Context, userID, id string) (*model.AnalysisSummary, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSummary), args.Error(1)
}

func (m *MockAnalysisService) Markdown(ctx context.Context, userID, id string) (*service.MarkdownResult, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MarkdownResult), args.Error(1)
}

func (m *MockAnalysisService) Export(ctx context.Context, userID, id, format string) (*service.ExportResult, error) {
	args := m.Called(ctx, userID, id, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockAnalysisService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockAnalysisService) Stats(ctx context.Context, userID string) (*model.AnalysisStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisStats), args.Error(1)
}
