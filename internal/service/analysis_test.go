package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handoc/internal/analyzer"
	"handoc/internal/model"
	"handoc/internal/repository"
	"handoc/internal/storage"
)

type stubAnalyzer struct {
	got  analyzer.Options
	text string
	err  error
}

func (s *stubAnalyzer) Analyze(_ context.Context, text string, opts analyzer.Options) (*analyzer.Result, error) {
	s.got, s.text = opts, text
	if s.err != nil {
		return nil, s.err
	}
	return &analyzer.Result{Summary: "요약", Model: "gpt-3.5-turbo", ConfidenceScore: 0.3, ProcessingTime: 2}, nil
}

type stubReanalyzer struct {
	prev    *model.Analysis
	premium bool
}

func (s *stubReanalyzer) Reanalyze(_ context.Context, prev *model.Analysis, premium bool) (*model.Analysis, error) {
	s.prev, s.premium = prev, premium
	return &model.Analysis{ID: "an-new", DocumentID: prev.DocumentID}, nil
}

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		ID:          "an-1",
		DocumentID:  "doc-1",
		Summary:     "문서 요약",
		Keywords:    []model.Keyword{{Keyword: "인공지능", Frequency: 3, Importance: 0.9}},
		QAPairs:     []model.QAPair{{Question: "무엇?", Answer: "분석", Confidence: 0.8}},
		RawText:     "raw",
		CleanedText: "clean",
		AIModel:     "gpt-4",
		CreatedAt:   time.Now(),
	}
}

func newAnalysisService(r *repoSet) (AnalysisService, *stubAnalyzer, *stubReanalyzer) {
	a, re := &stubAnalyzer{}, &stubReanalyzer{}
	return NewAnalysisService(r.repos(), r.store, a, re), a, re
}

func expectOwned(r *repoSet, ctx context.Context, owner string) {
	r.analyses.On("FindByID", ctx, "an-1").Return(sampleAnalysis(), nil)
	r.docs.On("FindByID", ctx, "doc-1").
		Return(&model.Document{ID: "doc-1", UserID: owner, OriginalFilename: "report.pdf", Status: model.StatusCompleted}, nil)
}

func TestAnalysisService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(r *repoSet)
		wantErr    error
	}{
		{name: "owned", setupMocks: func(r *repoSet) { expectOwned(r, ctx, "user-1") }},
		{name: "other owner", setupMocks: func(r *repoSet) { expectOwned(r, ctx, "user-2") }, wantErr: ErrAnalysisNotFound},
		{
			name: "missing",
			setupMocks: func(r *repoSet) {
				r.analyses.On("FindByID", ctx, "an-1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRepoSet()
			svc, _, _ := newAnalysisService(r)
			tt.setupMocks(r)

			a, err := svc.Get(ctx, "user-1", "an-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "an-1", a.ID)
		})
	}
}

func TestAnalysisService_List(t *testing.T) {
	ctx := context.Background()
	r := newRepoSet()
	svc, _, _ := newAnalysisService(r)
	minConf := 0.5

	r.analyses.On("List", ctx, repository.AnalysisFilter{
		UserID:        "user-1",
		AIModel:       "gpt-4",
		MinConfidence: &minConf,
		Sort:          repository.Sort{By: "confidence_score", Order: "desc"},
		Page:          repository.PageQuery{Limit: 5, Offset: 0},
	}).Return(&repository.PageResult[model.Analysis]{Items: []model.Analysis{*sampleAnalysis()}, Total: 6}, nil)

	res, err := svc.List(ctx, "user-1", AnalysisListQuery{Limit: 5, AIModel: "gpt-4", MinConfidence: &minConf, SortBy: "confidence_score"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)

	tooHigh := 1.5
	_, err = svc.List(ctx, "user-1", AnalysisListQuery{MinConfidence: &tooHigh})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "min_confidence", ve.Field)

	_, err = svc.List(ctx, "user-1", AnalysisListQuery{SortBy: "file_size"})
	assert.ErrorAs(t, err, &ve)
}

func TestAnalysisService_ByDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("latest", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-1"}, nil)
		r.analyses.On("LatestByDocument", ctx, "doc-1").Return(sampleAnalysis(), nil)

		a, err := svc.ByDocument(ctx, "user-1", "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "an-1", a.ID)
	})

	t.Run("no analysis yet", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-1"}, nil)
		r.analyses.On("LatestByDocument", ctx, "doc-1").Return(nil, repository.ErrNotFound)

		_, err := svc.ByDocument(ctx, "user-1", "doc-1")
		assert.ErrorIs(t, err, ErrNoAnalysis)
		assert.Contains(t, err.Error(), "분석 결과가 없습니다")
	})

	t.Run("foreign document", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-2"}, nil)

		_, err := svc.ByDocument(ctx, "user-1", "doc-1")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		r.analyses.AssertNotCalled(t, "LatestByDocument", mock.Anything, mock.Anything)
	})
}

func TestAnalysisService_AnalyzeText(t *testing.T) {
	ctx := context.Background()
	r := newRepoSet()
	svc, stub, _ := newAnalysisService(r)

	res, err := svc.AnalyzeText(ctx, &model.User{ID: "user-1"}, TextAnalysisInput{Text: "인공지능은   문서를 분석합니다. 결과는 요약됩니다."})
	require.NoError(t, err)
	assert.Equal(t, "요약", res.Summary)
	assert.Equal(t, "ko", stub.got.Language)
	assert.False(t, stub.got.Premium)
	assert.NotContains(t, stub.text, "   ")
	assert.Positive(t, res.Statistics.WordCount)

	_, err = svc.AnalyzeText(ctx, &model.User{ID: "user-1"}, TextAnalysisInput{Text: "   \n "})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	stub.err = errors.New("provider down")
	_, err = svc.AnalyzeText(ctx, &model.User{ID: "user-1"}, TextAnalysisInput{Text: "hello world", Language: "en"})
	assert.ErrorContains(t, err, "provider down")
	assert.Equal(t, "en", stub.got.Language)
}

func TestAnalysisService_Reanalyze(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(time.Hour)
	premium := &model.User{ID: "user-1", IsActive: true, IsPremium: true, SubscriptionExpiresAt: &future}
	free := &model.User{ID: "user-1", IsActive: true}

	t.Run("premium user", func(t *testing.T) {
		r := newRepoSet()
		svc, _, re := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-1", Status: model.StatusCompleted}, nil)
		r.analyses.On("LatestByDocument", ctx, "doc-1").Return(sampleAnalysis(), nil)

		a, err := svc.Reanalyze(ctx, premium, "doc-1", true)
		require.NoError(t, err)
		assert.Equal(t, "an-new", a.ID)
		assert.True(t, re.premium)
		assert.Equal(t, "an-1", re.prev.ID)
	})

	t.Run("not completed", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-1", Status: model.StatusFailed}, nil)

		_, err := svc.Reanalyze(ctx, free, "doc-1", false)
		assert.ErrorIs(t, err, ErrNotCompleted)
	})

	t.Run("premium model for free user", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-1", Status: model.StatusCompleted}, nil)

		_, err := svc.Reanalyze(ctx, free, "doc-1", true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("no previous analysis", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		r.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", UserID: "user-1", Status: model.StatusCompleted}, nil)
		r.analyses.On("LatestByDocument", ctx, "doc-1").Return(nil, repository.ErrNotFound)

		_, err := svc.Reanalyze(ctx, free, "doc-1", false)
		assert.ErrorIs(t, err, ErrNoAnalysis)
	})
}

func TestAnalysisService_SummaryAndMarkdown(t *testing.T) {
	ctx := context.Background()
	r := newRepoSet()
	svc, _, _ := newAnalysisService(r)
	expectOwned(r, ctx, "user-1")

	sum, err := svc.Summary(ctx, "user-1", "an-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.KeywordCount)
	assert.Equal(t, 1, sum.QACount)

	md, err := svc.Markdown(ctx, "user-1", "an-1")
	require.NoError(t, err)
	assert.Equal(t, "analysis_an-1.md", md.Filename)
	assert.True(t, strings.HasPrefix(md.Content, "# 문서 분석 결과"))
}

func TestAnalysisService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("stores html and presigns", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		expectOwned(r, ctx, "user-1")

		var stored string
		r.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "exports/an-1/") && strings.HasSuffix(key, ".html")
		}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.ContentType == "text/html; charset=utf-8" && opt.Size > 0
		})).Run(func(args mock.Arguments) {
			stored = args.String(1)
		}).Return(storage.ObjectInfo{}, nil)
		r.store.On("PresignGet", ctx, mock.AnythingOfType("string"), ExportURLExpiry).
			Return("https://minio.local/exports/an-1/x.html?sig=1", nil)

		res, err := svc.Export(ctx, "user-1", "an-1", "html")

		require.NoError(t, err)
		assert.Equal(t, "https://minio.local/exports/an-1/x.html?sig=1", res.URL)
		assert.Equal(t, "analysis_an-1.html", res.Filename)
		assert.Equal(t, "html", res.Format)
		assert.NotEmpty(t, stored)
		r.store.AssertCalled(t, "PresignGet", ctx, stored, ExportURLExpiry)
	})

	t.Run("unknown format", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)

		_, err := svc.Export(ctx, "user-1", "an-1", "pdf")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "format", ve.Field)
		r.analyses.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		r := newRepoSet()
		svc, _, _ := newAnalysisService(r)
		expectOwned(r, ctx, "user-1")
		r.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("bucket gone"))

		_, err := svc.Export(ctx, "user-1", "an-1", "json")
		assert.ErrorContains(t, err, "store export: bucket gone")
	})
}

func TestAnalysisService_Delete(t *testing.T) {
	ctx := context.Background()
	r := newRepoSet()
	svc, _, _ := newAnalysisService(r)
	expectOwned(r, ctx, "user-1")
	r.analyses.On("Delete", ctx, "an-1").Return(nil)

	require.NoError(t, svc.Delete(ctx, "user-1", "an-1"))
	r.analyses.AssertExpectations(t)

	r2 := newRepoSet()
	svc2, _, _ := newAnalysisService(r2)
	expectOwned(r2, ctx, "user-2")
	assert.ErrorIs(t, svc2.Delete(ctx, "user-1", "an-1"), ErrNotFound)
	r2.analyses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
