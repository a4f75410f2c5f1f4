package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"handoc/internal/model"
	"handoc/internal/repository"
)

const maxCommentLength = 2000

type FeedbackInput struct {
	Type       string  `json:"type"`
	Rating     *int    `json:"rating"`
	Comment    string  `json:"comment"`
	AnalysisID *string `json:"analysis_id"`
	PageURL    string  `json:"page_url"`
}

// RequestMeta is what the handler knows about the caller.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

type FeedbackService interface {
	// Submit records feedback. user may be nil for anonymous feedback; an
	// analysis_id must then still exist, and for a signed-in user it must be
	// one of their own.
	Submit(ctx context.Context, user *model.User, in FeedbackInput, meta RequestMeta) (*model.Feedback, error)
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	analyses repository.AnalysisRepository
	docs     repository.DocumentRepository
	now      func() time.Time
}

func NewFeedbackService(repos repository.Repositories) FeedbackService {
	return &feedbackService{
		feedback: repos.Feedback,
		analyses: repos.Analyses,
		docs:     repos.Documents,
		now:      time.Now,
	}
}

func (s *feedbackService) Submit(ctx context.Context, user *model.User, in FeedbackInput, meta RequestMeta) (*model.Feedback, error) {
	typ := model.FeedbackType(strings.ToLower(strings.TrimSpace(in.Type)))
	if typ == "" {
		typ = model.FeedbackGeneral
	}
	if !typ.Valid() {
		return nil, invalid("type", "알 수 없는 피드백 유형입니다")
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, invalid("rating", "평점은 1에서 5 사이여야 합니다")
	}
	comment := strings.TrimSpace(in.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, invalid("comment", fmt.Sprintf("최대 %d자까지 입력할 수 있습니다", maxCommentLength))
	}
	if in.Rating == nil && comment == "" {
		return nil, invalid("", "평점 또는 의견을 입력해주세요")
	}

	if in.AnalysisID != nil && *in.AnalysisID != "" {
		if _, err := uuid.Parse(*in.AnalysisID); err != nil {
			return nil, invalid("analysis_id", "올바른 분석 ID가 아닙니다")
		}
		if err := s.checkAnalysis(ctx, user, *in.AnalysisID); err != nil {
			return nil, err
		}
	} else {
		in.AnalysisID = nil
	}

	f := &model.Feedback{
		ID:         uuid.New().String(),
		AnalysisID: in.AnalysisID,
		Rating:     in.Rating,
		Comment:    comment,
		Type:       typ,
		UserAgent:  meta.UserAgent,
		IPAddress:  meta.IPAddress,
		PageURL:    in.PageURL,
		CreatedAt:  s.now().UTC(),
	}
	if user != nil {
		id := user.ID
		f.UserID = &id
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	return f, nil
}

func (s *feedbackService) checkAnalysis(ctx context.Context, user *model.User, id string) error {
	a, err := s.analyses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}
	if user == nil {
		return nil
	}
	doc, err := s.docs.FindByID(ctx, a.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}
	if doc.UserID != user.ID {
		return ErrForbidden
	}
	return nil
}
