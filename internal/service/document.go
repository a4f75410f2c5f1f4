package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"handoc/internal/logger"
	"handoc/internal/model"
	"handoc/internal/pdf"
	"handoc/internal/repository"
	"handoc/internal/storage"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// EstimatedProcessingSeconds is reported to clients after an upload.
	EstimatedProcessingSeconds = 60
)

// Queue accepts document IDs for background processing.
type Queue interface {
	Enqueue(documentID string) error
}

// UploadPolicy limits what a user may upload.
type UploadPolicy struct {
	MaxFileSize      int64
	AllowedTypes     []string
	FreeMonthlyLimit int
}

// UploadResult is returned to the client after a successful upload.
type UploadResult struct {
	Message       string          `json:"message"`
	TaskID        string          `json:"task_id"`
	Document      *model.Document `json:"document"`
	EstimatedTime int             `json:"estimated_time"`
}

// DocumentListQuery carries the list filters as received from a client.
// Zero values select the defaults.
type DocumentListQuery struct {
	Page      int
	Limit     int
	Status    string
	Language  string
	SortBy    string
	SortOrder string
}

// DocumentService defines the use cases for handling documents. Every
// method is scoped to one owner; documents of other users are not found.
type DocumentService interface {
	// Upload validates the PDF, stores it under documents/<uuid>.pdf, saves the
	// row (rolling the object back if that fails) and queues it for processing.
	Upload(ctx context.Context, user *model.User, r io.Reader, originalFilename, contentType string, size int64) (*UploadResult, error)

	List(ctx context.Context, userID string, q DocumentListQuery) (*model.ListResult[model.Document], error)

	Get(ctx context.Context, userID, id string) (*model.Document, error)

	// Delete removes the stored object first, then the row and its analyses.
	Delete(ctx context.Context, userID, id string) error

	Status(ctx context.Context, userID, id string) (*model.DocumentProgress, error)

	// Reprocess drops existing analyses, resets the document and queues it again.
	Reprocess(ctx context.Context, userID, id string) error

	Stats(ctx context.Context, userID string) (*model.DocumentStats, error)
}

type documentService struct {
	store    storage.Storage
	docs     repository.DocumentRepository
	users    repository.UserRepository
	analyses repository.AnalysisRepository
	queue    Queue
	policy   UploadPolicy
	log      *logger.Logger
	now      func() time.Time
}

func NewDocumentService(store storage.Storage, repos repository.Repositories, queue Queue, policy UploadPolicy, log *logger.Logger) DocumentService {
	if policy.MaxFileSize <= 0 {
		policy.MaxFileSize = 10 * 1024 * 1024
	}
	if len(policy.AllowedTypes) == 0 {
		policy.AllowedTypes = []string{"application/pdf"}
	}
	return &documentService{
		store:    store,
		docs:     repos.Documents,
		users:    repos.Users,
		analyses: repos.Analyses,
		queue:    queue,
		policy:   policy,
		log:      log.With("documents"),
		now:      time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, user *model.User, r io.Reader, originalFilename, contentType string, size int64) (*UploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !slices.Contains(s.policy.AllowedTypes, contentType) {
		return nil, ErrInvalidFileType
	}
	if size > s.policy.MaxFileSize {
		return nil, s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(r, s.policy.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.policy.MaxFileSize {
		return nil, s.tooLarge()
	}

	now := s.now()
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	if !user.CanUpload(now, s.policy.FreeMonthlyLimit) {
		return nil, ErrUploadLimit
	}
	if err := pdf.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	genName := uuid.New().String() + ".pdf"
	key := storage.DocumentKey(genName)

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		Filename:         genName,
		OriginalFilename: originalFilename,
		FileSize:         int64(len(data)),
		StoragePath:      objInfo.Key,
		MimeType:         contentType,
		FileHash:         pdf.Hash(data),
		Status:           model.StatusUploaded,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if err := s.users.IncrementUploads(ctx, user.ID, now.UTC()); err != nil {
		s.log.Error("increment_uploads_failed", err, map[string]any{"user_id": user.ID})
	}

	s.enqueue(ctx, stored)

	return &UploadResult{
		Message:       "파일이 성공적으로 업로드되었습니다. 분석이 시작됩니다.",
		TaskID:        uuid.New().String(),
		Document:      stored,
		EstimatedTime: EstimatedProcessingSeconds,
	}, nil
}

// enqueue marks the document failed when the queue rejects it, so that the
// client sees a terminal state and can reprocess later.
func (s *documentService) enqueue(ctx context.Context, doc *model.Document) {
	err := s.queue.Enqueue(doc.ID)
	if err == nil {
		return
	}
	s.log.Warn("enqueue_failed", map[string]any{"document_id": doc.ID, "error_message": err.Error()})
	doc.FailProcessing(ErrQueueUnavailable.Error(), s.now().UTC())
	if uerr := s.docs.Update(ctx, doc); uerr != nil {
		s.log.Error("mark_failed_failed", uerr, map[string]any{"document_id": doc.ID})
	}
}

func (s *documentService) tooLarge() error {
	return fmt.Errorf("%w. 최대 %dMB까지 가능합니다", ErrFileTooLarge, s.policy.MaxFileSize/(1024*1024))
}

func (s *documentService) List(ctx context.Context, userID string, q DocumentListQuery) (*model.ListResult[model.Document], error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if q.Status != "" && !model.DocumentStatus(q.Status).Valid() {
		return nil, invalid("status", "알 수 없는 상태입니다")
	}
	sort, err := normalizeSort(q.SortBy, q.SortOrder, "created_at", "created_at", "updated_at", "filename", "file_size")
	if err != nil {
		return nil, err
	}

	res, err := s.docs.List(ctx, repository.DocumentFilter{
		UserID:   userID,
		Status:   q.Status,
		Language: q.Language,
		Sort:     sort,
		Page:     repository.PageQuery{Limit: limit, Offset: (page - 1) * limit},
	})
	if err != nil {
		return nil, err
	}
	out := model.NewListResult(res.Items, res.Total, page, limit)
	return &out, nil
}

func (s *documentService) Get(ctx context.Context, userID, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.UserID != userID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.docs.Delete(ctx, id)
}

func (s *documentService) Status(ctx context.Context, userID, id string) (*model.DocumentProgress, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p := doc.Progress()
	return &p, nil
}

func (s *documentService) Reprocess(ctx context.Context, userID, id string) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if doc.Status == model.StatusProcessing {
		return ErrAlreadyProcessing
	}
	if err := s.analyses.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete analyses: %w", err)
	}
	doc.Reset(s.now().UTC())
	if err := s.docs.Update(ctx, doc); err != nil {
		return fmt.Errorf("reset document: %w", err)
	}
	s.enqueue(ctx, doc)
	return nil
}

func (s *documentService) Stats(ctx context.Context, userID string) (*model.DocumentStats, error) {
	return s.docs.Stats(ctx, userID)
}

func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if page < 1 {
		return 0, 0, invalid("page", "1 이상이어야 합니다")
	}
	if limit < 1 || limit > maxPageLimit {
		return 0, 0, invalid("limit", fmt.Sprintf("1에서 %d 사이여야 합니다", maxPageLimit))
	}
	return page, limit, nil
}

func normalizeSort(by, order, def string, allowed ...string) (repository.Sort, error) {
	if by == "" {
		by = def
	}
	if !slices.Contains(allowed, by) {
		return repository.Sort{}, invalid("sort_by", "지원하지 않는 정렬 기준입니다")
	}
	switch order {
	case "":
		order = "desc"
	case "asc", "desc":
	default:
		return repository.Sort{}, invalid("sort_order", "asc 또는 desc만 가능합니다")
	}
	return repository.Sort{By: by, Order: order}, nil
}
