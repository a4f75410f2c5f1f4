package model

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Document is an uploaded PDF and its processing state.
// StoragePath is the object key in the bucket, never a local path.
type Document struct {
	ID                    string         `json:"id"`
	UserID                string         `json:"user_id"`
	Filename              string         `json:"filename"`
	OriginalFilename      string         `json:"original_filename"`
	FileSize              int64          `json:"file_size"`
	StoragePath           string         `json:"-"`
	MimeType              string         `json:"mime_type"`
	FileHash              string         `json:"file_hash"`
	Status                DocumentStatus `json:"status"`
	ErrorMessage          *string        `json:"error_message,omitempty"`
	PageCount             *int           `json:"page_count,omitempty"`
	WordCount             *int           `json:"word_count,omitempty"`
	Language              *string        `json:"language,omitempty"`
	ProcessingStartedAt   *time.Time     `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time     `json:"processing_completed_at,omitempty"`
	ProcessingTime        *float64       `json:"processing_time,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

func (d *Document) StartProcessing(now time.Time) {
	d.Status = StatusProcessing
	d.ProcessingStartedAt = &now
	d.ProcessingCompletedAt = nil
	d.ErrorMessage = nil
	d.UpdatedAt = now
}

// CompleteProcessing marks success and records the elapsed seconds since StartProcessing.
func (d *Document) CompleteProcessing(now time.Time) {
	d.Status = StatusCompleted
	d.ProcessingCompletedAt = &now
	if d.ProcessingStartedAt != nil {
		secs := now.Sub(*d.ProcessingStartedAt).Seconds()
		d.ProcessingTime = &secs
	}
	d.UpdatedAt = now
}

func (d *Document) FailProcessing(msg string, now time.Time) {
	d.Status = StatusFailed
	d.ErrorMessage = &msg
	d.ProcessingCompletedAt = &now
	d.UpdatedAt = now
}

// Reset puts the document back to uploaded so it can be processed again.
func (d *Document) Reset(now time.Time) {
	d.Status = StatusUploaded
	d.ErrorMessage = nil
	d.ProcessingStartedAt = nil
	d.ProcessingCompletedAt = nil
	d.ProcessingTime = nil
	d.UpdatedAt = now
}

// DocumentProgress is the status view polled by clients.
type DocumentProgress struct {
	DocumentID   string         `json:"document_id"`
	Status       DocumentStatus `json:"status"`
	Progress     int            `json:"progress"`
	CurrentStep  string         `json:"current_step"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// Progress maps the status to a percentage and a display label.
func (d *Document) Progress() DocumentProgress {
	p := DocumentProgress{DocumentID: d.ID, Status: d.Status, ErrorMessage: d.ErrorMessage}
	switch d.Status {
	case StatusUploaded:
		p.Progress, p.CurrentStep = 10, "업로드 완료"
	case StatusProcessing:
		p.Progress, p.CurrentStep = 50, "AI 분석 중"
	case StatusCompleted:
		p.Progress, p.CurrentStep = 100, "분석 완료"
	case StatusFailed:
		p.Progress, p.CurrentStep = 0, "처리 실패"
	default:
		p.CurrentStep = "알 수 없음"
	}
	return p
}

// DocumentStats summarises one user's documents.
type DocumentStats struct {
	TotalDocuments        int     `json:"total_documents"`
	CompletedDocuments    int     `json:"completed_documents"`
	FailedDocuments       int     `json:"failed_documents"`
	ProcessingDocuments   int     `json:"processing_documents"`
	TotalFileSize         int64   `json:"total_file_size"`
	AverageProcessingTime float64 `json:"average_processing_time"`
}
