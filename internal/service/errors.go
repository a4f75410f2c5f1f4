package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrReaderNil  = errors.New("reader is nil")

	// ErrNotFound matches every *NotFound error below through errors.Is.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("접근 권한이 없습니다")

	ErrInvalidFileType   = errors.New("PDF 파일만 업로드 가능합니다")
	ErrFileTooLarge      = errors.New("파일 크기가 너무 큽니다")
	ErrUploadLimit       = errors.New("월 업로드 제한에 도달했습니다. 프리미엄으로 업그레이드하세요")
	ErrInvalidPDF        = errors.New("유효하지 않은 PDF 파일입니다")
	ErrAlreadyProcessing = errors.New("이미 처리 중인 문서입니다")
	ErrNotCompleted      = errors.New("완료된 문서만 재분석할 수 있습니다")
	ErrQueueUnavailable  = errors.New("처리 대기열이 가득 찼습니다. 잠시 후 다시 시도해주세요")

	ErrEmailTaken         = errors.New("이미 등록된 이메일입니다")
	ErrUsernameTaken      = errors.New("이미 사용 중인 사용자명입니다")
	ErrInvalidCredentials = errors.New("이메일 또는 비밀번호가 올바르지 않습니다")
	ErrInactiveUser       = errors.New("비활성화된 계정입니다")
	ErrInvalidToken       = errors.New("인증 정보가 유효하지 않습니다")
	ErrInvalidResetToken  = errors.New("유효하지 않거나 만료된 토큰입니다")
)

type notFoundError string

func (e notFoundError) Error() string        { return string(e) }
func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

var (
	ErrDocumentNotFound = notFoundError("문서를 찾을 수 없습니다")
	ErrAnalysisNotFound = notFoundError("분석 결과를 찾을 수 없습니다")
	ErrUserNotFound     = notFoundError("사용자를 찾을 수 없습니다")
	// ErrNoAnalysis is returned for a document that has no analysis yet.
	ErrNoAnalysis = notFoundError("분석 결과가 없습니다. 문서 처리가 완료되지 않았을 수 있습니다")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// fieldError wraps a validator error from another package as a ValidationError.
func fieldError(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
