package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidFileType = errors.New("PDF 파일만 업로드 가능합니다.")
	ErrFileTooLarge    = errors.New("파일 크기가 너무 큽니다")
	ErrNotLoggedIn     = errors.New("로그인이 필요합니다")
)

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Code       string // machine-readable code from the error envelope, if any
	Message    string
	Op         string // operation that failed (e.g., "ListDocuments")
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + " " + msg
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

type errorEnvelope struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newError decodes the server's {request_id, error:{code,message}} body, falling
// back to the raw body text.
func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Message: string(body)}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		e.Code = env.Error.Code
		e.Message = env.Error.Message
	}
	return e
}

// wrapError wraps an error with an operation name if it's an API error.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		apiErr.Op = op
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
