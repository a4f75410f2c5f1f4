package analyzer

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("API 키가 설정되지 않았습니다")
	ErrEmptyText     = errors.New("분석할 텍스트가 없습니다")
	ErrEmptyResponse = errors.New("AI 응답이 비어 있습니다")
)

// Request is a single chat completion: one system prompt, one user message.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Provider sends a completion request to an LLM backend. Implementations
// return the response text or an error for any non-2xx answer; they never retry.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}
