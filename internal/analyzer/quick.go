package analyzer

import (
	"context"
	"strings"
)

const (
	QuickTextLimit   = 3000
	quickMaxTokens   = 1500
	quickTemperature = 0.7
)

const quickPrompt = `다음 문서를 읽고 아래 네 항목을 한국어로 정리해 주세요.

## 요약
문서 전체의 핵심을 3~4문장으로 설명합니다.

## 질문과 답변
Q1: 질문
A1: 답변
(3개)

## 핵심 키워드
1. 키워드
(5개)

## 중요 문장
1. "문장"
(3개)

문서:
`

// QuickAnalyze sends one prompt over at most QuickTextLimit characters of
// text and returns the model's answer as-is.
func QuickAnalyze(ctx context.Context, p Provider, aiModel, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if p == nil {
		return "", ErrMissingAPIKey
	}
	return p.Complete(ctx, Request{
		Model:       aiModel,
		System:      defaultTemplates["ko.system"],
		User:        quickPrompt + truncateRunes(text, QuickTextLimit),
		MaxTokens:   quickMaxTokens,
		Temperature: quickTemperature,
	})
}
