// Package model contains the domain records shared by every layer.
// They carry JSON tags for the HTTP API but no persistence tags.
package model

const (
	LanguageKorean  = "ko"
	LanguageEnglish = "en"
	LanguageUnknown = "unknown"
)

// ListResult is the paginated envelope returned by list endpoints.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewListResult computes the page count for total rows split into pages of limit.
func NewListResult[T any](items []T, total, page, limit int) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return ListResult[T]{Items: items, Total: total, Page: page, Limit: limit, Pages: pages}
}
