package client

import (
	"time"

	"handoc/internal/model"
)

// Token is returned by Login and Refresh.
type Token struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         *model.User `json:"user"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name,omitempty"`
	Language        string `json:"language,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

type TokenInfo struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type UploadResult struct {
	Message       string          `json:"message"`
	TaskID        string          `json:"task_id"`
	Document      *model.Document `json:"document"`
	EstimatedTime int             `json:"estimated_time"`
}

// ListDocumentsOptions filters and orders ListDocuments. Zero values are omitted.
type ListDocumentsOptions struct {
	Page      int
	Limit     int
	Status    string
	Language  string
	SortBy    string
	SortOrder string
}

// ListAnalysesOptions filters and orders ListAnalyses. Zero values are omitted.
type ListAnalysesOptions struct {
	Page          int
	Limit         int
	Language      string
	AIModel       string
	MinConfidence *float64
	SortBy        string
	SortOrder     string
}

type TextAnalysisResult struct {
	Summary            string                    `json:"summary"`
	Keywords           []model.Keyword           `json:"keywords"`
	QAPairs            []model.QAPair            `json:"qa_pairs"`
	ImportantSentences []model.ImportantSentence `json:"important_sentences"`
	Statistics         map[string]any            `json:"statistics"`
	ProcessingTime     float64                   `json:"processing_time"`
	ConfidenceScore    float64                   `json:"confidence_score"`
}

type ReanalyzeResult struct {
	Message    string `json:"message"`
	AnalysisID string `json:"analysis_id"`
}

type MarkdownResult struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

type ExportResult struct {
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FeedbackRequest struct {
	Type       string  `json:"type,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Comment    string  `json:"comment,omitempty"`
	AnalysisID *string `json:"analysis_id,omitempty"`
	PageURL    string  `json:"page_url,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}
