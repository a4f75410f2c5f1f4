package model

import "time"

type FeedbackType string

const (
	FeedbackQuality  FeedbackType = "quality"
	FeedbackSpeed    FeedbackType = "speed"
	FeedbackAccuracy FeedbackType = "accuracy"
	FeedbackUI       FeedbackType = "ui"
	FeedbackFeature  FeedbackType = "feature"
	FeedbackBug      FeedbackType = "bug"
	FeedbackGeneral  FeedbackType = "general"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackQuality, FeedbackSpeed, FeedbackAccuracy, FeedbackUI, FeedbackFeature, FeedbackBug, FeedbackGeneral:
		return true
	}
	return false
}

// Feedback is a rating or comment left from the results viewer.
type Feedback struct {
	ID         string       `json:"id"`
	UserID     *string      `json:"user_id,omitempty"`
	AnalysisID *string      `json:"analysis_id,omitempty"`
	Rating     *int         `json:"rating,omitempty"`
	Comment    string       `json:"comment,omitempty"`
	Type       FeedbackType `json:"feedback_type"`
	UserAgent  string       `json:"user_agent,omitempty"`
	IPAddress  string       `json:"ip_address,omitempty"`
	PageURL    string       `json:"page_url,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
