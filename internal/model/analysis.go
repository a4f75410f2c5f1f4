package model

import "time"

type Keyword struct {
	Keyword    string  `json:"keyword"`
	Frequency  int     `json:"frequency"`
	Importance float64 `json:"importance"`
}

type QAPair struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

type ImportantSentence struct {
	Sentence   string  `json:"sentence"`
	Importance float64 `json:"importance"`
	Page       int     `json:"page"`
}

// Analysis is the AI result for one processing run of a document.
type Analysis struct {
	ID                 string              `json:"id"`
	DocumentID         string              `json:"document_id"`
	RawText            string              `json:"raw_text,omitempty"`
	CleanedText        string              `json:"cleaned_text,omitempty"`
	Summary            string              `json:"summary"`
	Keywords           []Keyword           `json:"keywords"`
	QAPairs            []QAPair            `json:"qa_pairs"`
	ImportantSentences []ImportantSentence `json:"important_sentences"`
	AIModel            string              `json:"ai_model"`
	Language           string              `json:"language"`
	ProcessingTime     float64             `json:"processing_time"`
	ConfidenceScore    float64             `json:"confidence_score"`
	TotalPages         int                 `json:"total_pages"`
	TotalWords         int                 `json:"total_words"`
	TotalSentences     int                 `json:"total_sentences"`
	TotalParagraphs    int                 `json:"total_paragraphs"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// AnalysisSummary is the lightweight overview of an analysis.
type AnalysisSummary struct {
	ID                     string    `json:"id"`
	DocumentID             string    `json:"document_id"`
	Summary                string    `json:"summary"`
	KeywordCount           int       `json:"keyword_count"`
	QACount                int       `json:"qa_count"`
	ImportantSentenceCount int       `json:"important_sentence_count"`
	ConfidenceScore        float64   `json:"confidence_score"`
	ProcessingTime         float64   `json:"processing_time"`
	CreatedAt              time.Time `json:"created_at"`
}

func (a *Analysis) Overview() AnalysisSummary {
	return AnalysisSummary{
		ID:                     a.ID,
		DocumentID:             a.DocumentID,
		Summary:                a.Summary,
		KeywordCount:           len(a.Keywords),
		QACount:                len(a.QAPairs),
		ImportantSentenceCount: len(a.ImportantSentences),
		ConfidenceScore:        a.ConfidenceScore,
		ProcessingTime:         a.ProcessingTime,
		CreatedAt:              a.CreatedAt,
	}
}

// AnalysisStats summarises one user's analyses.
type AnalysisStats struct {
	TotalAnalyses          int            `json:"total_analyses"`
	AverageProcessingTime  float64        `json:"average_processing_time"`
	AverageConfidenceScore float64        `json:"average_confidence_score"`
	LanguageDistribution   map[string]int `json:"language_distribution"`
	ModelUsage             map[string]int `json:"model_usage"`
}
