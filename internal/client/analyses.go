package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"handoc/internal/model"
)

func (o ListAnalysesOptions) values() url.Values {
	q := url.Values{}
	setInt(q, "page", o.Page)
	setInt(q, "limit", o.Limit)
	setString(q, "language", o.Language)
	setString(q, "ai_model", o.AIModel)
	if o.MinConfidence != nil {
		q.Set("min_confidence", strconv.FormatFloat(*o.MinConfidence, 'f', -1, 64))
	}
	setString(q, "sort_by", o.SortBy)
	setString(q, "sort_order", o.SortOrder)
	return q
}

func analysisPath(id string) string {
	return "/analyses/" + url.PathEscape(id)
}

func (c *Client) ListAnalyses(ctx context.Context, opts ListAnalysesOptions) (*model.ListResult[model.Analysis], error) {
	var res model.ListResult[model.Analysis]
	if err := c.doJSON(ctx, http.MethodGet, "/analyses", opts.values(), nil, &res); err != nil {
		return nil, wrapError(err, "ListAnalyses")
	}
	return &res, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var a model.Analysis
	if err := c.doJSON(ctx, http.MethodGet, analysisPath(id), nil, nil, &a); err != nil {
		return nil, wrapError(err, "GetAnalysis")
	}
	return &a, nil
}

// AnalysisByDocument returns the newest analysis of a document.
func (c *Client) AnalysisByDocument(ctx context.Context, documentID string) (*model.Analysis, error) {
	var a model.Analysis
	if err := c.doJSON(ctx, http.MethodGet, "/analyses/document/"+url.PathEscape(documentID), nil, nil, &a); err != nil {
		return nil, wrapError(err, "AnalysisByDocument")
	}
	return &a, nil
}

func (c *Client) AnalyzeText(ctx context.Context, text, language string) (*TextAnalysisResult, error) {
	var res TextAnalysisResult
	body := map[string]any{"text": text, "language": language, "options": map[string]any{}}
	if err := c.doJSON(ctx, http.MethodPost, "/analyses/analyze-text", nil, body, &res); err != nil {
		return nil, wrapError(err, "AnalyzeText")
	}
	return &res, nil
}

func (c *Client) Reanalyze(ctx context.Context, documentID string, usePremiumModel bool) (*ReanalyzeResult, error) {
	var res ReanalyzeResult
	body := map[string]bool{"use_premium_model": usePremiumModel}
	if err := c.doJSON(ctx, http.MethodPost, "/analyses/document/"+url.PathEscape(documentID)+"/reanalyze", nil, body, &res); err != nil {
		return nil, wrapError(err, "Reanalyze")
	}
	return &res, nil
}

func (c *Client) AnalysisSummary(ctx context.Context, id string) (*model.AnalysisSummary, error) {
	var s model.AnalysisSummary
	if err := c.doJSON(ctx, http.MethodGet, analysisPath(id)+"/summary", nil, nil, &s); err != nil {
		return nil, wrapError(err, "AnalysisSummary")
	}
	return &s, nil
}

func (c *Client) AnalysisMarkdown(ctx context.Context, id string) (*MarkdownResult, error) {
	var md MarkdownResult
	if err := c.doJSON(ctx, http.MethodGet, analysisPath(id)+"/markdown", nil, nil, &md); err != nil {
		return nil, wrapError(err, "AnalysisMarkdown")
	}
	return &md, nil
}

// ExportAnalysis asks the server to render the report in format
// (markdown, html, txt or json) and returns a download URL.
func (c *Client) ExportAnalysis(ctx context.Context, id, format string) (*ExportResult, error) {
	var res ExportResult
	q := url.Values{}
	setString(q, "format", format)
	if err := c.doJSON(ctx, http.MethodGet, analysisPath(id)+"/export", q, nil, &res); err != nil {
		return nil, wrapError(err, "ExportAnalysis")
	}
	return &res, nil
}

func (c *Client) DeleteAnalysis(ctx context.Context, id string) error {
	return wrapError(c.doJSON(ctx, http.MethodDelete, analysisPath(id), nil, nil, nil), "DeleteAnalysis")
}

func (c *Client) AnalysisStats(ctx context.Context) (*model.AnalysisStats, error) {
	var st model.AnalysisStats
	if err := c.doJSON(ctx, http.MethodGet, "/analyses/stats/overview", nil, nil, &st); err != nil {
		return nil, wrapError(err, "AnalysisStats")
	}
	return &st, nil
}

func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*model.Feedback, error) {
	var f model.Feedback
	if err := c.doJSON(ctx, http.MethodPost, "/feedback", nil, req, &f); err != nil {
		return nil, wrapError(err, "SubmitFeedback")
	}
	return &f, nil
}
