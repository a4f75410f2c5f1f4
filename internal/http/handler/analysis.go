package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"handoc/internal/http/middleware"
	"handoc/internal/service"
)

type reanalyzeRequest struct {
	UsePremiumModel bool `json:"use_premium_model"`
}

type reanalyzeResponse struct {
	Message    string `json:"message"`
	AnalysisID string `json:"analysis_id"`
}

// @Summary List analyses
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param page query int false "page (>=1)"
// @Param limit query int false "page size (1..100)"
// @Param language query string false "language"
// @Param ai_model query string false "model name"
// @Param min_confidence query number false "0..1"
// @Param sort_by query string false "created_at|confidence_score|processing_time"
// @Param sort_order query string false "asc|desc"
// @Success 200 {object} model.ListResult[model.Analysis]
// @Failure 400 {object} errorPayload
// @Router /api/v1/analyses [get]
func ListAnalyses(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := queryInt(c, "page", "INVALID_PAGE")
		if !ok {
			return nil
		}
		limit, ok := queryInt(c, "limit", "INVALID_LIMIT")
		if !ok {
			return nil
		}
		q := service.AnalysisListQuery{
			Page:      page,
			Limit:     limit,
			Language:  c.Query("language"),
			AIModel:   c.Query("ai_model"),
			SortBy:    c.Query("sort_by"),
			SortOrder: c.Query("sort_order"),
		}
		if raw := c.Query("min_confidence"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_MIN_CONFIDENCE", "invalid min_confidence")
			}
			q.MinConfidence = &v
		}

		res, err := svc.List(c.UserContext(), middleware.CurrentUser(c).ID, q)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Get an analysis
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param id path string true "analysis id"
// @Success 200 {object} model.Analysis
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/{id} [get]
func GetAnalysis(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		a, err := svc.Get(c.UserContext(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// AnalysisByDocument returns the newest analysis of a document.
//
// @Summary Latest analysis of a document
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param document_id path string true "document id"
// @Success 200 {object} model.Analysis
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/document/{document_id} [get]
func AnalysisByDocument(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "document_id")
		if !ok {
			return nil
		}
		a, err := svc.ByDocument(c.UserContext(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// AnalyzeText analyses pasted text without storing anything.
//
// @Summary Analyse raw text
// @Tags analyses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.TextAnalysisInput true "text"
// @Success 200 {object} service.TextAnalysisResult
// @Failure 400 {object} errorPayload
// @Router /api/v1/analyses/analyze-text [post]
func AnalyzeText(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.TextAnalysisInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svc.AnalyzeText(c.UserContext(), middleware.CurrentUser(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Analyse a completed document again
// @Tags analyses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param document_id path string true "document id"
// @Param body body reanalyzeRequest false "options"
// @Success 200 {object} reanalyzeResponse
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/document/{document_id}/reanalyze [post]
func Reanalyze(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "document_id")
		if !ok {
			return nil
		}
		var req reanalyzeRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		a, err := svc.Reanalyze(c.UserContext(), middleware.CurrentUser(c), id, req.UsePremiumModel)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(reanalyzeResponse{Message: "문서 재분석이 완료되었습니다", AnalysisID: a.ID})
	}
}

// @Summary Analysis summary
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param id path string true "analysis id"
// @Success 200 {object} model.AnalysisSummary
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/{id}/summary [get]
func AnalysisSummary(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.Summary(c.UserContext(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(s)
	}
}

// @Summary Analysis as Markdown
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param id path string true "analysis id"
// @Success 200 {object} service.MarkdownResult
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/{id}/markdown [get]
func AnalysisMarkdown(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		md, err := svc.Markdown(c.UserContext(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(md)
	}
}

// ExportAnalysis stores a rendered report and returns a time-limited download URL.
//
// @Summary Export an analysis
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param id path string true "analysis id"
// @Param format query string false "markdown|html|txt|json"
// @Success 200 {object} service.ExportResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/{id}/export [get]
func ExportAnalysis(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		res, err := svc.Export(c.UserContext(), middleware.CurrentUser(c).ID, id, c.Query("format", "markdown"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Delete an analysis
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param id path string true "analysis id"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorPayload
// @Router /api/v1/analyses/{id} [delete]
func DeleteAnalysis(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "분석 결과가 성공적으로 삭제되었습니다"})
	}
}

// @Summary Analysis statistics
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.AnalysisStats
// @Router /api/v1/analyses/stats/overview [get]
func AnalysisStats(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}
