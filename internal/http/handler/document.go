package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"handoc/internal/http/middleware"
	"handoc/internal/service"
)

// pathID reads a UUID path parameter. When it is malformed the 400 response
// has already been written and ok is false.
func pathID(c *fiber.Ctx, name string) (id string, ok bool) {
	id = c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; 0 means absent.
func queryInt(c *fiber.Ctx, name, code string) (v int, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, code, "invalid "+name)
		return 0, false
	}
	return v, true
}

// UploadDocument accepts a PDF as multipart field "file" and queues it for analysis.
//
// @Summary Upload a PDF
// @Tags documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Success 201 {object} service.UploadResult
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Router /api/v1/documents/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		res, err := svc.Upload(c.UserContext(), middleware.CurrentUser(c), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListDocuments pages through the caller's documents.
//
// @Summary List documents
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param page query int false "page (>=1)"
// @Param limit query int false "page size (1..100)"
// @Param status query string false "uploaded|processing|completed|failed"
// @Param language query string false "ko|en|mixed"
// @Param sort_by query string false "created_at|updated_at|filename|file_size"
// @Param sort_order query string false "asc|desc"
// @Success 200 {object} model.ListResult[model.Document]
// @Failure 400 {object} errorPayload
// @Router /api/v1/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := queryInt(c, "page", "INVALID_PAGE")
		if !ok {
			return nil
		}
		limit, ok := queryInt(c, "limit", "INVALID_LIMIT")
		if !ok {
			return nil
		}

		res, err := svc.List(c.UserContext(), middleware.CurrentUser(c).ID, service.DocumentListQuery{
			Page:      page,
			Limit:     limit,
			Status:    c.Query("status"),
			Language:  c.Query("language"),
			SortBy:    c.Query("sort_by"),
			SortOrder: c.Query("sort_order"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// @Summary Get a document
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		doc, err := svc.Get(c.UserContext(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes the stored PDF and the document with its analyses.
//
// @Summary Delete a document
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "문서가 성공적으로 삭제되었습니다"})
	}
}

// @Summary Processing progress
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.DocumentProgress
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id}/status [get]
func DocumentStatus(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.Status(c.UserContext(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// @Summary Process a document again
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id}/reprocess [post]
func ReprocessDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Reprocess(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "문서 재처리가 시작되었습니다"})
	}
}

// @Summary Document statistics
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.DocumentStats
// @Router /api/v1/documents/stats/overview [get]
func DocumentStats(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}
