package handler

import (
	"github.com/gofiber/fiber/v2"

	"handoc/internal/http/middleware"
	"handoc/internal/service"
)

// SubmitFeedback records a rating or comment; a signed-in user is optional.
//
// @Summary Submit feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param body body service.FeedbackInput true "feedback"
// @Success 201 {object} model.Feedback
// @Failure 400 {object} errorPayload
// @Router /api/v1/feedback [post]
func SubmitFeedback(svc service.FeedbackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.FeedbackInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		f, err := svc.Submit(c.UserContext(), middleware.CurrentUser(c), in, service.RequestMeta{
			UserAgent: c.Get(fiber.HeaderUserAgent),
			IPAddress: c.IP(),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}
