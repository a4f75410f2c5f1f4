package handler

import (
	"github.com/gofiber/fiber/v2"

	"handoc/internal/http/middleware"
	"handoc/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

const passwordResetMessage = "비밀번호 재설정 링크가 이메일로 전송되었습니다"

// Register creates an account.
//
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "account"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Router /api/v1/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		u, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Login exchanges email and password for tokens.
//
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} service.Token
// @Failure 401 {object} errorPayload
// @Router /api/v1/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tok, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tok)
	}
}

// @Summary Refresh the access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "refresh token"
// @Success 200 {object} service.Token
// @Failure 401 {object} errorPayload
// @Router /api/v1/auth/refresh [post]
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tok, err := svc.Refresh(c.UserContext(), req.RefreshToken)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tok)
	}
}

// Logout is stateless; clients drop their tokens.
//
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} messageResponse
// @Router /api/v1/auth/logout [post]
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(messageResponse{Message: "성공적으로 로그아웃되었습니다"})
	}
}

// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errorPayload
// @Router /api/v1/auth/me [get]
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(middleware.CurrentUser(c))
	}
}

// @Summary Verify the access token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload
// @Router /api/v1/auth/verify-token [get]
func VerifyToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{
			"valid":    true,
			"user_id":  u.ID,
			"email":    u.Email,
			"username": u.Username,
		})
	}
}

// PasswordReset answers the same way whether or not the email is known.
//
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param body body passwordResetRequest true "email"
// @Success 200 {object} messageResponse
// @Router /api/v1/auth/password-reset [post]
func PasswordReset(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordResetRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svc.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: passwordResetMessage})
	}
}

// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body passwordResetConfirmRequest true "token and password"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/auth/password-reset/confirm [post]
func PasswordResetConfirm(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordResetConfirmRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svc.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "비밀번호가 성공적으로 변경되었습니다"})
	}
}
