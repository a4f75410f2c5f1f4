package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"handoc/internal/model"
	"handoc/internal/service"
)

// UserLocalKey is the Fiber locals key holding the authenticated *model.User.
const UserLocalKey = "user"

// Authenticator resolves an access token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 and a
// WWW-Authenticate challenge. Inactive accounts get 400.
func RequireAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return unauthorized(c)
		}

		u, err := a.Authenticate(c.UserContext(), token)
		switch {
		case errors.Is(err, service.ErrInactiveUser):
			return fiber.NewError(fiber.StatusBadRequest, service.ErrInactiveUser.Error())
		case errors.Is(err, service.ErrInvalidToken):
			return unauthorized(c)
		case err != nil:
			return err
		}

		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if u, err := a.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(UserLocalKey, u)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth or OptionalAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return fiber.NewError(fiber.StatusUnauthorized, service.ErrInvalidToken.Error())
}
