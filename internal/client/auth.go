package client

import (
	"context"
	"net/http"

	"handoc/internal/model"
)

// Login authenticates and keeps the tokens for later calls (and in the
// session, when one is configured).
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	var tok Token
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, body, &tok); err != nil {
		return nil, wrapError(err, "Login")
	}

	c.setToken(tok.AccessToken)
	if c.session != nil {
		err := c.session.Update(func(s *Session) {
			s.BaseURL = c.baseURL
			s.AccessToken = tok.AccessToken
			s.RefreshToken = tok.RefreshToken
			s.User = tok.User
		})
		if err != nil {
			return &tok, wrapError(err, "Login")
		}
	}
	return &tok, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &u); err != nil {
		return nil, wrapError(err, "Register")
	}
	return &u, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, wrapError(err, "Me")
	}
	return &u, nil
}

func (c *Client) VerifyToken(ctx context.Context) (*TokenInfo, error) {
	var info TokenInfo
	if err := c.doJSON(ctx, http.MethodGet, "/auth/verify-token", nil, nil, &info); err != nil {
		return nil, wrapError(err, "VerifyToken")
	}
	return &info, nil
}

// RequestPasswordReset returns the server's message, which is the same for
// known and unknown emails.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var res messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/password-reset", nil, map[string]string{"email": email}, &res); err != nil {
		return "", wrapError(err, "RequestPasswordReset")
	}
	return res.Message, nil
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword, "confirm_password": confirmPassword}
	return wrapError(c.doJSON(ctx, http.MethodPost, "/auth/password-reset/confirm", nil, body, nil), "ConfirmPasswordReset")
}

// Logout tells the server (best effort) and clears local state.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() != "" {
		_ = c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	}
	return wrapError(c.clearAuth(), "Logout")
}

// Restore checks a persisted token and returns its user. Without a token it
// returns ErrNotLoggedIn; a rejected token is cleared like any other 401.
func (c *Client) Restore(ctx context.Context) (*model.User, error) {
	if c.Token() == "" {
		return nil, ErrNotLoggedIn
	}
	if _, err := c.VerifyToken(ctx); err != nil {
		return nil, err
	}
	u, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	if c.session != nil {
		if err := c.session.Update(func(s *Session) { s.User = u }); err != nil {
			return u, wrapError(err, "Restore")
		}
	}
	return u, nil
}
