package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"handoc/internal/auth"
	"handoc/internal/logger"
	"handoc/internal/model"
	"handoc/internal/repository"
)

type RegisterInput struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Language        string `json:"language"`
	Timezone        string `json:"timezone"`
}

// Token is the login and refresh response.
type Token struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         *model.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*Token, error)
	Refresh(ctx context.Context, refreshToken string) (*Token, error)

	// Authenticate resolves a bearer access token to an active user.
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)

	// RequestPasswordReset issues a reset token for a known email. Unknown
	// emails are not reported.
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    *logger.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, log *logger.Logger) AuthService {
	return &authService{users: users, tokens: tokens, log: log.With("auth"), now: time.Now}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if err := fieldError("email", auth.ValidateEmail(in.Email)); err != nil {
		return nil, err
	}
	if err := fieldError("username", auth.ValidateUsername(in.Username)); err != nil {
		return nil, err
	}
	if err := fieldError("password", auth.ValidatePassword(in.Password)); err != nil {
		return nil, err
	}
	if err := fieldError("confirm_password", auth.ValidatePasswordConfirm(in.Password, in.ConfirmPassword)); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &model.User{
		ID:               uuid.New().String(),
		Email:            in.Email,
		Username:         in.Username,
		HashedPassword:   hash,
		IsActive:         true,
		FullName:         in.FullName,
		Language:         orDefault(in.Language, model.LanguageKorean),
		Timezone:         orDefault(in.Timezone, "Asia/Seoul"),
		SubscriptionType: model.SubscriptionFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user_registered", map[string]any{"user_id": u.ID})
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Error("update_last_login_failed", err, map[string]any{"user_id": u.ID})
	} else {
		u.LastLoginAt = &now
	}

	return s.token(access, refresh, u), nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	sub, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	return s.token(access, "", u), nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	sub, err := s.tokens.Parse(accessToken, auth.TokenAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	token, err := s.tokens.IssueReset(u.Email)
	if err != nil {
		return err
	}
	s.log.Info("password_reset_requested", map[string]any{"user_id": u.ID})
	// no mail sender yet; operators hand the token over from debug logs
	s.log.Debug("password_reset_token", map[string]any{"user_id": u.ID, "reset_token": token})
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if err := fieldError("new_password", auth.ValidatePassword(newPassword)); err != nil {
		return err
	}
	if err := fieldError("confirm_password", auth.ValidatePasswordConfirm(newPassword, confirmPassword)); err != nil {
		return err
	}
	email, err := s.tokens.Parse(token, auth.TokenReset)
	if err != nil {
		return ErrInvalidResetToken
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash, s.now().UTC())
}

func (s *authService) token(access, refresh string, u *model.User) *Token {
	return &Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         u,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
