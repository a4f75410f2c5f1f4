package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("유효하지 않은 토큰입니다")

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenReset   TokenType = "password_reset"
)

type Claims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

// AccessTTL is reported to clients as expires_in.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

func (m *TokenManager) IssueAccess(userID string) (string, error) {
	return m.issue(userID, TokenAccess, m.accessTTL)
}

func (m *TokenManager) IssueRefresh(userID string) (string, error) {
	return m.issue(userID, TokenRefresh, m.refreshTTL)
}

// IssueReset signs a password reset token whose subject is the account email.
func (m *TokenManager) IssueReset(email string) (string, error) {
	return m.issue(email, TokenReset, m.resetTTL)
}

func (m *TokenManager) issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse verifies signature, expiry and type, and returns the subject.
func (m *TokenManager) Parse(token string, want TokenType) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != want || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
