// Package auth hashes passwords, issues and verifies JWTs, and validates
// registration input.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail    = errors.New("올바른 이메일 주소를 입력해주세요")
	ErrInvalidUsername = errors.New("사용자명은 3~20자의 영문, 숫자, _, - 만 사용할 수 있습니다")
	ErrWeakPassword    = errors.New("비밀번호는 8자 이상이며 영문과 숫자를 포함해야 합니다")
	ErrPasswordTooLong = errors.New("비밀번호는 72바이트를 넘을 수 없습니다")
	ErrPasswordMatch   = errors.New("비밀번호가 일치하지 않습니다")
)

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{3,20}$`)
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword requires at least 8 characters with a letter and a digit,
// and at most 72 bytes of UTF-8.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

func ValidatePasswordConfirm(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMatch
	}
	return nil
}
