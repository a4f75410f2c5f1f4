package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"handoc/internal/model"
)

// Session is the locally persisted login and preferences.
type Session struct {
	BaseURL      string      `json:"base_url,omitempty"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *model.User `json:"user,omitempty"`
	OpenAIAPIKey string      `json:"openai_api_key,omitempty"`
	Language     string      `json:"language,omitempty"`
	Theme        string      `json:"theme,omitempty"`
}

// SessionStore keeps a Session in a JSON file readable only by the owner.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/handoc/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "handoc", "session.json"), nil
}

func (s *SessionStore) Path() string { return s.path }

// Load returns the stored session, or an empty one when none was saved yet.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Update loads the session, applies fn and saves the result.
func (s *SessionStore) Update(fn func(*Session)) error {
	sess, err := s.Load()
	if err != nil {
		return err
	}
	fn(sess)
	return s.Save(sess)
}

// ClearAuth drops tokens and the cached user but keeps preferences.
func (s *SessionStore) ClearAuth() error {
	return s.Update(func(sess *Session) {
		sess.AccessToken = ""
		sess.RefreshToken = ""
		sess.User = nil
	})
}
