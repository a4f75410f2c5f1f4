package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoc/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"request_id": "req-1",
		"error":      map[string]string{"code": code, "message": msg},
	})
}

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(filepath.Join(t.TempDir(), "handoc", "session.json"))
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New("http://localhost:8080/")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", c.baseURL)
		assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
		assert.Empty(t, c.Token())
	})

	t.Run("options", func(t *testing.T) {
		transport := &http.Transport{}
		custom := &http.Client{Transport: transport}
		c, err := New("http://localhost:8080", WithHTTPClient(custom), WithTimeout(5*time.Second), WithToken("tok"))
		require.NoError(t, err)
		assert.Same(t, transport, c.httpClient.Transport)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
		assert.Zero(t, custom.Timeout)
		assert.Equal(t, "tok", c.Token())

		_, err = New("http://localhost:8080", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))
		require.NoError(t, err)
		assert.Zero(t, http.DefaultClient.Timeout)
	})

	t.Run("token from session", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&Session{AccessToken: "saved"}))

		c, err := New("http://localhost:8080", WithSession(store))
		require.NoError(t, err)
		assert.Equal(t, "saved", c.Token())

		c, err = New("http://localhost:8080", WithSession(store), WithToken("explicit"))
		require.NoError(t, err)
		assert.Equal(t, "explicit", c.Token())
	})

	t.Run("invalid base url", func(t *testing.T) {
		_, err := New("not a url")
		assert.Error(t, err)
	})
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		size        int64
		wantErr     error
		wantMsg     string
	}{
		{name: "pdf", file: "report.pdf", size: 1024},
		{name: "upper-case extension", file: "REPORT.PDF", size: 1024},
		{name: "explicit pdf type", file: "blob", contentType: "application/pdf", size: 1024},
		{name: "exactly the limit", file: "a.pdf", size: DefaultMaxFileSize},
		{name: "text file", file: "notes.txt", size: 10, wantErr: ErrInvalidFileType, wantMsg: "PDF 파일만 업로드 가능합니다."},
		{name: "image", file: "scan.png", contentType: "image/png", size: 10, wantErr: ErrInvalidFileType},
		{name: "too large", file: "big.pdf", size: DefaultMaxFileSize + 1, wantErr: ErrFileTooLarge, wantMsg: "파일 크기가 너무 큽니다. 최대 10MB까지 가능합니다."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.file, tt.contentType, tt.size, DefaultMaxFileSize)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "인증 정보가 유효하지 않습니다")
	}))
	defer server.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Session{
		AccessToken: "stale", RefreshToken: "r", Language: "ko",
		User: &model.User{ID: "user-1"},
	}))

	redirected := 0
	c, err := New(server.URL, WithSession(store), WithUnauthorizedHandler(func() { redirected++ }))
	require.NoError(t, err)

	_, err = c.ListDocuments(context.Background(), ListDocumentsOptions{})

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, redirected)
	assert.Empty(t, c.Token())

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.AccessToken)
	assert.Empty(t, sess.RefreshToken)
	assert.Nil(t, sess.User)
	assert.Equal(t, "ko", sess.Language)
}

func TestClient_UnauthorizedReportsSessionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "인증 정보가 유효하지 않습니다")
	}))
	defer server.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Session{AccessToken: "stale"}))
	c, err := New(server.URL, WithSession(store))
	require.NoError(t, err)

	// the session file turns unreadable after the client loaded it
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, err = c.ListDocuments(context.Background(), ListDocumentsOptions{})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "clear session")
	assert.Empty(t, c.Token())
}

func TestClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/plain") {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
			return
		}
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "문서를 찾을 수 없습니다")
	}))
	defer server.Close()

	c, err := New(server.URL, WithToken("tok"))
	require.NoError(t, err)

	_, err = c.GetDocument(context.Background(), "doc-1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "GetDocument", apiErr.Op)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "문서를 찾을 수 없습니다", apiErr.Message)
	assert.Equal(t, "tok", c.Token())

	_, err = c.GetDocument(context.Background(), "plain")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		if body["password"] != "password1" {
			writeAPIError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "이메일 또는 비밀번호가 올바르지 않습니다")
			return
		}
		writeJSON(w, http.StatusOK, Token{
			AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer", ExpiresIn: 86400,
			User: &model.User{ID: "user-1", Email: body["email"]},
		})
	}))
	defer server.Close()

	store := newTestStore(t)
	c, err := New(server.URL, WithSession(store))
	require.NoError(t, err)

	tok, err := c.Login(context.Background(), "alice@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "access", c.Token())

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", sess.AccessToken)
	assert.Equal(t, "refresh", sess.RefreshToken)
	assert.Equal(t, server.URL, sess.BaseURL)
	assert.Equal(t, "user-1", sess.User.ID)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = c.Login(context.Background(), "alice@example.com", "wrong")
	assert.True(t, IsUnauthorized(err))
}

func TestClient_LogoutAndRestore(t *testing.T) {
	var logoutCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/logout":
			logoutCalls++
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		case "/api/v1/auth/verify-token":
			writeJSON(w, http.StatusOK, TokenInfo{Valid: true, UserID: "user-1"})
		case "/api/v1/auth/me":
			writeJSON(w, http.StatusOK, model.User{ID: "user-1", Username: "alice"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Session{AccessToken: "tok", Theme: "dark"}))
	c, err := New(server.URL, WithSession(store))
	require.NoError(t, err)

	u, err := c.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	sess, _ := store.Load()
	assert.Equal(t, "alice", sess.User.Username)

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, logoutCalls)
	assert.Empty(t, c.Token())
	sess, _ = store.Load()
	assert.Empty(t, sess.AccessToken)
	assert.Equal(t, "dark", sess.Theme)

	_, err = c.Restore(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, logoutCalls)
}

func TestClient_Upload(t *testing.T) {
	content := []byte("%PDF-1.4\n" + strings.Repeat("x", 64*1024))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		fh, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer fh.Close()
		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		got, _ := io.ReadAll(fh)
		assert.Equal(t, content, got)

		writeJSON(w, http.StatusCreated, UploadResult{
			Message: "파일이 성공적으로 업로드되었습니다. 분석이 시작됩니다.", TaskID: "doc-1", EstimatedTime: 60,
			Document: &model.Document{ID: "doc-1"},
		})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c, err := New(server.URL, WithToken("tok"))
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []int
	res, err := c.UploadFile(context.Background(), path, func(p int) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", res.TaskID)
	require.NotEmpty(t, seen)
	assert.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
}

func TestClient_UploadRejectedLocally(t *testing.T) {
	c, err := New("http://127.0.0.1:1", WithToken("tok"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, err = c.UploadFile(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestClient_ListQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/api/v1/documents":
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "completed", q.Get("status"))
			assert.Equal(t, "filename", q.Get("sort_by"))
			assert.False(t, q.Has("limit"))
			writeJSON(w, http.StatusOK, model.ListResult[model.Document]{Items: []model.Document{{ID: "d1"}}, Total: 1, Page: 2, Limit: 20, Pages: 1})
		case "/api/v1/analyses":
			assert.Equal(t, "0.75", q.Get("min_confidence"))
			assert.Equal(t, "gpt-4", q.Get("ai_model"))
			writeJSON(w, http.StatusOK, model.ListResult[model.Analysis]{Page: 1, Limit: 20})
		case "/api/v1/analyses/a1/export":
			assert.Equal(t, "html", q.Get("format"))
			writeJSON(w, http.StatusOK, ExportResult{URL: "http://minio/x.html", Format: "html"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c, err := New(server.URL, WithToken("tok"))
	require.NoError(t, err)
	ctx := context.Background()

	docs, err := c.ListDocuments(ctx, ListDocumentsOptions{Page: 2, Status: "completed", SortBy: "filename"})
	require.NoError(t, err)
	assert.Equal(t, 1, docs.Total)

	minConf := 0.75
	_, err = c.ListAnalyses(ctx, ListAnalysesOptions{MinConfidence: &minConf, AIModel: "gpt-4"})
	require.NoError(t, err)

	exp, err := c.ExportAnalysis(ctx, "a1", "html")
	require.NoError(t, err)
	assert.Equal(t, "http://minio/x.html", exp.URL)
}

func TestClient_SubmitFeedbackAnonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, float64(4), body["rating"])
		assert.NotContains(t, body, "analysis_id")
		writeJSON(w, http.StatusCreated, model.Feedback{ID: "fb-1", Type: model.FeedbackGeneral})
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	rating := 4
	f, err := c.SubmitFeedback(context.Background(), FeedbackRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", f.ID)
}
