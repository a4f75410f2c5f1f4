package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handoc/internal/http/middleware"
	"handoc/internal/model"
	"handoc/internal/service"
	serviceMocks "handoc/internal/service/mocks"
)

var testUser = &model.User{ID: "user-1", Email: "alice@example.com", Username: "alice", IsActive: true}

// asUser stands in for RequireAuth in handler tests.
func asUser(u *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserLocalKey, u)
		return c.Next()
	}
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func jsonRequest(method, target string, v any) *http.Request {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartFile(t *testing.T, name, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInfo(t *testing.T) {
	info := ServiceInfo{
		Name:             "HanDoc AI",
		Version:          "1.0.0",
		MaxFileSize:      10 * 1024 * 1024,
		AllowedTypes:     []string{"application/pdf"},
		FreeMonthlyLimit: 50,
		RateLimitPerHour: 100,
	}
	app := fiber.New()
	app.Get("/", Root(info))
	app.Get("/info", Info(info))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	var banner map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&banner))
	assert.Equal(t, "HanDoc AI API", banner["message"])
	assert.Equal(t, "/api/v1", banner["api_v1"])

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/info", nil))
	var body struct {
		Features map[string]any `json:"features"`
		Limits   map[string]any `json:"limits"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(10), body.Features["max_file_size_mb"])
	assert.Equal(t, float64(50), body.Limits["free_monthly_uploads"])
	assert.Equal(t, float64(100), body.Limits["rate_limit_per_hour"])
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", asUser(testUser), ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &model.ListResult[model.Document]{
			Items: []model.Document{{ID: uuid.New().String(), Filename: "test.pdf"}},
			Total: 1, Page: 2, Limit: 10, Pages: 1,
		}
		mockSvc.On("List", mock.Anything, "user-1", service.DocumentListQuery{
			Page: 2, Limit: 10, Status: "completed", SortBy: "filename", SortOrder: "asc",
		}).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?page=2&limit=10&status=completed&sort_by=filename&sort_order=asc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.ListResult[model.Document]
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("rejected query", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "user-1", service.DocumentListQuery{Limit: 500}).
			Return(nil, &service.ValidationError{Field: "limit", Message: "must be between 1 and 100"}).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?limit=500", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "limit")
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "user-1", service.DocumentListQuery{}).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "service error")
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/upload", asUser(testUser), UploadDocument(mockSvc))

	upload := func(t *testing.T, name, ct string) *http.Response {
		body, formCT := multipartFile(t, name, ct, []byte("%PDF-1.4 test"))
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", formCT)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Upload", mock.Anything, testUser, mock.Anything, "report.pdf", "application/pdf", int64(13)).
			Return(&service.UploadResult{
				Message:       "파일이 성공적으로 업로드되었습니다. 분석이 시작됩니다.",
				TaskID:        docID,
				Document:      &model.Document{ID: docID, OriginalFilename: "report.pdf"},
				EstimatedTime: service.EstimatedProcessingSeconds,
			}, nil).Once()

		resp := upload(t, "report.pdf", "application/pdf")

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result service.UploadResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, docID, result.TaskID)
		assert.Equal(t, 60, result.EstimatedTime)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	errCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not a pdf", service.ErrInvalidFileType, http.StatusBadRequest, "INVALID_FILE_TYPE", "PDF 파일만 업로드 가능합니다"},
		{"too large", fmt.Errorf("%w. 최대 10MB까지 가능합니다", service.ErrFileTooLarge), http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "최대 10MB"},
		{"monthly limit", service.ErrUploadLimit, http.StatusTooManyRequests, "UPLOAD_LIMIT_EXCEEDED", "월 업로드 제한"},
		{"broken pdf", fmt.Errorf("%w: no header", service.ErrInvalidPDF), http.StatusBadRequest, "INVALID_PDF", "유효하지 않은 PDF"},
		{"storage failure", errors.New("upload failed"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc.On("Upload", mock.Anything, testUser, mock.Anything, "file.bin", "text/plain", mock.Anything).
				Return(nil, tc.err).Once()

			resp := upload(t, "file.bin", "text/plain")

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tc.wantCode, body.Error.Code)
			assert.Contains(t, body.Error.Message, tc.wantMsg)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", asUser(testUser), GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		expectedDoc := &model.Document{ID: id, Filename: "test.pdf"}
		mockSvc.On("Get", mock.Anything, "user-1", id).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, "user-1", id).Return(nil, service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "문서를 찾을 수 없습니다", body.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, "user-1", id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", asUser(testUser), DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, "user-1", id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body messageResponse
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "문서가 성공적으로 삭제되었습니다", body.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, "user-1", id).Return(service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, "user-1", id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDocumentStatusAndReprocess(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/status", asUser(testUser), DocumentStatus(mockSvc))
	app.Post("/documents/:id/reprocess", asUser(testUser), ReprocessDocument(mockSvc))
	app.Get("/stats", asUser(testUser), DocumentStats(mockSvc))

	id := uuid.New().String()

	mockSvc.On("Status", mock.Anything, "user-1", id).Return(&model.DocumentProgress{
		DocumentID: id, Status: model.StatusProcessing, Progress: 50, CurrentStep: "AI 분석 중",
	}, nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/status", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var progress model.DocumentProgress
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&progress))
	assert.Equal(t, 50, progress.Progress)

	mockSvc.On("Reprocess", mock.Anything, "user-1", id).Return(service.ErrAlreadyProcessing).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/reprocess", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_PROCESSING", decodeError(t, resp).Error.Code)

	mockSvc.On("Reprocess", mock.Anything, "user-1", id).Return(nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/reprocess", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.On("Stats", mock.Anything, "user-1").Return(&model.DocumentStats{TotalDocuments: 3, CompletedDocuments: 2}, nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/stats", nil))
	var stats model.DocumentStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 3, stats.TotalDocuments)

	mockSvc.AssertExpectations(t)
}

func TestAuthHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/register", Register(mockSvc))
	app.Post("/login", Login(mockSvc))
	app.Post("/refresh", Refresh(mockSvc))
	app.Post("/password-reset", PasswordReset(mockSvc))
	app.Post("/password-reset/confirm", PasswordResetConfirm(mockSvc))
	app.Get("/verify-token", asUser(testUser), VerifyToken())
	app.Get("/me", asUser(testUser), Me())

	t.Run("register", func(t *testing.T) {
		in := service.RegisterInput{Email: "alice@example.com", Username: "alice", Password: "password1", ConfirmPassword: "password1"}
		mockSvc.On("Register", mock.Anything, in).Return(testUser, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/register", in))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		dup := in
		dup.Email = "taken@example.com"
		mockSvc.On("Register", mock.Anything, dup).Return(nil, service.ErrEmailTaken).Once()
		resp, _ = app.Test(jsonRequest(http.MethodPost, "/register", dup))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "이미 등록된 이메일입니다", decodeError(t, resp).Error.Message)
	})

	t.Run("login", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "alice@example.com", "password1").
			Return(&service.Token{AccessToken: "a", RefreshToken: "r", TokenType: "bearer", ExpiresIn: 86400, User: testUser}, nil).Once()
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/login", loginRequest{Email: "alice@example.com", Password: "password1"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var tok service.Token
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
		assert.Equal(t, "bearer", tok.TokenType)

		mockSvc.On("Login", mock.Anything, "alice@example.com", "wrong").Return(nil, service.ErrInvalidCredentials).Once()
		resp, _ = app.Test(jsonRequest(http.MethodPost, "/login", loginRequest{Email: "alice@example.com", Password: "wrong"}))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

		mockSvc.On("Login", mock.Anything, "idle@example.com", "password1").Return(nil, service.ErrInactiveUser).Once()
		resp, _ = app.Test(jsonRequest(http.MethodPost, "/login", loginRequest{Email: "idle@example.com", Password: "password1"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("refresh", func(t *testing.T) {
		mockSvc.On("Refresh", mock.Anything, "bad").Return(nil, service.ErrInvalidToken).Once()
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/refresh", refreshRequest{RefreshToken: "bad"}))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("password reset", func(t *testing.T) {
		mockSvc.On("RequestPasswordReset", mock.Anything, "ghost@example.com").Return(nil).Once()
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/password-reset", passwordResetRequest{Email: "ghost@example.com"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body messageResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, passwordResetMessage, body.Message)

		mockSvc.On("ConfirmPasswordReset", mock.Anything, "expired", "newpass123", "newpass123").Return(service.ErrInvalidResetToken).Once()
		resp, _ = app.Test(jsonRequest(http.MethodPost, "/password-reset/confirm", passwordResetConfirmRequest{Token: "expired", NewPassword: "newpass123", ConfirmPassword: "newpass123"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		mockSvc.On("ConfirmPasswordReset", mock.Anything, "orphan", "newpass123", "newpass123").Return(service.ErrUserNotFound).Once()
		resp, _ = app.Test(jsonRequest(http.MethodPost, "/password-reset/confirm", passwordResetConfirmRequest{Token: "orphan", NewPassword: "newpass123", ConfirmPassword: "newpass123"}))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		mismatch := &service.ValidationError{Field: "confirm_password", Message: "비밀번호가 일치하지 않습니다"}
		mockSvc.On("ConfirmPasswordReset", mock.Anything, "tok", "newpass123", "newpass124").Return(mismatch).Once()
		resp, _ = app.Test(jsonRequest(http.MethodPost, "/password-reset/confirm", passwordResetConfirmRequest{Token: "tok", NewPassword: "newpass123", ConfirmPassword: "newpass124"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("current user", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/verify-token", nil))
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, "user-1", body["user_id"])

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		var u model.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
		assert.Equal(t, "alice", u.Username)
	})

	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockAnalysisService)
	app := fiber.New()
	app.Get("/analyses", asUser(testUser), ListAnalyses(mockSvc))
	app.Post("/analyses/analyze-text", asUser(testUser), AnalyzeText(mockSvc))
	app.Get("/analyses/document/:document_id", asUser(testUser), AnalysisByDocument(mockSvc))
	app.Post("/analyses/document/:document_id/reanalyze", asUser(testUser), Reanalyze(mockSvc))
	app.Get("/analyses/:id/markdown", asUser(testUser), AnalysisMarkdown(mockSvc))
	app.Get("/analyses/:id/export", asUser(testUser), ExportAnalysis(mockSvc))
	app.Get("/analyses/:id/summary", asUser(testUser), AnalysisSummary(mockSvc))
	app.Delete("/analyses/:id", asUser(testUser), DeleteAnalysis(mockSvc))

	docID := uuid.New().String()
	analysisID := uuid.New().String()

	t.Run("list with confidence filter", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "user-1", mock.MatchedBy(func(q service.AnalysisListQuery) bool {
			return q.MinConfidence != nil && *q.MinConfidence == 0.5 && q.SortBy == "confidence_score"
		})).Return(&model.ListResult[model.Analysis]{Page: 1, Limit: 20}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/analyses?min_confidence=0.5&sort_by=confidence_score", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/analyses?min_confidence=high", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_MIN_CONFIDENCE", decodeError(t, resp).Error.Code)
	})

	t.Run("document without analysis", func(t *testing.T) {
		mockSvc.On("ByDocument", mock.Anything, "user-1", docID).Return(nil, service.ErrNoAnalysis).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/analyses/document/"+docID, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "분석 결과가 없습니다")
	})

	t.Run("analyze text", func(t *testing.T) {
		in := service.TextAnalysisInput{Text: "한국어 문서", Language: "ko"}
		mockSvc.On("AnalyzeText", mock.Anything, testUser, in).Return(&service.TextAnalysisResult{Summary: "요약"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/analyses/analyze-text", in))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res service.TextAnalysisResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "요약", res.Summary)
	})

	t.Run("reanalyze", func(t *testing.T) {
		mockSvc.On("Reanalyze", mock.Anything, testUser, docID, true).Return(nil, service.ErrForbidden).Once()
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/analyses/document/"+docID+"/reanalyze", reanalyzeRequest{UsePremiumModel: true}))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		mockSvc.On("Reanalyze", mock.Anything, testUser, docID, false).Return(&model.Analysis{ID: analysisID}, nil).Once()
		resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/analyses/document/"+docID+"/reanalyze", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body reanalyzeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, analysisID, body.AnalysisID)

		mockSvc.On("Reanalyze", mock.Anything, testUser, docID, false).Return(nil, service.ErrNotCompleted).Once()
		resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/analyses/document/"+docID+"/reanalyze", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("markdown and export", func(t *testing.T) {
		mockSvc.On("Markdown", mock.Anything, "user-1", analysisID).
			Return(&service.MarkdownResult{Content: "# 분석", Filename: "analysis_" + analysisID + ".md"}, nil).Once()
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/analyses/"+analysisID+"/markdown", nil))
		var md service.MarkdownResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&md))
		assert.Equal(t, "analysis_"+analysisID+".md", md.Filename)

		mockSvc.On("Export", mock.Anything, "user-1", analysisID, "markdown").
			Return(&service.ExportResult{URL: "http://minio/exports/x.md", Format: "markdown"}, nil).Once()
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/analyses/"+analysisID+"/export", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		mockSvc.On("Export", mock.Anything, "user-1", analysisID, "pdf").
			Return(nil, &service.ValidationError{Field: "format", Message: "unsupported"}).Once()
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/analyses/"+analysisID+"/export?format=pdf", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("summary and delete", func(t *testing.T) {
		mockSvc.On("Summary", mock.Anything, "user-1", analysisID).
			Return(&model.AnalysisSummary{ID: analysisID, KeywordCount: 4}, nil).Once()
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/analyses/"+analysisID+"/summary", nil))
		var s model.AnalysisSummary
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		assert.Equal(t, 4, s.KeywordCount)

		mockSvc.On("Delete", mock.Anything, "user-1", analysisID).Return(service.ErrAnalysisNotFound).Once()
		resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/analyses/"+analysisID, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestSubmitFeedback(t *testing.T) {
	mockSvc := new(serviceMocks.MockFeedbackService)
	app := fiber.New()
	app.Post("/feedback", SubmitFeedback(mockSvc))

	rating := 5
	in := service.FeedbackInput{Type: "general", Rating: &rating}

	mockSvc.On("Submit", mock.Anything, (*model.User)(nil), in, mock.MatchedBy(func(m service.RequestMeta) bool {
		return m.UserAgent == "handoc-cli/1.0" && m.IPAddress != ""
	})).Return(&model.Feedback{ID: "fb-1", Type: model.FeedbackGeneral, Rating: &rating}, nil).Once()

	req := jsonRequest(http.MethodPost, "/feedback", in)
	req.Header.Set("User-Agent", "handoc-cli/1.0")
	resp, _ := app.Test(req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	bad := 9
	mockSvc.On("Submit", mock.Anything, (*model.User)(nil), service.FeedbackInput{Rating: &bad}, mock.Anything).
		Return(nil, &service.ValidationError{Field: "rating", Message: "must be between 1 and 5"}).Once()
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/feedback", service.FeedbackInput{Rating: &bad}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)

	mockSvc.AssertExpectations(t)
}

func newRoutedApp(info ServiceInfo) (*fiber.App, *serviceMocks.MockAuthService, *serviceMocks.MockDocumentService) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	authSvc := new(serviceMocks.MockAuthService)
	docSvc := new(serviceMocks.MockDocumentService)
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Deps{
		Auth:      authSvc,
		Documents: docSvc,
		Analyses:  new(serviceMocks.MockAnalysisService),
		Feedback:  new(serviceMocks.MockFeedbackService),
		Info:      info,
	})
	return app, authSvc, docSvc
}

func TestRouting(t *testing.T) {
	app, authSvc, docSvc := newRoutedApp(ServiceInfo{Name: "HanDoc AI"})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, resp.Header.Get(middleware.RequestIDHeader), body.RequestID)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("documents require a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		authSvc.On("Authenticate", mock.Anything, "idle").Return(nil, service.ErrInactiveUser).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		req.Header.Set("Authorization", "Bearer idle")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, service.ErrInactiveUser.Error(), decodeError(t, resp).Error.Message)
	})

	t.Run("authenticated list", func(t *testing.T) {
		authSvc.On("Authenticate", mock.Anything, "good").Return(testUser, nil).Once()
		docSvc.On("List", mock.Anything, "user-1", service.DocumentListQuery{}).
			Return(&model.ListResult[model.Document]{Page: 1, Limit: 20}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stats route is not an id", func(t *testing.T) {
		authSvc.On("Authenticate", mock.Anything, "good").Return(testUser, nil).Once()
		docSvc.On("Stats", mock.Anything, "user-1").Return(&model.DocumentStats{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/stats/overview", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	authSvc.AssertExpectations(t)
	docSvc.AssertExpectations(t)
}

func TestRouting_RateLimit(t *testing.T) {
	app, _, _ := newRoutedApp(ServiceInfo{Name: "HanDoc AI", RateLimitPerHour: 1})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "RATE_LIMITED")
}
