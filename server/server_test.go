package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paul5577/AI-analysis-of-scoliosis/credential"
	"github.com/paul5577/AI-analysis-of-scoliosis/gemini"
	"github.com/paul5577/AI-analysis-of-scoliosis/imageprep"
	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

type MockAnalysisHandler struct {
	mock.Mock
}

func (m *MockAnalysisHandler) Analyze(ctx context.Context, imageData io.Reader) (model.AnalysisResult, error) {
	args := m.Called(ctx, imageData)
	return args.Get(0).(model.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisHandler) History() []model.HistoryRecord {
	args := m.Called()
	return args.Get(0).([]model.HistoryRecord)
}

func (m *MockAnalysisHandler) ClearHistory() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockAnalysisHandler) SaveKey(candidate string) error {
	args := m.Called(candidate)
	return args.Error(0)
}

func (m *MockAnalysisHandler) KeyStatus() credential.Source {
	args := m.Called()
	return args.Get(0).(credential.Source)
}

type MockContactHandler struct {
	mock.Mock
}

func (m *MockContactHandler) Submit(ctx context.Context, form model.ContactRequest) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func multipartImage(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "back.jpg")
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(part, image.NewRGBA(image.Rect(0, 0, 32, 32)), nil))
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("returns the interpreted result", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("Analyze", mock.Anything, mock.Anything).Return(model.AnalysisResult{
			CobbAngleDegrees: 14.3,
			Classification:   model.ClassificationMild,
			CapturedAt:       "2026-08-29",
		}, nil)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		body, contentType := multipartImage(t)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 14.3, resp.Result.CobbAngleDegrees)
		assert.Equal(t, "14.3", resp.AngleDisplay)
		assert.Equal(t, model.SeverityWarning, resp.Severity)
		assert.Equal(t, "advice.consult_recommended", resp.AdviceKey)
	})

	t.Run("a rate-limited analysis signals the settings panel", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("Analyze", mock.Anything, mock.Anything).Return(model.AnalysisResult{},
			&gemini.APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"})
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		body, contentType := multipartImage(t)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "rate_limited", resp.Code)
		assert.True(t, resp.OpenSettings)
	})

	t.Run("missing credentials open the settings panel", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("Analyze", mock.Anything, mock.Anything).Return(model.AnalysisResult{}, credential.ErrNoCredential)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		body, contentType := multipartImage(t)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "credentials_missing", resp.Code)
		assert.True(t, resp.OpenSettings)
	})

	t.Run("an encode failure surfaces as its own error code", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("Analyze", mock.Anything, mock.Anything).Return(model.AnalysisResult{},
			&imageprep.EncodeError{Err: errors.New("jpeg writer failed")})
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		body, contentType := multipartImage(t)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "encode_failure", resp.Code)
		assert.False(t, resp.OpenSettings)
	})

	t.Run("an upload over the size limit is rejected", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("image", "huge.jpg")
		require.NoError(t, err)
		_, err = part.Write(make([]byte, maxUploadSize+1))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockAnalysis.AssertNumberOfCalls(t, "Analyze", 0)
	})

	t.Run("a request without an image is rejected up front", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("not multipart"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockAnalysis.AssertNumberOfCalls(t, "Analyze", 0)
	})
}

func TestHandleHistory(t *testing.T) {
	mockAnalysis := new(MockAnalysisHandler)
	mockAnalysis.On("History").Return([]model.HistoryRecord{
		{ID: "c2", Result: model.AnalysisResult{CobbAngleDegrees: 31, Classification: model.ClassificationHighRisk}},
		{ID: "c1", Result: model.AnalysisResult{CobbAngleDegrees: 5, Classification: model.ClassificationNormal}},
	})
	router := NewRouter(mockAnalysis, new(MockContactHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Records []model.HistoryRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "c2", resp.Records[0].ID)
}

func TestHandleSettings(t *testing.T) {
	t.Run("status reports the key source but never the key", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("KeyStatus").Return(credential.SourceEnvironment)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		req := httptest.NewRequest(http.MethodGet, "/api/settings/key", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"source":"environment"}`, rec.Body.String())
	})

	t.Run("saving a too-short key is rejected", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("SaveKey", "short").Return(credential.ErrInvalidCredential)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		req := httptest.NewRequest(http.MethodPut, "/api/settings/key", strings.NewReader(`{"key":"short"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_credential", resp.Code)
	})

	t.Run("saving a valid key returns the new source", func(t *testing.T) {
		mockAnalysis := new(MockAnalysisHandler)
		mockAnalysis.On("SaveKey", "AIzaSyTESTKEY1234").Return(nil)
		mockAnalysis.On("KeyStatus").Return(credential.SourceUser)
		router := NewRouter(mockAnalysis, new(MockContactHandler))

		req := httptest.NewRequest(http.MethodPut, "/api/settings/key", strings.NewReader(`{"key":"AIzaSyTESTKEY1234"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"source":"user"}`, rec.Body.String())
	})
}

func TestHandleContact(t *testing.T) {
	validBody := `{"name":"Jamie Doe","age":"16","gender":"female","phone":"555-0100","email":"jamie@example.com","message":"hi"}`

	t.Run("submits a valid form", func(t *testing.T) {
		mockContacts := new(MockContactHandler)
		mockContacts.On("Submit", mock.Anything, mock.MatchedBy(func(form model.ContactRequest) bool {
			return form.Name == "Jamie Doe" && form.Gender == model.GenderFemale
		})).Return(nil)
		router := NewRouter(new(MockAnalysisHandler), mockContacts)

		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(validBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"sent":true}`, rec.Body.String())
	})

	t.Run("invalid forms never reach the submitter", func(t *testing.T) {
		mockContacts := new(MockContactHandler)
		router := NewRouter(new(MockAnalysisHandler), mockContacts)

		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"gender":"female"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockContacts.AssertNumberOfCalls(t, "Submit", 0)
	})
}
