package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"altiora-api/internal/api/handlers"
	"altiora-api/internal/models"
	"altiora-api/internal/services"
	"altiora-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockApplicationService struct {
	mock.Mock
}

func (m *mockApplicationService) Submit(ctx context.Context, req *dto.ApplyRequest) (*services.IntakeResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*services.IntakeResult)
	return result, args.Error(1)
}

func (m *mockApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*models.ApplicationRecord)
	return rec, args.Error(1)
}

func (m *mockApplicationService) ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) ([]models.ApplicationRecord, int, error) {
	args := m.Called(ctx, req)
	records, _ := args.Get(0).([]models.ApplicationRecord)
	return records, args.Int(1), args.Error(2)
}

const validBody = `{
	"firstName": " Ada ",
	"lastName": "Lovelace",
	"email": "Ada@Example.com",
	"phone": "",
	"year": "junior",
	"major": "Mathematics",
	"divisions": ["Engineering", 7, null, "Engineering"],
	"convince": "Engines"
}`

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestApplicationHandler_Apply(t *testing.T) {
	applicantID := uuid.New()

	tests := []struct {
		name           string
		body           string
		result         *services.IntakeResult
		serviceErr     error
		expectCall     bool
		expectedStatus int
		expectedBody   map[string]any
		retryHeader    string
	}{
		{
			name:           "Created",
			body:           validBody,
			result:         &services.IntakeResult{Outcome: services.OutcomeCreated, ApplicantID: applicantID},
			expectCall:     true,
			expectedStatus: http.StatusCreated,
			expectedBody:   map[string]any{"message": "Application submitted successfully", "fresh": true},
		},
		{
			name:           "Updated",
			body:           validBody,
			result:         &services.IntakeResult{Outcome: services.OutcomeUpdated, ApplicantID: applicantID, ChangedFields: []string{"major"}},
			expectCall:     true,
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]any{"message": "Application updated successfully", "updated": true},
		},
		{
			name:           "No changes",
			body:           validBody,
			result:         &services.IntakeResult{Outcome: services.OutcomeNoChanges, ApplicantID: applicantID},
			expectCall:     true,
			expectedStatus: http.StatusConflict,
			expectedBody:   map[string]any{"message": "No changes detected. Your application is already up to date."},
		},
		{
			name:           "Rate limited",
			body:           validBody,
			result:         &services.IntakeResult{Outcome: services.OutcomeRateLimited, ApplicantID: applicantID, RetryAfter: 30},
			expectCall:     true,
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   map[string]any{"message": "Please wait 30 seconds before updating your application again.", "retryAfter": float64(30)},
			retryHeader:    "30",
		},
		{
			name:           "Create race",
			body:           validBody,
			serviceErr:     fmt.Errorf("%w: submitting application", services.ErrConflict),
			expectCall:     true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]any{"message": "Another submission with this email or phone was being processed. Please try again."},
		},
		{
			name:           "Store failure",
			body:           validBody,
			serviceErr:     errors.New("internal error during submitting application: disk full"),
			expectCall:     true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]any{"message": "Failed to submit application"},
		},
		{
			name:           "Malformed JSON",
			body:           `{"firstName": `,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing required fields",
			body:           `{"email": "not-an-email"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Whitespace only name",
			body:           `{"firstName": "   ", "lastName": "Lovelace", "email": "ada@example.com"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockApplicationService)
			if tc.expectCall {
				svc.On("Submit", mock.Anything, mock.AnythingOfType("*dto.ApplyRequest")).Return(tc.result, tc.serviceErr).Once()
			}

			router := gin.New()
			router.POST("/api/apply", handlers.NewApplicationHandler(svc, handlers.NewValidator()).Apply)
			w := doJSON(router, http.MethodPost, "/api/apply", tc.body)

			assert.Equal(t, tc.expectedStatus, w.Code)
			body := decode(t, w)
			if tc.expectedBody != nil {
				assert.Equal(t, tc.expectedBody, body)
			} else {
				assert.NotEmpty(t, body["message"])
				assert.NotNil(t, body["details"])
			}
			assert.Equal(t, tc.retryHeader, w.Header().Get("Retry-After"))
			svc.AssertExpectations(t)
			if !tc.expectCall {
				svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestApplicationHandler_Apply_NormalizesBeforeSubmit(t *testing.T) {
	svc := new(mockApplicationService)
	svc.On("Submit", mock.Anything, mock.MatchedBy(func(req *dto.ApplyRequest) bool {
		return req.FirstName == "Ada" &&
			req.Email == "ada@example.com" &&
			assert.ObjectsAreEqual(dto.Divisions{"Engineering", "7"}, req.Divisions)
	})).Return(&services.IntakeResult{Outcome: services.OutcomeCreated}, nil).Once()

	router := gin.New()
	router.POST("/api/apply", handlers.NewApplicationHandler(svc, handlers.NewValidator()).Apply)
	w := doJSON(router, http.MethodPost, "/api/apply", validBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestApplicationHandler_Apply_ValidationDetails(t *testing.T) {
	svc := new(mockApplicationService)
	router := gin.New()
	router.POST("/api/apply", handlers.NewApplicationHandler(svc, handlers.NewValidator()).Apply)

	w := doJSON(router, http.MethodPost, "/api/apply", `{"firstName": "Ada", "email": "nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Validation failed", body["message"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Field 'lastName' is required", details["lastName"])
	assert.Equal(t, "Field 'email' must be a valid email address", details["email"])
}

func newAdminRouter(svc services.ApplicationService) *gin.Engine {
	h := handlers.NewAdminHandler(svc, handlers.NewValidator())
	router := gin.New()
	router.GET("/api/admin/applications", h.ListApplications)
	router.GET("/api/admin/applications/:id", h.GetApplicationByID)
	return router
}

func sampleRecord() models.ApplicationRecord {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	return models.ApplicationRecord{
		Applicant: models.Applicant{
			ID:        id,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Divisions: []string{"Engineering"},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		Essay: &models.Essay{ApplicantID: id, Convince: "Engines"},
	}
}

func TestAdminHandler_ListApplications(t *testing.T) {
	rec := sampleRecord()

	t.Run("Defaults", func(t *testing.T) {
		svc := new(mockApplicationService)
		svc.On("ListApplications", mock.Anything, &dto.ListApplicationsRequest{Limit: 20, Offset: 0}).
			Return([]models.ApplicationRecord{rec}, 1, nil).Once()

		w := doJSON(newAdminRouter(svc), http.MethodGet, "/api/admin/applications", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ListApplicationsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, 20, resp.Limit)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, rec.Applicant.ID, resp.Items[0].ID)
		assert.Equal(t, "2025-03-01T13:00:00Z", resp.Items[0].UpdatedAt)
		require.NotNil(t, resp.Items[0].Essay)
		assert.Equal(t, "Engines", resp.Items[0].Essay.Convince)
		svc.AssertExpectations(t)
	})

	t.Run("Explicit paging", func(t *testing.T) {
		svc := new(mockApplicationService)
		svc.On("ListApplications", mock.Anything, &dto.ListApplicationsRequest{Limit: 5, Offset: 10}).
			Return([]models.ApplicationRecord{}, 12, nil).Once()

		w := doJSON(newAdminRouter(svc), http.MethodGet, "/api/admin/applications?limit=5&offset=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"total":12,"limit":5,"offset":10}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	for _, query := range []string{"limit=0", "limit=101", "offset=-1", "limit=abc"} {
		t.Run("Invalid "+query, func(t *testing.T) {
			svc := new(mockApplicationService)
			w := doJSON(newAdminRouter(svc), http.MethodGet, "/api/admin/applications?"+query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "ListApplications", mock.Anything, mock.Anything)
		})
	}

	t.Run("Service failure", func(t *testing.T) {
		svc := new(mockApplicationService)
		svc.On("ListApplications", mock.Anything, mock.Anything).Return(nil, 0, errors.New("boom")).Once()

		w := doJSON(newAdminRouter(svc), http.MethodGet, "/api/admin/applications", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"message":"Failed to retrieve applications"}`, w.Body.String())
	})
}

func TestAdminHandler_GetApplicationByID(t *testing.T) {
	rec := sampleRecord()
	missing := uuid.New()

	svc := new(mockApplicationService)
	svc.On("GetApplication", mock.Anything, rec.Applicant.ID).Return(&rec, nil)
	svc.On("GetApplication", mock.Anything, missing).Return(nil, fmt.Errorf("%w: getting application by ID", services.ErrNotFound))
	router := newAdminRouter(svc)

	w := doJSON(router, http.MethodGet, "/api/admin/applications/"+rec.Applicant.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ApplicationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Equal(t, []string{"Engineering"}, resp.Divisions)

	w = doJSON(router, http.MethodGet, "/api/admin/applications/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/applications/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	router := gin.New()
	router.GET("/up", handlers.NewHealthHandler(fakePinger{}).HealthCheck)
	router.GET("/down", handlers.NewHealthHandler(fakePinger{err: errors.New("refused")}).HealthCheck)

	w := doJSON(router, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","database":"unavailable"}`, w.Body.String())
}

func TestDocsHandler(t *testing.T) {
	h, err := handlers.NewDocsHandler()
	require.NoError(t, err)

	router := gin.New()
	router.GET("/api/openapi.json", h.OpenAPI)
	w := doJSON(router, http.MethodGet, "/api/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/apply")
}
