package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/service"
	"github.com/campuskit/faculty-admin-api/internal/validation"
)

type stubWorkLogRepo struct {
	logs []models.WorkLog
}

func (s *stubWorkLogRepo) List(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, int, error) {
	return s.logs, len(s.logs), nil
}

func (s *stubWorkLogRepo) ListByFaculty(ctx context.Context, facultyID, startDate, endDate string) ([]models.WorkLog, error) {
	return s.logs, nil
}

func (s *stubWorkLogRepo) FindByID(ctx context.Context, id string) (*models.WorkLog, error) {
	for i := range s.logs {
		if s.logs[i].ID == id {
			return &s.logs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubWorkLogRepo) Create(ctx context.Context, log *models.WorkLog) error { return nil }
func (s *stubWorkLogRepo) Update(ctx context.Context, log *models.WorkLog) error { return nil }
func (s *stubWorkLogRepo) Delete(ctx context.Context, id string) error           { return nil }

func postJSON(t *testing.T, payload interface{}, path string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return rec, c
}

func TestWorkLogHandlerValidateReturnsRawResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubWorkLogRepo{logs: []models.WorkLog{
		{ID: "wl-1", FacultyID: "fac-1", Date: "2025-01-06", TimeIn: "09:00", TimeOut: "11:00", ActivityType: models.ActivityLecture, TotalHours: 2},
		{ID: "wl-2", FacultyID: "fac-1", Date: "2025-01-06", TimeIn: "10:00", TimeOut: "12:00", ActivityType: models.ActivityLab, TotalHours: 2},
	}}
	handler := NewWorkLogHandler(service.NewWorkLogService(repo, nil, nil, nil), nil)

	rec, c := postJSON(t, service.ValidateWorkLogsRequest{FacultyID: "fac-1"}, "/work-logs/validate")
	handler.Validate(c)

	require.Equal(t, http.StatusOK, rec.Code)

	// raw result, not wrapped in the envelope
	var result validation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, validation.IssueOverlap, result.Issues[0].Type)
	assert.Equal(t, 2, result.Stats.TotalLogs)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotContains(t, envelope, "data")
	assert.Contains(t, envelope, "isValid")
}

func TestWorkLogHandlerValidateRejectsMissingFaculty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkLogHandler(service.NewWorkLogService(&stubWorkLogRepo{}, nil, nil, nil), nil)

	rec, c := postJSON(t, service.ValidateWorkLogsRequest{}, "/work-logs/validate")
	handler.Validate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkLogHandlerCreateRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkLogHandler(service.NewWorkLogService(&stubWorkLogRepo{}, nil, nil, nil), nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/work-logs", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkLogHandlerListPassesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubWorkLogRepo{logs: []models.WorkLog{
		{ID: "wl-1", FacultyID: "fac-1", Date: "2025-01-06", TimeIn: "09:00", TimeOut: "10:00", ActivityType: models.ActivityLecture, TotalHours: 1},
	}}
	handler := NewWorkLogHandler(service.NewWorkLogService(repo, nil, nil, nil), nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/work-logs?facultyId=fac-1&page=2&limit=5", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data       []models.WorkLog   `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.Page)
	assert.Equal(t, 5, envelope.Pagination.PageSize)
}
