package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/service"
	"github.com/campuskit/faculty-admin-api/internal/validation"
)

type stubTimetableRepo struct {
	slots []models.Timetable
}

func (s *stubTimetableRepo) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, int, error) {
	details := make([]models.TimetableDetail, len(s.slots))
	for i, slot := range s.slots {
		details[i] = models.TimetableDetail{Timetable: slot}
	}
	return details, len(details), nil
}

func (s *stubTimetableRepo) ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Timetable, error) {
	return s.slots, nil
}

func (s *stubTimetableRepo) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return &s.slots[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubTimetableRepo) Create(ctx context.Context, slot *models.Timetable) error { return nil }
func (s *stubTimetableRepo) Update(ctx context.Context, slot *models.Timetable) error { return nil }
func (s *stubTimetableRepo) Delete(ctx context.Context, id string) error              { return nil }

func TestTimetableHandlerConflictCheckReturnsRawResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubTimetableRepo{slots: []models.Timetable{
		{ID: "tt-1", FacultyID: "fac-1", SemesterID: "sem-1", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"},
	}}
	handler := NewTimetableHandler(service.NewTimetableService(repo, nil, nil), nil)

	rec, c := postJSON(t, service.ConflictCheckRequest{
		FacultyID:  "fac-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	}, "/timetable/conflict-check")
	handler.CheckConflict(c)

	require.Equal(t, http.StatusOK, rec.Code)

	var result validation.ConflictResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "tt-1", result.Conflicts[0].ID)
}

func TestTimetableHandlerConflictCheckClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubTimetableRepo{slots: []models.Timetable{
		{ID: "tt-1", FacultyID: "fac-1", SemesterID: "sem-1", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"},
	}}
	handler := NewTimetableHandler(service.NewTimetableService(repo, nil, nil), nil)

	rec, c := postJSON(t, service.ConflictCheckRequest{
		FacultyID:  "fac-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Tuesday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	}, "/timetable/conflict-check")
	handler.CheckConflict(c)

	require.Equal(t, http.StatusOK, rec.Code)

	var result validation.ConflictResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.HasConflict)
	assert.Empty(t, result.Conflicts)
}

func TestTimetableHandlerConflictCheckInvalidRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(service.NewTimetableService(&stubTimetableRepo{}, nil, nil), nil)

	rec, c := postJSON(t, service.ConflictCheckRequest{
		FacultyID:  "fac-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "11:00",
		EndTime:    "09:00",
	}, "/timetable/conflict-check")
	handler.CheckConflict(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimetableHandlerCreateSurfacesConflictStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubTimetableRepo{slots: []models.Timetable{
		{ID: "tt-1", FacultyID: "fac-1", SemesterID: "sem-1", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"},
	}}
	handler := NewTimetableHandler(service.NewTimetableService(repo, nil, nil), nil)

	rec, c := postJSON(t, service.CreateTimetableRequest{
		FacultyID:  "fac-1",
		SubjectID:  "sub-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	}, "/timetable")
	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
