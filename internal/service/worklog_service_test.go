package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/validation"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type mockWorkLogRepo struct {
	logs    []models.WorkLog
	created *models.WorkLog
	updated *models.WorkLog
	deleted string
	listErr error
}

func (m *mockWorkLogRepo) List(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.logs, len(m.logs), nil
}

func (m *mockWorkLogRepo) ListByFaculty(ctx context.Context, facultyID, startDate, endDate string) ([]models.WorkLog, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.WorkLog
	for _, log := range m.logs {
		if log.FacultyID != facultyID {
			continue
		}
		if startDate != "" && log.Date < startDate {
			continue
		}
		if endDate != "" && log.Date > endDate {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func (m *mockWorkLogRepo) FindByID(ctx context.Context, id string) (*models.WorkLog, error) {
	for i := range m.logs {
		if m.logs[i].ID == id {
			return &m.logs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockWorkLogRepo) Create(ctx context.Context, log *models.WorkLog) error {
	log.ID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.created = log
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockWorkLogRepo) Update(ctx context.Context, log *models.WorkLog) error {
	m.updated = log
	return nil
}

func (m *mockWorkLogRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func newWorkLogService(repo *mockWorkLogRepo) *WorkLogService {
	return NewWorkLogService(repo, nil, nil, nil)
}

func TestWorkLogServiceCreateComputesHours(t *testing.T) {
	repo := &mockWorkLogRepo{}
	svc := newWorkLogService(repo)

	log, err := svc.Create(context.Background(), CreateWorkLogRequest{
		FacultyID:    "fac-1",
		Date:         "2025-01-15",
		TimeIn:       "09:00",
		TimeOut:      "11:30",
		Department:   "CSE",
		Subject:      "Algorithms",
		ActivityType: "lecture",
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, log.TotalHours)
	require.NotNil(t, repo.created)
}

func TestWorkLogServiceCreateRejectsInvertedInterval(t *testing.T) {
	svc := newWorkLogService(&mockWorkLogRepo{})

	_, err := svc.Create(context.Background(), CreateWorkLogRequest{
		FacultyID:    "fac-1",
		Date:         "2025-01-15",
		TimeIn:       "11:00",
		TimeOut:      "09:00",
		Department:   "CSE",
		Subject:      "Algorithms",
		ActivityType: "lecture",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeRange.Code, appErrors.FromError(err).Code)
}

func TestWorkLogServiceCreateRejectsBadFields(t *testing.T) {
	svc := newWorkLogService(&mockWorkLogRepo{})

	cases := []CreateWorkLogRequest{
		{FacultyID: "fac-1", Date: "15-01-2025", TimeIn: "09:00", TimeOut: "11:00", Department: "CSE", Subject: "A", ActivityType: "lecture"},
		{FacultyID: "fac-1", Date: "2025-01-15", TimeIn: "9am", TimeOut: "11:00", Department: "CSE", Subject: "A", ActivityType: "lecture"},
		{FacultyID: "fac-1", Date: "2025-01-15", TimeIn: "09:00", TimeOut: "11:00", Department: "CSE", Subject: "A", ActivityType: "nap"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
	}
}

func TestWorkLogServiceValidateFlagsOverlap(t *testing.T) {
	repo := &mockWorkLogRepo{logs: []models.WorkLog{
		{ID: "a", FacultyID: "fac-1", Date: "2025-01-15", TimeIn: "09:00", TimeOut: "10:30", TotalHours: 1.5},
		{ID: "b", FacultyID: "fac-1", Date: "2025-01-15", TimeIn: "10:00", TimeOut: "11:00", TotalHours: 1},
	}}
	svc := newWorkLogService(repo)

	result, err := svc.Validate(context.Background(), ValidateWorkLogsRequest{FacultyID: "fac-1"})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, validation.IssueOverlap, result.Issues[0].Type)
	assert.ElementsMatch(t, []string{"a", "b"}, result.Issues[0].LogIDs)
}

func TestWorkLogServiceValidateWindowFiltersEntries(t *testing.T) {
	repo := &mockWorkLogRepo{logs: []models.WorkLog{
		{ID: "a", FacultyID: "fac-1", Date: "2025-01-05", TimeIn: "09:00", TimeOut: "10:00", TotalHours: 1},
		{ID: "b", FacultyID: "fac-1", Date: "2025-02-05", TimeIn: "09:00", TimeOut: "10:00", TotalHours: 1},
	}}
	svc := newWorkLogService(repo)

	result, err := svc.Validate(context.Background(), ValidateWorkLogsRequest{
		FacultyID: "fac-1",
		StartDate: "2025-02-01",
		EndDate:   "2025-02-28",
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 1, result.Stats.TotalLogs)
}

func TestWorkLogServiceValidateRejectsBadDates(t *testing.T) {
	svc := newWorkLogService(&mockWorkLogRepo{})

	_, err := svc.Validate(context.Background(), ValidateWorkLogsRequest{FacultyID: "fac-1", StartDate: "Jan 1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWorkLogServiceValidateEmptySnapshot(t *testing.T) {
	svc := newWorkLogService(&mockWorkLogRepo{})

	result, err := svc.Validate(context.Background(), ValidateWorkLogsRequest{FacultyID: "fac-1"})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.NotNil(t, result.Issues)
	assert.Empty(t, result.Issues)
}

func TestWorkLogServiceDeleteMissing(t *testing.T) {
	svc := newWorkLogService(&mockWorkLogRepo{})

	err := svc.Delete(context.Background(), "log-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
