package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type mockTimetableRepo struct {
	slots   []models.Timetable
	created *models.Timetable
	updated *models.Timetable
	deleted string
}

func (m *mockTimetableRepo) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, int, error) {
	details := make([]models.TimetableDetail, 0, len(m.slots))
	for _, slot := range m.slots {
		details = append(details, models.TimetableDetail{Timetable: slot})
	}
	return details, len(details), nil
}

func (m *mockTimetableRepo) ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Timetable, error) {
	var out []models.Timetable
	for _, slot := range m.slots {
		if slot.FacultyID != facultyID {
			continue
		}
		if semesterID != "" && slot.SemesterID != semesterID {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

func (m *mockTimetableRepo) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	for i := range m.slots {
		if m.slots[i].ID == id {
			return &m.slots[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimetableRepo) Create(ctx context.Context, slot *models.Timetable) error {
	slot.ID = fmt.Sprintf("tt-%d", len(m.slots)+1)
	m.created = slot
	m.slots = append(m.slots, *slot)
	return nil
}

func (m *mockTimetableRepo) Update(ctx context.Context, slot *models.Timetable) error {
	m.updated = slot
	return nil
}

func (m *mockTimetableRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func mondaySlot(id string) models.Timetable {
	return models.Timetable{
		ID:         id,
		FacultyID:  "fac-1",
		SubjectID:  "sub-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:00",
		EndTime:    "10:00",
	}
}

func TestTimetableServiceCreateRefusesConflict(t *testing.T) {
	repo := &mockTimetableRepo{slots: []models.Timetable{mondaySlot("tt-1")}}
	svc := NewTimetableService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateTimetableRequest{
		FacultyID:  "fac-1",
		SubjectID:  "sub-2",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestTimetableServiceCreateAllowsBackToBack(t *testing.T) {
	repo := &mockTimetableRepo{slots: []models.Timetable{mondaySlot("tt-1")}}
	svc := NewTimetableService(repo, nil, nil)

	slot, err := svc.Create(context.Background(), CreateTimetableRequest{
		FacultyID:  "fac-1",
		SubjectID:  "sub-2",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "10:00",
		EndTime:    "11:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
}

func TestTimetableServiceUpdateExcludesSelf(t *testing.T) {
	repo := &mockTimetableRepo{slots: []models.Timetable{mondaySlot("tt-1")}}
	svc := NewTimetableService(repo, nil, nil)

	// shifting the slot within its own window must not self-collide
	slot, err := svc.Update(context.Background(), "tt-1", UpdateTimetableRequest{
		SubjectID:  "sub-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "09:30", slot.StartTime)
}

func TestTimetableServiceCreateRejectsInvertedRange(t *testing.T) {
	svc := NewTimetableService(&mockTimetableRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTimetableRequest{
		FacultyID:  "fac-1",
		SubjectID:  "sub-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "11:00",
		EndTime:    "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeRange.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceCreateRejectsBadDay(t *testing.T) {
	svc := NewTimetableService(&mockTimetableRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTimetableRequest{
		FacultyID:  "fac-1",
		SubjectID:  "sub-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Sunday",
		StartTime:  "09:00",
		EndTime:    "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceCheckConflictReportsCollisions(t *testing.T) {
	repo := &mockTimetableRepo{slots: []models.Timetable{mondaySlot("tt-1")}}
	svc := NewTimetableService(repo, nil, nil)

	result, err := svc.CheckConflict(context.Background(), ConflictCheckRequest{
		FacultyID:  "fac-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	})
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "tt-1", result.Conflicts[0].ID)

	clearResult, err := svc.CheckConflict(context.Background(), ConflictCheckRequest{
		FacultyID:  "fac-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Tuesday",
		StartTime:  "09:30",
		EndTime:    "10:30",
	})
	require.NoError(t, err)
	assert.False(t, clearResult.HasConflict)
}

func TestTimetableServiceCheckConflictExcludeID(t *testing.T) {
	repo := &mockTimetableRepo{slots: []models.Timetable{mondaySlot("tt-1")}}
	svc := NewTimetableService(repo, nil, nil)

	result, err := svc.CheckConflict(context.Background(), ConflictCheckRequest{
		FacultyID:  "fac-1",
		SemesterID: "sem-1",
		DayOfWeek:  "Monday",
		StartTime:  "09:30",
		EndTime:    "10:30",
		ExcludeID:  "tt-1",
	})
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
}
