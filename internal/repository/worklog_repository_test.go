package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func workLogRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "faculty_id", "date", "time_in", "time_out", "department", "subject", "activity_type", "description", "total_hours", "created_at", "updated_at"}).
		AddRow("log-1", "fac-1", "2025-01-15", "09:00", "11:00", "CSE", "Algorithms", "lecture", nil, 2.0, now, now)
}

func TestWorkLogRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, faculty_id, date, time_in, time_out, department, subject, activity_type, description, total_hours, created_at, updated_at FROM work_logs WHERE 1=1 AND faculty_id = $1")).
		WithArgs("fac-1").
		WillReturnRows(workLogRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM work_logs WHERE 1=1 AND faculty_id = $1")).
		WithArgs("fac-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	logs, total, err := repo.List(context.Background(), models.WorkLogFilter{FacultyID: "fac-1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "log-1", logs[0].ID)
	assert.Equal(t, models.ActivityLecture, logs[0].ActivityType)
}

func TestWorkLogRepositoryListByFaculty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_logs WHERE faculty_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC, time_in ASC")).
		WithArgs("fac-1", "2025-01-01", "2025-01-31").
		WillReturnRows(workLogRows())

	logs, err := repo.ListByFaculty(context.Background(), "fac-1", "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2025-01-15", logs[0].Date)
}

func TestWorkLogRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_logs WHERE id = $1")).
		WithArgs("log-99").
		WillReturnError(sql.ErrNoRows)

	log, err := repo.FindByID(context.Background(), "log-99")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, log)
}

func TestWorkLogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO work_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := &models.WorkLog{
		FacultyID:    "fac-1",
		Date:         "2025-01-15",
		TimeIn:       "09:00",
		TimeOut:      "11:00",
		Department:   "CSE",
		Subject:      "Algorithms",
		ActivityType: models.ActivityLecture,
		TotalHours:   2.0,
	}
	err := repo.Create(context.Background(), log)
	require.NoError(t, err)
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.CreatedAt.IsZero())
}

func TestWorkLogRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM work_logs WHERE id = $1")).
		WithArgs("log-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "log-1"))
}
