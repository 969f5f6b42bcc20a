package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

func billingRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "faculty_id", "month", "base_salary", "allowances", "deductions", "net_salary", "workload", "status", "generated_at", "paid_at", "created_at", "updated_at", "employee_id", "faculty_name"}).
		AddRow("bill-1", "fac-1", "2025-01", 50000.0, 5000.0, 2000.0, 53000.0, []byte(`{"v":1,"lectures":12,"labs":4,"tutorials":2}`), "pending", now, nil, now, now, "EMP001", "Dr. Rao")
}

func TestBillingRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM billings b JOIN faculties f ON f.id = b.faculty_id JOIN users u ON u.id = f.user_id WHERE 1=1 AND b.month = $1")).
		WithArgs("2025-01").
		WillReturnRows(billingRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM billings b")).
		WithArgs("2025-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.BillingFilter{Month: "2025-01"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Dr. Rao", records[0].FacultyName)
	assert.Equal(t, 12, records[0].Workload.Lectures)
	assert.False(t, records[0].Workload.Fallback)
}

func TestBillingRepositoryScanCorruptWorkload(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "faculty_id", "month", "base_salary", "allowances", "deductions", "net_salary", "workload", "status", "generated_at", "paid_at", "created_at", "updated_at", "employee_id", "faculty_name"}).
		AddRow("bill-2", "fac-1", "2025-02", 50000.0, 0.0, 0.0, 50000.0, []byte(`not-json`), "pending", now, nil, now, now, "EMP001", "Dr. Rao")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = $1")).
		WithArgs("bill-2").
		WillReturnRows(rows)

	record, err := repo.FindByID(context.Background(), "bill-2")
	require.NoError(t, err)
	assert.True(t, record.Workload.Fallback)
	assert.Zero(t, record.Workload.Total())
}

func TestBillingRepositoryExistsForMonth(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM billings WHERE faculty_id = $1 AND month = $2")).
		WithArgs("fac-1", "2025-01").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForMonth(context.Background(), "fac-1", "2025-01")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM billings WHERE faculty_id = $1 AND month = $2")).
		WithArgs("fac-1", "2025-02").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsForMonth(context.Background(), "fac-1", "2025-02")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBillingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO billings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	billing := &models.Billing{
		FacultyID:  "fac-1",
		Month:      "2025-01",
		BaseSalary: 50000,
		NetSalary:  50000,
		Workload:   models.Workload{Lectures: 10},
		Status:     models.BillingPending,
	}
	err := repo.Create(context.Background(), billing)
	require.NoError(t, err)
	assert.NotEmpty(t, billing.ID)
	assert.False(t, billing.GeneratedAt.IsZero())
}

func TestBillingRepositorySalaryTrend(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBillingRepository(db)

	rows := sqlmock.NewRows([]string{"month", "total_net", "total_base", "record_count", "average_salary"}).
		AddRow("2025-02", 120000.0, 100000.0, 2, 60000.0).
		AddRow("2025-01", 110000.0, 100000.0, 2, 55000.0)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY month ORDER BY month DESC LIMIT $1")).
		WithArgs(6).
		WillReturnRows(rows)

	points, err := repo.SalaryTrend(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-02", points[0].Month)
	assert.Equal(t, 60000.0, points[0].AverageSalary)
}
