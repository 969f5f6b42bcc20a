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

type mockBillingRepo struct {
	records []models.BillingDetail
	created *models.Billing
	updated *models.Billing
	deleted string
}

func (m *mockBillingRepo) List(ctx context.Context, filter models.BillingFilter) ([]models.BillingDetail, int, error) {
	return m.records, len(m.records), nil
}

func (m *mockBillingRepo) FindByID(ctx context.Context, id string) (*models.BillingDetail, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockBillingRepo) ExistsForMonth(ctx context.Context, facultyID, month string) (bool, error) {
	for _, record := range m.records {
		if record.FacultyID == facultyID && record.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBillingRepo) Create(ctx context.Context, billing *models.Billing) error {
	billing.ID = fmt.Sprintf("bill-%d", len(m.records)+1)
	m.created = billing
	m.records = append(m.records, models.BillingDetail{Billing: *billing})
	return nil
}

func (m *mockBillingRepo) Update(ctx context.Context, billing *models.Billing) error {
	m.updated = billing
	for i := range m.records {
		if m.records[i].ID == billing.ID {
			m.records[i].Billing = *billing
		}
	}
	return nil
}

func (m *mockBillingRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

type mockFacultyRepo struct {
	profile *models.FacultyProfile
}

func (m *mockFacultyRepo) FindByID(ctx context.Context, id string) (*models.FacultyProfile, error) {
	if m.profile == nil || m.profile.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

type mockBillingWorkLogs struct {
	logs []models.WorkLog
}

func (m *mockBillingWorkLogs) ListByFaculty(ctx context.Context, facultyID, startDate, endDate string) ([]models.WorkLog, error) {
	return m.logs, nil
}

func newBillingService(repo *mockBillingRepo, faculty *models.FacultyProfile, logs []models.WorkLog) *BillingService {
	return NewBillingService(repo, &mockFacultyRepo{profile: faculty}, &mockBillingWorkLogs{logs: logs}, nil, nil)
}

func raoProfile() *models.FacultyProfile {
	return &models.FacultyProfile{
		Faculty:  models.Faculty{ID: "fac-1", UserID: "user-1", EmployeeID: "EMP001", BaseSalary: 50000},
		UserName: "Dr. Rao",
	}
}

func TestBillingServiceGenerateFreezesWorkload(t *testing.T) {
	repo := &mockBillingRepo{}
	logs := []models.WorkLog{
		{ActivityType: models.ActivityLecture},
		{ActivityType: models.ActivityLecture},
		{ActivityType: models.ActivityLab},
		{ActivityType: models.ActivityTutorial},
		{ActivityType: models.ActivityExamDuty},
	}
	svc := newBillingService(repo, raoProfile(), logs)

	billing, err := svc.Generate(context.Background(), GenerateBillingRequest{
		FacultyID:  "fac-1",
		Month:      "2025-01",
		Allowances: 5000,
		Deductions: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, 53000.0, billing.NetSalary)
	assert.Equal(t, models.BillingPending, billing.Status)
	assert.Equal(t, 2, billing.Workload.Lectures)
	assert.Equal(t, 1, billing.Workload.Labs)
	assert.Equal(t, 1, billing.Workload.Tutorials)
	// exam duty does not count toward teaching workload
	assert.Equal(t, 4, billing.Workload.Total())
}

func TestBillingServiceGenerateRejectsDuplicateMonth(t *testing.T) {
	repo := &mockBillingRepo{records: []models.BillingDetail{{
		Billing: models.Billing{ID: "bill-1", FacultyID: "fac-1", Month: "2025-01", Status: models.BillingPending},
	}}}
	svc := newBillingService(repo, raoProfile(), nil)

	_, err := svc.Generate(context.Background(), GenerateBillingRequest{FacultyID: "fac-1", Month: "2025-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEntry.Code, appErrors.FromError(err).Code)
}

func TestBillingServiceGenerateRejectsBadMonth(t *testing.T) {
	svc := newBillingService(&mockBillingRepo{}, raoProfile(), nil)

	_, err := svc.Generate(context.Background(), GenerateBillingRequest{FacultyID: "fac-1", Month: "January 2025"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBillingServiceStatusOnlyAdvances(t *testing.T) {
	repo := &mockBillingRepo{records: []models.BillingDetail{{
		Billing: models.Billing{ID: "bill-1", FacultyID: "fac-1", Month: "2025-01", BaseSalary: 50000, NetSalary: 50000, Status: models.BillingProcessed},
	}}}
	svc := newBillingService(repo, raoProfile(), nil)

	pending := string(models.BillingPending)
	_, err := svc.Update(context.Background(), "bill-1", UpdateBillingRequest{Status: &pending})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	paid := string(models.BillingPaid)
	billing, err := svc.Update(context.Background(), "bill-1", UpdateBillingRequest{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaid, billing.Status)
	require.NotNil(t, billing.PaidAt)
}

func TestBillingServicePaidRecordsImmutable(t *testing.T) {
	repo := &mockBillingRepo{records: []models.BillingDetail{{
		Billing: models.Billing{ID: "bill-1", FacultyID: "fac-1", Month: "2025-01", Status: models.BillingPaid},
	}}}
	svc := newBillingService(repo, raoProfile(), nil)

	allowances := 1000.0
	_, err := svc.Update(context.Background(), "bill-1", UpdateBillingRequest{Allowances: &allowances})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBillingServiceUpdateRecomputesNet(t *testing.T) {
	repo := &mockBillingRepo{records: []models.BillingDetail{{
		Billing: models.Billing{ID: "bill-1", FacultyID: "fac-1", Month: "2025-01", BaseSalary: 50000, NetSalary: 50000, Status: models.BillingPending},
	}}}
	svc := newBillingService(repo, raoProfile(), nil)

	allowances := 8000.0
	deductions := 3000.0
	billing, err := svc.Update(context.Background(), "bill-1", UpdateBillingRequest{Allowances: &allowances, Deductions: &deductions})
	require.NoError(t, err)
	assert.Equal(t, 55000.0, billing.NetSalary)
}

func TestBillingServiceDeleteOnlyPending(t *testing.T) {
	repo := &mockBillingRepo{records: []models.BillingDetail{
		{Billing: models.Billing{ID: "bill-1", Status: models.BillingPending}},
		{Billing: models.Billing{ID: "bill-2", Status: models.BillingProcessed}},
	}}
	svc := newBillingService(repo, raoProfile(), nil)

	require.NoError(t, svc.Delete(context.Background(), "bill-1"))
	assert.Equal(t, "bill-1", repo.deleted)

	err := svc.Delete(context.Background(), "bill-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
