package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type mockReportStore struct {
	jobs       map[string]*models.ReportJob
	processing []string
	completed  []string
	failed     []string
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{jobs: map[string]*models.ReportJob{}}
}

func (m *mockReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	job.ID = fmt.Sprintf("job-%d", len(m.jobs)+1)
	m.jobs[job.ID] = job
	return nil
}

func (m *mockReportStore) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockReportStore) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	m.processing = append(m.processing, id)
	m.jobs[id].Status = models.ReportProcessing
	return nil
}

func (m *mockReportStore) MarkCompleted(ctx context.Context, id, filePath string, finishedAt time.Time) error {
	m.completed = append(m.completed, id)
	m.jobs[id].Status = models.ReportCompleted
	m.jobs[id].FilePath = &filePath
	return nil
}

func (m *mockReportStore) MarkFailed(ctx context.Context, id, reason string, finishedAt time.Time) error {
	m.failed = append(m.failed, id)
	m.jobs[id].Status = models.ReportFailed
	m.jobs[id].Error = &reason
	return nil
}

func (m *mockReportStore) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportQueued || job.Status == models.ReportProcessing {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (m *mockReportStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

func (m *mockReportStore) Delete(ctx context.Context, id string) error {
	delete(m.jobs, id)
	return nil
}

type mockDispatcher struct {
	enqueued []models.ReportTask
	err      error
}

func (m *mockDispatcher) Enqueue(task models.ReportTask) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, task)
	return nil
}

type mockExporter struct {
	result *ExportResult
	err    error
}

func (m *mockExporter) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	return m.result, m.err
}

func TestReportServiceCreateJobEnqueues(t *testing.T) {
	store := newMockReportStore()
	dispatcher := &mockDispatcher{}
	svc := NewReportService(store, dispatcher, nil, nil, nil, nil, ReportServiceConfig{})

	month := "2025-01"
	job, err := svc.CreateJob(context.Background(), CreateReportRequest{
		Type:   string(models.ReportBillingSummary),
		Format: string(models.FormatCSV),
		Month:  &month,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportQueued, job.Status)
	assert.Equal(t, "user-1", job.RequestedBy)
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, job.ID, dispatcher.enqueued[0].JobID)
	assert.Equal(t, models.ReportBillingSummary, dispatcher.enqueued[0].Type)
	assert.Equal(t, job.ID, dispatcher.enqueued[0].TaskID())
	assert.Equal(t, "billing_summary", dispatcher.enqueued[0].TaskKind())
}

func TestReportServiceCreateJobRejectsUnknownType(t *testing.T) {
	svc := NewReportService(newMockReportStore(), &mockDispatcher{}, nil, nil, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), CreateReportRequest{Type: "grade_sheet", Format: "csv"}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCreateJobWorkLogDetailNeedsFaculty(t *testing.T) {
	svc := NewReportService(newMockReportStore(), &mockDispatcher{}, nil, nil, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), CreateReportRequest{
		Type:   string(models.ReportWorkLogDetail),
		Format: string(models.FormatPDF),
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCreateJobMarksFailedWhenEnqueueFails(t *testing.T) {
	store := newMockReportStore()
	dispatcher := &mockDispatcher{err: errors.New("queue full")}
	svc := NewReportService(store, dispatcher, nil, nil, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), CreateReportRequest{
		Type:   string(models.ReportBillingSummary),
		Format: string(models.FormatCSV),
	}, "user-1")
	require.Error(t, err)
	require.Len(t, store.failed, 1)
}

func TestReportServiceGetStatusEnforcesOwnership(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{Type: models.ReportBillingSummary, Format: models.FormatCSV, Status: models.ReportQueued, RequestedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), job))
	svc := NewReportService(store, &mockDispatcher{}, nil, nil, nil, nil, ReportServiceConfig{})

	_, err := svc.GetStatus(context.Background(), job.ID, "user-2", models.RoleFaculty)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	status, err := svc.GetStatus(context.Background(), job.ID, "user-2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, job.ID, status.Job.ID)
	assert.Empty(t, status.DownloadURL)
}

func TestReportServiceRecoverPendingReEnqueues(t *testing.T) {
	store := newMockReportStore()
	queued := &models.ReportJob{Type: models.ReportBillingSummary, Format: models.FormatCSV, Status: models.ReportQueued, RequestedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), queued))
	done := &models.ReportJob{Type: models.ReportBillingSummary, Format: models.FormatCSV, Status: models.ReportCompleted, RequestedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), done))

	dispatcher := &mockDispatcher{}
	svc := NewReportService(store, dispatcher, nil, nil, nil, nil, ReportServiceConfig{})

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, queued.ID, dispatcher.enqueued[0].JobID)
}

func TestReportWorkerHandleLifecycle(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{Type: models.ReportBillingSummary, Format: models.FormatCSV, Status: models.ReportQueued, RequestedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), job))

	worker := NewReportWorker(store, &mockExporter{result: &ExportResult{FilePath: "reports/out.csv", Size: 42}}, nil)
	require.NoError(t, worker.Handle(context.Background(), models.ReportTask{JobID: job.ID}))

	assert.Equal(t, []string{job.ID}, store.processing)
	assert.Equal(t, []string{job.ID}, store.completed)
	assert.Equal(t, models.ReportCompleted, store.jobs[job.ID].Status)
	require.NotNil(t, store.jobs[job.ID].FilePath)
	assert.Equal(t, "reports/out.csv", *store.jobs[job.ID].FilePath)
}

func TestReportWorkerHandleMarksFailure(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{Type: models.ReportBillingSummary, Format: models.FormatCSV, Status: models.ReportQueued, RequestedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), job))

	worker := NewReportWorker(store, &mockExporter{err: errors.New("render exploded")}, nil)
	err := worker.Handle(context.Background(), models.ReportTask{JobID: job.ID})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "render exploded"))
	assert.Equal(t, models.ReportFailed, store.jobs[job.ID].Status)
}

func TestReportWorkerHandleSkipsVanishedJob(t *testing.T) {
	worker := NewReportWorker(newMockReportStore(), &mockExporter{}, nil)
	require.NoError(t, worker.Handle(context.Background(), models.ReportTask{JobID: "ghost"}))
}
