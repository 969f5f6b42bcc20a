package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

const reportColumns = "id, type, format, status, requested_by, faculty_id, month, start_date, end_date, file_path, error, attempts, created_at, started_at, finished_at"

// ReportRepository persists export job state so queued work survives restarts.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a queued export job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ReportQueued
	}

	const query = `INSERT INTO report_jobs (id, type, format, status, requested_by, faculty_id, month, start_date, end_date, file_path, error, attempts, created_at, started_at, finished_at)
		VALUES (:id, :type, :format, :status, :requested_by, :faculty_id, :month, :start_date, :end_date, :file_path, :error, :attempts, :created_at, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID fetches an export job.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE id = $1", reportColumns)
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkProcessing transitions a job to processing and stamps the start time.
func (r *ReportRepository) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	const query = `UPDATE report_jobs SET status = $1, started_at = $2, attempts = attempts + 1 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.ReportProcessing, startedAt, id); err != nil {
		return fmt.Errorf("mark report processing: %w", err)
	}
	return nil
}

// MarkCompleted records the rendered file path and completion time.
func (r *ReportRepository) MarkCompleted(ctx context.Context, id, filePath string, finishedAt time.Time) error {
	const query = `UPDATE report_jobs SET status = $1, file_path = $2, error = NULL, finished_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, models.ReportCompleted, filePath, finishedAt, id); err != nil {
		return fmt.Errorf("mark report completed: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason.
func (r *ReportRepository) MarkFailed(ctx context.Context, id, reason string, finishedAt time.Time) error {
	const query = `UPDATE report_jobs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, models.ReportFailed, reason, finishedAt, id); err != nil {
		return fmt.Errorf("mark report failed: %w", err)
	}
	return nil
}

// ListQueued returns jobs still waiting for a worker, oldest first. Used to
// re-enqueue work after a restart.
func (r *ReportRepository) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE status IN ($1, $2) ORDER BY created_at ASC LIMIT %d", reportColumns, limit)
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.ReportQueued, models.ReportProcessing); err != nil {
		return nil, fmt.Errorf("list queued report jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore returns completed or failed jobs older than the cutoff
// so their artifacts can be reclaimed.
func (r *ReportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE status IN ($1, $2) AND finished_at < $3 ORDER BY finished_at ASC LIMIT %d", reportColumns, limit)
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.ReportCompleted, models.ReportFailed, cutoff); err != nil {
		return nil, fmt.Errorf("list finished report jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a report job row.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM report_jobs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete report job: %w", err)
	}
	return nil
}
