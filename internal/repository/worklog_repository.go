package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

const workLogColumns = "id, faculty_id, date, time_in, time_out, department, subject, activity_type, description, total_hours, created_at, updated_at"

// WorkLogRepository manages persistence for faculty work logs.
type WorkLogRepository struct {
	db *sqlx.DB
}

// NewWorkLogRepository constructs a WorkLogRepository.
func NewWorkLogRepository(db *sqlx.DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

// List returns work logs matching filters along with total count.
func (r *WorkLogRepository) List(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, int, error) {
	base := "FROM work_logs WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.EndDate)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.ActivityType != "" {
		conditions = append(conditions, fmt.Sprintf("activity_type = $%d", len(args)+1))
		args = append(args, filter.ActivityType)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC, time_in DESC LIMIT %d OFFSET %d", workLogColumns, base, size, offset)
	var logs []models.WorkLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list work logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count work logs: %w", err)
	}

	return logs, total, nil
}

// ListByFaculty returns every work log for a faculty member inside the date
// window, oldest first. Feeds the validation engine, so no pagination.
func (r *WorkLogRepository) ListByFaculty(ctx context.Context, facultyID, startDate, endDate string) ([]models.WorkLog, error) {
	query := fmt.Sprintf("SELECT %s FROM work_logs WHERE faculty_id = $1", workLogColumns)
	args := []interface{}{facultyID}

	if startDate != "" {
		args = append(args, startDate)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if endDate != "" {
		args = append(args, endDate)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date ASC, time_in ASC"

	var logs []models.WorkLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list work logs by faculty: %w", err)
	}
	return logs, nil
}

// FindByID fetches a work log by ID.
func (r *WorkLogRepository) FindByID(ctx context.Context, id string) (*models.WorkLog, error) {
	query := fmt.Sprintf("SELECT %s FROM work_logs WHERE id = $1", workLogColumns)
	var log models.WorkLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// Create inserts a new work log entry.
func (r *WorkLogRepository) Create(ctx context.Context, log *models.WorkLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now
	}
	log.UpdatedAt = now

	const query = `INSERT INTO work_logs (id, faculty_id, date, time_in, time_out, department, subject, activity_type, description, total_hours, created_at, updated_at)
		VALUES (:id, :faculty_id, :date, :time_in, :time_out, :department, :subject, :activity_type, :description, :total_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create work log: %w", err)
	}
	return nil
}

// Update modifies an existing work log entry.
func (r *WorkLogRepository) Update(ctx context.Context, log *models.WorkLog) error {
	log.UpdatedAt = time.Now().UTC()
	const query = `UPDATE work_logs SET date = :date, time_in = :time_in, time_out = :time_out, department = :department, subject = :subject, activity_type = :activity_type, description = :description, total_hours = :total_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("update work log: %w", err)
	}
	return nil
}

// Delete removes a work log entry.
func (r *WorkLogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM work_logs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete work log: %w", err)
	}
	return nil
}
