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

const timetableColumns = "t.id, t.faculty_id, t.subject_id, t.semester_id, t.day_of_week, t.start_time, t.end_time, t.room_number, t.created_at, t.updated_at"

// TimetableRepository manages persistence for weekly timetable slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns timetable slots with subject details, matching filters.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, int, error) {
	base := "FROM timetables t JOIN subjects s ON s.id = t.subject_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("t.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("t.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("t.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
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
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s, s.name AS subject_name, s.subject_code %s ORDER BY t.day_of_week ASC, t.start_time ASC LIMIT %d OFFSET %d", timetableColumns, base, size, offset)
	var slots []models.TimetableDetail
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	return slots, total, nil
}

// ListByFaculty returns every timetable slot for a faculty member within a
// semester. Feeds the conflict checker, so no pagination.
func (r *TimetableRepository) ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Timetable, error) {
	query := "SELECT id, faculty_id, subject_id, semester_id, day_of_week, start_time, end_time, room_number, created_at, updated_at FROM timetables WHERE faculty_id = $1"
	args := []interface{}{facultyID}

	if semesterID != "" {
		args = append(args, semesterID)
		query += fmt.Sprintf(" AND semester_id = $%d", len(args))
	}
	query += " ORDER BY day_of_week ASC, start_time ASC"

	var slots []models.Timetable
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list timetables by faculty: %w", err)
	}
	return slots, nil
}

// FindByID fetches a timetable slot by ID.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, faculty_id, subject_id, semester_id, day_of_week, start_time, end_time, room_number, created_at, updated_at FROM timetables WHERE id = $1`
	var slot models.Timetable
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new timetable slot.
func (r *TimetableRepository) Create(ctx context.Context, slot *models.Timetable) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO timetables (id, faculty_id, subject_id, semester_id, day_of_week, start_time, end_time, room_number, created_at, updated_at)
		VALUES (:id, :faculty_id, :subject_id, :semester_id, :day_of_week, :start_time, :end_time, :room_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// Update modifies an existing timetable slot.
func (r *TimetableRepository) Update(ctx context.Context, slot *models.Timetable) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetables SET subject_id = :subject_id, semester_id = :semester_id, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, room_number = :room_number, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update timetable: %w", err)
	}
	return nil
}

// Delete removes a timetable slot.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}
