package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

const subjectColumns = "id, name, subject_code, department, subject_type, credits, hours_per_week, semester_id, description, active, created_at, updated_at"

// SubjectRepository manages persistence for subjects, semesters, and
// faculty-subject assignments.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching filters along with total count.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.SubjectType != "" {
		conditions = append(conditions, fmt.Sprintf("subject_type = $%d", len(args)+1))
		args = append(args, filter.SubjectType)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(subject_code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY subject_code ASC LIMIT %d OFFSET %d", subjectColumns, base, size, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	return subjects, total, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = $1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks if another subject uses the same code.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE LOWER(subject_code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, subject_code, department, subject_type, credits, hours_per_week, semester_id, description, active, created_at, updated_at)
		VALUES (:id, :name, :subject_code, :department, :subject_type, :credits, :hours_per_week, :semester_id, :description, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, subject_code = :subject_code, department = :department, subject_type = :subject_type, credits = :credits, hours_per_week = :hours_per_week, semester_id = :semester_id, description = :description, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM subjects WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// ListSemesters returns all semesters, newest first.
func (r *SubjectRepository) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	const query = `SELECT id, year, semester_number, semester_name, start_date, end_date, active, created_at, updated_at FROM semesters ORDER BY start_date DESC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// CreateSemester inserts a semester window.
func (r *SubjectRepository) CreateSemester(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = now
	}
	semester.UpdatedAt = now

	const query = `INSERT INTO semesters (id, year, semester_number, semester_name, start_date, end_date, active, created_at, updated_at)
		VALUES (:id, :year, :semester_number, :semester_name, :start_date, :end_date, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// ListAssignments returns a faculty member's subject assignments.
func (r *SubjectRepository) ListAssignments(ctx context.Context, facultyID string) ([]models.SubjectAssignment, error) {
	const query = `SELECT id, faculty_id, subject_id, semester_id, role, assigned_at, created_at, updated_at FROM faculty_subject_map WHERE faculty_id = $1 ORDER BY assigned_at DESC`
	var assignments []models.SubjectAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, facultyID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CreateAssignment maps a subject to a faculty member.
func (r *SubjectRepository) CreateAssignment(ctx context.Context, assignment *models.SubjectAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = now
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO faculty_subject_map (id, faculty_id, subject_id, semester_id, role, assigned_at, created_at, updated_at)
		VALUES (:id, :faculty_id, :subject_id, :semester_id, :role, :assigned_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// DeleteAssignment removes a faculty-subject mapping.
func (r *SubjectRepository) DeleteAssignment(ctx context.Context, facultyID, assignmentID string) error {
	const query = `DELETE FROM faculty_subject_map WHERE id = $1 AND faculty_id = $2`
	if _, err := r.db.ExecContext(ctx, query, assignmentID, facultyID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
