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

const facultyColumns = "f.id, f.user_id, f.employee_id, f.department, f.designation, f.joining_date, f.base_salary, f.phone, f.address, f.created_at, f.updated_at"

// FacultyRepository manages persistence for faculty employment records.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns faculty profiles matching filters along with total count.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.FacultyProfile, int, error) {
	base := "FROM faculty f JOIN users u ON u.id = f.user_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("f.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Designation != "" {
		conditions = append(conditions, fmt.Sprintf("f.designation = $%d", len(args)+1))
		args = append(args, filter.Designation)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.name) LIKE $%d OR LOWER(u.email) LIKE $%d OR LOWER(f.employee_id) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"employee_id":  "f.employee_id",
		"department":   "f.department",
		"joining_date": "f.joining_date",
		"created_at":   "f.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "f.created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s, u.name AS user_name, u.email AS user_email %s ORDER BY %s %s LIMIT %d OFFSET %d", facultyColumns, base, column, order, size, offset)
	var faculty []models.FacultyProfile
	if err := r.db.SelectContext(ctx, &faculty, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}

	return faculty, total, nil
}

// FindByID fetches a faculty profile by ID.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.FacultyProfile, error) {
	query := fmt.Sprintf("SELECT %s, u.name AS user_name, u.email AS user_email FROM faculty f JOIN users u ON u.id = f.user_id WHERE f.id = $1", facultyColumns)
	var faculty models.FacultyProfile
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByUserID fetches the faculty profile owned by a user account.
func (r *FacultyRepository) FindByUserID(ctx context.Context, userID string) (*models.FacultyProfile, error) {
	query := fmt.Sprintf("SELECT %s, u.name AS user_name, u.email AS user_email FROM faculty f JOIN users u ON u.id = f.user_id WHERE f.user_id = $1", facultyColumns)
	var faculty models.FacultyProfile
	if err := r.db.GetContext(ctx, &faculty, query, userID); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// ExistsByEmployeeID checks if another faculty record uses the same employee id.
func (r *FacultyRepository) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM faculty WHERE employee_id = $1"
	args := []interface{}{employeeID}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check employee id: %w", err)
	}
	return true, nil
}

// Create inserts a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = now
	}
	faculty.UpdatedAt = now

	const query = `INSERT INTO faculty (id, user_id, employee_id, department, designation, joining_date, base_salary, phone, address, created_at, updated_at)
		VALUES (:id, :user_id, :employee_id, :department, :designation, :joining_date, :base_salary, :phone, :address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// Update modifies an existing faculty record.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculty SET employee_id = :employee_id, department = :department, designation = :designation, joining_date = :joining_date, base_salary = :base_salary, phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return nil
}

// Delete removes a faculty record.
func (r *FacultyRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM faculty WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return nil
}
