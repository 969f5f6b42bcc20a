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

const billingColumns = "b.id, b.faculty_id, b.month, b.base_salary, b.allowances, b.deductions, b.net_salary, b.workload, b.status, b.generated_at, b.paid_at, b.created_at, b.updated_at"

// BillingRepository manages persistence for monthly salary records.
type BillingRepository struct {
	db *sqlx.DB
}

// NewBillingRepository constructs a BillingRepository.
func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// List returns billing records joined with faculty display fields.
func (r *BillingRepository) List(ctx context.Context, filter models.BillingFilter) ([]models.BillingDetail, int, error) {
	base := "FROM billings b JOIN faculties f ON f.id = b.faculty_id JOIN users u ON u.id = f.user_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("b.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.Month != "" {
		conditions = append(conditions, fmt.Sprintf("b.month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.name) LIKE $%d OR LOWER(f.employee_id) LIKE $%d)", len(args)+1, len(args)+1))
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

	query := fmt.Sprintf("SELECT %s, f.employee_id, u.name AS faculty_name %s ORDER BY b.month DESC, u.name ASC LIMIT %d OFFSET %d", billingColumns, base, size, offset)
	var records []models.BillingDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list billings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count billings: %w", err)
	}

	return records, total, nil
}

// FindByID fetches a billing record with faculty display fields.
func (r *BillingRepository) FindByID(ctx context.Context, id string) (*models.BillingDetail, error) {
	query := fmt.Sprintf("SELECT %s, f.employee_id, u.name AS faculty_name FROM billings b JOIN faculties f ON f.id = b.faculty_id JOIN users u ON u.id = f.user_id WHERE b.id = $1", billingColumns)
	var record models.BillingDetail
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistsForMonth checks if a faculty member already has a record for a month.
func (r *BillingRepository) ExistsForMonth(ctx context.Context, facultyID, month string) (bool, error) {
	const query = `SELECT 1 FROM billings WHERE faculty_id = $1 AND month = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, facultyID, month); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check billing month: %w", err)
	}
	return true, nil
}

// Create inserts a new billing record.
func (r *BillingRepository) Create(ctx context.Context, billing *models.Billing) error {
	if billing.ID == "" {
		billing.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if billing.GeneratedAt.IsZero() {
		billing.GeneratedAt = now
	}
	if billing.CreatedAt.IsZero() {
		billing.CreatedAt = now
	}
	billing.UpdatedAt = now

	const query = `INSERT INTO billings (id, faculty_id, month, base_salary, allowances, deductions, net_salary, workload, status, generated_at, paid_at, created_at, updated_at)
		VALUES (:id, :faculty_id, :month, :base_salary, :allowances, :deductions, :net_salary, :workload, :status, :generated_at, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, billing); err != nil {
		return fmt.Errorf("create billing: %w", err)
	}
	return nil
}

// Update modifies an existing billing record.
func (r *BillingRepository) Update(ctx context.Context, billing *models.Billing) error {
	billing.UpdatedAt = time.Now().UTC()
	const query = `UPDATE billings SET base_salary = :base_salary, allowances = :allowances, deductions = :deductions, net_salary = :net_salary, workload = :workload, status = :status, paid_at = :paid_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, billing); err != nil {
		return fmt.Errorf("update billing: %w", err)
	}
	return nil
}

// Delete removes a billing record.
func (r *BillingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM billings WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete billing: %w", err)
	}
	return nil
}

// ListForAnalytics returns billing rows with faculty attributes, unpaginated,
// for workload aggregation in the analytics layer.
func (r *BillingRepository) ListForAnalytics(ctx context.Context, filter models.WorkloadFilter) ([]models.BillingDetail, error) {
	base := "FROM billings b JOIN faculties f ON f.id = b.faculty_id JOIN users u ON u.id = f.user_id WHERE 1=1"
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
	if filter.Month != "" {
		conditions = append(conditions, fmt.Sprintf("b.month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s, f.employee_id, f.department, f.designation, u.name AS faculty_name %s ORDER BY b.month ASC", billingColumns, base)
	var records []models.BillingDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list billings for analytics: %w", err)
	}
	return records, nil
}

// SalaryTrend aggregates net salary spend per month over a trailing window.
func (r *BillingRepository) SalaryTrend(ctx context.Context, months int) ([]models.SalaryTrendPoint, error) {
	if months <= 0 {
		months = 12
	}
	const query = `SELECT month, SUM(net_salary) AS total_net, SUM(base_salary) AS total_base, COUNT(*) AS record_count, AVG(net_salary) AS average_salary
		FROM billings GROUP BY month ORDER BY month DESC LIMIT $1`
	var points []models.SalaryTrendPoint
	if err := r.db.SelectContext(ctx, &points, query, months); err != nil {
		return nil, fmt.Errorf("salary trend: %w", err)
	}
	return points, nil
}

// DepartmentComparison aggregates salary spend per department for one month.
func (r *BillingRepository) DepartmentComparison(ctx context.Context, month string) ([]models.DepartmentComparison, error) {
	const query = `SELECT f.department, COUNT(DISTINCT b.faculty_id) AS faculty_count, SUM(b.net_salary) AS total_net, AVG(b.net_salary) AS average_net
		FROM billings b JOIN faculties f ON f.id = b.faculty_id WHERE b.month = $1 GROUP BY f.department ORDER BY f.department ASC`
	var rows []models.DepartmentComparison
	if err := r.db.SelectContext(ctx, &rows, query, month); err != nil {
		return nil, fmt.Errorf("department comparison: %w", err)
	}
	return rows, nil
}
