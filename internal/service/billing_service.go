package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type billingRepository interface {
	List(ctx context.Context, filter models.BillingFilter) ([]models.BillingDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.BillingDetail, error)
	ExistsForMonth(ctx context.Context, facultyID, month string) (bool, error)
	Create(ctx context.Context, billing *models.Billing) error
	Update(ctx context.Context, billing *models.Billing) error
	Delete(ctx context.Context, id string) error
}

type billingFacultyRepository interface {
	FindByID(ctx context.Context, id string) (*models.FacultyProfile, error)
}

type billingWorkLogRepository interface {
	ListByFaculty(ctx context.Context, facultyID, startDate, endDate string) ([]models.WorkLog, error)
}

var monthFormat = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// GenerateBillingRequest asks for a salary record for one faculty-month.
type GenerateBillingRequest struct {
	FacultyID  string  `json:"facultyId" validate:"required"`
	Month      string  `json:"month" validate:"required"`
	Allowances float64 `json:"allowances" validate:"gte=0"`
	Deductions float64 `json:"deductions" validate:"gte=0"`
}

// UpdateBillingRequest adjusts amounts or advances the status.
type UpdateBillingRequest struct {
	Allowances *float64 `json:"allowances" validate:"omitempty,gte=0"`
	Deductions *float64 `json:"deductions" validate:"omitempty,gte=0"`
	Status     *string  `json:"status" validate:"omitempty,oneof=pending processed paid"`
}

// BillingService coordinates salary record generation and lifecycle.
type BillingService struct {
	repo      billingRepository
	faculties billingFacultyRepository
	workLogs  billingWorkLogRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBillingService constructs a BillingService.
func NewBillingService(repo billingRepository, faculties billingFacultyRepository, workLogs billingWorkLogRepository, validate *validator.Validate, logger *zap.Logger) *BillingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{repo: repo, faculties: faculties, workLogs: workLogs, validator: validate, logger: logger}
}

// List returns billing records with pagination metadata.
func (s *BillingService) List(ctx context.Context, filter models.BillingFilter) ([]models.BillingDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list billing records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Get returns a billing record with faculty display fields.
func (s *BillingService) Get(ctx context.Context, id string) (*models.BillingDetail, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "billing record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing record")
	}
	return record, nil
}

// Generate creates a pending salary record for one faculty-month. The
// workload snapshot is derived from the month's work logs at generation time
// and frozen onto the record.
func (s *BillingService) Generate(ctx context.Context, req GenerateBillingRequest) (*models.Billing, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid billing payload")
	}
	if !monthFormat.MatchString(req.Month) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM")
	}

	profile, err := s.faculties.FindByID(ctx, req.FacultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	exists, err := s.repo.ExistsForMonth(ctx, req.FacultyID, req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check billing month")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEntry, "billing record already exists for this month")
	}

	workload, err := s.monthWorkload(ctx, req.FacultyID, req.Month)
	if err != nil {
		return nil, err
	}

	billing := &models.Billing{
		FacultyID:  req.FacultyID,
		Month:      req.Month,
		BaseSalary: profile.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		NetSalary:  profile.BaseSalary + req.Allowances - req.Deductions,
		Workload:   workload,
		Status:     models.BillingPending,
	}
	if err := s.repo.Create(ctx, billing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create billing record")
	}

	s.logger.Info("billing record generated",
		zap.String("id", billing.ID),
		zap.String("facultyId", billing.FacultyID),
		zap.String("month", billing.Month),
		zap.Float64("netSalary", billing.NetSalary))
	return billing, nil
}

// Update adjusts amounts or advances the record's status. Status moves only
// forward: pending to processed to paid. Paid records are immutable.
func (s *BillingService) Update(ctx context.Context, id string, req UpdateBillingRequest) (*models.Billing, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid billing payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "billing record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing record")
	}

	billing := detail.Billing
	if billing.Status == models.BillingPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "paid records cannot be modified")
	}

	if req.Allowances != nil {
		billing.Allowances = *req.Allowances
	}
	if req.Deductions != nil {
		billing.Deductions = *req.Deductions
	}
	billing.NetSalary = billing.BaseSalary + billing.Allowances - billing.Deductions

	if req.Status != nil {
		next := models.BillingStatus(*req.Status)
		if !statusAdvances(billing.Status, next) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "billing status can only move forward")
		}
		billing.Status = next
		if next == models.BillingPaid {
			now := time.Now().UTC()
			billing.PaidAt = &now
		}
	}

	if err := s.repo.Update(ctx, &billing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update billing record")
	}
	return &billing, nil
}

// Delete removes a pending billing record. Processed and paid records stay.
func (s *BillingService) Delete(ctx context.Context, id string) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "billing record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing record")
	}
	if detail.Status != models.BillingPending {
		return appErrors.Clone(appErrors.ErrConflict, "only pending records can be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete billing record")
	}
	return nil
}

func (s *BillingService) monthWorkload(ctx context.Context, facultyID, month string) (models.Workload, error) {
	startDate := month + "-01"
	endDate := month + "-31"
	logs, err := s.workLogs.ListByFaculty(ctx, facultyID, startDate, endDate)
	if err != nil {
		return models.Workload{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work logs")
	}

	var workload models.Workload
	for _, log := range logs {
		switch log.ActivityType {
		case models.ActivityLecture:
			workload.Lectures++
		case models.ActivityLab:
			workload.Labs++
		case models.ActivityTutorial:
			workload.Tutorials++
		}
	}
	return workload, nil
}

func statusAdvances(from, to models.BillingStatus) bool {
	rank := map[models.BillingStatus]int{
		models.BillingPending:   0,
		models.BillingProcessed: 1,
		models.BillingPaid:      2,
	}
	fromRank, okFrom := rank[from]
	toRank, okTo := rank[to]
	return okFrom && okTo && toRank > fromRank
}
