package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/validation"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type workLogRepository interface {
	List(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, int, error)
	ListByFaculty(ctx context.Context, facultyID, startDate, endDate string) ([]models.WorkLog, error)
	FindByID(ctx context.Context, id string) (*models.WorkLog, error)
	Create(ctx context.Context, log *models.WorkLog) error
	Update(ctx context.Context, log *models.WorkLog) error
	Delete(ctx context.Context, id string) error
}

var (
	dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeFormat = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// CreateWorkLogRequest captures a new work log entry.
type CreateWorkLogRequest struct {
	FacultyID    string  `json:"facultyId" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	TimeIn       string  `json:"timeIn" validate:"required"`
	TimeOut      string  `json:"timeOut" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	Subject      string  `json:"subject" validate:"required"`
	ActivityType string  `json:"activityType" validate:"required"`
	Description  *string `json:"description"`
}

// UpdateWorkLogRequest modifies an existing work log entry.
type UpdateWorkLogRequest struct {
	Date         string  `json:"date" validate:"required"`
	TimeIn       string  `json:"timeIn" validate:"required"`
	TimeOut      string  `json:"timeOut" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	Subject      string  `json:"subject" validate:"required"`
	ActivityType string  `json:"activityType" validate:"required"`
	Description  *string `json:"description"`
}

// ValidateWorkLogsRequest selects the snapshot of entries to validate.
type ValidateWorkLogsRequest struct {
	FacultyID string `json:"facultyId" validate:"required"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// WorkLogService coordinates work log CRUD and the validation engine.
type WorkLogService struct {
	repo      workLogRepository
	engine    *validation.Validator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkLogService constructs a WorkLogService.
func NewWorkLogService(repo workLogRepository, engine *validation.Validator, validate *validator.Validate, logger *zap.Logger) *WorkLogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = validation.NewValidator(validation.DefaultPolicy())
	}
	return &WorkLogService{repo: repo, engine: engine, validator: validate, logger: logger}
}

// List returns work logs with pagination metadata.
func (s *WorkLogService) List(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work logs")
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
	return logs, pagination, nil
}

// Get returns a single work log entry.
func (s *WorkLogService) Get(ctx context.Context, id string) (*models.WorkLog, error) {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work log not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work log")
	}
	return log, nil
}

// Create records a new work log entry. TotalHours is derived from the
// interval; a time-out before time-in is rejected here, while historical rows
// that already violate it are left to the validation engine to flag.
func (s *WorkLogService) Create(ctx context.Context, req CreateWorkLogRequest) (*models.WorkLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work log payload")
	}
	if err := validateEntryFields(req.Date, req.TimeIn, req.TimeOut, req.ActivityType); err != nil {
		return nil, err
	}

	log := &models.WorkLog{
		FacultyID:    req.FacultyID,
		Date:         req.Date,
		TimeIn:       req.TimeIn,
		TimeOut:      req.TimeOut,
		Department:   req.Department,
		Subject:      req.Subject,
		ActivityType: models.ActivityType(req.ActivityType),
		Description:  req.Description,
		TotalHours:   intervalHours(req.TimeIn, req.TimeOut),
	}

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create work log")
	}

	s.logger.Info("work log created",
		zap.String("id", log.ID),
		zap.String("facultyId", log.FacultyID),
		zap.String("date", log.Date))
	return log, nil
}

// Update modifies an existing work log entry.
func (s *WorkLogService) Update(ctx context.Context, id string, req UpdateWorkLogRequest) (*models.WorkLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work log payload")
	}
	if err := validateEntryFields(req.Date, req.TimeIn, req.TimeOut, req.ActivityType); err != nil {
		return nil, err
	}

	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work log not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work log")
	}

	log.Date = req.Date
	log.TimeIn = req.TimeIn
	log.TimeOut = req.TimeOut
	log.Department = req.Department
	log.Subject = req.Subject
	log.ActivityType = models.ActivityType(req.ActivityType)
	log.Description = req.Description
	log.TotalHours = intervalHours(req.TimeIn, req.TimeOut)

	if err := s.repo.Update(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update work log")
	}
	return log, nil
}

// Delete removes a work log entry.
func (s *WorkLogService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "work log not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work log")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete work log")
	}
	return nil
}

// Validate loads the faculty member's entries inside the window and runs the
// full detector pipeline over the snapshot.
func (s *WorkLogService) Validate(ctx context.Context, req ValidateWorkLogsRequest) (*validation.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}
	if req.StartDate != "" && !dateFormat.MatchString(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	if req.EndDate != "" && !dateFormat.MatchString(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}

	entries, err := s.repo.ListByFaculty(ctx, req.FacultyID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work logs")
	}

	result := s.engine.Validate(entries)
	s.logger.Info("work log validation completed",
		zap.String("facultyId", req.FacultyID),
		zap.Int("entries", len(entries)),
		zap.Int("issues", len(result.Issues)),
		zap.Bool("isValid", result.IsValid))
	return &result, nil
}

func validateEntryFields(date, timeIn, timeOut, activity string) error {
	if !dateFormat.MatchString(date) {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if !timeFormat.MatchString(timeIn) || !timeFormat.MatchString(timeOut) {
		return appErrors.Clone(appErrors.ErrValidation, "timeIn and timeOut must be HH:MM")
	}
	if validation.TimeToMinutes(timeOut) <= validation.TimeToMinutes(timeIn) {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, "timeOut must be after timeIn")
	}
	if !models.ActivityType(activity).ValidActivity() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown activity type")
	}
	return nil
}

func intervalHours(timeIn, timeOut string) float64 {
	return float64(validation.TimeToMinutes(timeOut)-validation.TimeToMinutes(timeIn)) / 60.0
}
