package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/validation"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type timetableRepository interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, int, error)
	ListByFaculty(ctx context.Context, facultyID, semesterID string) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Create(ctx context.Context, slot *models.Timetable) error
	Update(ctx context.Context, slot *models.Timetable) error
	Delete(ctx context.Context, id string) error
}

// CreateTimetableRequest captures a new weekly slot.
type CreateTimetableRequest struct {
	FacultyID  string  `json:"facultyId" validate:"required"`
	SubjectID  string  `json:"subjectId" validate:"required"`
	SemesterID string  `json:"semesterId" validate:"required"`
	DayOfWeek  string  `json:"dayOfWeek" validate:"required"`
	StartTime  string  `json:"startTime" validate:"required"`
	EndTime    string  `json:"endTime" validate:"required"`
	RoomNumber *string `json:"roomNumber"`
}

// UpdateTimetableRequest modifies an existing weekly slot.
type UpdateTimetableRequest struct {
	SubjectID  string  `json:"subjectId" validate:"required"`
	SemesterID string  `json:"semesterId" validate:"required"`
	DayOfWeek  string  `json:"dayOfWeek" validate:"required"`
	StartTime  string  `json:"startTime" validate:"required"`
	EndTime    string  `json:"endTime" validate:"required"`
	RoomNumber *string `json:"roomNumber"`
}

// ConflictCheckRequest probes a candidate slot without persisting it.
type ConflictCheckRequest struct {
	FacultyID  string `json:"facultyId" validate:"required"`
	SemesterID string `json:"semesterId"`
	DayOfWeek  string `json:"dayOfWeek" validate:"required"`
	StartTime  string `json:"startTime" validate:"required"`
	EndTime    string `json:"endTime" validate:"required"`
	ExcludeID  string `json:"excludeId"`
}

// TimetableService coordinates timetable CRUD and conflict detection.
type TimetableService struct {
	repo      timetableRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// List returns timetable slots with pagination metadata.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, *models.Pagination, error) {
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return slots, pagination, nil
}

// Get returns a single timetable slot.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slot")
	}
	return slot, nil
}

// Create persists a new slot after verifying it collides with nothing the
// faculty member already teaches that semester.
func (s *TimetableService) Create(ctx context.Context, req CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if err := validateSlotFields(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	candidate := validation.Slot{DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := s.ensureNoConflict(ctx, req.FacultyID, req.SemesterID, candidate, ""); err != nil {
		return nil, err
	}

	slot := &models.Timetable{
		FacultyID:  req.FacultyID,
		SubjectID:  req.SubjectID,
		SemesterID: req.SemesterID,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		RoomNumber: req.RoomNumber,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable slot")
	}

	s.logger.Info("timetable slot created",
		zap.String("id", slot.ID),
		zap.String("facultyId", slot.FacultyID),
		zap.String("day", slot.DayOfWeek))
	return slot, nil
}

// Update modifies a slot, re-running conflict detection with the slot itself
// excluded so it never collides with its own previous position.
func (s *TimetableService) Update(ctx context.Context, id string, req UpdateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if err := validateSlotFields(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slot")
	}

	candidate := validation.Slot{DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := s.ensureNoConflict(ctx, slot.FacultyID, req.SemesterID, candidate, slot.ID); err != nil {
		return nil, err
	}

	slot.SubjectID = req.SubjectID
	slot.SemesterID = req.SemesterID
	slot.DayOfWeek = req.DayOfWeek
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	slot.RoomNumber = req.RoomNumber

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable slot")
	}
	return slot, nil
}

// Delete removes a timetable slot.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable slot")
	}
	return nil
}

// CheckConflict runs conflict detection for a candidate slot without writing.
func (s *TimetableService) CheckConflict(ctx context.Context, req ConflictCheckRequest) (*validation.ConflictResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	if err := validateSlotFields(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByFaculty(ctx, req.FacultyID, req.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	candidate := validation.Slot{DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}
	result, err := validation.CheckConflict(req.FacultyID, candidate, existing, req.ExcludeID)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidRange) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, "endTime must be after startTime")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conflict check failed")
	}
	return &result, nil
}

func (s *TimetableService) ensureNoConflict(ctx context.Context, facultyID, semesterID string, candidate validation.Slot, excludeID string) error {
	existing, err := s.repo.ListByFaculty(ctx, facultyID, semesterID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	result, err := validation.CheckConflict(facultyID, candidate, existing, excludeID)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidRange) {
			return appErrors.Clone(appErrors.ErrInvalidTimeRange, "endTime must be after startTime")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conflict check failed")
	}
	if result.HasConflict {
		return appErrors.Clone(appErrors.ErrScheduleConflict, result.Message)
	}
	return nil
}

func validateSlotFields(day, start, end string) error {
	if !models.ValidDayOfWeek(day) {
		return appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be Monday through Saturday")
	}
	if !timeFormat.MatchString(start) || !timeFormat.MatchString(end) {
		return appErrors.Clone(appErrors.ErrValidation, "startTime and endTime must be HH:MM")
	}
	return nil
}
