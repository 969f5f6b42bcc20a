package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	ListSemesters(ctx context.Context) ([]models.Semester, error)
	CreateSemester(ctx context.Context, semester *models.Semester) error
	ListAssignments(ctx context.Context, facultyID string) ([]models.SubjectAssignment, error)
	CreateAssignment(ctx context.Context, assignment *models.SubjectAssignment) error
	DeleteAssignment(ctx context.Context, facultyID, assignmentID string) error
}

// CreateSubjectRequest captures a new catalogue subject.
type CreateSubjectRequest struct {
	Name         string  `json:"name" validate:"required"`
	SubjectCode  string  `json:"subjectCode" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	SubjectType  string  `json:"subjectType" validate:"required,oneof=theory lab elective"`
	Credits      float64 `json:"credits" validate:"gte=0"`
	HoursPerWeek float64 `json:"hoursPerWeek" validate:"gte=0"`
	SemesterID   *string `json:"semesterId"`
	Description  *string `json:"description"`
}

// UpdateSubjectRequest modifies a catalogue subject.
type UpdateSubjectRequest struct {
	Name         string  `json:"name" validate:"required"`
	SubjectCode  string  `json:"subjectCode" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	SubjectType  string  `json:"subjectType" validate:"required,oneof=theory lab elective"`
	Credits      float64 `json:"credits" validate:"gte=0"`
	HoursPerWeek float64 `json:"hoursPerWeek" validate:"gte=0"`
	SemesterID   *string `json:"semesterId"`
	Description  *string `json:"description"`
	Active       *bool   `json:"isActive"`
}

// CreateSemesterRequest captures an academic semester window.
type CreateSemesterRequest struct {
	Year           string `json:"year" validate:"required"`
	SemesterNumber int    `json:"semesterNumber" validate:"required,min=1,max=8"`
	SemesterName   string `json:"semesterName" validate:"required"`
	StartDate      string `json:"startDate" validate:"required"`
	EndDate        string `json:"endDate" validate:"required"`
}

// AssignSubjectRequest maps a subject to a faculty member.
type AssignSubjectRequest struct {
	SubjectID  string `json:"subjectId" validate:"required"`
	SemesterID string `json:"semesterId" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=primary assistant"`
}

// SubjectService coordinates subject catalogue operations.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects with pagination metadata.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
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
	return subjects, pagination, nil
}

// Get returns a single subject.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject to the catalogue.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.SubjectCode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEntry, "subject code already in use")
	}

	subject := &models.Subject{
		Name:         req.Name,
		SubjectCode:  req.SubjectCode,
		Department:   req.Department,
		SubjectType:  req.SubjectType,
		Credits:      req.Credits,
		HoursPerWeek: req.HoursPerWeek,
		SemesterID:   req.SemesterID,
		Description:  req.Description,
		Active:       true,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.logger.Info("subject created", zap.String("id", subject.ID), zap.String("code", subject.SubjectCode))
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.SubjectCode, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEntry, "subject code already in use")
	}

	subject.Name = req.Name
	subject.SubjectCode = req.SubjectCode
	subject.Department = req.Department
	subject.SubjectType = req.SubjectType
	subject.Credits = req.Credits
	subject.HoursPerWeek = req.HoursPerWeek
	subject.SemesterID = req.SemesterID
	subject.Description = req.Description
	if req.Active != nil {
		subject.Active = *req.Active
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject from the catalogue.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

// ListSemesters returns all semesters, newest first.
func (s *SubjectService) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.ListSemesters(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// CreateSemester adds a semester window.
func (s *SubjectService) CreateSemester(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	if !dateFormat.MatchString(req.StartDate) || !dateFormat.MatchString(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate and endDate must be YYYY-MM-DD")
	}
	if req.EndDate <= req.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be after startDate")
	}

	semester := &models.Semester{
		Year:           req.Year,
		SemesterNumber: req.SemesterNumber,
		SemesterName:   req.SemesterName,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Active:         true,
	}
	if err := s.repo.CreateSemester(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	return semester, nil
}

// ListAssignments returns a faculty member's subject assignments.
func (s *SubjectService) ListAssignments(ctx context.Context, facultyID string) ([]models.SubjectAssignment, error) {
	assignments, err := s.repo.ListAssignments(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Assign maps a subject to a faculty member for a semester.
func (s *SubjectService) Assign(ctx context.Context, facultyID string, req AssignSubjectRequest) (*models.SubjectAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.repo.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	assignment := &models.SubjectAssignment{
		FacultyID:  facultyID,
		SubjectID:  req.SubjectID,
		SemesterID: req.SemesterID,
		Role:       req.Role,
	}
	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Unassign removes a faculty-subject mapping.
func (s *SubjectService) Unassign(ctx context.Context, facultyID, assignmentID string) error {
	if err := s.repo.DeleteAssignment(ctx, facultyID, assignmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
