package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.FacultyProfile, int, error)
	FindByID(ctx context.Context, id string) (*models.FacultyProfile, error)
	FindByUserID(ctx context.Context, userID string) (*models.FacultyProfile, error)
	ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, id string) error
}

type facultyUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// CreateFacultyRequest provisions a faculty member with their login account.
type CreateFacultyRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	EmployeeID  string  `json:"employeeId" validate:"required"`
	Department  string  `json:"department" validate:"required"`
	Designation string  `json:"designation" validate:"required"`
	JoiningDate string  `json:"joiningDate" validate:"required"`
	BaseSalary  float64 `json:"baseSalary" validate:"gte=0"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// UpdateFacultyRequest modifies employment fields.
type UpdateFacultyRequest struct {
	Department  string  `json:"department" validate:"required"`
	Designation string  `json:"designation" validate:"required"`
	BaseSalary  float64 `json:"baseSalary" validate:"gte=0"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// FacultyService coordinates faculty administration.
type FacultyService struct {
	repo      facultyRepository
	users     facultyUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(repo facultyRepository, users facultyUserRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns faculty profiles with pagination metadata.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.FacultyProfile, *models.Pagination, error) {
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
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
	return profiles, pagination, nil
}

// Get returns a faculty profile.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.FacultyProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return profile, nil
}

// GetByUserID resolves the faculty profile owned by a user account.
func (s *FacultyService) GetByUserID(ctx context.Context, userID string) (*models.FacultyProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no faculty profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return profile, nil
}

// Create provisions a login account and the attached employment record.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.FacultyProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	if !dateFormat.MatchString(req.JoiningDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "joiningDate must be YYYY-MM-DD")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEntry, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	exists, err := s.repo.ExistsByEmployeeID(ctx, req.EmployeeID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee ID")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEntry, "employee ID already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         models.RoleFaculty,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user account")
	}

	faculty := &models.Faculty{
		UserID:      user.ID,
		EmployeeID:  req.EmployeeID,
		Department:  req.Department,
		Designation: req.Designation,
		JoiningDate: req.JoiningDate,
		BaseSalary:  req.BaseSalary,
		Phone:       req.Phone,
		Address:     req.Address,
	}
	if err := s.repo.Create(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty record")
	}

	s.logger.Info("faculty created",
		zap.String("id", faculty.ID),
		zap.String("employeeId", faculty.EmployeeID),
		zap.String("department", faculty.Department))

	return &models.FacultyProfile{Faculty: *faculty, UserName: user.Name, UserEmail: user.Email}, nil
}

// Update modifies a faculty member's employment record.
func (s *FacultyService) Update(ctx context.Context, id string, req UpdateFacultyRequest) (*models.FacultyProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	faculty := profile.Faculty
	faculty.Department = req.Department
	faculty.Designation = req.Designation
	faculty.BaseSalary = req.BaseSalary
	faculty.Phone = req.Phone
	faculty.Address = req.Address

	if err := s.repo.Update(ctx, &faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}

	profile.Faculty = faculty
	return profile, nil
}

// Delete removes a faculty record.
func (s *FacultyService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faculty")
	}
	return nil
}
