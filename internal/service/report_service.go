package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
	"github.com/campuskit/faculty-admin-api/pkg/storage"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string, startedAt time.Time) error
	MarkCompleted(ctx context.Context, id, filePath string, finishedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string, finishedAt time.Time) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(task models.ReportTask) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error)
}

// CreateReportRequest asks for an asynchronous export.
type CreateReportRequest struct {
	Type      string  `json:"type" validate:"required"`
	Format    string  `json:"format" validate:"required"`
	FacultyID *string `json:"facultyId"`
	Month     *string `json:"month"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// ReportStatusResponse reports job progress and, once complete, the download.
type ReportStatusResponse struct {
	Job         models.ReportJob `json:"job"`
	DownloadURL string           `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportServiceConfig governs cleanup of finished artifacts.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	DownloadPath    string
}

// ReportService orchestrates export job lifecycle management.
type ReportService struct {
	repo      reportJobStore
	queue     jobDispatcher
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, queue jobDispatcher, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/reports/download"
	}
	return &ReportService{repo: repo, queue: queue, store: store, signer: signer, validator: validate, logger: logger, cfg: cfg}
}

// CreateJob validates the request, persists the job, and enqueues rendering.
// Faculty callers are pinned to their own data before this is invoked.
func (s *ReportService) CreateJob(ctx context.Context, req CreateReportRequest, requestedBy string) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	reportType := models.ReportType(req.Type)
	if !reportType.ValidReportType() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
	format := models.ReportFormat(req.Format)
	if !format.ValidFormat() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if reportType == models.ReportWorkLogDetail && req.FacultyID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "worklog_detail requires facultyId")
	}
	if req.Month != nil && !monthFormat.MatchString(*req.Month) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM")
	}
	if req.StartDate != nil && !dateFormat.MatchString(*req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	if req.EndDate != nil && !dateFormat.MatchString(*req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}

	job := &models.ReportJob{
		Type:        reportType,
		Format:      format,
		Status:      models.ReportQueued,
		RequestedBy: requestedBy,
		FacultyID:   req.FacultyID,
		Month:       req.Month,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report job")
	}

	if err := s.queue.Enqueue(models.ReportTask{JobID: job.ID, Type: job.Type}); err != nil {
		s.logger.Error("failed to enqueue report job", zap.String("jobId", job.ID), zap.Error(err))
		now := time.Now().UTC()
		_ = s.repo.MarkFailed(ctx, job.ID, "enqueue failed", now)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	s.logger.Info("report job queued", zap.String("jobId", job.ID), zap.String("type", string(job.Type)))
	return job, nil
}

// GetStatus returns job progress. Completed jobs include a signed download
// URL so the artifact can be fetched without authentication headers.
func (s *ReportService) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*ReportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}

	if role != models.RoleAdmin && job.RequestedBy != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}

	resp := &ReportStatusResponse{Job: *job}
	if job.Status == models.ReportCompleted && job.FilePath != nil && s.signer != nil {
		token, expiresAt, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			s.logger.Warn("failed to sign download URL", zap.String("jobId", job.ID), zap.Error(err))
		} else {
			resp.DownloadURL = fmt.Sprintf("%s?token=%s", s.cfg.DownloadPath, token)
			resp.ExpiresAt = &expiresAt
		}
	}
	return resp, nil
}

// ResolveDownload validates a signed token and opens the artifact.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportCompleted || job.FilePath == nil || *job.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report artifact unavailable")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open artifact")
	}

	return &ReportDownload{
		File:      file,
		Filename:  fmt.Sprintf("%s-%s.%s", job.Type, job.ID, job.Format),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs re-enqueues jobs that were queued or mid-render when the
// process last stopped.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 100)
	if err != nil {
		s.logger.Error("failed to list pending report jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(models.ReportTask{JobID: job.ID, Type: job.Type}); err != nil {
			s.logger.Warn("failed to re-enqueue report job", zap.String("jobId", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered pending report jobs", zap.Int("count", len(pending)))
	}
}

// StartCleanup periodically reclaims expired artifacts until ctx is done.
func (s *ReportService) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)
	finished, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Error("failed to list finished report jobs", zap.Error(err))
		return
	}
	for _, job := range finished {
		if job.FilePath != nil {
			if err := s.store.Delete(*job.FilePath); err != nil {
				s.logger.Warn("failed to delete artifact", zap.String("jobId", job.ID), zap.Error(err))
				continue
			}
		}
		if err := s.repo.Delete(ctx, job.ID); err != nil {
			s.logger.Warn("failed to delete report job", zap.String("jobId", job.ID), zap.Error(err))
		}
	}
	if len(finished) > 0 {
		s.logger.Info("cleaned up expired report jobs", zap.Int("count", len(finished)))
	}
}

// ReportWorker consumes queued jobs and renders them.
type ReportWorker struct {
	repo     reportJobStore
	exporter exportGenerator
	logger   *zap.Logger
}

// NewReportWorker constructs a worker for the export queue.
func NewReportWorker(repo reportJobStore, exporter exportGenerator, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{repo: repo, exporter: exporter, logger: logger}
}

// Handle processes a single queued export job.
func (w *ReportWorker) Handle(ctx context.Context, task models.ReportTask) error {
	job, err := w.repo.FindByID(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.logger.Warn("report job vanished", zap.String("jobId", task.JobID))
			return nil
		}
		return fmt.Errorf("load report job %s: %w", task.JobID, err)
	}
	if job.Status == models.ReportCompleted {
		return nil
	}

	if err := w.repo.MarkProcessing(ctx, job.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark processing %s: %w", job.ID, err)
	}

	result, err := w.exporter.Generate(ctx, job)
	if err != nil {
		now := time.Now().UTC()
		if markErr := w.repo.MarkFailed(ctx, job.ID, err.Error(), now); markErr != nil {
			w.logger.Error("failed to record job failure", zap.String("jobId", job.ID), zap.Error(markErr))
		}
		return fmt.Errorf("render report %s: %w", job.ID, err)
	}

	if err := w.repo.MarkCompleted(ctx, job.ID, result.FilePath, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark completed %s: %w", job.ID, err)
	}

	w.logger.Info("report job completed",
		zap.String("jobId", job.ID),
		zap.String("file", result.FilePath),
		zap.Int("bytes", result.Size))
	return nil
}
