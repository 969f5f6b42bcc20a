package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type analyticsBillingRepository interface {
	ListForAnalytics(ctx context.Context, filter models.WorkloadFilter) ([]models.BillingDetail, error)
	SalaryTrend(ctx context.Context, months int) ([]models.SalaryTrendPoint, error)
	DepartmentComparison(ctx context.Context, month string) ([]models.DepartmentComparison, error)
}

// AnalyticsService aggregates billing data into workload and salary views.
// Results are cached because the aggregations scan unpaginated billing rows.
type AnalyticsService struct {
	repo     analyticsBillingRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(repo analyticsBillingRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &AnalyticsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// WorkloadSummaries aggregates per-faculty workload figures from billing rows.
func (s *AnalyticsService) WorkloadSummaries(ctx context.Context, filter models.WorkloadFilter) ([]models.WorkloadSummary, error) {
	cacheKey := WorkloadCacheKey(filter)
	var cached []models.WorkloadSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	records, err := s.repo.ListForAnalytics(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing data")
	}

	type accumulator struct {
		summary models.WorkloadSummary
		months  map[string]struct{}
	}

	order := make([]string, 0)
	byFaculty := make(map[string]*accumulator)
	for _, record := range records {
		acc, ok := byFaculty[record.FacultyID]
		if !ok {
			acc = &accumulator{
				summary: models.WorkloadSummary{
					FacultyID:   record.FacultyID,
					FacultyName: record.FacultyName,
					EmployeeID:  record.EmployeeID,
					Department:  record.Department,
					Designation: record.Designation,
				},
				months: make(map[string]struct{}),
			}
			byFaculty[record.FacultyID] = acc
			order = append(order, record.FacultyID)
		}
		acc.summary.TotalLectures += record.Workload.Lectures
		acc.summary.TotalLabs += record.Workload.Labs
		acc.summary.TotalTutorials += record.Workload.Tutorials
		acc.summary.TotalWorkload += record.Workload.Total()
		acc.months[record.Month] = struct{}{}
	}

	summaries := make([]models.WorkloadSummary, 0, len(order))
	for _, facultyID := range order {
		acc := byFaculty[facultyID]
		acc.summary.MonthCount = len(acc.months)
		if acc.summary.MonthCount > 0 {
			avg := float64(acc.summary.TotalWorkload) / float64(acc.summary.MonthCount)
			acc.summary.AvgWorkload = math.Round(avg*10) / 10
		}
		summaries = append(summaries, acc.summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalWorkload > summaries[j].TotalWorkload
	})

	if err := s.cache.Set(ctx, cacheKey, summaries, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache workload summaries", zap.Error(err))
	}
	return summaries, nil
}

// SalaryTrend returns monthly aggregate salary spend for the trailing window.
func (s *AnalyticsService) SalaryTrend(ctx context.Context, months int) ([]models.SalaryTrendPoint, error) {
	if months <= 0 || months > 36 {
		months = 12
	}
	cacheKey := SalaryTrendCacheKey(months)
	var cached []models.SalaryTrendPoint
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	points, err := s.repo.SalaryTrend(ctx, months)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary trend")
	}

	if err := s.cache.Set(ctx, cacheKey, points, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache salary trend", zap.Error(err))
	}
	return points, nil
}

// DepartmentComparison returns per-department salary spend for one month.
func (s *AnalyticsService) DepartmentComparison(ctx context.Context, month string) ([]models.DepartmentComparison, error) {
	if !monthFormat.MatchString(month) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM")
	}
	cacheKey := DepartmentComparisonCacheKey(month)
	var cached []models.DepartmentComparison
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.repo.DepartmentComparison(ctx, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department comparison")
	}

	if err := s.cache.Set(ctx, cacheKey, rows, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache department comparison", zap.Error(err))
	}
	return rows, nil
}

// InvalidateCache drops every cached analytics payload. Billing writes call
// this so aggregates never serve stale figures past a mutation.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, AnalyticsCachePattern()); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}
