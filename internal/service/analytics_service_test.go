package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	records    []models.BillingDetail
	trend      []models.SalaryTrendPoint
	trendArg   int
	comparison []models.DepartmentComparison
}

func (m *mockAnalyticsRepo) ListForAnalytics(ctx context.Context, filter models.WorkloadFilter) ([]models.BillingDetail, error) {
	return m.records, nil
}

func (m *mockAnalyticsRepo) SalaryTrend(ctx context.Context, months int) ([]models.SalaryTrendPoint, error) {
	m.trendArg = months
	return m.trend, nil
}

func (m *mockAnalyticsRepo) DepartmentComparison(ctx context.Context, month string) ([]models.DepartmentComparison, error) {
	return m.comparison, nil
}

type memoryCacheRepo struct {
	values map[string][]byte
	sets   int
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = map[string][]byte{}
	}
	m.values[key] = nil
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func billingRow(facultyID, name, month string, lectures, labs, tutorials int) models.BillingDetail {
	return models.BillingDetail{
		Billing: models.Billing{
			FacultyID: facultyID,
			Month:     month,
			Workload:  models.Workload{Lectures: lectures, Labs: labs, Tutorials: tutorials},
		},
		FacultyName: name,
	}
}

func TestAnalyticsWorkloadSummariesAggregatesAcrossMonths(t *testing.T) {
	repo := &mockAnalyticsRepo{records: []models.BillingDetail{
		billingRow("fac-1", "Dr. Rao", "2025-01", 10, 4, 2),
		billingRow("fac-1", "Dr. Rao", "2025-02", 8, 2, 1),
		billingRow("fac-2", "Dr. Iyer", "2025-01", 6, 1, 0),
	}}
	svc := NewAnalyticsService(repo, nil, 0, nil)

	summaries, err := svc.WorkloadSummaries(context.Background(), models.WorkloadFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// sorted by total workload, heaviest first
	assert.Equal(t, "fac-1", summaries[0].FacultyID)
	assert.Equal(t, 18, summaries[0].TotalLectures)
	assert.Equal(t, 6, summaries[0].TotalLabs)
	assert.Equal(t, 3, summaries[0].TotalTutorials)
	assert.Equal(t, 27, summaries[0].TotalWorkload)
	assert.Equal(t, 2, summaries[0].MonthCount)
	assert.Equal(t, 13.5, summaries[0].AvgWorkload)

	assert.Equal(t, "fac-2", summaries[1].FacultyID)
	assert.Equal(t, 7, summaries[1].TotalWorkload)
	assert.Equal(t, 1, summaries[1].MonthCount)
}

func TestAnalyticsWorkloadSummariesWritesThroughCache(t *testing.T) {
	repo := &mockAnalyticsRepo{records: []models.BillingDetail{
		billingRow("fac-1", "Dr. Rao", "2025-01", 1, 0, 0),
	}}
	cacheRepo := &memoryCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewAnalyticsService(repo, cacheSvc, time.Minute, nil)

	_, err := svc.WorkloadSummaries(context.Background(), models.WorkloadFilter{Department: "CSE"})
	require.NoError(t, err)
	assert.Equal(t, 1, cacheRepo.sets)
	assert.Contains(t, cacheRepo.values, "analytics:workload:CSE::")
}

func TestAnalyticsSalaryTrendClampsWindow(t *testing.T) {
	repo := &mockAnalyticsRepo{trend: []models.SalaryTrendPoint{{Month: "2025-01"}}}
	svc := NewAnalyticsService(repo, nil, 0, nil)

	_, err := svc.SalaryTrend(context.Background(), 480)
	require.NoError(t, err)
	assert.Equal(t, 12, repo.trendArg)

	_, err = svc.SalaryTrend(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, 6, repo.trendArg)
}

func TestAnalyticsDepartmentComparisonRejectsBadMonth(t *testing.T) {
	svc := NewAnalyticsService(&mockAnalyticsRepo{}, nil, 0, nil)

	_, err := svc.DepartmentComparison(context.Background(), "2025-13")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAnalyticsInvalidateCacheClearsEntries(t *testing.T) {
	cacheRepo := &memoryCacheRepo{values: map[string][]byte{"analytics:workload:::": nil}}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewAnalyticsService(&mockAnalyticsRepo{}, cacheSvc, time.Minute, nil)

	svc.InvalidateCache(context.Background())
	assert.Empty(t, cacheRepo.values)
}
