package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

func TestAnalyticsCacheKeyBuilders(t *testing.T) {
	assert.Equal(t, "analytics:workload:CSE::", WorkloadCacheKey(models.WorkloadFilter{Department: "CSE"}))
	assert.Equal(t, "analytics:workload:CSE:Professor:2025-01", WorkloadCacheKey(models.WorkloadFilter{
		Department:  "CSE",
		Designation: "Professor",
		Month:       "2025-01",
	}))
	assert.Equal(t, "analytics:salary-trend:12", SalaryTrendCacheKey(12))
	assert.Equal(t, "analytics:departments:2025-01", DepartmentComparisonCacheKey("2025-01"))
}

func TestAnalyticsCachePatternCoversAllKeys(t *testing.T) {
	prefix := strings.TrimSuffix(AnalyticsCachePattern(), "*")
	keys := []string{
		WorkloadCacheKey(models.WorkloadFilter{Department: "CSE"}),
		SalaryTrendCacheKey(6),
		DepartmentComparisonCacheKey("2025-02"),
	}
	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, prefix), "key %q escapes invalidation pattern", key)
	}
}

func TestCacheServiceNilReceiverIsNoOp(t *testing.T) {
	var s *CacheService
	assert.False(t, s.Enabled())

	var dest []models.WorkloadSummary
	hit, err := s.Get(context.Background(), WorkloadCacheKey(models.WorkloadFilter{}), &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Set(context.Background(), SalaryTrendCacheKey(12), nil, 0))
	require.NoError(t, s.Invalidate(context.Background(), AnalyticsCachePattern()))
}

func TestCacheServiceDisabledSkipsRepo(t *testing.T) {
	repo := &memoryCacheRepo{values: map[string][]byte{}}
	s := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, s.Set(context.Background(), DepartmentComparisonCacheKey("2025-01"), "ignored", 0))
	assert.Empty(t, repo.values)
}
