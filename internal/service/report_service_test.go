package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	sets    int
	gets    int
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	data, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

type mockAttainmentReadStore struct {
	snapshots []models.COSnapshot
	pos       []models.POAttainment
}

func (m *mockAttainmentReadStore) LatestSnapshots(ctx context.Context, courseID string) ([]models.COSnapshot, error) {
	return m.snapshots, nil
}

func (m *mockAttainmentReadStore) SnapshotTrend(ctx context.Context, courseID, coID string) ([]models.COSnapshot, error) {
	var result []models.COSnapshot
	for _, s := range m.snapshots {
		if s.COID == coID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockAttainmentReadStore) ListPOAttainmentByCourse(ctx context.Context, courseID string) ([]models.POAttainment, error) {
	return m.pos, nil
}

type mockOverallReader struct {
	scores       []models.StudentOverallScore
	distribution map[string]int
}

func (m *mockOverallReader) ListByCourse(ctx context.Context, courseID string) ([]models.StudentOverallScore, error) {
	return m.scores, nil
}

func (m *mockOverallReader) GradeDistribution(ctx context.Context, courseID string) (map[string]int, error) {
	return m.distribution, nil
}

func newReportFixture(cacheRepo *memoryCacheRepo) (*ReportService, *mockAttainmentReadStore, *mockOverallReader) {
	attainments := &mockAttainmentReadStore{
		snapshots: []models.COSnapshot{
			{COID: "co-1", CONumber: 1, CIEPercentage: 70, SEEPercentage: 50, FinalPercentage: 59},
			{COID: "co-2", CONumber: 2, CIEPercentage: 82, SEEPercentage: 64, FinalPercentage: 70.2},
		},
		pos: []models.POAttainment{
			{POID: "po-1", PONumber: 1, POPercentage: 64.5, AttainmentLevel: 2.29},
		},
	}
	overall := &mockOverallReader{
		scores: []models.StudentOverallScore{
			{StudentUSN: "1RV20CS001", CIEPercentage: 90, SEEPercentage: 85, Percentage: 88.5, Grade: "A"},
		},
		distribution: map[string]int{"A": 1},
	}
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	} else {
		cache = NewCacheService(nil, nil, 0, nil, false)
	}
	return NewReportService(attainments, overall, cache, "RV College", nil), attainments, overall
}

func TestCourseSummaryComposesReadModels(t *testing.T) {
	svc, _, _ := newReportFixture(nil)

	summary, cached, err := svc.CourseSummary(context.Background(), "course-1")
	require.NoError(t, err)

	assert.False(t, cached)
	assert.Equal(t, "course-1", summary.CourseID)
	require.Len(t, summary.COs, 2)
	assert.Equal(t, 1, summary.COs[0].CONumber)
	assert.InDelta(t, 59.0, summary.COs[0].FinalPercentage, 1e-9)
	require.Len(t, summary.POs, 1)
	assert.Equal(t, map[string]int{"A": 1}, summary.GradeDistribution)
}

func TestCourseSummaryServedFromCache(t *testing.T) {
	cacheRepo := &memoryCacheRepo{}
	svc, attainments, _ := newReportFixture(cacheRepo)

	first, cached, err := svc.CourseSummary(context.Background(), "course-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, cacheRepo.sets)

	// Mutate the store; the cached copy must win until invalidated.
	attainments.snapshots = nil

	second, cached, err := svc.CourseSummary(context.Background(), "course-1")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Len(t, second.COs, len(first.COs))

	// The pipeline invalidates with this exact pattern after a run.
	require.NoError(t, cacheRepo.DeleteByPattern(context.Background(), "attainment:course-1:*"))

	third, cached, err := svc.CourseSummary(context.Background(), "course-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Empty(t, third.COs)
}

func TestCOTrendFiltersByOutcome(t *testing.T) {
	svc, _, _ := newReportFixture(nil)

	trend, err := svc.COTrend(context.Background(), "course-1", "co-1")
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, "co-1", trend[0].COID)
}

func TestExportAttainmentCSV(t *testing.T) {
	svc, _, _ := newReportFixture(nil)

	data, err := svc.ExportAttainmentCSV(context.Background(), "course-1")
	require.NoError(t, err)

	text := string(data)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 4) // header + 2 COs + 1 PO
	assert.Equal(t, "Outcome,CIE %,SEE %,Final %,Level", lines[0])
	assert.Contains(t, text, "CO1,70.00,50.00,59.00")
	assert.Contains(t, text, "PO1,,,64.50,2.29")
}

func TestExportAttainmentPDF(t *testing.T) {
	svc, _, _ := newReportFixture(nil)

	data, err := svc.ExportAttainmentPDF(context.Background(), "course-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportGradeSheetCSV(t *testing.T) {
	svc, _, _ := newReportFixture(nil)

	data, err := svc.ExportGradeSheetCSV(context.Background(), "course-1")
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "USN,CIE %,SEE %,Total %,Grade")
	assert.Contains(t, text, "1RV20CS001,90.00,85.00,88.50,A")
}
