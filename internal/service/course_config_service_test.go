package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

func validConfigUpdate() UpdateCourseConfigRequest {
	return UpdateCourseConfigRequest{
		AssessmentWeights:   models.DefaultAssessmentWeights(),
		CIEWeight:           0.6,
		SEEWeight:           0.3,
		CESWeight:           0.1,
		AttainmentThreshold: 55,
		GradeBoundaries: []models.GradeBoundary{
			{Letter: "F", MinPercentage: 0},
			{Letter: "S", MinPercentage: 90},
			{Letter: "A", MinPercentage: 75},
		},
	}
}

func TestEnsureCreatesDefaults(t *testing.T) {
	repo := &mockConfigRepo{}
	svc := NewCourseConfigService(repo, nil, nil)

	config, err := svc.Ensure(context.Background(), "course-1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.created)
	assert.InDelta(t, models.DefaultCIEWeight, config.CIEWeight, 1e-9)
	assert.InDelta(t, models.DefaultAttainmentThreshold, config.AttainmentThreshold, 1e-9)
	assert.Equal(t, models.DefaultGradeBoundaries(), config.GradeBoundaries)

	// Second call reuses the stored row.
	_, err = svc.Ensure(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.created)
}

func TestGetMissingConfig(t *testing.T) {
	svc := NewCourseConfigService(&mockConfigRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "course-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateOrdersBoundaries(t *testing.T) {
	repo := &mockConfigRepo{}
	svc := NewCourseConfigService(repo, nil, nil)

	config, err := svc.Update(context.Background(), "course-1", validConfigUpdate())
	require.NoError(t, err)

	require.Len(t, config.GradeBoundaries, 3)
	assert.Equal(t, "S", config.GradeBoundaries[0].Letter)
	assert.Equal(t, "A", config.GradeBoundaries[1].Letter)
	assert.Equal(t, "F", config.GradeBoundaries[2].Letter)
	assert.InDelta(t, 55.0, config.AttainmentThreshold, 1e-9)
	assert.Equal(t, 1, repo.updated)
}

func TestUpdateRejectsBadBucketWeights(t *testing.T) {
	svc := NewCourseConfigService(&mockConfigRepo{}, nil, nil)

	req := validConfigUpdate()
	req.CESWeight = 0.3 // 0.6 + 0.3 + 0.3 != 1.0

	_, err := svc.Update(context.Background(), "course-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
}

func TestUpdateRequiresGradeFloor(t *testing.T) {
	svc := NewCourseConfigService(&mockConfigRepo{}, nil, nil)

	req := validConfigUpdate()
	req.GradeBoundaries = []models.GradeBoundary{
		{Letter: "S", MinPercentage: 90},
		{Letter: "A", MinPercentage: 40},
	}

	_, err := svc.Update(context.Background(), "course-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
