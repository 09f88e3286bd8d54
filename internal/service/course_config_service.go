package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

type courseConfigRepository interface {
	FindByCourse(ctx context.Context, courseID string) (*models.CourseConfig, error)
	Create(ctx context.Context, config *models.CourseConfig) error
	Update(ctx context.Context, config *models.CourseConfig) error
}

// UpdateCourseConfigRequest carries the mutable configuration fields.
type UpdateCourseConfigRequest struct {
	AssessmentWeights   models.WeightMap      `json:"assessment_weights" validate:"required"`
	CIEWeight           float64               `json:"cie_weight" validate:"min=0,max=1"`
	SEEWeight           float64               `json:"see_weight" validate:"min=0,max=1"`
	CESWeight           float64               `json:"ces_weight" validate:"min=0,max=1"`
	AttainmentThreshold float64               `json:"attainment_threshold" validate:"gt=0,lte=100"`
	GradeBoundaries     []models.GradeBoundary `json:"grade_boundaries" validate:"required,min=1,dive"`
}

// CourseConfigService manages per-course calculation configuration.
type CourseConfigService struct {
	repo      courseConfigRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseConfigService constructs the service.
func NewCourseConfigService(repo courseConfigRepository, validate *validator.Validate, logger *zap.Logger) *CourseConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseConfigService{repo: repo, validator: validate, logger: logger}
}

// Ensure returns the course's configuration, creating one with the
// documented defaults when absent.
func (s *CourseConfigService) Ensure(ctx context.Context, courseID string) (*models.CourseConfig, error) {
	return ensureConfig(ctx, s.repo, courseID, s.logger)
}

// ensureConfig is shared with the attainment pipeline so the transactional
// repository can be substituted.
func ensureConfig(ctx context.Context, repo courseConfigRepository, courseID string, logger *zap.Logger) (*models.CourseConfig, error) {
	config, err := repo.FindByCourse(ctx, courseID)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course config")
	}
	config = models.DefaultCourseConfig(courseID)
	if err := repo.Create(ctx, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course config")
	}
	if logger != nil {
		logger.Info("course config created with defaults", zap.String("course_id", courseID))
	}
	return config, nil
}

// Get returns the config for a course without creating defaults.
func (s *CourseConfigService) Get(ctx context.Context, courseID string) (*models.CourseConfig, error) {
	config, err := s.repo.FindByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course config not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course config")
	}
	return config, nil
}

// Update validates and rewrites the course configuration.
func (s *CourseConfigService) Update(ctx context.Context, courseID string, req UpdateCourseConfigRequest) (*models.CourseConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course config payload")
	}
	if math.Abs(req.CIEWeight+req.SEEWeight+req.CESWeight-1.0) > 0.001 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "cie, see and ces weights must sum to 1.0")
	}
	boundaries := normalizeBoundaries(req.GradeBoundaries)
	if boundaries[len(boundaries)-1].MinPercentage != 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade boundaries must include a floor at 0")
	}

	config, err := s.Ensure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	config.AssessmentWeights = req.AssessmentWeights
	config.CIEWeight = req.CIEWeight
	config.SEEWeight = req.SEEWeight
	config.CESWeight = req.CESWeight
	config.AttainmentThreshold = req.AttainmentThreshold
	config.GradeBoundaries = boundaries
	if err := s.repo.Update(ctx, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course config")
	}
	return config, nil
}

// normalizeBoundaries orders the table highest minimum first, the order the
// grade assigner checks in.
func normalizeBoundaries(boundaries []models.GradeBoundary) models.BoundaryList {
	normalized := make(models.BoundaryList, len(boundaries))
	copy(normalized, boundaries)
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].MinPercentage > normalized[j].MinPercentage
	})
	return normalized
}
