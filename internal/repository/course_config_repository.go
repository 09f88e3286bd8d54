package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// CourseConfigRepository persists per-course calculation configuration.
type CourseConfigRepository struct {
	q Querier
}

// NewCourseConfigRepository creates a new course config repository.
func NewCourseConfigRepository(q Querier) *CourseConfigRepository {
	return &CourseConfigRepository{q: q}
}

// FindByCourse returns the config row for a course. Callers treat
// sql.ErrNoRows as "create defaults".
func (r *CourseConfigRepository) FindByCourse(ctx context.Context, courseID string) (*models.CourseConfig, error) {
	const query = `SELECT id, course_id, assessment_weights, cie_weight, see_weight, ces_weight, attainment_threshold, grade_boundaries, created_at, updated_at
        FROM course_configs WHERE course_id = $1`
	var config models.CourseConfig
	if err := r.q.GetContext(ctx, &config, query, courseID); err != nil {
		return nil, err
	}
	return &config, nil
}

// Create inserts a new config row.
func (r *CourseConfigRepository) Create(ctx context.Context, config *models.CourseConfig) error {
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	config.CreatedAt = now
	config.UpdatedAt = now
	const query = `INSERT INTO course_configs
        (id, course_id, assessment_weights, cie_weight, see_weight, ces_weight, attainment_threshold, grade_boundaries, created_at, updated_at)
        VALUES (:id, :course_id, :assessment_weights, :cie_weight, :see_weight, :ces_weight, :attainment_threshold, :grade_boundaries, :created_at, :updated_at)`
	if _, err := r.q.NamedExecContext(ctx, query, config); err != nil {
		return fmt.Errorf("create course config: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a config row.
func (r *CourseConfigRepository) Update(ctx context.Context, config *models.CourseConfig) error {
	config.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_configs SET assessment_weights = :assessment_weights,
            cie_weight = :cie_weight, see_weight = :see_weight, ces_weight = :ces_weight,
            attainment_threshold = :attainment_threshold, grade_boundaries = :grade_boundaries,
            updated_at = :updated_at
        WHERE course_id = :course_id`
	if _, err := r.q.NamedExecContext(ctx, query, config); err != nil {
		return fmt.Errorf("update course config: %w", err)
	}
	return nil
}
