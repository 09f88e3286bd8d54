package repository

import (
	"context"
	"fmt"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// AssessmentRepository reads assessments and their question columns.
type AssessmentRepository struct {
	q Querier
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(q Querier) *AssessmentRepository {
	return &AssessmentRepository{q: q}
}

// FindByID returns one assessment.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	const query = `SELECT id, course_id, name, type, is_cie_component, is_see_component, max_marks, weightage, created_at, updated_at
        FROM assessments WHERE id = $1`
	var assessment models.Assessment
	if err := r.q.GetContext(ctx, &assessment, query, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// ListByCourse returns all assessments of a course.
func (r *AssessmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	const query = `SELECT id, course_id, name, type, is_cie_component, is_see_component, max_marks, weightage, created_at, updated_at
        FROM assessments WHERE course_id = $1 ORDER BY name`
	var assessments []models.Assessment
	if err := r.q.SelectContext(ctx, &assessments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// ListQuestions returns the question columns of an assessment ordered by
// column label.
func (r *AssessmentRepository) ListQuestions(ctx context.Context, assessmentID string) ([]models.Question, error) {
	const query = `SELECT id, assessment_id, column_label, co_number, max_marks, created_at
        FROM questions WHERE assessment_id = $1 ORDER BY column_label`
	var questions []models.Question
	if err := r.q.SelectContext(ctx, &questions, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
