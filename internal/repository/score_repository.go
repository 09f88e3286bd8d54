package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// StudentScoreRepository persists raw per-question score facts.
type StudentScoreRepository struct {
	q Querier
}

// NewStudentScoreRepository creates a new raw score repository.
func NewStudentScoreRepository(q Querier) *StudentScoreRepository {
	return &StudentScoreRepository{q: q}
}

const studentScoreUpsert = `INSERT INTO student_scores
        (id, student_usn, assessment_id, question_id, column_label, co_number, marks_obtained, max_marks, created_at, updated_at)
        VALUES (:id, :student_usn, :assessment_id, :question_id, :column_label, :co_number, :marks_obtained, :max_marks, :created_at, :updated_at)
        ON CONFLICT (student_usn, assessment_id, column_label)
        DO UPDATE SET question_id = EXCLUDED.question_id, co_number = EXCLUDED.co_number,
            marks_obtained = EXCLUDED.marks_obtained, max_marks = EXCLUDED.max_marks, updated_at = EXCLUDED.updated_at`

// BulkUpsert writes raw score rows, overwriting on the
// (student, assessment, column) key so re-uploads replace prior marks.
func (r *StudentScoreRepository) BulkUpsert(ctx context.Context, scores []models.StudentScore) error {
	now := time.Now().UTC()
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		scores[i].UpdatedAt = now
		if _, err := r.q.NamedExecContext(ctx, studentScoreUpsert, scores[i]); err != nil {
			return fmt.Errorf("upsert student score: %w", err)
		}
	}
	return nil
}

// ListByAssessment returns every raw score row of an assessment.
func (r *StudentScoreRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.StudentScore, error) {
	const query = `SELECT id, student_usn, assessment_id, question_id, column_label, co_number, marks_obtained, max_marks, created_at, updated_at
        FROM student_scores WHERE assessment_id = $1 ORDER BY student_usn, column_label`
	var scores []models.StudentScore
	if err := r.q.SelectContext(ctx, &scores, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list student scores: %w", err)
	}
	return scores, nil
}

// AssessmentTotalsByCourse sums each student's raw marks per assessment for
// every assessment of the course, joined with the assessment's blending
// flags. Feeds the overall score step.
func (r *StudentScoreRepository) AssessmentTotalsByCourse(ctx context.Context, courseID string) ([]models.StudentAssessmentTotal, error) {
	const query = `SELECT s.student_usn, s.assessment_id, a.name AS assessment_name,
            a.is_cie_component, a.is_see_component,
            SUM(s.marks_obtained) AS obtained, SUM(s.max_marks) AS max_marks
        FROM student_scores s
        JOIN assessments a ON a.id = s.assessment_id
        WHERE a.course_id = $1
        GROUP BY s.student_usn, s.assessment_id, a.name, a.is_cie_component, a.is_see_component
        ORDER BY s.student_usn, a.name`
	var totals []models.StudentAssessmentTotal
	if err := r.q.SelectContext(ctx, &totals, query, courseID); err != nil {
		return nil, fmt.Errorf("aggregate assessment totals: %w", err)
	}
	return totals, nil
}
