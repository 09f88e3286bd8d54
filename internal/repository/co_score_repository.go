package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// StudentCOScoreRepository persists derived per-student per-CO scores.
type StudentCOScoreRepository struct {
	q Querier
}

// NewStudentCOScoreRepository creates a new CO score repository.
func NewStudentCOScoreRepository(q Querier) *StudentCOScoreRepository {
	return &StudentCOScoreRepository{q: q}
}

const studentCOScoreUpsert = `INSERT INTO student_co_scores
        (id, student_usn, course_id, assessment_id, co_id, co_number, obtained_marks, max_marks, percentage, created_at, updated_at)
        VALUES (:id, :student_usn, :course_id, :assessment_id, :co_id, :co_number, :obtained_marks, :max_marks, :percentage, :created_at, :updated_at)
        ON CONFLICT (student_usn, assessment_id, co_id)
        DO UPDATE SET obtained_marks = EXCLUDED.obtained_marks, max_marks = EXCLUDED.max_marks,
            percentage = EXCLUDED.percentage, updated_at = EXCLUDED.updated_at`

// BulkUpsert replaces CO score rows on the (student, assessment, CO) key so
// recomputation is idempotent.
func (r *StudentCOScoreRepository) BulkUpsert(ctx context.Context, scores []models.StudentCOScore) error {
	now := time.Now().UTC()
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		scores[i].UpdatedAt = now
		if _, err := r.q.NamedExecContext(ctx, studentCOScoreUpsert, scores[i]); err != nil {
			return fmt.Errorf("upsert student co score: %w", err)
		}
	}
	return nil
}

// ListByAssessment returns all CO scores recorded for one assessment.
func (r *StudentCOScoreRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.StudentCOScore, error) {
	const query = `SELECT id, student_usn, course_id, assessment_id, co_id, co_number, obtained_marks, max_marks, percentage, created_at, updated_at
        FROM student_co_scores WHERE assessment_id = $1 ORDER BY student_usn, co_number`
	var scores []models.StudentCOScore
	if err := r.q.SelectContext(ctx, &scores, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list co scores: %w", err)
	}
	return scores, nil
}

// ListStudentsByCourse returns the distinct students holding at least one CO
// score row in the course.
func (r *StudentCOScoreRepository) ListStudentsByCourse(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT DISTINCT student_usn FROM student_co_scores WHERE course_id = $1 ORDER BY student_usn`
	var students []string
	if err := r.q.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return students, nil
}
