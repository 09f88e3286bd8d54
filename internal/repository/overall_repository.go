package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// OverallScoreRepository persists final per-student course standings.
type OverallScoreRepository struct {
	q Querier
}

// NewOverallScoreRepository creates a new overall score repository.
func NewOverallScoreRepository(q Querier) *OverallScoreRepository {
	return &OverallScoreRepository{q: q}
}

const overallScoreUpsert = `INSERT INTO student_overall_scores
        (id, student_usn, course_id, total_obtained, total_max, percentage, grade, cie_percentage, see_percentage, created_at, updated_at)
        VALUES (:id, :student_usn, :course_id, :total_obtained, :total_max, :percentage, :grade, :cie_percentage, :see_percentage, :created_at, :updated_at)
        ON CONFLICT (student_usn, course_id)
        DO UPDATE SET total_obtained = EXCLUDED.total_obtained, total_max = EXCLUDED.total_max,
            percentage = EXCLUDED.percentage, grade = EXCLUDED.grade,
            cie_percentage = EXCLUDED.cie_percentage, see_percentage = EXCLUDED.see_percentage,
            updated_at = EXCLUDED.updated_at`

// BulkUpsert writes overall score rows keyed by (student, course).
func (r *OverallScoreRepository) BulkUpsert(ctx context.Context, scores []models.StudentOverallScore) error {
	now := time.Now().UTC()
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		scores[i].UpdatedAt = now
		if _, err := r.q.NamedExecContext(ctx, overallScoreUpsert, scores[i]); err != nil {
			return fmt.Errorf("upsert overall score: %w", err)
		}
	}
	return nil
}

// ListByCourse returns all overall scores of a course ordered by student.
func (r *OverallScoreRepository) ListByCourse(ctx context.Context, courseID string) ([]models.StudentOverallScore, error) {
	const query = `SELECT id, student_usn, course_id, total_obtained, total_max, percentage, grade, cie_percentage, see_percentage, created_at, updated_at
        FROM student_overall_scores WHERE course_id = $1 ORDER BY student_usn`
	var scores []models.StudentOverallScore
	if err := r.q.SelectContext(ctx, &scores, query, courseID); err != nil {
		return nil, fmt.Errorf("list overall scores: %w", err)
	}
	return scores, nil
}

// GradeDistribution counts students per letter grade for a course.
func (r *OverallScoreRepository) GradeDistribution(ctx context.Context, courseID string) (map[string]int, error) {
	const query = `SELECT grade, COUNT(*) AS count FROM student_overall_scores WHERE course_id = $1 GROUP BY grade`
	rows, err := r.q.QueryxContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("grade distribution: %w", err)
	}
	defer rows.Close()
	distribution := make(map[string]int)
	for rows.Next() {
		var grade string
		var count int
		if err := rows.Scan(&grade, &count); err != nil {
			return nil, fmt.Errorf("scan grade distribution: %w", err)
		}
		distribution[grade] = count
	}
	return distribution, rows.Err()
}
