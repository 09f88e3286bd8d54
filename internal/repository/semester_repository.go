package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// SemesterRepository persists semester registrations, SGPA results and
// cumulative CGPA records.
type SemesterRepository struct {
	q Querier
}

// NewSemesterRepository creates a new semester repository.
func NewSemesterRepository(q Querier) *SemesterRepository {
	return &SemesterRepository{q: q}
}

// ListSubjects returns a student's registered subjects for one semester.
func (r *SemesterRepository) ListSubjects(ctx context.Context, studentID string, semester int, academicYear string) ([]models.SemesterSubject, error) {
	const query = `SELECT id, student_id, semester, academic_year, course_code, course_name, credits, grade_letter, grade_points, is_passed, created_at, updated_at
        FROM semester_subjects
        WHERE student_id = $1 AND semester = $2 AND academic_year = $3
        ORDER BY course_code`
	var subjects []models.SemesterSubject
	if err := r.q.SelectContext(ctx, &subjects, query, studentID, semester, academicYear); err != nil {
		return nil, fmt.Errorf("list semester subjects: %w", err)
	}
	return subjects, nil
}

// SumCredits returns the total registered credits for one semester.
func (r *SemesterRepository) SumCredits(ctx context.Context, studentID string, semester int, academicYear string) (int, error) {
	const query = `SELECT COALESCE(SUM(credits), 0) FROM semester_subjects
        WHERE student_id = $1 AND semester = $2 AND academic_year = $3`
	var total int
	if err := r.q.GetContext(ctx, &total, query, studentID, semester, academicYear); err != nil {
		return 0, fmt.Errorf("sum semester credits: %w", err)
	}
	return total, nil
}

// CreateSubject registers one subject for a semester.
func (r *SemesterRepository) CreateSubject(ctx context.Context, subject *models.SemesterSubject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO semester_subjects
        (id, student_id, semester, academic_year, course_code, course_name, credits, grade_letter, grade_points, is_passed, created_at, updated_at)
        VALUES (:id, :student_id, :semester, :academic_year, :course_code, :course_name, :credits, :grade_letter, :grade_points, :is_passed, :created_at, :updated_at)`
	if _, err := r.q.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create semester subject: %w", err)
	}
	return nil
}

const semesterResultUpsert = `INSERT INTO semester_results
        (id, student_id, semester, academic_year, sgpa, total_credits_registered, total_credits_earned, total_grade_points, courses_passed, courses_failed, status, is_final, calculated_at)
        VALUES (:id, :student_id, :semester, :academic_year, :sgpa, :total_credits_registered, :total_credits_earned, :total_grade_points, :courses_passed, :courses_failed, :status, :is_final, :calculated_at)
        ON CONFLICT (student_id, semester, academic_year)
        DO UPDATE SET sgpa = EXCLUDED.sgpa, total_credits_registered = EXCLUDED.total_credits_registered,
            total_credits_earned = EXCLUDED.total_credits_earned, total_grade_points = EXCLUDED.total_grade_points,
            courses_passed = EXCLUDED.courses_passed, courses_failed = EXCLUDED.courses_failed,
            status = EXCLUDED.status, is_final = EXCLUDED.is_final, calculated_at = EXCLUDED.calculated_at`

// UpsertResult writes one SGPA result keyed by (student, semester, year).
func (r *SemesterRepository) UpsertResult(ctx context.Context, result *models.SemesterResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CalculatedAt.IsZero() {
		result.CalculatedAt = time.Now().UTC()
	}
	if _, err := r.q.NamedExecContext(ctx, semesterResultUpsert, result); err != nil {
		return fmt.Errorf("upsert semester result: %w", err)
	}
	return nil
}

// ListResultsByStudent returns a student's semester results, semester
// ascending, as the CGPA accumulator requires.
func (r *SemesterRepository) ListResultsByStudent(ctx context.Context, studentID string) ([]models.SemesterResult, error) {
	const query = `SELECT id, student_id, semester, academic_year, sgpa, total_credits_registered, total_credits_earned, total_grade_points, courses_passed, courses_failed, status, is_final, calculated_at
        FROM semester_results WHERE student_id = $1 ORDER BY semester`
	var results []models.SemesterResult
	if err := r.q.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list semester results: %w", err)
	}
	return results, nil
}

const studentCGPAUpsert = `INSERT INTO student_cgpas
        (id, student_id, department, cgpa, total_credits_earned, total_grade_points, current_semester, history, updated_at)
        VALUES (:id, :student_id, :department, :cgpa, :total_credits_earned, :total_grade_points, :current_semester, :history, :updated_at)
        ON CONFLICT (student_id)
        DO UPDATE SET cgpa = EXCLUDED.cgpa, total_credits_earned = EXCLUDED.total_credits_earned,
            total_grade_points = EXCLUDED.total_grade_points, current_semester = EXCLUDED.current_semester,
            history = EXCLUDED.history, updated_at = EXCLUDED.updated_at`

// UpsertCGPA writes a student's cumulative record.
func (r *SemesterRepository) UpsertCGPA(ctx context.Context, cgpa *models.StudentCGPA) error {
	if cgpa.ID == "" {
		cgpa.ID = uuid.NewString()
	}
	cgpa.UpdatedAt = time.Now().UTC()
	if _, err := r.q.NamedExecContext(ctx, studentCGPAUpsert, cgpa); err != nil {
		return fmt.Errorf("upsert student cgpa: %w", err)
	}
	return nil
}

// FindCGPA returns one student's cumulative record.
func (r *SemesterRepository) FindCGPA(ctx context.Context, studentID string) (*models.StudentCGPA, error) {
	const query = `SELECT id, student_id, department, cgpa, total_credits_earned, total_grade_points, current_semester, history, updated_at
        FROM student_cgpas WHERE student_id = $1`
	var cgpa models.StudentCGPA
	if err := r.q.GetContext(ctx, &cgpa, query, studentID); err != nil {
		return nil, err
	}
	return &cgpa, nil
}

// ListForRanking returns ranking candidates with CGPA above zero, best
// first, credits earned as tiebreaker. Optionally filtered by department.
func (r *SemesterRepository) ListForRanking(ctx context.Context, department string) ([]models.RankRow, error) {
	query := `SELECT student_id, department, cgpa, total_credits_earned
        FROM student_cgpas WHERE cgpa > 0`
	var args []interface{}
	if department != "" {
		query += " AND department = $1"
		args = append(args, department)
	}
	query += " ORDER BY cgpa DESC, total_credits_earned DESC"
	var rows []models.RankRow
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ranking rows: %w", err)
	}
	return rows, nil
}

// ListStudentsWithResults returns every student holding at least one
// semester result, for batch CGPA recalculation.
func (r *SemesterRepository) ListStudentsWithResults(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT student_id FROM semester_results ORDER BY student_id`
	var students []string
	if err := r.q.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students with results: %w", err)
	}
	return students, nil
}
