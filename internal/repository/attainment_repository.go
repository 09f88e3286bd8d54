package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// AttainmentRepository persists CO attainment, append-only CO snapshots and
// PO attainment.
type AttainmentRepository struct {
	q Querier
}

// NewAttainmentRepository creates a new attainment repository.
func NewAttainmentRepository(q Querier) *AttainmentRepository {
	return &AttainmentRepository{q: q}
}

const coAttainmentUpsert = `INSERT INTO co_attainments
        (id, course_id, co_id, assessment_id, attainment_percentage, total_students, students_above_threshold, threshold_percentage, created_at, updated_at)
        VALUES (:id, :course_id, :co_id, :assessment_id, :attainment_percentage, :total_students, :students_above_threshold, :threshold_percentage, :created_at, :updated_at)
        ON CONFLICT (course_id, co_id, assessment_id)
        DO UPDATE SET attainment_percentage = EXCLUDED.attainment_percentage,
            total_students = EXCLUDED.total_students,
            students_above_threshold = EXCLUDED.students_above_threshold,
            threshold_percentage = EXCLUDED.threshold_percentage,
            updated_at = EXCLUDED.updated_at`

// UpsertCOAttainment writes one per-assessment CO attainment row.
func (r *AttainmentRepository) UpsertCOAttainment(ctx context.Context, attainment *models.COAttainment) error {
	if attainment.ID == "" {
		attainment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attainment.CreatedAt.IsZero() {
		attainment.CreatedAt = now
	}
	attainment.UpdatedAt = now
	if _, err := r.q.NamedExecContext(ctx, coAttainmentUpsert, attainment); err != nil {
		return fmt.Errorf("upsert co attainment: %w", err)
	}
	return nil
}

// ListCOAttainmentByCourse returns all per-assessment CO attainment rows of a
// course joined with the assessment fields the blending step needs.
func (r *AttainmentRepository) ListCOAttainmentByCourse(ctx context.Context, courseID string) ([]models.COAttainmentDetail, error) {
	const query = `SELECT ca.id, ca.course_id, ca.co_id, ca.assessment_id, ca.attainment_percentage,
            ca.total_students, ca.students_above_threshold, ca.threshold_percentage, ca.created_at, ca.updated_at,
            a.name AS assessment_name, a.is_cie_component, a.is_see_component
        FROM co_attainments ca
        JOIN assessments a ON a.id = ca.assessment_id
        WHERE ca.course_id = $1
        ORDER BY ca.co_id, a.name`
	var details []models.COAttainmentDetail
	if err := r.q.SelectContext(ctx, &details, query, courseID); err != nil {
		return nil, fmt.Errorf("list co attainment: %w", err)
	}
	return details, nil
}

// InsertSnapshot appends one CO calculation snapshot. Snapshots are never
// updated in place.
func (r *AttainmentRepository) InsertSnapshot(ctx context.Context, snapshot *models.COSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CalculatedAt.IsZero() {
		snapshot.CalculatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO co_snapshots
        (id, course_id, co_id, co_number, cie_percentage, see_percentage, ces_percentage, final_percentage, calculated_at)
        VALUES (:id, :course_id, :co_id, :co_number, :cie_percentage, :see_percentage, :ces_percentage, :final_percentage, :calculated_at)`
	if _, err := r.q.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("insert co snapshot: %w", err)
	}
	return nil
}

// LatestSnapshots returns the most recent snapshot per CO for a course.
func (r *AttainmentRepository) LatestSnapshots(ctx context.Context, courseID string) ([]models.COSnapshot, error) {
	const query = `SELECT DISTINCT ON (co_id) id, course_id, co_id, co_number, cie_percentage, see_percentage, ces_percentage, final_percentage, calculated_at
        FROM co_snapshots WHERE course_id = $1
        ORDER BY co_id, calculated_at DESC`
	var snapshots []models.COSnapshot
	if err := r.q.SelectContext(ctx, &snapshots, query, courseID); err != nil {
		return nil, fmt.Errorf("latest co snapshots: %w", err)
	}
	return snapshots, nil
}

// SnapshotTrend returns the full snapshot history of one CO, oldest first.
func (r *AttainmentRepository) SnapshotTrend(ctx context.Context, courseID, coID string) ([]models.COSnapshot, error) {
	const query = `SELECT id, course_id, co_id, co_number, cie_percentage, see_percentage, ces_percentage, final_percentage, calculated_at
        FROM co_snapshots WHERE course_id = $1 AND co_id = $2
        ORDER BY calculated_at`
	var snapshots []models.COSnapshot
	if err := r.q.SelectContext(ctx, &snapshots, query, courseID, coID); err != nil {
		return nil, fmt.Errorf("co snapshot trend: %w", err)
	}
	return snapshots, nil
}

const poAttainmentUpsert = `INSERT INTO po_attainments
        (id, course_id, po_id, attainment_level, po_percentage, calculation_method, created_at, updated_at)
        VALUES (:id, :course_id, :po_id, :attainment_level, :po_percentage, :calculation_method, :created_at, :updated_at)
        ON CONFLICT (course_id, po_id)
        DO UPDATE SET attainment_level = EXCLUDED.attainment_level,
            po_percentage = EXCLUDED.po_percentage,
            calculation_method = EXCLUDED.calculation_method,
            updated_at = EXCLUDED.updated_at`

// UpsertPOAttainment writes one per-course PO attainment row.
func (r *AttainmentRepository) UpsertPOAttainment(ctx context.Context, attainment *models.POAttainment) error {
	if attainment.ID == "" {
		attainment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attainment.CreatedAt.IsZero() {
		attainment.CreatedAt = now
	}
	attainment.UpdatedAt = now
	if _, err := r.q.NamedExecContext(ctx, poAttainmentUpsert, attainment); err != nil {
		return fmt.Errorf("upsert po attainment: %w", err)
	}
	return nil
}

// ListPOAttainmentByCourse returns PO attainment rows with PO numbers joined
// in, ordered by PO number.
func (r *AttainmentRepository) ListPOAttainmentByCourse(ctx context.Context, courseID string) ([]models.POAttainment, error) {
	const query = `SELECT pa.id, pa.course_id, pa.po_id, po.po_number, pa.attainment_level, pa.po_percentage, pa.calculation_method, pa.created_at, pa.updated_at
        FROM po_attainments pa
        JOIN program_outcomes po ON po.id = pa.po_id
        WHERE pa.course_id = $1
        ORDER BY po.po_number`
	var attainments []models.POAttainment
	if err := r.q.SelectContext(ctx, &attainments, query, courseID); err != nil {
		return nil, fmt.Errorf("list po attainment: %w", err)
	}
	return attainments, nil
}
