package repository

import (
	"context"
	"fmt"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// OutcomeRepository reads course outcomes, program outcomes and their
// correlation mappings.
type OutcomeRepository struct {
	q Querier
}

// NewOutcomeRepository creates a new outcome repository.
func NewOutcomeRepository(q Querier) *OutcomeRepository {
	return &OutcomeRepository{q: q}
}

// ListByCourse returns all course outcomes ordered by CO number.
func (r *OutcomeRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	const query = `SELECT id, course_id, co_number, description, bloom_level, module_number, created_at, updated_at
        FROM course_outcomes WHERE course_id = $1 ORDER BY co_number`
	var outcomes []models.CourseOutcome
	if err := r.q.SelectContext(ctx, &outcomes, query, courseID); err != nil {
		return nil, fmt.Errorf("list course outcomes: %w", err)
	}
	return outcomes, nil
}

// ListProgramOutcomes returns the global PO reference set ordered by number.
func (r *OutcomeRepository) ListProgramOutcomes(ctx context.Context) ([]models.ProgramOutcome, error) {
	const query = `SELECT id, po_number, description, category FROM program_outcomes ORDER BY po_number`
	var outcomes []models.ProgramOutcome
	if err := r.q.SelectContext(ctx, &outcomes, query); err != nil {
		return nil, fmt.Errorf("list program outcomes: %w", err)
	}
	return outcomes, nil
}

// ListMappingsByCourse returns every CO-PO mapping whose CO belongs to the
// course, with CO/PO numbers joined in.
func (r *OutcomeRepository) ListMappingsByCourse(ctx context.Context, courseID string) ([]models.COPOMapping, error) {
	const query = `SELECT m.id, m.co_id, m.po_id, m.correlation_level, co.co_number, po.po_number
        FROM co_po_mappings m
        JOIN course_outcomes co ON co.id = m.co_id
        JOIN program_outcomes po ON po.id = m.po_id
        WHERE co.course_id = $1
        ORDER BY po.po_number, co.co_number`
	var mappings []models.COPOMapping
	if err := r.q.SelectContext(ctx, &mappings, query, courseID); err != nil {
		return nil, fmt.Errorf("list co-po mappings: %w", err)
	}
	return mappings, nil
}
