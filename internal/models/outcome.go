package models

import "time"

// CourseOutcome is a measurable learning objective defined on one course.
// The CO number is unique within its course and is the tag used by raw
// marksheet columns.
type CourseOutcome struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	CONumber     int       `db:"co_number" json:"co_number"`
	Description  string    `db:"description" json:"description"`
	BloomLevel   *string   `db:"bloom_level" json:"bloom_level,omitempty"`
	ModuleNumber *int      `db:"module_number" json:"module_number,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramOutcome is a program-wide learning objective. Static reference data,
// not scoped to a course.
type ProgramOutcome struct {
	ID          string `db:"id" json:"id"`
	PONumber    int    `db:"po_number" json:"po_number"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
}

// Correlation levels for CO-PO mappings.
const (
	CorrelationLow    = 1
	CorrelationMedium = 2
	CorrelationHigh   = 3
)

// COPOMapping links a course outcome to a program outcome with a correlation
// strength of 1 (low) to 3 (high). Unique per (co_id, po_id) pair.
type COPOMapping struct {
	ID               string `db:"id" json:"id"`
	COID             string `db:"co_id" json:"co_id"`
	POID             string `db:"po_id" json:"po_id"`
	CorrelationLevel int    `db:"correlation_level" json:"correlation_level"`
	// CONumber and PONumber are joined in for reporting convenience.
	CONumber int `db:"co_number" json:"co_number"`
	PONumber int `db:"po_number" json:"po_number"`
}
