package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WeightMap maps an assessment name to its blending weight. Stored as JSONB.
type WeightMap map[string]float64

// Value implements driver.Valuer.
func (m WeightMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *WeightMap) Scan(src interface{}) error {
	return scanJSON(src, m, "weight map")
}

// GradeBoundary pairs a letter grade with its minimum percentage.
type GradeBoundary struct {
	Letter        string  `json:"letter"`
	MinPercentage float64 `json:"min_percentage"`
}

// BoundaryList is an ordered (highest minimum first) grade boundary table.
// Stored as JSONB to preserve ordering.
type BoundaryList []GradeBoundary

// Value implements driver.Valuer.
func (l BoundaryList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *BoundaryList) Scan(src interface{}) error {
	return scanJSON(src, l, "grade boundaries")
}

func scanJSON(src, dest interface{}, label string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported %s source type %T", label, src)
	}
}

// CourseConfig holds the per-course calculation configuration. Auto-created
// with defaults when a calculation runs against a course without one.
type CourseConfig struct {
	ID                  string       `db:"id" json:"id"`
	CourseID            string       `db:"course_id" json:"course_id"`
	AssessmentWeights   WeightMap    `db:"assessment_weights" json:"assessment_weights"`
	CIEWeight           float64      `db:"cie_weight" json:"cie_weight"`
	SEEWeight           float64      `db:"see_weight" json:"see_weight"`
	CESWeight           float64      `db:"ces_weight" json:"ces_weight"`
	AttainmentThreshold float64      `db:"attainment_threshold" json:"attainment_threshold"`
	GradeBoundaries     BoundaryList `db:"grade_boundaries" json:"grade_boundaries"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updated_at"`
}

// Documented defaults. These must be reproduced exactly for compatibility
// with previously persisted calculation results.
const (
	DefaultCIEWeight           = 0.70
	DefaultSEEWeight           = 0.20
	DefaultCESWeight           = 0.10
	DefaultAttainmentThreshold = 60.0
)

// DefaultAssessmentWeights returns the standard assessment weight table.
func DefaultAssessmentWeights() WeightMap {
	return WeightMap{
		"Test1": 20,
		"Test2": 20,
		"Test3": 20,
		"AAT":   10,
		"Quiz":  10,
		"SEE":   20,
	}
}

// DefaultGradeBoundaries returns the standard S..F boundary table, ordered
// from the highest minimum down to the F floor.
func DefaultGradeBoundaries() BoundaryList {
	return BoundaryList{
		{Letter: "S", MinPercentage: 90},
		{Letter: "A", MinPercentage: 80},
		{Letter: "B", MinPercentage: 70},
		{Letter: "C", MinPercentage: 60},
		{Letter: "D", MinPercentage: 50},
		{Letter: "E", MinPercentage: 40},
		{Letter: "F", MinPercentage: 0},
	}
}

// DefaultCourseConfig builds a config row carrying all documented defaults.
func DefaultCourseConfig(courseID string) *CourseConfig {
	return &CourseConfig{
		CourseID:            courseID,
		AssessmentWeights:   DefaultAssessmentWeights(),
		CIEWeight:           DefaultCIEWeight,
		SEEWeight:           DefaultSEEWeight,
		CESWeight:           DefaultCESWeight,
		AttainmentThreshold: DefaultAttainmentThreshold,
		GradeBoundaries:     DefaultGradeBoundaries(),
	}
}
