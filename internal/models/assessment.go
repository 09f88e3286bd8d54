package models

import "time"

// AssessmentType enumerates recognised assessment categories.
type AssessmentType string

const (
	AssessmentTypeIA   AssessmentType = "IA"
	AssessmentTypeQuiz AssessmentType = "QUIZ"
	AssessmentTypeAAT  AssessmentType = "AAT"
	AssessmentTypeSEE  AssessmentType = "SEE"
	AssessmentTypeCES  AssessmentType = "CES"
)

// Assessment is one evaluation instrument within a course. The CIE/SEE flags
// decide which blending bucket its CO attainment values fall into.
type Assessment struct {
	ID             string         `db:"id" json:"id"`
	CourseID       string         `db:"course_id" json:"course_id"`
	Name           string         `db:"name" json:"name"`
	Type           AssessmentType `db:"type" json:"type"`
	IsCIEComponent bool           `db:"is_cie_component" json:"is_cie_component"`
	IsSEEComponent bool           `db:"is_see_component" json:"is_see_component"`
	MaxMarks       float64        `db:"max_marks" json:"max_marks"`
	Weightage      float64        `db:"weightage" json:"weightage"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Question is one mark-carrying column of an assessment. A marksheet column
// maps 1:1 to a question; the CO number tags every mark recorded under it.
type Question struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	ColumnLabel  string    `db:"column_label" json:"column_label"`
	CONumber     int       `db:"co_number" json:"co_number"`
	MaxMarks     float64   `db:"max_marks" json:"max_marks"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
