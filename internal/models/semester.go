package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// SemesterCreditCap is the regulatory per-semester credit total. A semester
// result only becomes final once registered credits reach exactly this value,
// and subject registration may never exceed it.
const SemesterCreditCap = 20

// Semester completion states.
const (
	SemesterStatusCompleted  = "completed"
	SemesterStatusInProgress = "in_progress"
	SemesterStatusDetained   = "detained"
)

// SemesterSubject is one course a student registered in a given semester,
// together with its final grade once assigned.
type SemesterSubject struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Semester     int       `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	CourseName   string    `db:"course_name" json:"course_name"`
	Credits      int       `db:"credits" json:"credits"`
	GradeLetter  *string   `db:"grade_letter" json:"grade_letter,omitempty"`
	GradePoints  *float64  `db:"grade_points" json:"grade_points,omitempty"`
	IsPassed     *bool     `db:"is_passed" json:"is_passed,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SemesterResult is the computed SGPA record for one (student, semester,
// academic year).
type SemesterResult struct {
	ID                     string    `db:"id" json:"id"`
	StudentID              string    `db:"student_id" json:"student_id"`
	Semester               int       `db:"semester" json:"semester"`
	AcademicYear           string    `db:"academic_year" json:"academic_year"`
	SGPA                   float64   `db:"sgpa" json:"sgpa"`
	TotalCreditsRegistered int       `db:"total_credits_registered" json:"total_credits_registered"`
	TotalCreditsEarned     int       `db:"total_credits_earned" json:"total_credits_earned"`
	TotalGradePoints       float64   `db:"total_grade_points" json:"total_grade_points"`
	CoursesPassed          int       `db:"courses_passed" json:"courses_passed"`
	CoursesFailed          int       `db:"courses_failed" json:"courses_failed"`
	Status                 string    `db:"status" json:"status"`
	IsFinal                bool      `db:"is_final" json:"is_final"`
	CalculatedAt           time.Time `db:"calculated_at" json:"calculated_at"`
}

// SemesterTrendPoint is one entry of the cumulative CGPA history.
type SemesterTrendPoint struct {
	Semester           int     `json:"semester"`
	AcademicYear       string  `json:"academic_year"`
	SGPA               float64 `json:"sgpa"`
	CumulativeCGPA     float64 `json:"cumulative_cgpa"`
	CreditsEarned      int     `json:"credits_earned"`
	GradePoints        float64 `json:"grade_points"`
	TotalCreditsEarned int     `json:"total_credits_earned"`
}

// TrendList is the JSONB-persisted CGPA history.
type TrendList []SemesterTrendPoint

// Value implements driver.Valuer.
func (l TrendList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *TrendList) Scan(src interface{}) error {
	return scanJSON(src, l, "cgpa history")
}

// StudentCGPA is the per-student cumulative record with its full semester
// trend retained alongside the scalar CGPA.
type StudentCGPA struct {
	ID                 string    `db:"id" json:"id"`
	StudentID          string    `db:"student_id" json:"student_id"`
	Department         string    `db:"department" json:"department"`
	CGPA               float64   `db:"cgpa" json:"cgpa"`
	TotalCreditsEarned int       `db:"total_credits_earned" json:"total_credits_earned"`
	TotalGradePoints   float64   `db:"total_grade_points" json:"total_grade_points"`
	CurrentSemester    int       `db:"current_semester" json:"current_semester"`
	History            TrendList `db:"history" json:"history"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// RankRow is one candidate row of the ranking query.
type RankRow struct {
	StudentID          string  `db:"student_id" json:"student_id"`
	Department         string  `db:"department" json:"department"`
	CGPA               float64 `db:"cgpa" json:"cgpa"`
	TotalCreditsEarned int     `db:"total_credits_earned" json:"total_credits_earned"`
}

// RankInfo is the computed standing of one student.
type RankInfo struct {
	Rank          int     `json:"rank"`
	TotalStudents int     `json:"total_students"`
	Percentile    float64 `json:"percentile"`
	CGPA          float64 `json:"cgpa"`
}

// BatchCGPAResult summarises a recalculate-all run. Per-student failures are
// collected, not fatal.
type BatchCGPAResult struct {
	Total      int      `json:"total"`
	Calculated int      `json:"calculated"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}
