package models

import "time"

// StudentScore is the normalized raw fact produced by marksheet ingestion:
// one student's marks on one question column of one assessment. Re-uploads
// overwrite on the (student_usn, assessment_id, column_label) key.
type StudentScore struct {
	ID            string    `db:"id" json:"id"`
	StudentUSN    string    `db:"student_usn" json:"student_usn"`
	AssessmentID  string    `db:"assessment_id" json:"assessment_id"`
	QuestionID    string    `db:"question_id" json:"question_id"`
	ColumnLabel   string    `db:"column_label" json:"column_label"`
	CONumber      int       `db:"co_number" json:"co_number"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks      float64   `db:"max_marks" json:"max_marks"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentCOScore is the per-student per-CO aggregate for one assessment,
// recomputed by full replace whenever raw scores change.
type StudentCOScore struct {
	ID            string    `db:"id" json:"id"`
	StudentUSN    string    `db:"student_usn" json:"student_usn"`
	CourseID      string    `db:"course_id" json:"course_id"`
	AssessmentID  string    `db:"assessment_id" json:"assessment_id"`
	COID          string    `db:"co_id" json:"co_id"`
	CONumber      int       `db:"co_number" json:"co_number"`
	ObtainedMarks float64   `db:"obtained_marks" json:"obtained_marks"`
	MaxMarks      float64   `db:"max_marks" json:"max_marks"`
	Percentage    float64   `db:"percentage" json:"percentage"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// COAttainment is the class-wide attainment of one CO in one assessment.
// AttainmentPercentage is the aggregate obtained/max ratio; the
// above-threshold student count is auxiliary metadata.
type COAttainment struct {
	ID                     string    `db:"id" json:"id"`
	CourseID               string    `db:"course_id" json:"course_id"`
	COID                   string    `db:"co_id" json:"co_id"`
	AssessmentID           string    `db:"assessment_id" json:"assessment_id"`
	AttainmentPercentage   float64   `db:"attainment_percentage" json:"attainment_percentage"`
	TotalStudents          int       `db:"total_students" json:"total_students"`
	StudentsAboveThreshold int       `db:"students_above_threshold" json:"students_above_threshold"`
	ThresholdPercentage    float64   `db:"threshold_percentage" json:"threshold_percentage"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// COAttainmentDetail joins a CO attainment row with the assessment fields the
// blending step needs.
type COAttainmentDetail struct {
	COAttainment
	AssessmentName string `db:"assessment_name" json:"assessment_name"`
	IsCIEComponent bool   `db:"is_cie_component" json:"is_cie_component"`
	IsSEEComponent bool   `db:"is_see_component" json:"is_see_component"`
}

// COSnapshot is one append-only record of the blended CO attainment at
// calculation time. Never updated in place; the latest row per CO is the
// current value.
type COSnapshot struct {
	ID              string    `db:"id" json:"id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	COID            string    `db:"co_id" json:"co_id"`
	CONumber        int       `db:"co_number" json:"co_number"`
	CIEPercentage   float64   `db:"cie_percentage" json:"cie_percentage"`
	SEEPercentage   float64   `db:"see_percentage" json:"see_percentage"`
	CESPercentage   float64   `db:"ces_percentage" json:"ces_percentage"`
	FinalPercentage float64   `db:"final_percentage" json:"final_percentage"`
	CalculatedAt    time.Time `db:"calculated_at" json:"calculated_at"`
}

// POAttainment stores one program outcome's attainment for a course.
// The level lives on a 1-3 scale derived from the weighted CO percentage.
type POAttainment struct {
	ID                string    `db:"id" json:"id"`
	CourseID          string    `db:"course_id" json:"course_id"`
	POID              string    `db:"po_id" json:"po_id"`
	PONumber          int       `db:"po_number" json:"po_number"`
	AttainmentLevel   float64   `db:"attainment_level" json:"attainment_level"`
	POPercentage      float64   `db:"po_percentage" json:"po_percentage"`
	CalculationMethod string    `db:"calculation_method" json:"calculation_method"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// StudentAssessmentTotal is a student's summed raw marks for one assessment,
// computed store-side for the overall score step.
type StudentAssessmentTotal struct {
	StudentUSN     string  `db:"student_usn" json:"student_usn"`
	AssessmentID   string  `db:"assessment_id" json:"assessment_id"`
	AssessmentName string  `db:"assessment_name" json:"assessment_name"`
	IsCIEComponent bool    `db:"is_cie_component" json:"is_cie_component"`
	IsSEEComponent bool    `db:"is_see_component" json:"is_see_component"`
	Obtained       float64 `db:"obtained" json:"obtained"`
	MaxMarks       float64 `db:"max_marks" json:"max_marks"`
}

// StudentOverallScore is a student's final standing in one course.
type StudentOverallScore struct {
	ID            string    `db:"id" json:"id"`
	StudentUSN    string    `db:"student_usn" json:"student_usn"`
	CourseID      string    `db:"course_id" json:"course_id"`
	TotalObtained float64   `db:"total_obtained" json:"total_obtained"`
	TotalMax      float64   `db:"total_max" json:"total_max"`
	Percentage    float64   `db:"percentage" json:"percentage"`
	Grade         string    `db:"grade" json:"grade"`
	CIEPercentage float64   `db:"cie_percentage" json:"cie_percentage"`
	SEEPercentage float64   `db:"see_percentage" json:"see_percentage"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
