package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

type semesterRepository interface {
	ListSubjects(ctx context.Context, studentID string, semester int, academicYear string) ([]models.SemesterSubject, error)
	SumCredits(ctx context.Context, studentID string, semester int, academicYear string) (int, error)
	CreateSubject(ctx context.Context, subject *models.SemesterSubject) error
	UpsertResult(ctx context.Context, result *models.SemesterResult) error
	ListResultsByStudent(ctx context.Context, studentID string) ([]models.SemesterResult, error)
	UpsertCGPA(ctx context.Context, cgpa *models.StudentCGPA) error
	FindCGPA(ctx context.Context, studentID string) (*models.StudentCGPA, error)
	ListForRanking(ctx context.Context, department string) ([]models.RankRow, error)
	ListStudentsWithResults(ctx context.Context) ([]string, error)
}

// CalculateSGPARequest identifies one student semester.
type CalculateSGPARequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=8"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// RegisterSubjectRequest registers one course into a student's semester.
type RegisterSubjectRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=8"`
	AcademicYear string `json:"academic_year" validate:"required"`
	CourseCode   string `json:"course_code" validate:"required"`
	CourseName   string `json:"course_name" validate:"required"`
	Credits      int    `json:"credits" validate:"required,min=1"`
}

// GPAService computes SGPA, cumulative CGPA and class standing.
type GPAService struct {
	repo      semesterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGPAService constructs the service.
func NewGPAService(repo semesterRepository, validate *validator.Validate, logger *zap.Logger) *GPAService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GPAService{repo: repo, validator: validate, logger: logger}
}

// RegisterSubject adds a course to a semester, rejecting any registration
// that would push the semester past the regulatory credit cap. Nothing is
// mutated on rejection.
func (s *GPAService) RegisterSubject(ctx context.Context, req RegisterSubjectRequest) (*models.SemesterSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	current, err := s.repo.SumCredits(ctx, req.StudentID, req.Semester, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum semester credits")
	}
	if current+req.Credits > models.SemesterCreditCap {
		return nil, appErrors.Clone(appErrors.ErrCreditCapExceeded,
			fmt.Sprintf("registering %d credits would exceed the %d credit semester cap (%d already registered)",
				req.Credits, models.SemesterCreditCap, current))
	}
	subject := &models.SemesterSubject{
		StudentID:    req.StudentID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		Credits:      req.Credits,
	}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register subject")
	}
	return subject, nil
}

// CalculateSGPA computes and persists the semester result for one student.
// It is a caller error to invoke it for a semester with no registrations.
func (s *GPAService) CalculateSGPA(ctx context.Context, req CalculateSGPARequest) (*models.SemesterResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sgpa request")
	}
	subjects, err := s.repo.ListSubjects(ctx, req.StudentID, req.Semester, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester subjects")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoSemesterCourses,
			fmt.Sprintf("no courses registered for student %s semester %d %s", req.StudentID, req.Semester, req.AcademicYear))
	}

	var (
		creditsRegistered int
		creditsEarned     int
		gradePoints       float64
		passed, failed    int
		ungraded          int
	)
	for _, subject := range subjects {
		creditsRegistered += subject.Credits
		if subject.GradePoints == nil || subject.IsPassed == nil {
			ungraded++
			continue
		}
		// Failed courses still contribute their earned grade points; only
		// credits earned is restricted to passes.
		gradePoints += *subject.GradePoints * float64(subject.Credits)
		if *subject.IsPassed {
			passed++
			creditsEarned += subject.Credits
		} else {
			failed++
		}
	}

	sgpa := 0.0
	if creditsRegistered > 0 {
		sgpa = gradePoints / float64(creditsRegistered)
	}

	status := models.SemesterStatusCompleted
	switch {
	case failed > 0:
		status = models.SemesterStatusDetained
	case ungraded > 0:
		status = models.SemesterStatusInProgress
	}

	result := &models.SemesterResult{
		StudentID:              req.StudentID,
		Semester:               req.Semester,
		AcademicYear:           req.AcademicYear,
		SGPA:                   sgpa,
		TotalCreditsRegistered: creditsRegistered,
		TotalCreditsEarned:     creditsEarned,
		TotalGradePoints:       gradePoints,
		CoursesPassed:          passed,
		CoursesFailed:          failed,
		Status:                 status,
		IsFinal:                creditsRegistered == models.SemesterCreditCap,
	}
	if err := s.repo.UpsertResult(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist semester result")
	}
	return result, nil
}

// CalculateCGPA accumulates a student's semester results into the cumulative
// record with its full trend history. Returns nil without error when the
// student has no semester results yet.
func (s *GPAService) CalculateCGPA(ctx context.Context, studentID string) (*models.StudentCGPA, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student required")
	}
	results, err := s.repo.ListResultsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester results")
	}
	if len(results) == 0 {
		return nil, nil
	}

	var (
		totalCredits int
		totalPoints  float64
		current      int
		history      models.TrendList
	)
	for _, result := range results {
		totalCredits += result.TotalCreditsEarned
		totalPoints += result.TotalGradePoints
		if result.Semester > current {
			current = result.Semester
		}
		cumulative := 0.0
		if totalCredits > 0 {
			cumulative = totalPoints / float64(totalCredits)
		}
		history = append(history, models.SemesterTrendPoint{
			Semester:           result.Semester,
			AcademicYear:       result.AcademicYear,
			SGPA:               result.SGPA,
			CumulativeCGPA:     cumulative,
			CreditsEarned:      result.TotalCreditsEarned,
			GradePoints:        result.TotalGradePoints,
			TotalCreditsEarned: totalCredits,
		})
	}

	cgpa := 0.0
	if totalCredits > 0 {
		cgpa = totalPoints / float64(totalCredits)
	}

	record := &models.StudentCGPA{
		StudentID:          studentID,
		CGPA:               cgpa,
		TotalCreditsEarned: totalCredits,
		TotalGradePoints:   totalPoints,
		CurrentSemester:    current,
		History:            history,
	}
	if existing, err := s.repo.FindCGPA(ctx, studentID); err == nil {
		record.ID = existing.ID
		record.Department = existing.Department
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cgpa record")
	}

	if err := s.repo.UpsertCGPA(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist cgpa")
	}
	return record, nil
}

// CalculateRank returns the student's standing among all ranked students,
// optionally scoped to one department. Students without a positive CGPA are
// excluded from ranking entirely; a missing student yields nil.
func (s *GPAService) CalculateRank(ctx context.Context, studentID, department string) (*models.RankInfo, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student required")
	}
	rows, err := s.repo.ListForRanking(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ranking rows")
	}
	for i, row := range rows {
		if row.StudentID != studentID {
			continue
		}
		rank := i + 1
		total := len(rows)
		return &models.RankInfo{
			Rank:          rank,
			TotalStudents: total,
			Percentile:    float64(total-rank+1) / float64(total) * 100,
			CGPA:          row.CGPA,
		}, nil
	}
	return nil, nil
}

// RecalculateAllCGPA rebuilds every student's cumulative record, tolerating
// and recording per-student failures.
func (s *GPAService) RecalculateAllCGPA(ctx context.Context) (*models.BatchCGPAResult, error) {
	students, err := s.repo.ListStudentsWithResults(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	result := &models.BatchCGPAResult{Total: len(students)}
	for _, studentID := range students {
		if _, err := s.CalculateCGPA(ctx, studentID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", studentID, err))
			s.logger.Warn("cgpa recalculation failed", zap.String("student_id", studentID), zap.Error(err))
			continue
		}
		result.Calculated++
	}
	return result, nil
}
