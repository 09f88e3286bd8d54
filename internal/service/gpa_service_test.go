package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

type mockSemesterRepo struct {
	subjects []models.SemesterSubject
	results  []models.SemesterResult
	cgpas    map[string]models.StudentCGPA
	ranking  []models.RankRow
	students []string

	cgpaFailFor map[string]bool
}

func (m *mockSemesterRepo) ListSubjects(ctx context.Context, studentID string, semester int, academicYear string) ([]models.SemesterSubject, error) {
	var result []models.SemesterSubject
	for _, s := range m.subjects {
		if s.StudentID == studentID && s.Semester == semester && s.AcademicYear == academicYear {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSemesterRepo) SumCredits(ctx context.Context, studentID string, semester int, academicYear string) (int, error) {
	total := 0
	for _, s := range m.subjects {
		if s.StudentID == studentID && s.Semester == semester && s.AcademicYear == academicYear {
			total += s.Credits
		}
	}
	return total, nil
}

func (m *mockSemesterRepo) CreateSubject(ctx context.Context, subject *models.SemesterSubject) error {
	m.subjects = append(m.subjects, *subject)
	return nil
}

func (m *mockSemesterRepo) UpsertResult(ctx context.Context, result *models.SemesterResult) error {
	for i := range m.results {
		if m.results[i].StudentID == result.StudentID &&
			m.results[i].Semester == result.Semester &&
			m.results[i].AcademicYear == result.AcademicYear {
			m.results[i] = *result
			return nil
		}
	}
	m.results = append(m.results, *result)
	return nil
}

func (m *mockSemesterRepo) ListResultsByStudent(ctx context.Context, studentID string) ([]models.SemesterResult, error) {
	if m.cgpaFailFor[studentID] {
		return nil, fmt.Errorf("storage unavailable")
	}
	var result []models.SemesterResult
	for _, r := range m.results {
		if r.StudentID == studentID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockSemesterRepo) UpsertCGPA(ctx context.Context, cgpa *models.StudentCGPA) error {
	if m.cgpas == nil {
		m.cgpas = make(map[string]models.StudentCGPA)
	}
	m.cgpas[cgpa.StudentID] = *cgpa
	return nil
}

func (m *mockSemesterRepo) FindCGPA(ctx context.Context, studentID string) (*models.StudentCGPA, error) {
	if cgpa, ok := m.cgpas[studentID]; ok {
		return &cgpa, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) ListForRanking(ctx context.Context, department string) ([]models.RankRow, error) {
	var result []models.RankRow
	for _, row := range m.ranking {
		if department != "" && row.Department != department {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

func (m *mockSemesterRepo) ListStudentsWithResults(ctx context.Context) ([]string, error) {
	return m.students, nil
}

func gradedSubject(studentID string, semester int, year, code string, credits int, points float64, passed bool) models.SemesterSubject {
	return models.SemesterSubject{
		StudentID:    studentID,
		Semester:     semester,
		AcademicYear: year,
		CourseCode:   code,
		Credits:      credits,
		GradePoints:  &points,
		IsPassed:     &passed,
	}
}

func TestRegisterSubjectRejectsOverCap(t *testing.T) {
	repo := &mockSemesterRepo{}
	svc := NewGPAService(repo, nil, nil)

	_, err := svc.RegisterSubject(context.Background(), RegisterSubjectRequest{
		StudentID: "1RV20CS001", Semester: 3, AcademicYear: "2023-24",
		CourseCode: "CS301", CourseName: "Algorithms", Credits: 18,
	})
	require.NoError(t, err)

	_, err = svc.RegisterSubject(context.Background(), RegisterSubjectRequest{
		StudentID: "1RV20CS001", Semester: 3, AcademicYear: "2023-24",
		CourseCode: "CS302", CourseName: "Databases", Credits: 4,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCreditCapExceeded.Code, appErr.Code)
	// Rejection must not register anything.
	assert.Len(t, repo.subjects, 1)
}

func TestRegisterSubjectAllowsExactCap(t *testing.T) {
	repo := &mockSemesterRepo{}
	svc := NewGPAService(repo, nil, nil)

	_, err := svc.RegisterSubject(context.Background(), RegisterSubjectRequest{
		StudentID: "1RV20CS001", Semester: 3, AcademicYear: "2023-24",
		CourseCode: "CS301", CourseName: "Algorithms", Credits: 16,
	})
	require.NoError(t, err)
	_, err = svc.RegisterSubject(context.Background(), RegisterSubjectRequest{
		StudentID: "1RV20CS001", Semester: 3, AcademicYear: "2023-24",
		CourseCode: "CS302", CourseName: "Databases", Credits: 4,
	})
	require.NoError(t, err)
	assert.Len(t, repo.subjects, 2)
}

func TestCalculateSGPAWeightsByCredits(t *testing.T) {
	repo := &mockSemesterRepo{subjects: []models.SemesterSubject{
		gradedSubject("s1", 3, "2023-24", "CS301", 4, 8, true),
		gradedSubject("s1", 3, "2023-24", "CS302", 3, 0, false),
	}}
	svc := NewGPAService(repo, nil, nil)

	result, err := svc.CalculateSGPA(context.Background(), CalculateSGPARequest{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
	})
	require.NoError(t, err)

	// 4*8 + 3*0 = 32 grade points over 7 registered credits.
	assert.InDelta(t, 32.0/7.0, result.SGPA, 1e-9)
	assert.Equal(t, 7, result.TotalCreditsRegistered)
	assert.Equal(t, 4, result.TotalCreditsEarned)
	assert.Equal(t, models.SemesterStatusDetained, result.Status)
	assert.False(t, result.IsFinal)
	require.Len(t, repo.results, 1)
}

func TestCalculateSGPAFailedCoursesStillContributePoints(t *testing.T) {
	repo := &mockSemesterRepo{subjects: []models.SemesterSubject{
		gradedSubject("s1", 3, "2023-24", "CS301", 4, 9, true),
		gradedSubject("s1", 3, "2023-24", "CS302", 4, 3, false),
	}}
	svc := NewGPAService(repo, nil, nil)

	result, err := svc.CalculateSGPA(context.Background(), CalculateSGPARequest{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
	})
	require.NoError(t, err)

	// (4*9 + 4*3) / 8 — the failed course's points count, its credits earned do not.
	assert.InDelta(t, 6.0, result.SGPA, 1e-9)
	assert.Equal(t, 4, result.TotalCreditsEarned)
}

func TestCalculateSGPAStatusPrecedence(t *testing.T) {
	ungraded := models.SemesterSubject{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24", CourseCode: "CS303", Credits: 3,
	}

	repo := &mockSemesterRepo{subjects: []models.SemesterSubject{
		gradedSubject("s1", 3, "2023-24", "CS301", 4, 8, true),
		ungraded,
	}}
	svc := NewGPAService(repo, nil, nil)
	result, err := svc.CalculateSGPA(context.Background(), CalculateSGPARequest{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SemesterStatusInProgress, result.Status)

	// A failure outranks pending grades.
	repo.subjects = append(repo.subjects, gradedSubject("s1", 3, "2023-24", "CS304", 3, 0, false))
	result, err = svc.CalculateSGPA(context.Background(), CalculateSGPARequest{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SemesterStatusDetained, result.Status)
}

func TestCalculateSGPAIsFinalAtFullCreditLoad(t *testing.T) {
	repo := &mockSemesterRepo{subjects: []models.SemesterSubject{
		gradedSubject("s1", 3, "2023-24", "CS301", 12, 8, true),
		gradedSubject("s1", 3, "2023-24", "CS302", 8, 7, true),
	}}
	svc := NewGPAService(repo, nil, nil)

	result, err := svc.CalculateSGPA(context.Background(), CalculateSGPARequest{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
	})
	require.NoError(t, err)
	assert.True(t, result.IsFinal)
	assert.Equal(t, models.SemesterStatusCompleted, result.Status)
}

func TestCalculateSGPAEmptySemester(t *testing.T) {
	svc := NewGPAService(&mockSemesterRepo{}, nil, nil)

	_, err := svc.CalculateSGPA(context.Background(), CalculateSGPARequest{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSemesterCourses.Code, appErrors.FromError(err).Code)
}

func TestCalculateCGPAAccumulatesAcrossSemesters(t *testing.T) {
	repo := &mockSemesterRepo{results: []models.SemesterResult{
		{StudentID: "s1", Semester: 1, AcademicYear: "2022-23", SGPA: 8.0, TotalCreditsEarned: 20, TotalGradePoints: 160},
		{StudentID: "s1", Semester: 2, AcademicYear: "2022-23", SGPA: 7.5, TotalCreditsEarned: 20, TotalGradePoints: 150},
	}}
	svc := NewGPAService(repo, nil, nil)

	record, err := svc.CalculateCGPA(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.InDelta(t, 7.75, record.CGPA, 1e-9)
	assert.Equal(t, 40, record.TotalCreditsEarned)
	assert.Equal(t, 2, record.CurrentSemester)
	require.Len(t, record.History, 2)
	assert.InDelta(t, 8.0, record.History[0].CumulativeCGPA, 1e-9)
	assert.InDelta(t, 7.75, record.History[1].CumulativeCGPA, 1e-9)
}

func TestCalculateCGPANoResults(t *testing.T) {
	svc := NewGPAService(&mockSemesterRepo{}, nil, nil)

	record, err := svc.CalculateCGPA(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestCalculateCGPAPreservesExistingDepartment(t *testing.T) {
	repo := &mockSemesterRepo{
		results: []models.SemesterResult{
			{StudentID: "s1", Semester: 1, AcademicYear: "2022-23", SGPA: 8.0, TotalCreditsEarned: 20, TotalGradePoints: 160},
		},
		cgpas: map[string]models.StudentCGPA{
			"s1": {ID: "cgpa-1", StudentID: "s1", Department: "CSE", CGPA: 7.2},
		},
	}
	svc := NewGPAService(repo, nil, nil)

	record, err := svc.CalculateCGPA(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "cgpa-1", record.ID)
	assert.Equal(t, "CSE", record.Department)
	assert.InDelta(t, 8.0, record.CGPA, 1e-9)
}

func TestCalculateRankPercentile(t *testing.T) {
	repo := &mockSemesterRepo{ranking: []models.RankRow{
		{StudentID: "s1", Department: "CSE", CGPA: 9.4},
		{StudentID: "s2", Department: "CSE", CGPA: 8.8},
		{StudentID: "s3", Department: "ECE", CGPA: 8.1},
		{StudentID: "s4", Department: "CSE", CGPA: 7.0},
	}}
	svc := NewGPAService(repo, nil, nil)

	rank, err := svc.CalculateRank(context.Background(), "s2", "")
	require.NoError(t, err)
	require.NotNil(t, rank)
	assert.Equal(t, 2, rank.Rank)
	assert.Equal(t, 4, rank.TotalStudents)
	assert.InDelta(t, 75.0, rank.Percentile, 1e-9)

	rank, err = svc.CalculateRank(context.Background(), "s4", "CSE")
	require.NoError(t, err)
	require.NotNil(t, rank)
	assert.Equal(t, 3, rank.Rank)
	assert.Equal(t, 3, rank.TotalStudents)
}

func TestCalculateRankMissingStudent(t *testing.T) {
	repo := &mockSemesterRepo{ranking: []models.RankRow{
		{StudentID: "s1", Department: "CSE", CGPA: 9.4},
	}}
	svc := NewGPAService(repo, nil, nil)

	rank, err := svc.CalculateRank(context.Background(), "ghost", "")
	require.NoError(t, err)
	assert.Nil(t, rank)
}

func TestRecalculateAllCGPACollectsFailures(t *testing.T) {
	repo := &mockSemesterRepo{
		results: []models.SemesterResult{
			{StudentID: "s1", Semester: 1, AcademicYear: "2022-23", TotalCreditsEarned: 20, TotalGradePoints: 160},
			{StudentID: "s2", Semester: 1, AcademicYear: "2022-23", TotalCreditsEarned: 20, TotalGradePoints: 140},
		},
		students:    []string{"s1", "s2", "s3"},
		cgpaFailFor: map[string]bool{"s2": true},
	}
	svc := NewGPAService(repo, nil, nil)

	result, err := svc.RecalculateAllCGPA(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	// s3 has no results; CalculateCGPA returns nil, nil which still counts
	// as processed. Only the storage failure for s2 is an error.
	assert.Equal(t, 2, result.Calculated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "s2")
}
