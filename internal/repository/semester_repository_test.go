package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

func TestSemesterRepositorySumCredits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(credits), 0) FROM semester_subjects")).
		WithArgs("s1", 3, "2023-24").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(16))

	total, err := repo.SumCredits(context.Background(), "s1", 3, "2023-24")
	require.NoError(t, err)
	require.Equal(t, 16, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryCreateSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_subjects")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	subject := &models.SemesterSubject{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
		CourseCode: "CS301", CourseName: "Algorithms", Credits: 4,
	}
	require.NoError(t, repo.CreateSubject(context.Background(), subject))
	require.NotEmpty(t, subject.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryUpsertResult(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_results")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result := &models.SemesterResult{
		StudentID: "s1", Semester: 3, AcademicYear: "2023-24",
		SGPA: 32.0 / 7.0, TotalCreditsRegistered: 7, TotalCreditsEarned: 4,
		Status: models.SemesterStatusDetained,
	}
	require.NoError(t, repo.UpsertResult(context.Background(), result))
	require.False(t, result.CalculatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryListResultsByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "semester", "academic_year", "sgpa", "total_credits_registered", "total_credits_earned", "total_grade_points", "courses_passed", "courses_failed", "status", "is_final", "calculated_at"}).
		AddRow("r1", "s1", 1, "2022-23", 8.0, 20, 20, 160.0, 5, 0, "completed", true, time.Now()).
		AddRow("r2", "s1", 2, "2022-23", 7.5, 20, 20, 150.0, 5, 0, "completed", true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM semester_results WHERE student_id = $1 ORDER BY semester")).
		WithArgs("s1").
		WillReturnRows(rows)

	results, err := repo.ListResultsByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].Semester)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryListForRanking(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "department", "cgpa", "total_credits_earned"}).
		AddRow("s1", "CSE", 9.4, 80).
		AddRow("s2", "CSE", 8.8, 80)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE cgpa > 0 ORDER BY cgpa DESC, total_credits_earned DESC")).
		WillReturnRows(rows)

	all, err := repo.ListForRanking(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	deptRows := sqlmock.NewRows([]string{"student_id", "department", "cgpa", "total_credits_earned"}).
		AddRow("s1", "CSE", 9.4, 80)
	mock.ExpectQuery(regexp.QuoteMeta("AND department = $1 ORDER BY cgpa DESC")).
		WithArgs("CSE").
		WillReturnRows(deptRows)

	scoped, err := repo.ListForRanking(context.Background(), "CSE")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryUpsertCGPASerializesHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_cgpas")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cgpa := &models.StudentCGPA{
		StudentID: "s1", CGPA: 7.75, TotalCreditsEarned: 40, TotalGradePoints: 310,
		CurrentSemester: 2,
		History: models.TrendList{
			{Semester: 1, AcademicYear: "2022-23", SGPA: 8.0, CumulativeCGPA: 8.0},
		},
	}
	require.NoError(t, repo.UpsertCGPA(context.Background(), cgpa))
	require.NotEmpty(t, cgpa.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
