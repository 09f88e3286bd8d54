package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentScoreRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentScoreRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_scores")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_scores")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	scores := []models.StudentScore{
		{StudentUSN: "1RV20CS001", AssessmentID: "test1", QuestionID: "q1", ColumnLabel: "Q1a", CONumber: 1, MarksObtained: 8, MaxMarks: 10},
		{StudentUSN: "1RV20CS001", AssessmentID: "test1", QuestionID: "q2", ColumnLabel: "Q1b", CONumber: 2, MarksObtained: 6, MaxMarks: 10},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), scores))

	// IDs and timestamps are filled in before the write.
	require.NotEmpty(t, scores[0].ID)
	require.False(t, scores[0].UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentScoreRepositoryListByAssessment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentScoreRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_usn", "assessment_id", "question_id", "column_label", "co_number", "marks_obtained", "max_marks"}).
		AddRow("sc-1", "1RV20CS001", "test1", "q1", "Q1a", 1, 8.0, 10.0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_scores WHERE assessment_id = $1")).
		WithArgs("test1").
		WillReturnRows(rows)

	scores, err := repo.ListByAssessment(context.Background(), "test1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 1, scores[0].CONumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentScoreRepositoryAssessmentTotals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentScoreRepository(db)
	rows := sqlmock.NewRows([]string{"student_usn", "assessment_id", "assessment_name", "is_cie_component", "is_see_component", "obtained", "max_marks"}).
		AddRow("1RV20CS001", "test1", "Test1", true, false, 24.0, 30.0).
		AddRow("1RV20CS001", "see", "SEE", false, true, 80.0, 100.0)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN assessments a ON a.id = s.assessment_id")).
		WithArgs("course-1").
		WillReturnRows(rows)

	totals, err := repo.AssessmentTotalsByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	require.True(t, totals[0].IsCIEComponent)
	require.Equal(t, 80.0, totals[1].Obtained)
	require.NoError(t, mock.ExpectationsWereMet())
}
