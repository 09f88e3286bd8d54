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

func TestAttainmentRepositoryUpsertCOAttainment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttainmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO co_attainments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	attainment := &models.COAttainment{
		CourseID:             "course-1",
		COID:                 "co-1",
		AssessmentID:         "test1",
		AttainmentPercentage: 62.5,
		TotalStudents:        40,
		ThresholdPercentage:  60,
	}
	require.NoError(t, repo.UpsertCOAttainment(context.Background(), attainment))
	require.NotEmpty(t, attainment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttainmentRepositoryListCOAttainmentJoinsAssessments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttainmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "course_id", "co_id", "assessment_id", "attainment_percentage", "total_students", "students_above_threshold", "threshold_percentage", "assessment_name", "is_cie_component", "is_see_component"}).
		AddRow("ca-1", "course-1", "co-1", "test1", 62.5, 40, 25, 60.0, "Test1", true, false)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN assessments a ON a.id = ca.assessment_id")).
		WithArgs("course-1").
		WillReturnRows(rows)

	details, err := repo.ListCOAttainmentByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "Test1", details[0].AssessmentName)
	require.True(t, details[0].IsCIEComponent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttainmentRepositorySnapshotRoundTrip(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttainmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO co_snapshots")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	snapshot := &models.COSnapshot{
		CourseID: "course-1", COID: "co-1", CONumber: 1,
		CIEPercentage: 70, SEEPercentage: 50, FinalPercentage: 59,
	}
	require.NoError(t, repo.InsertSnapshot(context.Background(), snapshot))
	require.False(t, snapshot.CalculatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "course_id", "co_id", "co_number", "cie_percentage", "see_percentage", "ces_percentage", "final_percentage", "calculated_at"}).
		AddRow(snapshot.ID, "course-1", "co-1", 1, 70.0, 50.0, 0.0, 59.0, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (co_id)")).
		WithArgs("course-1").
		WillReturnRows(rows)

	latest, err := repo.LatestSnapshots(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, 59.0, latest[0].FinalPercentage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttainmentRepositoryUpsertPOAttainment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttainmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO po_attainments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	attainment := &models.POAttainment{
		CourseID: "course-1", POID: "po-1",
		AttainmentLevel: 2.29, POPercentage: 64.5, CalculationMethod: "weighted_co_average",
	}
	require.NoError(t, repo.UpsertPOAttainment(context.Background(), attainment))
	require.NotEmpty(t, attainment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
