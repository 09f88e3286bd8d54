package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

func TestCourseConfigRepositoryFindByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseConfigRepository(db)
	rows := sqlmock.NewRows([]string{"id", "course_id", "assessment_weights", "cie_weight", "see_weight", "ces_weight", "attainment_threshold", "grade_boundaries", "created_at", "updated_at"}).
		AddRow("cfg-1", "course-1", []byte(`{"Test1":20,"SEE":20}`), 0.7, 0.2, 0.1, 60.0, []byte(`[{"letter":"S","min_percentage":90},{"letter":"F","min_percentage":0}]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_configs WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(rows)

	config, err := repo.FindByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.InDelta(t, 20.0, config.AssessmentWeights["Test1"], 1e-9)
	require.Len(t, config.GradeBoundaries, 2)
	require.Equal(t, "S", config.GradeBoundaries[0].Letter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseConfigRepositoryFindByCourseMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseConfigRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_configs WHERE course_id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCourse(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseConfigRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseConfigRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_configs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	config := models.DefaultCourseConfig("course-1")
	require.NoError(t, repo.Create(context.Background(), config))
	require.NotEmpty(t, config.ID)
	require.False(t, config.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
