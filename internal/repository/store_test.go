package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRunInCourseTxCommitsOnSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	store := NewStore(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(courseLockKey("course-1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	var scoped *Store
	err := store.RunInCourseTx(context.Background(), "course-1", func(s *Store) error {
		scoped = s
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, scoped.Configs)
	require.NotSame(t, store.Configs, scoped.Configs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInCourseTxRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	store := NewStore(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(courseLockKey("course-1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	boom := errors.New("stage failed")
	err := store.RunInCourseTx(context.Background(), "course-1", func(*Store) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseLockKeyIsStable(t *testing.T) {
	require.Equal(t, courseLockKey("course-1"), courseLockKey("course-1"))
	require.NotEqual(t, courseLockKey("course-1"), courseLockKey("course-2"))
}
