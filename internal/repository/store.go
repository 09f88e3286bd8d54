package repository

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/jmoiron/sqlx"
)

// Querier is the subset of sqlx behaviour repositories rely on. Both
// *sqlx.DB and *sqlx.Tx satisfy it, so the same repository code runs inside
// or outside a pipeline transaction.
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

// Store bundles every repository over one shared querier and owns the
// transaction scope of the calculation pipeline.
type Store struct {
	db *sqlx.DB

	Outcomes      *OutcomeRepository
	Assessments   *AssessmentRepository
	Scores        *StudentScoreRepository
	COScores      *StudentCOScoreRepository
	Attainments   *AttainmentRepository
	OverallScores *OverallScoreRepository
	Configs       *CourseConfigRepository
	Semesters     *SemesterRepository
	Users         *UserRepository
}

// NewStore builds a store bound to the database handle.
func NewStore(db *sqlx.DB) *Store {
	s := &Store{db: db}
	s.bind(db)
	return s
}

func (s *Store) bind(q Querier) {
	s.Outcomes = NewOutcomeRepository(q)
	s.Assessments = NewAssessmentRepository(q)
	s.Scores = NewStudentScoreRepository(q)
	s.COScores = NewStudentCOScoreRepository(q)
	s.Attainments = NewAttainmentRepository(q)
	s.OverallScores = NewOverallScoreRepository(q)
	s.Configs = NewCourseConfigRepository(q)
	s.Semesters = NewSemesterRepository(q)
	s.Users = NewUserRepository(q)
}

// RunInCourseTx executes fn within one transaction holding a per-course
// advisory lock, serialising concurrent recalculation runs for the same
// course. Any error from fn rolls the whole run back.
func (s *Store) RunInCourseTx(ctx context.Context, courseID string, fn func(*Store) error) error {
	if s.db == nil {
		return fmt.Errorf("store is not transactional")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", courseLockKey(courseID)); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("acquire course lock: %w", err)
	}
	scoped := &Store{}
	scoped.bind(tx)
	if err := fn(scoped); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit course tx: %w", err)
	}
	return nil
}

func courseLockKey(courseID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(courseID)) //nolint:errcheck
	return int64(h.Sum64())
}
