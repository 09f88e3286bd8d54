package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

func newIngestFixture() (*IngestService, *mockRawScoreStore, *mockAssessmentReader) {
	scores := &mockRawScoreStore{}
	assessments := &mockAssessmentReader{
		assessments: []models.Assessment{
			{ID: "test1", CourseID: "course-1", Name: "Test1", MaxMarks: 30},
		},
		questions: []models.Question{
			{ID: "q1", AssessmentID: "test1", ColumnLabel: "Q1a", CONumber: 1, MaxMarks: 10},
			{ID: "q2", AssessmentID: "test1", ColumnLabel: "Q1b", CONumber: 2, MaxMarks: 10},
		},
	}
	return NewIngestService(scores, assessments, nil, nil), scores, assessments
}

func TestIngestScoresNormalizesRows(t *testing.T) {
	svc, scores, _ := newIngestFixture()

	result, err := svc.IngestScores(context.Background(), IngestScoresRequest{
		CourseID:     "course-1",
		AssessmentID: "test1",
		Rows: []IngestRow{
			{StudentUSN: " 1rv20cs001 ", Marks: map[string]string{"Q1a": "8", "q1b": "6.5"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Accepted)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Warnings)

	require.Len(t, scores.scores, 2)
	first := scores.scores[0]
	assert.Equal(t, "1RV20CS001", first.StudentUSN)
	assert.Equal(t, "q1", first.QuestionID)
	assert.Equal(t, "Q1a", first.ColumnLabel)
	assert.Equal(t, 1, first.CONumber)
	assert.InDelta(t, 8.0, first.MarksObtained, 1e-9)
	assert.InDelta(t, 10.0, first.MaxMarks, 1e-9)
}

func TestIngestScoresSkipsAbsentCellsSilently(t *testing.T) {
	svc, scores, _ := newIngestFixture()

	result, err := svc.IngestScores(context.Background(), IngestScoresRequest{
		CourseID:     "course-1",
		AssessmentID: "test1",
		Rows: []IngestRow{
			{StudentUSN: "1RV20CS001", Marks: map[string]string{"Q1a": "AB", "Q1b": ""}},
		},
	})
	require.NoError(t, err)

	// Absence is not a data-quality problem: no warning, no skip count.
	assert.Zero(t, result.Accepted)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, scores.scores)
}

func TestIngestScoresWarnsAndContinues(t *testing.T) {
	svc, scores, _ := newIngestFixture()

	result, err := svc.IngestScores(context.Background(), IngestScoresRequest{
		CourseID:     "course-1",
		AssessmentID: "test1",
		Rows: []IngestRow{
			{StudentUSN: "1RV20CS001", Marks: map[string]string{
				"Q1a": "8",
				"Q1b": "eleven", // unparseable
				"Q9":  "5",      // unknown column
			}},
			{StudentUSN: "1RV20CS002", Marks: map[string]string{
				"Q1a": "12", // above the 10 mark column maximum
				"Q1b": "-1", // negative
			}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 4, result.Skipped)
	assert.Len(t, result.Warnings, 4)
	require.Len(t, scores.scores, 1)
	assert.Equal(t, "1RV20CS001", scores.scores[0].StudentUSN)
}

func TestIngestScoresRejectsForeignAssessment(t *testing.T) {
	svc, _, _ := newIngestFixture()

	_, err := svc.IngestScores(context.Background(), IngestScoresRequest{
		CourseID:     "other-course",
		AssessmentID: "test1",
		Rows:         []IngestRow{{StudentUSN: "s1", Marks: map[string]string{"Q1a": "5"}}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIngestScoresRequiresQuestionColumns(t *testing.T) {
	svc, _, assessments := newIngestFixture()
	assessments.questions = nil

	_, err := svc.IngestScores(context.Background(), IngestScoresRequest{
		CourseID:     "course-1",
		AssessmentID: "test1",
		Rows:         []IngestRow{{StudentUSN: "s1", Marks: map[string]string{"Q1a": "5"}}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
