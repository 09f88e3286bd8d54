package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

// RawScoreWriter persists normalized score facts.
type RawScoreWriter interface {
	BulkUpsert(ctx context.Context, scores []models.StudentScore) error
}

// IngestRow is one parsed marksheet row: a student identifier plus the raw
// cell value under each question column.
type IngestRow struct {
	StudentUSN string            `json:"student_usn" validate:"required"`
	Marks      map[string]string `json:"marks" validate:"required"`
}

// IngestScoresRequest carries one marksheet batch for an assessment.
type IngestScoresRequest struct {
	CourseID     string      `json:"course_id" validate:"required"`
	AssessmentID string      `json:"assessment_id" validate:"required"`
	Rows         []IngestRow `json:"rows" validate:"required,min=1,dive"`
}

// IngestService normalizes parsed marksheet rows into raw score facts.
// Per-cell data-quality problems become warnings; the batch continues.
type IngestService struct {
	scores      RawScoreWriter
	assessments AssessmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewIngestService constructs the service.
func NewIngestService(scores RawScoreWriter, assessments AssessmentReader, validate *validator.Validate, logger *zap.Logger) *IngestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{scores: scores, assessments: assessments, validator: validate, logger: logger}
}

// IngestScores validates, normalizes and upserts a marksheet batch. Rows for
// unknown columns, unparseable cells or out-of-range marks are skipped with
// a warning; everything else is written atomically per cell via upsert.
func (s *IngestService) IngestScores(ctx context.Context, req IngestScoresRequest) (*models.IngestResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marksheet payload")
	}
	assessment, err := s.assessments.FindByID(ctx, req.AssessmentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	if assessment.CourseID != req.CourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assessment does not belong to course")
	}
	questions, err := s.assessments.ListQuestions(ctx, req.AssessmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load questions")
	}
	if len(questions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assessment has no question columns")
	}
	questionByColumn := make(map[string]models.Question, len(questions))
	for _, question := range questions {
		questionByColumn[strings.ToUpper(question.ColumnLabel)] = question
	}

	result := &models.IngestResult{}
	var scores []models.StudentScore
	for i, row := range req.Rows {
		usn := strings.ToUpper(strings.TrimSpace(row.StudentUSN))
		if usn == "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing student USN", i+1))
			continue
		}

		columns := make([]string, 0, len(row.Marks))
		for column := range row.Marks {
			columns = append(columns, column)
		}
		sort.Strings(columns)

		for _, column := range columns {
			cell := strings.TrimSpace(row.Marks[column])
			if cell == "" || strings.EqualFold(cell, "AB") {
				// Absent or unattempted; not a data-quality problem.
				continue
			}
			question, ok := questionByColumn[strings.ToUpper(column)]
			if !ok {
				result.Skipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: unknown column %q", i+1, column))
				continue
			}
			marks, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				result.Skipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: column %q: invalid mark %q", i+1, column, cell))
				continue
			}
			if marks < 0 || marks > question.MaxMarks {
				result.Skipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: column %q: mark %.2f outside [0, %.2f]", i+1, column, marks, question.MaxMarks))
				continue
			}
			scores = append(scores, models.StudentScore{
				StudentUSN:    usn,
				AssessmentID:  req.AssessmentID,
				QuestionID:    question.ID,
				ColumnLabel:   question.ColumnLabel,
				CONumber:      question.CONumber,
				MarksObtained: marks,
				MaxMarks:      question.MaxMarks,
			})
			result.Accepted++
		}
	}

	if len(scores) > 0 {
		if err := s.scores.BulkUpsert(ctx, scores); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist scores")
		}
	}
	if len(result.Warnings) > 0 {
		s.logger.Warn("marksheet ingested with warnings",
			zap.String("assessment_id", req.AssessmentID),
			zap.Int("accepted", result.Accepted),
			zap.Int("skipped", result.Skipped))
	}
	return result, nil
}
