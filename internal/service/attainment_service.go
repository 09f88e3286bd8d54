package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
)

// OutcomeReader reads course outcomes and CO-PO mappings.
type OutcomeReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseOutcome, error)
	ListMappingsByCourse(ctx context.Context, courseID string) ([]models.COPOMapping, error)
}

// AssessmentReader reads assessments and their question columns.
type AssessmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
	ListQuestions(ctx context.Context, assessmentID string) ([]models.Question, error)
}

// RawScoreReader reads normalized score facts.
type RawScoreReader interface {
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.StudentScore, error)
	AssessmentTotalsByCourse(ctx context.Context, courseID string) ([]models.StudentAssessmentTotal, error)
}

// COScoreStore reads and writes derived per-CO scores.
type COScoreStore interface {
	BulkUpsert(ctx context.Context, scores []models.StudentCOScore) error
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.StudentCOScore, error)
}

// AttainmentStore reads and writes CO/PO attainment and snapshots.
type AttainmentStore interface {
	UpsertCOAttainment(ctx context.Context, attainment *models.COAttainment) error
	ListCOAttainmentByCourse(ctx context.Context, courseID string) ([]models.COAttainmentDetail, error)
	InsertSnapshot(ctx context.Context, snapshot *models.COSnapshot) error
	LatestSnapshots(ctx context.Context, courseID string) ([]models.COSnapshot, error)
	UpsertPOAttainment(ctx context.Context, attainment *models.POAttainment) error
}

// OverallScoreWriter persists final course standings.
type OverallScoreWriter interface {
	BulkUpsert(ctx context.Context, scores []models.StudentOverallScore) error
}

// ConfigStore is the configuration access the pipeline needs.
type ConfigStore = courseConfigRepository

// PipelineRepos groups the repositories one pipeline run operates on. The
// transaction runner rebinds them to the transaction scope.
type PipelineRepos struct {
	Outcomes    OutcomeReader
	Assessments AssessmentReader
	Scores      RawScoreReader
	COScores    COScoreStore
	Attainments AttainmentStore
	Overall     OverallScoreWriter
	Configs     ConfigStore
}

// TxRunner executes fn within one per-course transaction holding the course
// advisory lock.
type TxRunner func(ctx context.Context, courseID string, fn func(repos PipelineRepos) error) error

// AttainmentService owns the staged CO/PO attainment calculation pipeline.
type AttainmentService struct {
	repos            PipelineRepos
	runTx            TxRunner
	cache            *CacheService
	metrics          *MetricsService
	logger           *zap.Logger
	defaultThreshold float64
	now              func() time.Time
}

// AttainmentServiceParams groups constructor dependencies.
type AttainmentServiceParams struct {
	Repos            PipelineRepos
	TxRunner         TxRunner
	Cache            *CacheService
	Metrics          *MetricsService
	Logger           *zap.Logger
	DefaultThreshold float64
}

// NewAttainmentService constructs the pipeline service.
func NewAttainmentService(params AttainmentServiceParams) *AttainmentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := params.DefaultThreshold
	if threshold <= 0 {
		threshold = models.DefaultAttainmentThreshold
	}
	runTx := params.TxRunner
	if runTx == nil {
		repos := params.Repos
		runTx = func(ctx context.Context, _ string, fn func(PipelineRepos) error) error {
			return fn(repos)
		}
	}
	return &AttainmentService{
		repos:            params.Repos,
		runTx:            runTx,
		cache:            params.Cache,
		metrics:          params.Metrics,
		logger:           logger,
		defaultThreshold: threshold,
		now:              time.Now,
	}
}

// CalculateStudentCOScores aggregates raw scores into per-student per-CO
// percentages for one assessment. Idempotent; rows tagged with CO numbers
// missing from the course's CO table are skipped with a warning.
func (s *AttainmentService) CalculateStudentCOScores(ctx context.Context, courseID, assessmentID string) error {
	if courseID == "" || assessmentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course and assessment required")
	}
	return s.calcStudentCOScores(ctx, s.repos, courseID, assessmentID)
}

func (s *AttainmentService) calcStudentCOScores(ctx context.Context, repos PipelineRepos, courseID, assessmentID string) error {
	outcomes, err := repos.Outcomes.ListByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course outcomes")
	}
	coByNumber := make(map[int]models.CourseOutcome, len(outcomes))
	for _, co := range outcomes {
		coByNumber[co.CONumber] = co
	}

	raw, err := repos.Scores.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load raw scores")
	}

	type bucket struct {
		obtained float64
		max      float64
	}
	perStudent := make(map[string]map[int]*bucket)
	unmapped := make(map[int]struct{})
	for _, score := range raw {
		if _, ok := coByNumber[score.CONumber]; !ok {
			unmapped[score.CONumber] = struct{}{}
			continue
		}
		byCO, ok := perStudent[score.StudentUSN]
		if !ok {
			byCO = make(map[int]*bucket)
			perStudent[score.StudentUSN] = byCO
		}
		b, ok := byCO[score.CONumber]
		if !ok {
			b = &bucket{}
			byCO[score.CONumber] = b
		}
		b.obtained += score.MarksObtained
		b.max += score.MaxMarks
	}
	for coNumber := range unmapped {
		s.logger.Warn("skipping scores for unmapped CO",
			zap.String("course_id", courseID),
			zap.String("assessment_id", assessmentID),
			zap.Int("co_number", coNumber))
	}

	coScores := make([]models.StudentCOScore, 0, len(perStudent))
	for student, byCO := range perStudent {
		for coNumber, b := range byCO {
			co := coByNumber[coNumber]
			coScores = append(coScores, models.StudentCOScore{
				StudentUSN:    student,
				CourseID:      courseID,
				AssessmentID:  assessmentID,
				COID:          co.ID,
				CONumber:      coNumber,
				ObtainedMarks: b.obtained,
				MaxMarks:      b.max,
				Percentage:    safePercentage(b.obtained, b.max),
			})
		}
	}
	if len(coScores) == 0 {
		return nil
	}
	sort.Slice(coScores, func(i, j int) bool {
		if coScores[i].StudentUSN != coScores[j].StudentUSN {
			return coScores[i].StudentUSN < coScores[j].StudentUSN
		}
		return coScores[i].CONumber < coScores[j].CONumber
	})
	if err := repos.COScores.BulkUpsert(ctx, coScores); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist co scores")
	}
	return nil
}

// CalculateCOAttainment aggregates CO scores across all students of one
// assessment into class-wide attainment rows. A threshold of zero or less
// falls back to the course configuration.
func (s *AttainmentService) CalculateCOAttainment(ctx context.Context, courseID, assessmentID string, threshold float64) error {
	if courseID == "" || assessmentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course and assessment required")
	}
	if threshold <= 0 {
		config, err := ensureConfig(ctx, s.repos.Configs, courseID, s.logger)
		if err != nil {
			return err
		}
		threshold = config.AttainmentThreshold
	}
	return s.calcCOAttainment(ctx, s.repos, courseID, assessmentID, threshold)
}

func (s *AttainmentService) calcCOAttainment(ctx context.Context, repos PipelineRepos, courseID, assessmentID string, threshold float64) error {
	outcomes, err := repos.Outcomes.ListByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course outcomes")
	}
	coScores, err := repos.COScores.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load co scores")
	}

	type agg struct {
		obtained float64
		max      float64
		students int
		above    int
	}
	byCO := make(map[string]*agg)
	for _, score := range coScores {
		a, ok := byCO[score.COID]
		if !ok {
			a = &agg{}
			byCO[score.COID] = a
		}
		a.obtained += score.ObtainedMarks
		a.max += score.MaxMarks
		a.students++
		if score.Percentage >= threshold {
			a.above++
		}
	}

	for _, co := range outcomes {
		a := byCO[co.ID]
		if a == nil {
			a = &agg{}
		}
		attainment := &models.COAttainment{
			CourseID:               courseID,
			COID:                   co.ID,
			AssessmentID:           assessmentID,
			AttainmentPercentage:   safePercentage(a.obtained, a.max),
			TotalStudents:          a.students,
			StudentsAboveThreshold: a.above,
			ThresholdPercentage:    threshold,
		}
		if err := repos.Attainments.UpsertCOAttainment(ctx, attainment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist co attainment")
		}
	}
	return nil
}

// CalculateFinalCOAttainment blends per-assessment CO attainment across the
// CIE/SEE/CES buckets and appends one snapshot per CO. Creates the course
// configuration with defaults when absent.
func (s *AttainmentService) CalculateFinalCOAttainment(ctx context.Context, courseID string) error {
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course required")
	}
	return s.calcFinalCOAttainment(ctx, s.repos, courseID)
}

func (s *AttainmentService) calcFinalCOAttainment(ctx context.Context, repos PipelineRepos, courseID string) error {
	config, err := ensureConfig(ctx, repos.Configs, courseID, s.logger)
	if err != nil {
		return err
	}
	outcomes, err := repos.Outcomes.ListByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course outcomes")
	}
	details, err := repos.Attainments.ListCOAttainmentByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load co attainment")
	}

	type blend struct {
		cieSum, cieWeight float64
		seeSum, seeWeight float64
	}
	byCO := make(map[string]*blend)
	for _, detail := range details {
		b, ok := byCO[detail.COID]
		if !ok {
			b = &blend{}
			byCO[detail.COID] = b
		}
		weight, ok := config.AssessmentWeights[detail.AssessmentName]
		if !ok || weight <= 0 {
			weight = 1
		}
		if detail.IsCIEComponent {
			b.cieSum += detail.AttainmentPercentage * weight
			b.cieWeight += weight
		}
		if detail.IsSEEComponent {
			b.seeSum += detail.AttainmentPercentage * weight
			b.seeWeight += weight
		}
	}

	calculatedAt := s.now().UTC()
	for _, co := range outcomes {
		var cieAvg, seeAvg float64
		if b := byCO[co.ID]; b != nil {
			if b.cieWeight > 0 {
				cieAvg = b.cieSum / b.cieWeight
			}
			if b.seeWeight > 0 {
				seeAvg = b.seeSum / b.seeWeight
			}
		}
		// No course-end-survey data source exists in this pipeline; CES
		// contributes zero until one does.
		cesAvg := 0.0
		final := config.CIEWeight*cieAvg + config.SEEWeight*seeAvg + config.CESWeight*cesAvg
		snapshot := &models.COSnapshot{
			CourseID:        courseID,
			COID:            co.ID,
			CONumber:        co.CONumber,
			CIEPercentage:   cieAvg,
			SEEPercentage:   seeAvg,
			CESPercentage:   cesAvg,
			FinalPercentage: final,
			CalculatedAt:    calculatedAt,
		}
		if err := repos.Attainments.InsertSnapshot(ctx, snapshot); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist co snapshot")
		}
	}
	return nil
}

// CalculatePOAttainment maps the latest CO snapshots through the CO-PO
// correlation matrix into PO attainment levels. POs without any mapped CO
// data are skipped entirely.
func (s *AttainmentService) CalculatePOAttainment(ctx context.Context, courseID string) error {
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course required")
	}
	return s.calcPOAttainment(ctx, s.repos, courseID)
}

func (s *AttainmentService) calcPOAttainment(ctx context.Context, repos PipelineRepos, courseID string) error {
	snapshots, err := repos.Attainments.LatestSnapshots(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load co snapshots")
	}
	currentByCO := make(map[string]float64, len(snapshots))
	for _, snapshot := range snapshots {
		currentByCO[snapshot.COID] = snapshot.FinalPercentage
	}

	mappings, err := repos.Outcomes.ListMappingsByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load co-po mappings")
	}

	type weighted struct {
		sum    float64
		weight float64
	}
	byPO := make(map[string]*weighted)
	for _, mapping := range mappings {
		percentage, ok := currentByCO[mapping.COID]
		if !ok {
			continue
		}
		w, ok := byPO[mapping.POID]
		if !ok {
			w = &weighted{}
			byPO[mapping.POID] = w
		}
		level := float64(mapping.CorrelationLevel)
		w.sum += percentage * level
		w.weight += level
	}

	for poID, w := range byPO {
		if w.weight == 0 {
			continue
		}
		percentage := w.sum / w.weight
		attainment := &models.POAttainment{
			CourseID:          courseID,
			POID:              poID,
			AttainmentLevel:   attainmentLevel(percentage),
			POPercentage:      percentage,
			CalculationMethod: "weighted_co_average",
		}
		if err := repos.Attainments.UpsertPOAttainment(ctx, attainment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist po attainment")
		}
	}
	return nil
}

// CalculateStudentOverallScores computes each student's weighted CIE/SEE
// totals and letter grade for the course.
func (s *AttainmentService) CalculateStudentOverallScores(ctx context.Context, courseID string) error {
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course required")
	}
	return s.calcStudentOverallScores(ctx, s.repos, courseID)
}

func (s *AttainmentService) calcStudentOverallScores(ctx context.Context, repos PipelineRepos, courseID string) error {
	config, err := ensureConfig(ctx, repos.Configs, courseID, s.logger)
	if err != nil {
		return err
	}
	totals, err := repos.Scores.AssessmentTotalsByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate assessment totals")
	}

	type split struct {
		cieObtained, cieMax float64
		seeObtained, seeMax float64
	}
	byStudent := make(map[string]*split)
	for _, total := range totals {
		sp, ok := byStudent[total.StudentUSN]
		if !ok {
			sp = &split{}
			byStudent[total.StudentUSN] = sp
		}
		weight, ok := config.AssessmentWeights[total.AssessmentName]
		if !ok || weight <= 0 {
			weight = 1
		}
		if total.IsCIEComponent {
			sp.cieObtained += total.Obtained * weight
			sp.cieMax += total.MaxMarks * weight
		}
		if total.IsSEEComponent {
			sp.seeObtained += total.Obtained * weight
			sp.seeMax += total.MaxMarks * weight
		}
	}

	students := make([]string, 0, len(byStudent))
	for student := range byStudent {
		students = append(students, student)
	}
	sort.Strings(students)

	scores := make([]models.StudentOverallScore, 0, len(students))
	for _, student := range students {
		sp := byStudent[student]
		totalObtained := sp.cieObtained + sp.seeObtained
		totalMax := sp.cieMax + sp.seeMax
		percentage := safePercentage(totalObtained, totalMax)
		scores = append(scores, models.StudentOverallScore{
			StudentUSN:    student,
			CourseID:      courseID,
			TotalObtained: totalObtained,
			TotalMax:      totalMax,
			Percentage:    percentage,
			Grade:         assignGrade(config.GradeBoundaries, percentage),
			CIEPercentage: safePercentage(sp.cieObtained, sp.cieMax),
			SEEPercentage: safePercentage(sp.seeObtained, sp.seeMax),
		})
	}
	if len(scores) == 0 {
		return nil
	}
	if err := repos.Overall.BulkUpsert(ctx, scores); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist overall scores")
	}
	return nil
}

// RunFullCalculation executes the five pipeline stages in order inside one
// transaction holding the course advisory lock. An empty assessmentID runs
// the per-assessment stages over every assessment of the course. Any stage
// error rolls the whole run back; the returned result reports how far the
// run got.
func (s *AttainmentService) RunFullCalculation(ctx context.Context, courseID, assessmentID string) (*models.PipelineResult, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course required")
	}
	result := &models.PipelineResult{CourseID: courseID}

	err := s.runTx(ctx, courseID, func(repos PipelineRepos) error {
		config, err := ensureConfig(ctx, repos.Configs, courseID, s.logger)
		if err != nil {
			return err
		}

		assessmentIDs := []string{assessmentID}
		if assessmentID == "" {
			assessments, err := repos.Assessments.ListByCourse(ctx, courseID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
			}
			assessmentIDs = assessmentIDs[:0]
			for _, assessment := range assessments {
				assessmentIDs = append(assessmentIDs, assessment.ID)
			}
		}

		stages := []struct {
			name string
			run  func() error
		}{
			{models.StageCOScores, func() error {
				for _, id := range assessmentIDs {
					if err := s.calcStudentCOScores(ctx, repos, courseID, id); err != nil {
						return err
					}
				}
				return nil
			}},
			{models.StageCOAttainment, func() error {
				for _, id := range assessmentIDs {
					if err := s.calcCOAttainment(ctx, repos, courseID, id, config.AttainmentThreshold); err != nil {
						return err
					}
				}
				return nil
			}},
			{models.StageFinalCO, func() error { return s.calcFinalCOAttainment(ctx, repos, courseID) }},
			{models.StagePOAttainment, func() error { return s.calcPOAttainment(ctx, repos, courseID) }},
			{models.StageOverallScores, func() error { return s.calcStudentOverallScores(ctx, repos, courseID) }},
		}

		for _, stage := range stages {
			start := s.now()
			err := stage.run()
			status := models.StageStatusCompleted
			if err != nil {
				status = models.StageStatusFailed
			}
			if s.metrics != nil {
				s.metrics.ObservePipelineStage(stage.name, status, s.now().Sub(start))
			}
			stageResult := models.StageResult{Stage: stage.name, Status: status}
			if err != nil {
				stageResult.Error = err.Error()
			}
			result.Stages = append(result.Stages, stageResult)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if s.metrics != nil {
		s.metrics.RecordPipelineRun(err == nil)
	}
	if err != nil {
		result.Success = false
		result.Message = fmt.Sprintf("calculation failed: %v", err)
		s.logger.Error("full calculation failed",
			zap.String("course_id", courseID),
			zap.Error(err))
		return result, err
	}

	result.Success = true
	result.Message = "calculation completed"
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "attainment:"+courseID+":*"); err != nil {
			s.logger.Warn("cache invalidation after calculation failed", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	s.logger.Info("full calculation completed", zap.String("course_id", courseID))
	return result, nil
}

// safePercentage is the normalization rule every derived score follows:
// zero max marks yields zero, never a division error.
func safePercentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return obtained / max * 100
}

// attainmentLevel converts a 0-100 percentage to the 1-3 attainment scale,
// clamped so malformed inputs can never leave the scale.
func attainmentLevel(percentage float64) float64 {
	level := 1 + (percentage/100)*2
	if level < 1 {
		return 1
	}
	if level > 3 {
		return 3
	}
	return level
}

// assignGrade picks the highest boundary whose minimum the percentage meets,
// checking highest first. Empty or malformed tables fall back to "F".
func assignGrade(boundaries models.BoundaryList, percentage float64) string {
	ordered := make(models.BoundaryList, len(boundaries))
	copy(ordered, boundaries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinPercentage > ordered[j].MinPercentage
	})
	for _, boundary := range ordered {
		if boundary.Letter == "" {
			continue
		}
		if percentage >= boundary.MinPercentage {
			return boundary.Letter
		}
	}
	return "F"
}
