package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/export"
)

// AttainmentReadStore reads the pipeline's persisted output.
type AttainmentReadStore interface {
	LatestSnapshots(ctx context.Context, courseID string) ([]models.COSnapshot, error)
	SnapshotTrend(ctx context.Context, courseID, coID string) ([]models.COSnapshot, error)
	ListPOAttainmentByCourse(ctx context.Context, courseID string) ([]models.POAttainment, error)
}

// OverallScoreReader reads persisted course standings.
type OverallScoreReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.StudentOverallScore, error)
	GradeDistribution(ctx context.Context, courseID string) (map[string]int, error)
}

// COSummaryRow is one course outcome line of the dashboard summary.
type COSummaryRow struct {
	CONumber        int     `json:"co_number"`
	CIEPercentage   float64 `json:"cie_percentage"`
	SEEPercentage   float64 `json:"see_percentage"`
	FinalPercentage float64 `json:"final_percentage"`
}

// CourseAttainmentSummary is the cached dashboard payload for one course.
type CourseAttainmentSummary struct {
	CourseID          string                `json:"course_id"`
	COs               []COSummaryRow        `json:"cos"`
	POs               []models.POAttainment `json:"pos"`
	GradeDistribution map[string]int        `json:"grade_distribution"`
	GeneratedAt       time.Time             `json:"generated_at"`
}

// ReportService composes attainment read models and renders exports.
type ReportService struct {
	attainments AttainmentReadStore
	overall     OverallScoreReader
	cache       *CacheService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
	institution string
	now         func() time.Time
}

// NewReportService constructs the service.
func NewReportService(attainments AttainmentReadStore, overall OverallScoreReader, cache *CacheService, institution string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		attainments: attainments,
		overall:     overall,
		cache:       cache,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
		institution: institution,
		now:         time.Now,
	}
}

func summaryCacheKey(courseID string) string {
	return "attainment:" + courseID + ":summary"
}

// CourseSummary returns the course dashboard summary, serving from cache
// when possible. The second return reports cache utilisation.
func (s *ReportService) CourseSummary(ctx context.Context, courseID string) (*CourseAttainmentSummary, bool, error) {
	if courseID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "course required")
	}
	key := summaryCacheKey(courseID)
	if s.cache.Enabled() {
		var cached CourseAttainmentSummary
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.buildSummary(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, summary, 0); err != nil {
		s.logger.Warn("failed to cache course summary", zap.String("course_id", courseID), zap.Error(err))
	}
	return summary, false, nil
}

func (s *ReportService) buildSummary(ctx context.Context, courseID string) (*CourseAttainmentSummary, error) {
	snapshots, err := s.attainments.LatestSnapshots(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load co snapshots")
	}
	pos, err := s.attainments.ListPOAttainmentByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load po attainment")
	}
	distribution, err := s.overall.GradeDistribution(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade distribution")
	}

	summary := &CourseAttainmentSummary{
		CourseID:          courseID,
		POs:               pos,
		GradeDistribution: distribution,
		GeneratedAt:       s.now().UTC(),
	}
	for _, snapshot := range snapshots {
		summary.COs = append(summary.COs, COSummaryRow{
			CONumber:        snapshot.CONumber,
			CIEPercentage:   snapshot.CIEPercentage,
			SEEPercentage:   snapshot.SEEPercentage,
			FinalPercentage: snapshot.FinalPercentage,
		})
	}
	return summary, nil
}

// COTrend returns the full snapshot history of one CO, oldest first.
func (s *ReportService) COTrend(ctx context.Context, courseID, coID string) ([]models.COSnapshot, error) {
	if courseID == "" || coID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course and co required")
	}
	trend, err := s.attainments.SnapshotTrend(ctx, courseID, coID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load co trend")
	}
	return trend, nil
}

func (s *ReportService) attainmentDataset(ctx context.Context, courseID string) (export.Dataset, error) {
	summary, err := s.buildSummary(ctx, courseID)
	if err != nil {
		return export.Dataset{}, err
	}
	dataset := export.Dataset{
		Headers: []string{"Outcome", "CIE %", "SEE %", "Final %", "Level"},
	}
	for _, co := range summary.COs {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Outcome": fmt.Sprintf("CO%d", co.CONumber),
			"CIE %":   formatPercent(co.CIEPercentage),
			"SEE %":   formatPercent(co.SEEPercentage),
			"Final %": formatPercent(co.FinalPercentage),
			"Level":   "",
		})
	}
	for _, po := range summary.POs {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Outcome": fmt.Sprintf("PO%d", po.PONumber),
			"CIE %":   "",
			"SEE %":   "",
			"Final %": formatPercent(po.POPercentage),
			"Level":   fmt.Sprintf("%.2f", po.AttainmentLevel),
		})
	}
	return dataset, nil
}

// ExportAttainmentCSV renders the CO/PO attainment report as CSV.
func (s *ReportService) ExportAttainmentCSV(ctx context.Context, courseID string) ([]byte, error) {
	dataset, err := s.attainmentDataset(ctx, courseID)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// ExportAttainmentPDF renders the CO/PO attainment report as PDF.
func (s *ReportService) ExportAttainmentPDF(ctx context.Context, courseID string) ([]byte, error) {
	dataset, err := s.attainmentDataset(ctx, courseID)
	if err != nil {
		return nil, err
	}
	title := "Outcome Attainment Report"
	if s.institution != "" {
		title = s.institution + " - " + title
	}
	dataset.Subtitle = "Course " + courseID + " | Generated " + s.now().UTC().Format("02 Jan 2006 15:04 MST")
	data, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, nil
}

// ExportGradeSheetCSV renders the per-student course standings as CSV.
func (s *ReportService) ExportGradeSheetCSV(ctx context.Context, courseID string) ([]byte, error) {
	scores, err := s.overall.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overall scores")
	}
	dataset := export.Dataset{
		Headers: []string{"USN", "CIE %", "SEE %", "Total %", "Grade"},
	}
	for _, score := range scores {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"USN":     score.StudentUSN,
			"CIE %":   formatPercent(score.CIEPercentage),
			"SEE %":   formatPercent(score.SEEPercentage),
			"Total %": formatPercent(score.Percentage),
			"Grade":   score.Grade,
		})
	}
	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
