package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trahulprabhu38/obe-analytics-api/internal/service"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/response"
)

// ReportHandler exposes attainment read models and downloadable exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary godoc
// @Summary Course attainment dashboard summary
// @Tags Reports
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/attainment [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, cached, err := h.reports.CourseSummary(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}

// COTrend godoc
// @Summary Snapshot history for one course outcome
// @Tags Reports
// @Produce json
// @Param courseId path string true "Course ID"
// @Param coId path string true "Course Outcome ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/cos/{coId}/trend [get]
func (h *ReportHandler) COTrend(c *gin.Context) {
	trend, err := h.reports.COTrend(c.Request.Context(), c.Param("courseId"), c.Param("coId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trend, nil)
}

// ExportAttainment godoc
// @Summary Download the CO/PO attainment report
// @Tags Reports
// @Produce text/csv
// @Param courseId path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /courses/{courseId}/attainment/export [get]
func (h *ReportHandler) ExportAttainment(c *gin.Context) {
	courseID := c.Param("courseId")
	format := c.DefaultQuery("format", "csv")
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case "pdf":
		data, err = h.reports.ExportAttainmentPDF(c.Request.Context(), courseID)
		contentType = "application/pdf"
	default:
		data, err = h.reports.ExportAttainmentCSV(c.Request.Context(), courseID)
		contentType = "text/csv"
		format = "csv"
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attainment_%s.%s", courseID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ExportGradeSheet godoc
// @Summary Download the per-student grade sheet as CSV
// @Tags Reports
// @Produce text/csv
// @Param courseId path string true "Course ID"
// @Success 200 {file} file
// @Router /courses/{courseId}/grades/export [get]
func (h *ReportHandler) ExportGradeSheet(c *gin.Context) {
	courseID := c.Param("courseId")
	data, err := h.reports.ExportGradeSheetCSV(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("grades_%s.csv", courseID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
