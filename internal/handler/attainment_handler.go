package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trahulprabhu38/obe-analytics-api/internal/service"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/response"
)

// AttainmentHandler exposes the attainment calculation endpoints.
type AttainmentHandler struct {
	attainments *service.AttainmentService
}

// NewAttainmentHandler constructs handler.
func NewAttainmentHandler(attainments *service.AttainmentService) *AttainmentHandler {
	return &AttainmentHandler{attainments: attainments}
}

// CalculateCOScores godoc
// @Summary Aggregate raw scores into per-student CO scores for an assessment
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course ID"
// @Param assessmentId path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/assessments/{assessmentId}/co-scores [post]
func (h *AttainmentHandler) CalculateCOScores(c *gin.Context) {
	courseID := c.Param("courseId")
	assessmentID := c.Param("assessmentId")
	if err := h.attainments.CalculateStudentCOScores(c.Request.Context(), courseID, assessmentID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "calculated"}, nil)
}

// CalculateCOAttainment godoc
// @Summary Compute class-wide CO attainment for an assessment
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course ID"
// @Param assessmentId path string true "Assessment ID"
// @Param threshold query number false "Attainment threshold percentage"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/assessments/{assessmentId}/co-attainment [post]
func (h *AttainmentHandler) CalculateCOAttainment(c *gin.Context) {
	courseID := c.Param("courseId")
	assessmentID := c.Param("assessmentId")
	threshold := 0.0
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 100 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "threshold must be a number between 0 and 100"))
			return
		}
		threshold = parsed
	}
	if err := h.attainments.CalculateCOAttainment(c.Request.Context(), courseID, assessmentID, threshold); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "calculated"}, nil)
}

// CalculateFinalCOAttainment godoc
// @Summary Blend CIE/SEE/CES into final CO attainment snapshots
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/final-co-attainment [post]
func (h *AttainmentHandler) CalculateFinalCOAttainment(c *gin.Context) {
	if err := h.attainments.CalculateFinalCOAttainment(c.Request.Context(), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "calculated"}, nil)
}

// CalculatePOAttainment godoc
// @Summary Derive PO attainment from the latest CO snapshots
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/po-attainment [post]
func (h *AttainmentHandler) CalculatePOAttainment(c *gin.Context) {
	if err := h.attainments.CalculatePOAttainment(c.Request.Context(), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "calculated"}, nil)
}

// CalculateOverallScores godoc
// @Summary Compute per-student weighted totals and letter grades
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/overall-scores [post]
func (h *AttainmentHandler) CalculateOverallScores(c *gin.Context) {
	if err := h.attainments.CalculateStudentOverallScores(c.Request.Context(), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "calculated"}, nil)
}

// RunFullCalculation godoc
// @Summary Run the full attainment pipeline for a course
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course ID"
// @Param assessmentId query string false "Limit CO scoring to one assessment"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/calculate [post]
func (h *AttainmentHandler) RunFullCalculation(c *gin.Context) {
	result, err := h.attainments.RunFullCalculation(c.Request.Context(), c.Param("courseId"), c.Query("assessmentId"))
	if err != nil {
		if result != nil {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{Data: result, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
