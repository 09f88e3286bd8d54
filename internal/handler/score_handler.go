package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trahulprabhu38/obe-analytics-api/internal/service"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/response"
)

// ScoreHandler exposes marksheet ingestion endpoints.
type ScoreHandler struct {
	ingest *service.IngestService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(ingest *service.IngestService) *ScoreHandler {
	return &ScoreHandler{ingest: ingest}
}

// Ingest godoc
// @Summary Ingest a parsed marksheet batch for an assessment
// @Tags Scores
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param assessmentId path string true "Assessment ID"
// @Param payload body service.IngestScoresRequest true "Marksheet rows"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/assessments/{assessmentId}/scores [post]
func (h *ScoreHandler) Ingest(c *gin.Context) {
	var req service.IngestScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CourseID = c.Param("courseId")
	req.AssessmentID = c.Param("assessmentId")
	result, err := h.ingest.IngestScores(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
