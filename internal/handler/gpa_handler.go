package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trahulprabhu38/obe-analytics-api/internal/service"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/response"
)

// GPAHandler exposes semester result endpoints.
type GPAHandler struct {
	gpa *service.GPAService
}

// NewGPAHandler constructs handler.
func NewGPAHandler(gpa *service.GPAService) *GPAHandler {
	return &GPAHandler{gpa: gpa}
}

// RegisterSubject godoc
// @Summary Register a course into a student's semester
// @Tags GPA
// @Accept json
// @Produce json
// @Param payload body service.RegisterSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /semester/subjects [post]
func (h *GPAHandler) RegisterSubject(c *gin.Context) {
	var req service.RegisterSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.gpa.RegisterSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// CalculateSGPA godoc
// @Summary Calculate and persist one semester's SGPA
// @Tags GPA
// @Accept json
// @Produce json
// @Param payload body service.CalculateSGPARequest true "Semester scope"
// @Success 200 {object} response.Envelope
// @Router /semester/sgpa [post]
func (h *GPAHandler) CalculateSGPA(c *gin.Context) {
	var req service.CalculateSGPARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.gpa.CalculateSGPA(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CalculateCGPA godoc
// @Summary Recalculate a student's cumulative CGPA
// @Tags GPA
// @Produce json
// @Param usn path string true "Student USN"
// @Success 200 {object} response.Envelope
// @Router /students/{usn}/cgpa [post]
func (h *GPAHandler) CalculateCGPA(c *gin.Context) {
	result, err := h.gpa.CalculateCGPA(c.Request.Context(), c.Param("usn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no semester results recorded for student"))
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Rank godoc
// @Summary Class rank and percentile for a student
// @Tags GPA
// @Produce json
// @Param usn path string true "Student USN"
// @Param department query string false "Restrict ranking to one department"
// @Success 200 {object} response.Envelope
// @Router /students/{usn}/rank [get]
func (h *GPAHandler) Rank(c *gin.Context) {
	rank, err := h.gpa.CalculateRank(c.Request.Context(), c.Param("usn"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if rank == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "student has no ranked CGPA"))
		return
	}
	response.JSON(c, http.StatusOK, rank, nil)
}

// RecalculateAll godoc
// @Summary Recalculate CGPA for every student with semester results
// @Tags GPA
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semester/cgpa/recalculate [post]
func (h *GPAHandler) RecalculateAll(c *gin.Context) {
	result, err := h.gpa.RecalculateAllCGPA(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
