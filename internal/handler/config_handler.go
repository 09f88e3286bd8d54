package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trahulprabhu38/obe-analytics-api/internal/service"
	appErrors "github.com/trahulprabhu38/obe-analytics-api/pkg/errors"
	"github.com/trahulprabhu38/obe-analytics-api/pkg/response"
)

// ConfigHandler exposes course configuration endpoints.
type ConfigHandler struct {
	configs *service.CourseConfigService
}

// NewConfigHandler constructs handler.
func NewConfigHandler(configs *service.CourseConfigService) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// Get godoc
// @Summary Fetch a course's calculation configuration
// @Tags Configuration
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	config, err := h.configs.Ensure(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// Update godoc
// @Summary Replace a course's calculation configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body service.UpdateCourseConfigRequest true "Configuration payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/config [put]
func (h *ConfigHandler) Update(c *gin.Context) {
	var req service.UpdateCourseConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	config, err := h.configs.Update(c.Request.Context(), c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}
