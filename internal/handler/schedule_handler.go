package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edufy-app/roster-api/internal/service"
	"github.com/edufy-app/roster-api/pkg/response"
)

// ScheduleHandler exposes the dashboard schedule queries.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// ForStudent godoc
// @Summary List a student's booked class sessions
// @Tags Schedules
// @Produce json
// @Param id path string true "Student ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedules/students/{id} [get]
func (h *ScheduleHandler) ForStudent(c *gin.Context) {
	sessions, err := h.schedules.ForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// ForTeacher godoc
// @Summary List the class sessions a teacher gives
// @Tags Schedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedules/teachers/{id} [get]
func (h *ScheduleHandler) ForTeacher(c *gin.Context) {
	sessions, err := h.schedules.ForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}
