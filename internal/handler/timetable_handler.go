package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/service"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
	"github.com/campuskit/faculty-admin-api/pkg/response"
)

// TimetableHandler handles timetable endpoints, including conflict probes.
type TimetableHandler struct {
	service *service.TimetableService
	metrics *service.MetricsService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService, metrics *service.MetricsService) *TimetableHandler {
	return &TimetableHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List timetable slots
// @Tags Timetable
// @Produce json
// @Param facultyId query string false "Filter by faculty"
// @Param semesterId query string false "Filter by semester"
// @Param day query string false "Filter by day of week"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var filter models.TimetableFilter
	filter.FacultyID = c.Query("facultyId")
	filter.SemesterID = c.Query("semesterId")
	filter.DayOfWeek = c.Query("day")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	slots, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

// Get godoc
// @Summary Get timetable slot by id
// @Tags Timetable
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreateTimetableRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body service.UpdateTimetableRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.UpdateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete timetable slot
// @Tags Timetable
// @Produce json
// @Param id path string true "Slot ID"
// @Success 204
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflict godoc
// @Summary Probe a candidate slot for scheduling conflicts
// @Description Returns the raw conflict result rather than the standard envelope so clients get a stable report shape
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.ConflictCheckRequest true "Candidate slot"
// @Success 200 {object} validation.ConflictResult
// @Failure 400 {object} response.Envelope
// @Router /timetable/conflict-check [post]
func (h *TimetableHandler) CheckConflict(c *gin.Context) {
	var req service.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.CheckConflict(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordConflictCheck(result.HasConflict)
	}

	c.JSON(http.StatusOK, result)
}
