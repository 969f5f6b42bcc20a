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

// WorkLogHandler handles work log endpoints, including validation runs.
type WorkLogHandler struct {
	service *service.WorkLogService
	metrics *service.MetricsService
}

// NewWorkLogHandler constructs a work log handler.
func NewWorkLogHandler(svc *service.WorkLogService, metrics *service.MetricsService) *WorkLogHandler {
	return &WorkLogHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List work logs
// @Tags WorkLogs
// @Produce json
// @Param facultyId query string false "Filter by faculty"
// @Param startDate query string false "Window start (YYYY-MM-DD)"
// @Param endDate query string false "Window end (YYYY-MM-DD)"
// @Param department query string false "Filter by department"
// @Param activityType query string false "Filter by activity type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /work-logs [get]
func (h *WorkLogHandler) List(c *gin.Context) {
	var filter models.WorkLogFilter
	filter.FacultyID = c.Query("facultyId")
	filter.StartDate = c.Query("startDate")
	filter.EndDate = c.Query("endDate")
	filter.Department = c.Query("department")
	filter.ActivityType = c.Query("activityType")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// Get godoc
// @Summary Get work log by id
// @Tags WorkLogs
// @Produce json
// @Param id path string true "Work log ID"
// @Success 200 {object} response.Envelope
// @Router /work-logs/{id} [get]
func (h *WorkLogHandler) Get(c *gin.Context) {
	log, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Create godoc
// @Summary Create work log entry
// @Tags WorkLogs
// @Accept json
// @Produce json
// @Param payload body service.CreateWorkLogRequest true "Work log payload"
// @Success 201 {object} response.Envelope
// @Router /work-logs [post]
func (h *WorkLogHandler) Create(c *gin.Context) {
	var req service.CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	log, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, log)
}

// Update godoc
// @Summary Update work log entry
// @Tags WorkLogs
// @Accept json
// @Produce json
// @Param id path string true "Work log ID"
// @Param payload body service.UpdateWorkLogRequest true "Work log payload"
// @Success 200 {object} response.Envelope
// @Router /work-logs/{id} [put]
func (h *WorkLogHandler) Update(c *gin.Context) {
	var req service.UpdateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	log, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Delete godoc
// @Summary Delete work log entry
// @Tags WorkLogs
// @Produce json
// @Param id path string true "Work log ID"
// @Success 204
// @Router /work-logs/{id} [delete]
func (h *WorkLogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Validate godoc
// @Summary Run the validation engine over a faculty's work logs
// @Description Returns the raw validation result rather than the standard envelope so clients get a stable report shape
// @Tags WorkLogs
// @Accept json
// @Produce json
// @Param payload body service.ValidateWorkLogsRequest true "Validation window"
// @Success 200 {object} validation.Result
// @Failure 400 {object} response.Envelope
// @Router /work-logs/validate [post]
func (h *WorkLogHandler) Validate(c *gin.Context) {
	var req service.ValidateWorkLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		issueTypes := make(map[string]string, len(result.Issues))
		for _, issue := range result.Issues {
			issueTypes[string(issue.Type)] = string(issue.Severity)
		}
		h.metrics.RecordValidationRun(issueTypes)
	}

	c.JSON(http.StatusOK, result)
}
