package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/service"
	"github.com/campuskit/faculty-admin-api/pkg/response"
)

// AnalyticsHandler exposes workload and salary aggregate endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// Workload godoc
// @Summary Per-faculty workload summaries
// @Tags Analytics
// @Produce json
// @Param department query string false "Filter by department"
// @Param designation query string false "Filter by designation"
// @Param month query string false "Filter by month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /analytics/workload [get]
func (h *AnalyticsHandler) Workload(c *gin.Context) {
	filter := models.WorkloadFilter{
		Department:  c.Query("department"),
		Designation: c.Query("designation"),
		Month:       c.Query("month"),
	}

	summaries, err := h.service.WorkloadSummaries(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// SalaryTrend godoc
// @Summary Monthly salary totals over a trailing window
// @Tags Analytics
// @Produce json
// @Param months query int false "Number of trailing months (default 12)"
// @Success 200 {object} response.Envelope
// @Router /analytics/salary-trend [get]
func (h *AnalyticsHandler) SalaryTrend(c *gin.Context) {
	months := 12
	if raw := c.Query("months"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			months = parsed
		}
	}

	points, err := h.service.SalaryTrend(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, points, nil)
}

// DepartmentComparison godoc
// @Summary Department-level salary and workload comparison for a month
// @Tags Analytics
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /analytics/departments [get]
func (h *AnalyticsHandler) DepartmentComparison(c *gin.Context) {
	rows, err := h.service.DepartmentComparison(c.Request.Context(), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
