package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/service"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
	"github.com/campuskit/faculty-admin-api/pkg/response"
)

// BillingHandler handles salary record endpoints. Writes invalidate cached
// analytics aggregates since they are derived from billing rows.
type BillingHandler struct {
	service   *service.BillingService
	analytics *service.AnalyticsService
}

// NewBillingHandler constructs a billing handler.
func NewBillingHandler(svc *service.BillingService, analytics *service.AnalyticsService) *BillingHandler {
	return &BillingHandler{service: svc, analytics: analytics}
}

// List godoc
// @Summary List billing records
// @Tags Billing
// @Produce json
// @Param facultyId query string false "Filter by faculty"
// @Param month query string false "Filter by month (YYYY-MM)"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by faculty name or employee id"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /billing [get]
func (h *BillingHandler) List(c *gin.Context) {
	var filter models.BillingFilter
	filter.FacultyID = c.Query("facultyId")
	filter.Month = c.Query("month")
	filter.Status = c.Query("status")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get billing record by id
// @Tags Billing
// @Produce json
// @Param id path string true "Billing ID"
// @Success 200 {object} response.Envelope
// @Router /billing/{id} [get]
func (h *BillingHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Generate godoc
// @Summary Generate a salary record for a faculty-month
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body service.GenerateBillingRequest true "Billing payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /billing/generate [post]
func (h *BillingHandler) Generate(c *gin.Context) {
	var req service.GenerateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.analytics != nil {
		h.analytics.InvalidateCache(c.Request.Context())
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update billing amounts or advance its status
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Billing ID"
// @Param payload body service.UpdateBillingRequest true "Billing payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /billing/{id} [put]
func (h *BillingHandler) Update(c *gin.Context) {
	var req service.UpdateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.analytics != nil {
		h.analytics.InvalidateCache(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a pending billing record
// @Tags Billing
// @Produce json
// @Param id path string true "Billing ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /billing/{id} [delete]
func (h *BillingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	if h.analytics != nil {
		h.analytics.InvalidateCache(c.Request.Context())
	}
	response.NoContent(c)
}
