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

// FacultyHandler handles faculty profile endpoints.
type FacultyHandler struct {
	service *service.FacultyService
}

// NewFacultyHandler constructs a faculty handler.
func NewFacultyHandler(svc *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// List godoc
// @Summary List faculty profiles
// @Tags Faculty
// @Produce json
// @Param department query string false "Filter by department"
// @Param designation query string false "Filter by designation"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /faculties [get]
func (h *FacultyHandler) List(c *gin.Context) {
	var filter models.FacultyFilter
	filter.Department = c.Query("department")
	filter.Designation = c.Query("designation")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	faculties, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculties, pagination)
}

// Get godoc
// @Summary Get faculty profile by id
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculties/{id} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	faculty, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Me godoc
// @Summary Get the authenticated user's faculty profile
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculties/me [get]
func (h *FacultyHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	faculty, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Create godoc
// @Summary Create faculty profile with login account
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body service.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Router /faculties [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req service.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	faculty, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// Update godoc
// @Summary Update faculty profile
// @Tags Faculty
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body service.UpdateFacultyRequest true "Faculty payload"
// @Success 200 {object} response.Envelope
// @Router /faculties/{id} [put]
func (h *FacultyHandler) Update(c *gin.Context) {
	var req service.UpdateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	faculty, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Delete godoc
// @Summary Delete faculty profile
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 204
// @Router /faculties/{id} [delete]
func (h *FacultyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
