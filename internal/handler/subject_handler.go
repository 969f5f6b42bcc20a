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

// SubjectHandler handles subject, semester and assignment endpoints.
type SubjectHandler struct {
	service *service.SubjectService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Param department query string false "Filter by department"
// @Param type query string false "Filter by subject type"
// @Param semesterId query string false "Filter by semester"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	var filter models.SubjectFilter
	filter.Department = c.Query("department")
	filter.SubjectType = c.Query("type")
	filter.SemesterID = c.Query("semesterId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	subjects, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, pagination)
}

// Get godoc
// @Summary Get subject by id
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body service.UpdateSubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req service.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary Delete subject
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 204
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSemesters godoc
// @Summary List semesters
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *SubjectHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.service.ListSemesters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// CreateSemester godoc
// @Summary Create semester
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.CreateSemesterRequest true "Semester payload"
// @Success 201 {object} response.Envelope
// @Router /semesters [post]
func (h *SubjectHandler) CreateSemester(c *gin.Context) {
	var req service.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	semester, err := h.service.CreateSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, semester)
}

// ListAssignments godoc
// @Summary List subject assignments for a faculty
// @Tags Subjects
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculties/{id}/subjects [get]
func (h *SubjectHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.service.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Assign godoc
// @Summary Assign a subject to a faculty
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body service.AssignSubjectRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /faculties/{id}/subjects [post]
func (h *SubjectHandler) Assign(c *gin.Context) {
	var req service.AssignSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Unassign godoc
// @Summary Remove a subject assignment from a faculty
// @Tags Subjects
// @Produce json
// @Param id path string true "Faculty ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Router /faculties/{id}/subjects/{assignmentId} [delete]
func (h *SubjectHandler) Unassign(c *gin.Context) {
	if err := h.service.Unassign(c.Request.Context(), c.Param("id"), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
