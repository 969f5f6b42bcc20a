package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/internal/service"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
	"github.com/campuskit/faculty-admin-api/pkg/response"
)

// ReportHandler exposes asynchronous report export endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Create godoc
// @Summary Queue a report export job
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.CreateReportRequest true "Report payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	// Faculty callers can only export their own data.
	if claims.Role == models.RoleFaculty {
		if claims.FacultyID == "" {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		facultyID := claims.FacultyID
		req.FacultyID = &facultyID
	}

	job, err := h.service.CreateJob(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Report job status with download URL when complete
// @Tags Reports
// @Produce json
// @Param id path string true "Report job ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a completed report artifact via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	download, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.FormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		// headers are already sent; nothing to do but log via gin's recovery
		_ = c.Error(err)
	}
}
