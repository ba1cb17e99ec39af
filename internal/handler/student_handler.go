package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubatch-api/internal/middleware"
	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/service"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
	"github.com/noah-isme/edubatch-api/pkg/response"
)

type studentRoster interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, batchType models.BatchType, format string) (*service.ExportFile, error)
}

// StudentHandler exposes the student roster.
type StudentHandler struct {
	students studentRoster
	exporter rosterExporter
}

// NewStudentHandler constructs StudentHandler. exporter may be nil when exports are disabled.
func NewStudentHandler(students studentRoster, exporter rosterExporter) *StudentHandler {
	return &StudentHandler{students: students, exporter: exporter}
}

// List godoc
// @Summary List registered students
// @Tags Students
// @Produce json
// @Param batchType query string false "Filter by batch"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{BatchType: models.BatchType(c.Query("batchType"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Exists godoc
// @Summary Check whether an email is registered
// @Tags Students
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} response.Envelope
// @Router /students/exists [get]
func (h *StudentHandler) Exists(c *gin.Context) {
	email := c.Query("email")
	exists, err := h.students.EmailExists(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"email": email, "exists": exists})
}

// Export godoc
// @Summary Export the roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param batchType query string false "Filter by batch"
// @Success 200 {file} file
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "roster export is disabled"))
		return
	}
	file, err := h.exporter.Roster(c.Request.Context(), models.BatchType(c.Query("batchType")), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
