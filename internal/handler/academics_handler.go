package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/service"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
	"github.com/noah-isme/edubatch-api/pkg/response"
)

type attendanceTracker interface {
	Mark(ctx context.Context, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	History(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, error)
}

type progressTracker interface {
	Record(ctx context.Context, studentID string, req service.RecordProgressRequest) (*models.ProgressRecord, error)
	List(ctx context.Context, studentID string) ([]models.ProgressRecord, error)
}

// AcademicsHandler exposes attendance and progress tracking.
type AcademicsHandler struct {
	attendance attendanceTracker
	progress   progressTracker
}

// NewAcademicsHandler constructs AcademicsHandler.
func NewAcademicsHandler(attendance attendanceTracker, progress progressTracker) *AcademicsHandler {
	return &AcademicsHandler{attendance: attendance, progress: progress}
}

// MarkAttendance godoc
// @Summary Mark attendance
// @Tags Academics
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AcademicsHandler) MarkAttendance(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// AttendanceHistory godoc
// @Summary Attendance history for a student
// @Tags Academics
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AcademicsHandler) AttendanceHistory(c *gin.Context) {
	records, err := h.attendance.History(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	present := 0
	for _, r := range records {
		if r.Status == models.AttendancePresent {
			present++
		}
	}
	response.JSON(c, http.StatusOK, records, nil, map[string]interface{}{"present": present, "total": len(records)})
}

// RecordProgress godoc
// @Summary Record progress for a student
// @Tags Academics
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.RecordProgressRequest true "Progress"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/progress [post]
func (h *AcademicsHandler) RecordProgress(c *gin.Context) {
	var req service.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.progress.Record(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// ListProgress godoc
// @Summary Progress history for a student
// @Tags Academics
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/progress [get]
func (h *AcademicsHandler) ListProgress(c *gin.Context) {
	records, err := h.progress.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}
