package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/middleware"
	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/service"
)

type fakeAttendance struct {
	marked  service.MarkAttendanceRequest
	records []models.AttendanceRecord
}

func (f *fakeAttendance) Mark(_ context.Context, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	f.marked = req
	return &models.AttendanceRecord{ID: "att-1", StudentID: req.StudentID, Date: req.Date, Status: req.Status}, nil
}

func (f *fakeAttendance) History(context.Context, string, string, string) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

type fakeProgress struct {
	studentID string
}

func (f *fakeProgress) Record(_ context.Context, studentID string, req service.RecordProgressRequest) (*models.ProgressRecord, error) {
	f.studentID = studentID
	return &models.ProgressRecord{ID: "prog-1", StudentID: studentID, Subject: req.Subject, Score: *req.Score}, nil
}

func (f *fakeProgress) List(context.Context, string) ([]models.ProgressRecord, error) {
	return []models.ProgressRecord{{ID: "prog-1"}}, nil
}

func newAcademicsRouter(h *AcademicsHandler, enabled bool) http.Handler {
	r := newTestEngine()
	group := r.Group("", middleware.FeatureGate(enabled, "academics"))
	group.POST("/attendance", h.MarkAttendance)
	group.GET("/students/:id/attendance", h.AttendanceHistory)
	group.POST("/students/:id/progress", h.RecordProgress)
	group.GET("/students/:id/progress", h.ListProgress)
	return r
}

func TestAcademicsHandlerAttendance(t *testing.T) {
	attendance := &fakeAttendance{records: []models.AttendanceRecord{
		{Status: models.AttendancePresent},
		{Status: models.AttendanceAbsent},
		{Status: models.AttendancePresent},
	}}
	router := newAcademicsRouter(NewAcademicsHandler(attendance, &fakeProgress{}), true)

	rec, _ := perform(t, router, http.MethodPost, "/attendance", map[string]string{"student_id": "stu-1", "date": "2024-06-14", "status": "present"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "stu-1", attendance.marked.StudentID)

	rec, envelope := perform(t, router, http.MethodGet, "/students/stu-1/attendance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), envelope.Meta["present"])
	assert.Equal(t, float64(3), envelope.Meta["total"])
}

func TestAcademicsHandlerProgress(t *testing.T) {
	progress := &fakeProgress{}
	router := newAcademicsRouter(NewAcademicsHandler(&fakeAttendance{}, progress), true)

	rec, _ := perform(t, router, http.MethodPost, "/students/stu-9/progress", map[string]interface{}{"subject": "Algebra", "topic": "Basics", "score": 91})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "stu-9", progress.studentID)

	rec, _ = perform(t, router, http.MethodGet, "/students/stu-9/progress", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAcademicsHandlerFeatureDisabled(t *testing.T) {
	router := newAcademicsRouter(nil, false)
	rec, envelope := perform(t, router, http.MethodGet, "/students/stu-1/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "FEATURE_DISABLED", envelope.Error.Code)
}
