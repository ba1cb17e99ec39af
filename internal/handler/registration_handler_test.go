package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	"github.com/noah-isme/edubatch-api/internal/service"
)

type approvingGateway struct {
	calls int
}

func (g *approvingGateway) Charge(context.Context, models.PaymentRequest) (*models.PaymentResponse, error) {
	g.calls++
	return &models.PaymentResponse{Success: true, TransactionID: "TXN_42"}, nil
}

type registrationFixture struct {
	router   *gin.Engine
	students *repository.MemoryStudentRepository
	gateway  *approvingGateway
}

func newRegistrationFixture() *registrationFixture {
	students := repository.NewMemoryStudentRepository()
	catalog := service.NewCatalogService(repository.NewStaticBatchRepository(), students, nil, 0, nil)
	gateway := &approvingGateway{}
	workflow := service.NewRegistrationService(service.RegistrationServiceParams{
		Catalog:  catalog,
		Students: students,
		Wizards:  repository.NewMemoryWizardRepository(time.Hour),
		Gateway:  gateway,
	})
	h := NewRegistrationHandler(workflow)

	r := newTestEngine()
	group := r.Group("/registrations")
	group.POST("", h.Start)
	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Abandon)
	group.POST("/:id/continue", h.Continue)
	group.POST("/:id/submit", h.Submit)
	group.POST("/:id/pay", h.Pay)
	return &registrationFixture{router: r, students: students, gateway: gateway}
}

func (f *registrationFixture) start(t *testing.T, batch models.BatchType) models.Wizard {
	t.Helper()
	rec, envelope := perform(t, f.router, http.MethodPost, "/registrations", map[string]string{"batch_type": string(batch)})
	require.Equal(t, http.StatusCreated, rec.Code)
	var wizard models.Wizard
	decodeData(t, envelope, &wizard)
	return wizard
}

var ashaPayload = map[string]string{
	"name":           "Asha Rao",
	"email":          "asha@example.com",
	"phone":          "9876543210",
	"payment_method": "upi",
}

func TestRegistrationHandlerHappyPath(t *testing.T) {
	f := newRegistrationFixture()
	wizard := f.start(t, models.BatchEvening)
	assert.Equal(t, "confirm_batch", wizard.StepName)
	assert.Equal(t, "Evening Batch", wizard.Batch.Name)

	rec, envelope := perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/continue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, envelope, &wizard)
	assert.Equal(t, models.StepPersonalDetails, wizard.Step)

	rec, envelope = perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/submit", ashaPayload)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, envelope, &wizard)
	assert.Equal(t, "success", wizard.StepName)
	assert.NotEmpty(t, wizard.StudentID)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	count, _ := f.students.CountByBatch(context.Background(), models.BatchEvening)
	assert.Equal(t, 1, count)
}

func TestRegistrationHandlerErrorMapping(t *testing.T) {
	f := newRegistrationFixture()
	require.NoError(t, f.students.Create(context.Background(), &models.Student{
		Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210",
		BatchType: models.BatchMorning, PaymentMethod: models.PaymentCard, PaymentStatus: models.PaymentStatusCompleted,
	}))
	wizard := f.start(t, models.BatchFull)

	rec, envelope := perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/submit", ashaPayload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_STEP", envelope.Error.Code)

	perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/continue", nil)

	rec, envelope = perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/submit", ashaPayload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_EXISTS", envelope.Error.Code)
	assert.Zero(t, f.gateway.calls)

	bad := map[string]string{"name": "A", "email": "nope", "phone": "1", "payment_method": "cash"}
	rec, envelope = perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/submit", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Len(t, envelope.Error.Fields, 4)

	rec, envelope = perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/submit", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestRegistrationHandlerFullBatch(t *testing.T) {
	f := newRegistrationFixture()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io"} {
		require.NoError(t, f.students.Create(context.Background(), &models.Student{
			Name: "Seed", Email: email, Phone: "9000000000",
			BatchType: models.BatchPrivate, PaymentMethod: models.PaymentUPI, PaymentStatus: models.PaymentStatusCompleted,
		}))
	}
	wizard := f.start(t, models.BatchPrivate)
	perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/continue", nil)

	rec, envelope := perform(t, f.router, http.MethodPost, "/registrations/"+wizard.ID+"/pay", ashaPayload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "BATCH_FULL", envelope.Error.Code)
	assert.Zero(t, f.gateway.calls)

	rec, envelope = perform(t, f.router, http.MethodGet, "/registrations/"+wizard.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current models.Wizard
	decodeData(t, envelope, &current)
	assert.Equal(t, models.StepPayment, current.Step)
	assert.Equal(t, "asha@example.com", current.Form.Email)
}

func TestRegistrationHandlerStartAndAbandon(t *testing.T) {
	f := newRegistrationFixture()

	rec, envelope := perform(t, f.router, http.MethodPost, "/registrations", map[string]string{"batch_type": "weekend"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)

	rec, envelope = perform(t, f.router, http.MethodPost, "/registrations", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)

	wizard := f.start(t, models.BatchMorning)
	rec, _ = perform(t, f.router, http.MethodDelete, "/registrations/"+wizard.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = perform(t, f.router, http.MethodGet, "/registrations/"+wizard.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
