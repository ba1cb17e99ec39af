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

type registrationWorkflow interface {
	Start(ctx context.Context, req service.StartRegistrationRequest) (*models.Wizard, error)
	Get(ctx context.Context, id string) (*models.Wizard, error)
	Continue(ctx context.Context, id string) (*models.Wizard, error)
	Submit(ctx context.Context, id string, form models.RegistrationForm) (*models.Wizard, error)
	Pay(ctx context.Context, id string, form models.RegistrationForm) (*models.Wizard, error)
	Abandon(ctx context.Context, id string) error
}

// RegistrationHandler exposes the registration wizard.
type RegistrationHandler struct {
	workflow registrationWorkflow
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(workflow registrationWorkflow) *RegistrationHandler {
	return &RegistrationHandler{workflow: workflow}
}

// Start godoc
// @Summary Start a registration for a batch
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.StartRegistrationRequest true "Selected batch"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Start(c *gin.Context) {
	var req service.StartRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	wizard, err := h.workflow.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, wizard)
}

// Get godoc
// @Summary Get registration state
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	wizard, err := h.workflow.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wizard)
}

// Continue godoc
// @Summary Confirm the batch and move to personal details
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/{id}/continue [post]
func (h *RegistrationHandler) Continue(c *gin.Context) {
	wizard, err := h.workflow.Continue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wizard)
}

// Submit godoc
// @Summary Submit personal details and register
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body models.RegistrationForm true "Personal details"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /registrations/{id}/submit [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	h.runPipeline(c, h.workflow.Submit)
}

// Pay godoc
// @Summary Pay now for the selected batch
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body models.RegistrationForm true "Personal details"
// @Success 200 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Router /registrations/{id}/pay [post]
func (h *RegistrationHandler) Pay(c *gin.Context) {
	h.runPipeline(c, h.workflow.Pay)
}

// Abandon godoc
// @Summary Leave the registration and return to batch selection
// @Tags Registrations
// @Param id path string true "Registration ID"
// @Success 204
// @Router /registrations/{id} [delete]
func (h *RegistrationHandler) Abandon(c *gin.Context) {
	if err := h.workflow.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *RegistrationHandler) runPipeline(c *gin.Context, fn func(context.Context, string, models.RegistrationForm) (*models.Wizard, error)) {
	var form models.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	wizard, err := fn(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.OK(c, wizard)
}
