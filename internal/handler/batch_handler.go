package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubatch-api/internal/middleware"
	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/pkg/response"
)

type batchCatalog interface {
	ListWithEnrollment(ctx context.Context) ([]models.BatchWithEnrollment, error)
	Get(ctx context.Context, batchType models.BatchType) (*models.BatchWithEnrollment, error)
}

// BatchHandler exposes the batch catalog.
type BatchHandler struct {
	catalog batchCatalog
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(catalog batchCatalog) *BatchHandler {
	return &BatchHandler{catalog: catalog}
}

type batchView struct {
	models.BatchWithEnrollment
	Remaining int  `json:"remaining"`
	Full      bool `json:"full"`
}

func newBatchView(b models.BatchWithEnrollment) batchView {
	return batchView{BatchWithEnrollment: b, Remaining: b.Remaining(), Full: b.IsFull()}
}

// List godoc
// @Summary List batch offerings with enrollment
// @Tags Batches
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	batches, err := h.catalog.ListWithEnrollment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]batchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, newBatchView(b))
	}
	middleware.SetMeta(c, "total_batches", len(views))
	response.JSON(c, http.StatusOK, views, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get one batch offering
// @Tags Batches
// @Produce json
// @Param type path string true "Batch type"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{type} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.catalog.Get(c.Request.Context(), models.BatchType(c.Param("type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, newBatchView(*batch))
}
