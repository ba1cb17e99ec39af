package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/middleware"
	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	"github.com/noah-isme/edubatch-api/internal/service"
)

func newBatchRouter(t *testing.T, privateEnrolled int) http.Handler {
	t.Helper()
	students := repository.NewMemoryStudentRepository()
	for i := 0; i < privateEnrolled; i++ {
		require.NoError(t, students.Create(context.Background(), &models.Student{
			Name: "Seed", Email: string(rune('a'+i)) + "@x.io", Phone: "9000000000",
			BatchType: models.BatchPrivate, PaymentMethod: models.PaymentUPI, PaymentStatus: models.PaymentStatusCompleted,
		}))
	}
	catalog := service.NewCatalogService(repository.NewStaticBatchRepository(), students, nil, 0, nil)
	h := NewBatchHandler(catalog)

	r := newTestEngine()
	r.Use(middleware.WithResponseMeta())
	r.GET("/batches", h.List)
	r.GET("/batches/:type", h.Get)
	return r
}

type batchResponse struct {
	BatchType models.BatchType `json:"batch_type"`
	Name      string           `json:"name"`
	Capacity  int              `json:"capacity"`
	Enrolled  int              `json:"enrolled"`
	Remaining int              `json:"remaining"`
	Full      bool             `json:"full"`
}

func TestBatchHandlerList(t *testing.T) {
	rec, envelope := perform(t, newBatchRouter(t, 5), http.MethodGet, "/batches", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batches []batchResponse
	decodeData(t, envelope, &batches)
	require.Len(t, batches, 4)
	assert.Equal(t, []models.BatchType{models.BatchMorning, models.BatchEvening, models.BatchFull, models.BatchPrivate},
		[]models.BatchType{batches[0].BatchType, batches[1].BatchType, batches[2].BatchType, batches[3].BatchType})
	assert.Equal(t, 30, batches[0].Remaining)
	assert.False(t, batches[0].Full)
	assert.Equal(t, 5, batches[3].Enrolled)
	assert.True(t, batches[3].Full)
	assert.Equal(t, float64(4), envelope.Meta["total_batches"])
}

func TestBatchHandlerGet(t *testing.T) {
	router := newBatchRouter(t, 2)

	rec, envelope := perform(t, router, http.MethodGet, "/batches/private", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var batch batchResponse
	decodeData(t, envelope, &batch)
	assert.Equal(t, "Private Tutoring", batch.Name)
	assert.Equal(t, 3, batch.Remaining)

	rec, envelope = perform(t, router, http.MethodGet, "/batches/weekend", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
