package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// BatchRepository reads the catalog from the batches table.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// List returns all batches in display order.
func (r *BatchRepository) List(ctx context.Context) ([]models.Batch, error) {
	const query = `SELECT batch_type, name, time_slot, capacity, price, icon, description, teacher, sort_order
        FROM batches ORDER BY sort_order, batch_type`
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// StaticBatchRepository serves a fixed catalog.
type StaticBatchRepository struct {
	batches []models.Batch
}

// NewStaticBatchRepository serves the given batches, or the defaults when none are given.
func NewStaticBatchRepository(batches ...models.Batch) *StaticBatchRepository {
	if len(batches) == 0 {
		batches = models.DefaultBatches()
	}
	return &StaticBatchRepository{batches: batches}
}

// List returns a copy of the catalog.
func (r *StaticBatchRepository) List(context.Context) ([]models.Batch, error) {
	out := make([]models.Batch, len(r.batches))
	copy(out, r.batches)
	return out, nil
}
