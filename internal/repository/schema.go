package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// The statements below are accepted by both PostgreSQL and SQLite. Email
// is indexed but not unique; duplicates are rejected by the registration
// workflow before payment.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
        batch_type TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        time_slot TEXT NOT NULL,
        capacity INTEGER NOT NULL CHECK (capacity > 0),
        price TEXT NOT NULL,
        icon TEXT NOT NULL DEFAULT '',
        description TEXT NOT NULL DEFAULT '',
        teacher TEXT NOT NULL DEFAULT '',
        sort_order INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS students (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        email TEXT NOT NULL,
        phone TEXT NOT NULL,
        batch_type TEXT NOT NULL,
        payment_method TEXT NOT NULL,
        payment_status TEXT NOT NULL,
        transaction_id TEXT NOT NULL DEFAULT '',
        referral_source TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL DEFAULT 'active',
        registration_date TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_students_email ON students (email)`,
	`CREATE INDEX IF NOT EXISTS idx_students_batch_type ON students (batch_type)`,
	`CREATE TABLE IF NOT EXISTS attendance (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        date TEXT NOT NULL,
        status TEXT NOT NULL,
        marked_at TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_student_date ON attendance (student_id, date)`,
	`CREATE TABLE IF NOT EXISTS progress (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        subject TEXT NOT NULL,
        topic TEXT NOT NULL,
        score INTEGER NOT NULL,
        feedback TEXT NOT NULL DEFAULT '',
        recorded_at TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_progress_student ON progress (student_id)`,
}

const seedBatchQuery = `INSERT INTO batches (batch_type, name, time_slot, capacity, price, icon, description, teacher, sort_order)
        VALUES (:batch_type, :name, :time_slot, :capacity, :price, :icon, :description, :teacher, :sort_order)
        ON CONFLICT (batch_type) DO NOTHING`

// Migrate creates the tables used by the SQL-backed stores and seeds the
// catalog with the given batches when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB, seed []models.Batch) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	for _, batch := range seed {
		if _, err := db.NamedExecContext(ctx, seedBatchQuery, batch); err != nil {
			return fmt.Errorf("seed batch %s: %w", batch.BatchType, err)
		}
	}
	return nil
}
