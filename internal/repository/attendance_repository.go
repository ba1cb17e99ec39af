package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// AttendanceRepository persists attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts an attendance mark.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.MarkedAt.IsZero() {
		record.MarkedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, student_id, date, status, marked_at)
        VALUES (:id, :student_id, :date, :status, :marked_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// ListByStudent returns marks for a student between two dates, inclusive.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, error) {
	query := r.db.Rebind(`SELECT id, student_id, date, status, marked_at FROM attendance
        WHERE student_id = ? AND date >= ? AND date <= ? ORDER BY date, marked_at`)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ProgressRepository persists assessment results.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Create inserts a progress record.
func (r *ProgressRepository) Create(ctx context.Context, record *models.ProgressRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	const query = `INSERT INTO progress (id, student_id, subject, topic, score, feedback, recorded_at)
        VALUES (:id, :student_id, :subject, :topic, :score, :feedback, :recorded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create progress: %w", err)
	}
	return nil
}

// ListByStudent returns a student's progress, most recent first.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error) {
	query := r.db.Rebind(`SELECT id, student_id, subject, topic, score, feedback, recorded_at FROM progress
        WHERE student_id = ? ORDER BY recorded_at DESC`)
	var records []models.ProgressRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return records, nil
}
