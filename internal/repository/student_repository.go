package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// ErrMissingFields is returned when a student record lacks required attributes.
var ErrMissingFields = errors.New("student record is missing required fields")

// QueryObserver receives timings for database queries.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

const studentColumns = "id, name, email, phone, batch_type, payment_method, payment_status, transaction_id, referral_source, status, registration_date"

// StudentRepository persists student records in PostgreSQL or SQLite.
type StudentRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewStudentRepository constructs a StudentRepository. observer may be nil.
func NewStudentRepository(db *sqlx.DB, observer QueryObserver) *StudentRepository {
	return &StudentRepository{db: db, observer: observer}
}

func (r *StudentRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// Exists reports whether any student registered with the email.
func (r *StudentRepository) Exists(ctx context.Context, email string) (bool, error) {
	defer r.observe("students.exists", time.Now())
	query := r.db.Rebind("SELECT 1 FROM students WHERE email = ? LIMIT 1")
	var found int
	if err := r.db.GetContext(ctx, &found, query, NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

// Create inserts the student, assigning an id and registration date when absent.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if err := prepareStudent(student); err != nil {
		return err
	}
	defer r.observe("students.create", time.Now())
	const query = `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :name, :email, :phone, :batch_type, :payment_method, :payment_status, :transaction_id, :referral_source, :status, :registration_date)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CountByBatch returns the number of students registered for a batch.
func (r *StudentRepository) CountByBatch(ctx context.Context, batchType models.BatchType) (int, error) {
	defer r.observe("students.count_by_batch", time.Now())
	query := r.db.Rebind("SELECT COUNT(*) FROM students WHERE batch_type = ?")
	var count int
	if err := r.db.GetContext(ctx, &count, query, batchType); err != nil {
		return 0, fmt.Errorf("count batch students: %w", err)
	}
	return count, nil
}

// FindByID returns a student by id or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	defer r.observe("students.find", time.Now())
	query := r.db.Rebind("SELECT " + studentColumns + " FROM students WHERE id = ?")
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// List returns a page of students ordered by registration date together with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	defer r.observe("students.list", time.Now())
	filter = filter.Normalize()

	clause := ""
	var args []interface{}
	if filter.BatchType != "" {
		clause = " WHERE batch_type = ?"
		args = append(args, filter.BatchType)
	}

	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM students%s ORDER BY registration_date DESC LIMIT %d OFFSET %d",
		studentColumns, clause, filter.PageSize, (filter.Page-1)*filter.PageSize))
	students := make([]models.Student, 0, filter.PageSize)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM students"+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// NormalizeEmail lower-cases and trims an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareStudent(student *models.Student) error {
	if student == nil {
		return ErrMissingFields
	}
	if missing := student.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	student.Email = NormalizeEmail(student.Email)
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.RegistrationDate.IsZero() {
		student.RegistrationDate = time.Now().UTC()
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	return nil
}
