package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// MemoryStudentRepository keeps student records in process memory.
type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students []models.Student
}

// NewMemoryStudentRepository constructs an empty in-memory store.
func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{}
}

// Exists reports whether any student registered with the email.
func (r *MemoryStudentRepository) Exists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = NormalizeEmail(email)
	for _, s := range r.students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Create appends the student.
func (r *MemoryStudentRepository) Create(_ context.Context, student *models.Student) error {
	if err := prepareStudent(student); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = append(r.students, *student)
	return nil
}

// CountByBatch returns the number of students registered for a batch.
func (r *MemoryStudentRepository) CountByBatch(_ context.Context, batchType models.BatchType) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return countByBatch(r.students, batchType), nil
}

// FindByID returns a student by id or sql.ErrNoRows.
func (r *MemoryStudentRepository) FindByID(_ context.Context, id string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return findByID(r.students, id)
}

// List returns a page of students, newest first.
func (r *MemoryStudentRepository) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	r.mu.RLock()
	snapshot := make([]models.Student, len(r.students))
	copy(snapshot, r.students)
	r.mu.RUnlock()
	students, total := page(snapshot, filter)
	return students, total, nil
}

func countByBatch(students []models.Student, batchType models.BatchType) int {
	count := 0
	for _, s := range students {
		if s.BatchType == batchType {
			count++
		}
	}
	return count
}

func findByID(students []models.Student, id string) (*models.Student, error) {
	for i := range students {
		if students[i].ID == id {
			found := students[i]
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func page(students []models.Student, filter models.StudentFilter) ([]models.Student, int) {
	filter = filter.Normalize()
	matched := make([]models.Student, 0, len(students))
	for _, s := range students {
		if filter.BatchType == "" || s.BatchType == filter.BatchType {
			matched = append(matched, s)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RegistrationDate.After(matched[j].RegistrationDate)
	})
	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []models.Student{}, total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total
}
