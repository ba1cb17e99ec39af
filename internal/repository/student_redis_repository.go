package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// RedisStudentRepository stores every student as one serialized list under
// a single key. Writes are read-modify-write without a transaction, so
// concurrent registrations can overwrite each other.
type RedisStudentRepository struct {
	client *redis.Client
	key    string
}

// NewRedisStudentRepository constructs the repository for the given key.
func NewRedisStudentRepository(client *redis.Client, key string) *RedisStudentRepository {
	if key == "" {
		key = "demo_students"
	}
	return &RedisStudentRepository{client: client, key: key}
}

func (r *RedisStudentRepository) load(ctx context.Context) ([]models.Student, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Student{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var students []models.Student
	if err := json.Unmarshal(raw, &students); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return students, nil
}

func (r *RedisStudentRepository) save(ctx context.Context, students []models.Student) error {
	payload, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Exists reports whether any student registered with the email.
func (r *RedisStudentRepository) Exists(ctx context.Context, email string) (bool, error) {
	students, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	email = NormalizeEmail(email)
	for _, s := range students {
		if NormalizeEmail(s.Email) == email {
			return true, nil
		}
	}
	return false, nil
}

// Create appends the student to the stored list.
func (r *RedisStudentRepository) Create(ctx context.Context, student *models.Student) error {
	if err := prepareStudent(student); err != nil {
		return err
	}
	students, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.save(ctx, append(students, *student))
}

// CountByBatch returns the number of students registered for a batch.
func (r *RedisStudentRepository) CountByBatch(ctx context.Context, batchType models.BatchType) (int, error) {
	students, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return countByBatch(students, batchType), nil
}

// FindByID returns a student by id or sql.ErrNoRows.
func (r *RedisStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	students, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return findByID(students, id)
}

// List returns a page of students, newest first.
func (r *RedisStudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	students, err := r.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	result, total := page(students, filter)
	return result, total, nil
}
