package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/edubatch-api/internal/models"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

// ErrWizardNotFound is returned when a session id is unknown or expired.
var ErrWizardNotFound = errors.New("wizard session not found")

const wizardKeyPrefix = "wizard:"

// KeyValueStore is the subset of CacheRepository used for wizard sessions.
type KeyValueStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisWizardRepository keeps wizard sessions as JSON values with a TTL.
type RedisWizardRepository struct {
	store KeyValueStore
	ttl   time.Duration
}

// NewRedisWizardRepository constructs the repository.
func NewRedisWizardRepository(store KeyValueStore, ttl time.Duration) *RedisWizardRepository {
	return &RedisWizardRepository{store: store, ttl: ttl}
}

// Save stores the wizard and refreshes its expiry.
func (r *RedisWizardRepository) Save(ctx context.Context, wizard *models.Wizard) error {
	return r.store.Set(ctx, wizardKeyPrefix+wizard.ID, wizard, r.ttl)
}

// Get loads a wizard or returns ErrWizardNotFound.
func (r *RedisWizardRepository) Get(ctx context.Context, id string) (*models.Wizard, error) {
	var wizard models.Wizard
	if err := r.store.Get(ctx, wizardKeyPrefix+id, &wizard); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, ErrWizardNotFound
		}
		return nil, err
	}
	return &wizard, nil
}

// Delete discards a wizard.
func (r *RedisWizardRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, wizardKeyPrefix+id)
}

type wizardEntry struct {
	wizard    models.Wizard
	expiresAt time.Time
}

// MemoryWizardRepository keeps wizard sessions in process memory.
type MemoryWizardRepository struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]wizardEntry
}

// NewMemoryWizardRepository constructs the repository. A zero ttl keeps sessions forever.
func NewMemoryWizardRepository(ttl time.Duration) *MemoryWizardRepository {
	return &MemoryWizardRepository{ttl: ttl, now: time.Now, entries: make(map[string]wizardEntry)}
}

// Save stores a copy of the wizard and refreshes its expiry.
func (r *MemoryWizardRepository) Save(_ context.Context, wizard *models.Wizard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := wizardEntry{wizard: *wizard}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.entries[wizard.ID] = entry
	r.sweepLocked()
	return nil
}

// Get returns a copy of the wizard or ErrWizardNotFound.
func (r *MemoryWizardRepository) Get(_ context.Context, id string) (*models.Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || r.expired(entry) {
		delete(r.entries, id)
		return nil, ErrWizardNotFound
	}
	wizard := entry.wizard
	return &wizard, nil
}

// Delete discards a wizard.
func (r *MemoryWizardRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *MemoryWizardRepository) expired(entry wizardEntry) bool {
	return !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt)
}

func (r *MemoryWizardRepository) sweepLocked() {
	for id, entry := range r.entries {
		if r.expired(entry) {
			delete(r.entries, id)
		}
	}
}
