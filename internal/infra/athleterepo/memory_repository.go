package athleterepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/runplanner/internal/domain/auth"
)

// MemoryRepository provides an in-memory athlete store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	athletes   map[int64]auth.Athlete
	emailIndex map[string]int64
	seq        int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		athletes:   make(map[int64]auth.Athlete),
		emailIndex: make(map[string]int64),
	}
}

// Create stores the athlete record.
func (r *MemoryRepository) Create(_ context.Context, athlete auth.Athlete) (auth.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[athlete.Email]; exists {
		return auth.Athlete{}, auth.ErrEmailExists
	}
	r.seq++
	athlete.ID = r.seq
	athlete.CreatedAt = time.Now().UTC()
	r.athletes[athlete.ID] = athlete
	r.emailIndex[athlete.Email] = athlete.ID
	return athlete, nil
}

// GetByEmail returns an athlete by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.Athlete, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.athletes[id], true, nil
	}
	return auth.Athlete{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.Athlete, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	athlete, ok := r.athletes[id]
	return athlete, ok, nil
}

// UpdateProfile replaces the athlete's name and location.
func (r *MemoryRepository) UpdateProfile(_ context.Context, id int64, name, location string) (auth.Athlete, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	athlete, ok := r.athletes[id]
	if !ok {
		return auth.Athlete{}, false, nil
	}
	athlete.Name = name
	athlete.Location = location
	r.athletes[id] = athlete
	return athlete, true, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
