package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-process Repository for dev and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
	now     func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory directory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(_ context.Context, acc Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[acc.Email]; taken {
		return Account{}, ErrEmailTaken
	}
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.Role == "" {
		acc.Role = RoleVolunteer
	}
	now := r.now()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now
	r.byID[acc.ID] = acc
	r.byEmail[acc.Email] = acc.ID
	return acc, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return Account{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) GetMany(_ context.Context, ids []string) (map[string]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Account, len(ids))
	for _, id := range ids {
		if acc, ok := r.byID[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListByRole(_ context.Context, role Role) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Account{}
	for _, acc := range r.byID {
		if acc.Role == role {
			out = append(out, acc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) CountByRole(_ context.Context, role Role, activeOnly bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, acc := range r.byID {
		if acc.Role == role && (!activeOnly || acc.Active) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) ToggleActive(_ context.Context, id string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok || acc.Role != RoleVolunteer {
		return Account{}, ErrNotFound
	}
	acc.Active = !acc.Active
	acc.UpdatedAt = r.now()
	r.byID[id] = acc
	return acc, nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	acc.PasswordHash = hash
	acc.UpdatedAt = r.now()
	r.byID[id] = acc
	return nil
}
