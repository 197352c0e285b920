package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps the ledger in process. The check for an open record
// and the insert happen under one lock, so the one-active-session invariant
// holds for concurrent callers.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
	active  map[string]string // user id -> open record id
	now     func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory ledger.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]Record),
		active:  make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Insert(_ context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, open := r.active[rec.UserID]; open {
		return Record{}, ErrSessionAlreadyActive
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := r.now()
	if rec.CheckIn.IsZero() {
		rec.CheckIn = now
	}
	rec.CheckOut, rec.LocationOut, rec.Duration = nil, nil, nil
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.records[rec.ID] = rec
	r.active[rec.UserID] = rec.ID
	return clone(rec), nil
}

func (r *MemoryRepository) Active(_ context.Context, userID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.active[userID]
	if !ok {
		return nil, nil
	}
	rec := clone(r.records[id])
	return &rec, nil
}

func (r *MemoryRepository) GetForOwner(_ context.Context, id, userID string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	return clone(rec), nil
}

func (r *MemoryRepository) Close(_ context.Context, id, userID string, at time.Time, loc Location, minutes int) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	if rec.CheckOut != nil {
		return Record{}, ErrSessionAlreadyClosed
	}
	out := at
	locOut := loc
	d := minutes
	rec.CheckOut, rec.LocationOut, rec.Duration = &out, &locOut, &d
	rec.UpdatedAt = r.now()
	r.records[id] = rec
	delete(r.active, userID)
	return clone(rec), nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]Record, error) {
	r.mu.RLock()
	res := []Record{}
	for _, rec := range r.records {
		if f.UserID != "" && rec.UserID != f.UserID {
			continue
		}
		if !f.Window.Contains(rec.CheckIn) {
			continue
		}
		res = append(res, clone(rec))
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].CheckIn.Equal(res[j].CheckIn) {
			return res[i].ID < res[j].ID
		}
		return res[i].CheckIn.After(res[j].CheckIn)
	})
	if f.Offset > 0 {
		if f.Offset >= len(res) {
			return []Record{}, nil
		}
		res = res[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(res) {
		res = res[:f.Limit]
	}
	return res, nil
}

func (r *MemoryRepository) Count(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if since.IsZero() {
		return len(r.records), nil
	}
	n := 0
	for _, rec := range r.records {
		if !rec.CheckIn.Before(since) {
			n++
		}
	}
	return n, nil
}

// clone detaches the pointer fields so callers cannot mutate stored state.
func clone(rec Record) Record {
	if rec.CheckOut != nil {
		t := *rec.CheckOut
		rec.CheckOut = &t
	}
	if rec.LocationOut != nil {
		l := *rec.LocationOut
		rec.LocationOut = &l
	}
	if rec.Duration != nil {
		d := *rec.Duration
		rec.Duration = &d
	}
	return rec
}
