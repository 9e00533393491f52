package history

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

const defaultMaxPerUser = 500

// Memory is an in-memory implementation of Storage, suitable for embedding
// and tests. Each user's history is bounded: once the cap is reached, the
// oldest records fall off as new ones arrive.
type Memory struct {
	mu         sync.RWMutex
	records    map[string][]Record // userID -> records, append order
	maxPerUser int
}

// MemoryOption configures a Memory storage.
type MemoryOption func(*Memory)

// WithMaxPerUser caps how many records are kept per user. Values below one
// are ignored.
func WithMaxPerUser(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxPerUser = n
		}
	}
}

// NewMemory creates an in-memory history storage.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		records:    make(map[string][]Record),
		maxPerUser: defaultMaxPerUser,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record ID is required", ErrInvalidRecord)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.records[rec.UserID]
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			return nil
		}
	}
	records = append(records, rec)
	if len(records) > m.maxPerUser {
		records = records[len(records)-m.maxPerUser:]
	}
	m.records[rec.UserID] = records
	return nil
}

func (m *Memory) Get(ctx context.Context, userID, recordID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records[userID] {
		if rec.ID == recordID {
			// Copy so callers cannot mutate stored data.
			out := rec
			return &out, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *Memory) List(ctx context.Context, userID string, opts ListOptions) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []Record
	for _, rec := range m.records[userID] {
		if opts.matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	// Newest first; stable so same-instant records keep their insert order.
	slices.SortStableFunc(filtered, func(a, b Record) int {
		return b.DeliveredAt.Compare(a.DeliveredAt)
	})

	return paginate(filtered, opts.Limit, opts.Offset), nil
}

func (m *Memory) MarkRead(ctx context.Context, userID string, recordIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]struct{}, len(recordIDs))
	for _, id := range recordIDs {
		ids[id] = struct{}{}
	}

	records := m.records[userID]
	for i := range records {
		if _, ok := ids[records[i].ID]; ok {
			records[i].MarkAsRead()
		}
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, userID string, recordIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]struct{}, len(recordIDs))
	for _, id := range recordIDs {
		ids[id] = struct{}{}
	}

	records := m.records[userID]
	kept := records[:0]
	for _, rec := range records {
		if _, ok := ids[rec.ID]; !ok {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		delete(m.records, userID)
		return nil
	}
	m.records[userID] = kept
	return nil
}

func (m *Memory) CountUnread(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records[userID] {
		if !rec.Read {
			count++
		}
	}
	return count, nil
}

func (m *Memory) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for userID, records := range m.records {
		kept := records[:0]
		for _, rec := range records {
			if rec.DeliveredAt.Before(cutoff) {
				purged++
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) == 0 {
			delete(m.records, userID)
			continue
		}
		m.records[userID] = kept
	}
	return purged, nil
}
