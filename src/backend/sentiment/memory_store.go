package sentiment

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryHistoryStore keeps session histories in process memory
type MemoryHistoryStore struct {
	mu         sync.RWMutex
	sessions   map[string][]Entry
	maxEntries int
	clock      clockwork.Clock
}

// NewMemoryHistoryStore creates an in-memory store that keeps at most
// maxEntries per session, dropping the oldest first
func NewMemoryHistoryStore(maxEntries int, clock clockwork.Clock) *MemoryHistoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntriesPerSession
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryHistoryStore{
		sessions:   make(map[string][]Entry),
		maxEntries: maxEntries,
		clock:      clock,
	}
}

func (m *MemoryHistoryStore) Append(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.clock.Now()
	}
	entry.Text = truncateText(entry.Text)

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := append(m.sessions[entry.SessionID], entry)
	if len(entries) > m.maxEntries {
		entries = append([]Entry(nil), entries[len(entries)-m.maxEntries:]...)
	}
	m.sessions[entry.SessionID] = entries
	return nil
}

func (m *MemoryHistoryStore) List(ctx context.Context, sessionID string, limit, offset int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.sessions[sessionID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []Entry{}, nil
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]Entry, end-offset)
	copy(out, entries[offset:end])
	return out, nil
}

func (m *MemoryHistoryStore) Count(ctx context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[sessionID]), nil
}

func (m *MemoryHistoryStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryHistoryStore) CleanupOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := m.clock.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, entries := range m.sessions {
		kept := entries[:0]
		for _, e := range entries {
			if e.CreatedAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(m.sessions, id)
		} else {
			m.sessions[id] = kept
		}
	}
	return deleted, nil
}

func (m *MemoryHistoryStore) Close() error {
	return nil
}
