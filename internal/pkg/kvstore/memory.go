package kvstore

import (
	"bytes"
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a Store kept in process memory. It does not share state between replicas.
type Memory struct {
	mu         sync.Mutex
	items      map[string]memoryEntry
	maxEntries int
	clock      clock.Clocker
	size       *atomic.Int64
}

// NewMemory returns an empty Memory store. maxEntries <= 0 means unbounded;
// otherwise inserting a new key into a full store evicts the entry closest to
// its deadline.
func NewMemory(clk clock.Clocker, maxEntries int) *Memory {
	return &Memory{
		items:      make(map[string]memoryEntry),
		maxEntries: maxEntries,
		clock:      clk,
		size:       atomic.NewInt64(0),
	}
}

// Len returns the number of stored entries, expired ones included until swept.
func (m *Memory) Len() int64 {
	return m.size.Load()
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || !m.clock.Now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}

	return bytes.Clone(e.value), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.sweepLocked()
		if len(m.items) >= m.maxEntries {
			m.evictEarliestLocked()
		}
	}

	m.items[key] = memoryEntry{value: bytes.Clone(value), expiresAt: expiresAt}
	m.size.Store(int64(len(m.items)))

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.size.Store(int64(len(m.items)))
	m.mu.Unlock()

	return nil
}

func (m *Memory) CompareAndDelete(_ context.Context, key string, expected []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || !m.clock.Now().Before(e.expiresAt) || !bytes.Equal(e.value, expected) {
		return false, nil
	}

	delete(m.items, key)
	m.size.Store(int64(len(m.items)))

	return true, nil
}

func (m *Memory) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sweepLocked(), nil
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.mu.Lock()
	clear(m.items)
	m.size.Store(0)
	m.mu.Unlock()

	return nil
}

func (m *Memory) sweepLocked() int {
	now := m.clock.Now()
	removed := 0
	for k, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, k)
			removed++
		}
	}
	m.size.Store(int64(len(m.items)))

	return removed
}

func (m *Memory) evictEarliestLocked() {
	var (
		victim   string
		earliest time.Time
		found    bool
	)
	for k, e := range m.items {
		if !found || e.expiresAt.Before(earliest) {
			victim, earliest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(m.items, victim)
	}
}
