package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Registry.  Entries past their expiry are ignored
// by lookups and dropped by Sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Blacklist(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[token]; ok && cur.After(expiresAt) {
		return nil
	}
	m.entries[token] = expiresAt
	return nil
}

func (m *Memory) IsBlacklisted(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	exp, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return m.now().Before(exp), nil
}

// Sweep removes every entry whose expiry is not after now and returns how
// many were removed.
func (m *Memory) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for tok, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, tok)
			n++
		}
	}
	return n
}

// Len is the number of retained entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
