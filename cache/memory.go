// Package cache provides caching implementations for Doorman decisions.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/doorman"
)

// Compile-time interface check.
var _ doorman.Cache = (*Memory)(nil)

// Memory is an in-memory LRU-like cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	decision  *doorman.Decision
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a cached decision.
func (m *Memory) Get(_ context.Context, tenantID string, ec *doorman.ExecContext, action string) (*doorman.Decision, bool) {
	key := cacheKey(tenantID, ec, action)
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.decision, true
}

// Set stores a decision in the cache.
func (m *Memory) Set(_ context.Context, tenantID string, ec *doorman.ExecContext, action string, decision *doorman.Decision) {
	key := cacheKey(tenantID, ec, action)
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			// Evict one arbitrary entry.
			m.evictOne()
		}
	}

	m.entries[key] = &entry{
		decision:  decision,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// InvalidateTenant removes all cached decisions for a tenant.
func (m *Memory) InvalidateTenant(_ context.Context, tenantID string) {
	prefix := tenantID + ":"
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
}

// InvalidateIdentity removes a tenant's cached decisions for one identity.
func (m *Memory) InvalidateIdentity(_ context.Context, tenantID string, kind doorman.IdentityKind, identityID string) {
	prefix := fmt.Sprintf("%s:%s:%s:", tenantID, kind, identityID)
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
}

func cacheKey(tenantID string, ec *doorman.ExecContext, action string) string {
	identity := ec.Identity()
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		tenantID,
		identity.Kind,
		identity.ID,
		ec.Resource(),
		action,
	)
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
