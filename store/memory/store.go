// Package memory provides an in-memory implementation of the Doorman
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xraph/doorman/decisionlog"
	"github.com/xraph/doorman/id"
)

// Compile-time interface check.
var _ decisionlog.Store = (*Store)(nil)

// Store is a thread-safe in-memory store for decision log entries.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

var errNotFound = decisionlog.ErrEntryNotFound

func (s *Store) CreateEntry(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID.String()] = copyEntry(e)
	return nil
}

func (s *Store) GetEntry(_ context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[logID.String()]
	if !ok {
		return nil, fmt.Errorf("decision log %s: %w", logID, errNotFound)
	}
	return copyEntry(e), nil
}

func (s *Store) ListEntries(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !matches(e, filter) {
			continue
		}
		result = append(result, copyEntry(e))
	}
	// Newest first, matching the SQL backends.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return applyPagination(result, filter), nil
}

func (s *Store) CountEntries(_ context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, e := range s.entries {
		if matches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) PurgeEntries(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.entries {
		if e.CreatedAt.Before(before) {
			delete(s.entries, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteEntriesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if e.TenantID == tenantID {
			delete(s.entries, k)
		}
	}
	return nil
}

func matches(e *decisionlog.Entry, filter *decisionlog.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.TenantID != "" && e.TenantID != filter.TenantID {
		return false
	}
	if filter.IdentityKind != "" && e.IdentityKind != filter.IdentityKind {
		return false
	}
	if filter.IdentityID != "" && e.IdentityID != filter.IdentityID {
		return false
	}
	if filter.Resource != "" && e.Resource != filter.Resource {
		return false
	}
	if filter.Action != "" && e.Action != filter.Action {
		return false
	}
	if filter.Reason != "" && e.Reason != filter.Reason {
		return false
	}
	if filter.Allowed != nil && e.Allowed != *filter.Allowed {
		return false
	}
	if filter.After != nil && e.CreatedAt.Before(*filter.After) {
		return false
	}
	if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
		return false
	}
	return true
}

func applyPagination(items []*decisionlog.Entry, f *decisionlog.QueryFilter) []*decisionlog.Entry {
	if f == nil {
		return items
	}
	if f.Offset > 0 {
		if f.Offset >= len(items) {
			return nil
		}
		items = items[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(items) {
		items = items[:f.Limit]
	}
	return items
}

func copyEntry(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
