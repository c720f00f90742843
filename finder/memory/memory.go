// Package memory provides an in-memory Finder keyed by domain type and
// object ID. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/doorman"
)

// Compile-time interface check.
var _ doorman.Finder = (*Finder)(nil)

// Finder is a thread-safe in-memory object index.
type Finder struct {
	mu      sync.RWMutex
	objects map[string]map[string]any // domainType -> objectID -> object
}

// New creates an empty in-memory finder.
func New() *Finder {
	return &Finder{objects: make(map[string]map[string]any)}
}

// Seed stores an object under its domain type and ID.
func (f *Finder) Seed(domainType, objectID string, object any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects[domainType] == nil {
		f.objects[domainType] = make(map[string]any)
	}
	f.objects[domainType][objectID] = object
}

// Find returns the seeded object, or an error wrapping
// doorman.ErrObjectNotFound when absent.
func (f *Finder) Find(_ context.Context, domainType, objectID string) (any, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	obj, ok := f.objects[domainType][objectID]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", domainType, objectID, doorman.ErrObjectNotFound)
	}
	return obj, nil
}
