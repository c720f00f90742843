package decisionlog

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/doorman/id"
)

// ErrEntryNotFound is returned when a decision log entry cannot be found.
var ErrEntryNotFound = errors.New("decisionlog: entry not found")

// Store defines persistence operations for decision audit logs.
type Store interface {
	// CreateEntry persists a new decision log entry.
	CreateEntry(ctx context.Context, e *Entry) error

	// GetEntry retrieves a decision log entry by ID.
	GetEntry(ctx context.Context, logID id.DecisionLogID) (*Entry, error)

	// ListEntries returns decision log entries matching the filter.
	ListEntries(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountEntries returns the number of entries matching the filter.
	CountEntries(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeEntries removes decision log entries older than the given time.
	PurgeEntries(ctx context.Context, before time.Time) (int64, error)

	// DeleteEntriesByTenant removes all decision logs for a tenant.
	DeleteEntriesByTenant(ctx context.Context, tenantID string) error
}
