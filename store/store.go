// Package store defines the aggregate persistence interface for Doorman.
// The decision audit log is the only persisted subsystem; its interface
// lives in the decisionlog package and the composite Store composes it with
// lifecycle operations. Backends: Postgres, SQLite, MongoDB, and Memory.
package store

import (
	"context"

	"github.com/xraph/doorman/decisionlog"
)

// Store is the aggregate persistence interface. A single backend
// (postgres, sqlite, mongo, memory) implements all of it.
type Store interface {
	decisionlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
