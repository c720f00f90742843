// Package postgres provides a Finder backed by a pgx connection pool.
// Domain types are mapped to tables at construction time; lookups select
// the row by primary key and hand it to rules as a map of column values.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xraph/doorman"
)

// Compile-time interface check.
var _ doorman.Finder = (*Finder)(nil)

// table describes where a domain type's rows live.
type table struct {
	name     string
	idColumn string
}

// Finder resolves domain objects from PostgreSQL tables.
type Finder struct {
	pool *pgxpool.Pool

	mu     sync.RWMutex
	tables map[string]table
}

// New creates a finder over the given pool.
func New(pool *pgxpool.Pool) *Finder {
	return &Finder{
		pool:   pool,
		tables: make(map[string]table),
	}
}

// RegisterTable maps a domain type to a table and its ID column.
// An empty idColumn defaults to "id".
func (f *Finder) RegisterTable(domainType, tableName, idColumn string) {
	if idColumn == "" {
		idColumn = "id"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[domainType] = table{name: tableName, idColumn: idColumn}
}

// Find loads one row by ID and returns it as a map of column name to value.
// A missing row wraps doorman.ErrObjectNotFound.
func (f *Finder) Find(ctx context.Context, domainType, objectID string) (any, error) {
	f.mu.RLock()
	t, ok := f.tables[domainType]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("finder/postgres: no table registered for %q", domainType)
	}

	// Identifiers come from RegisterTable at startup, never from request
	// input, so building the statement by name is safe.
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", t.name, t.idColumn)
	rows, err := f.pool.Query(ctx, query, objectID)
	if err != nil {
		return nil, fmt.Errorf("finder/postgres: query %s: %w", t.name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("finder/postgres: query %s: %w", t.name, err)
		}
		return nil, fmt.Errorf("%s %q: %w", domainType, objectID, doorman.ErrObjectNotFound)
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("finder/postgres: read %s row: %w", t.name, err)
	}
	object := make(map[string]any, len(values))
	for i, fd := range rows.FieldDescriptions() {
		object[fd.Name] = values[i]
	}
	return object, nil
}

// FindRow is like Find but collects the row into a value of type T, for
// callers that want a typed struct instead of a map.
func FindRow[T any](ctx context.Context, f *Finder, domainType, objectID string) (*T, error) {
	f.mu.RLock()
	t, ok := f.tables[domainType]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("finder/postgres: no table registered for %q", domainType)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", t.name, t.idColumn)
	rows, err := f.pool.Query(ctx, query, objectID)
	if err != nil {
		return nil, fmt.Errorf("finder/postgres: query %s: %w", t.name, err)
	}
	obj, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %q: %w", domainType, objectID, doorman.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("finder/postgres: scan %s row: %w", t.name, err)
	}
	return obj, nil
}
