package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xraph/doorman"
)

func startPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("doorman_test"),
		tcpostgres.WithUsername("doorman"),
		tcpostgres.WithPassword("doorman"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestFinderIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool := startPool(t)

	_, err := pool.Exec(ctx, `
		CREATE TABLE projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL
		)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO projects (id, name, owner_id) VALUES ($1, $2, $3)`,
		"p1", "demo", "alice")
	if err != nil {
		t.Fatalf("insert row: %v", err)
	}

	f := New(pool)
	f.RegisterTable("project", "projects", "")

	obj, err := f.Find(ctx, "project", "p1")
	if err != nil {
		t.Fatal(err)
	}
	row, ok := obj.(map[string]any)
	if !ok {
		t.Fatalf("expected map row, got %T", obj)
	}
	if row["name"] != "demo" || row["owner_id"] != "alice" {
		t.Fatalf("unexpected row: %+v", row)
	}

	_, err = f.Find(ctx, "project", "missing")
	if !errors.Is(err, doorman.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}

	if _, err := f.Find(ctx, "unregistered", "p1"); err == nil {
		t.Fatal("expected error for unregistered domain type")
	}

	type project struct {
		ID      string `db:"id"`
		Name    string `db:"name"`
		OwnerID string `db:"owner_id"`
	}
	p, err := FindRow[project](ctx, f, "project", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if p.OwnerID != "alice" {
		t.Fatalf("unexpected owner: %q", p.OwnerID)
	}

	if _, err := FindRow[project](ctx, f, "project", "missing"); !errors.Is(err, doorman.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
