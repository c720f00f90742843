package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Doorman store (PostgreSQL).
var Migrations = migrate.NewGroup("doorman")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_decision_logs",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS doorman_decision_logs (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    app_id          TEXT NOT NULL DEFAULT '',
    identity_kind   TEXT NOT NULL,
    identity_id     TEXT NOT NULL,
    resource        TEXT NOT NULL,
    action          TEXT NOT NULL,
    allowed         BOOLEAN NOT NULL DEFAULT FALSE,
    reason          TEXT NOT NULL DEFAULT '',
    cause           TEXT NOT NULL DEFAULT '',
    matched_rules   TEXT NOT NULL DEFAULT '',
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    request_ip      TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_doorman_dlogs_tenant ON doorman_decision_logs (tenant_id);
CREATE INDEX IF NOT EXISTS idx_doorman_dlogs_identity ON doorman_decision_logs (tenant_id, identity_kind, identity_id);
CREATE INDEX IF NOT EXISTS idx_doorman_dlogs_resource ON doorman_decision_logs (tenant_id, resource, action);
CREATE INDEX IF NOT EXISTS idx_doorman_dlogs_allowed ON doorman_decision_logs (tenant_id, allowed);
CREATE INDEX IF NOT EXISTS idx_doorman_dlogs_created ON doorman_decision_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS doorman_decision_logs`)
				return err
			},
		},
	)
}
