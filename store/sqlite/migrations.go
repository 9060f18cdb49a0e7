package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the provost store (SQLite).
var Migrations = migrate.NewGroup("provost")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_op_codes",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_op_codes (
    code            INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',

    UNIQUE(name)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_op_codes`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_op_sets",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_op_sets (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,

    UNIQUE(name)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_op_sets`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_operations",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_operations (
    id              INTEGER PRIMARY KEY,
    set_id          INTEGER NOT NULL REFERENCES provost_op_sets(id),
    code            INTEGER NOT NULL,

    UNIQUE(set_id, code)
);

CREATE INDEX IF NOT EXISTS idx_provost_operations_set ON provost_operations (set_id);
CREATE INDEX IF NOT EXISTS idx_provost_operations_code ON provost_operations (code);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_operations`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_operation_attrs",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_operation_attrs (
    op_id           INTEGER NOT NULL REFERENCES provost_operations(id),
    attr            TEXT NOT NULL,

    PRIMARY KEY (op_id, attr)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_operation_attrs`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_targets",
			Version: "20250101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_targets (
    id              INTEGER PRIMARY KEY,
    target_type     TEXT NOT NULL,
    entity_id       INTEGER,
    has_attr        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_provost_targets_entity ON provost_targets (target_type, entity_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_targets`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_target_attrs",
			Version: "20250101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_target_attrs (
    target_id       INTEGER NOT NULL REFERENCES provost_targets(id),
    attr            TEXT NOT NULL,

    PRIMARY KEY (target_id, attr)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_target_attrs`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_grants",
			Version: "20250101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_grants (
    entity_id       INTEGER NOT NULL,
    set_id          INTEGER NOT NULL,
    target_id       INTEGER NOT NULL,

    PRIMARY KEY (entity_id, set_id, target_id)
);

CREATE INDEX IF NOT EXISTS idx_provost_grants_entity ON provost_grants (entity_id);
CREATE INDEX IF NOT EXISTS idx_provost_grants_target ON provost_grants (target_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_grants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_sequence",
			Version: "20250101000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provost_sequence (
    id              INTEGER NOT NULL
);

INSERT INTO provost_sequence (id)
SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM provost_sequence);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provost_sequence`)
				return err
			},
		},
	)
}
