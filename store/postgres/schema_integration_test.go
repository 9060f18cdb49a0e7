//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres spins up a throwaway Postgres container and returns a pgx
// connection to it.
func startPostgres(t *testing.T) *pgx.Conn {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("provost"),
		tcpostgres.WithUsername("provost"),
		tcpostgres.WithPassword("provost"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(shutdownCtx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn
}

func applySchema(t *testing.T, conn *pgx.Conn) {
	t.Helper()
	ctx := context.Background()
	for _, ddl := range schemaDDL {
		if _, err := conn.Exec(ctx, ddl); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, ddl)
		}
	}
}

func TestSchemaApplies(t *testing.T) {
	conn := startPostgres(t)
	applySchema(t, conn)

	// Re-applying must be idempotent.
	applySchema(t, conn)

	// The sequence seed row exists exactly once.
	var n int
	if err := conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM provost_sequence`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 sequence row, got %d", n)
	}
}

func TestGrantUniqueness(t *testing.T) {
	conn := startPostgres(t)
	applySchema(t, conn)
	ctx := context.Background()

	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_op_sets (id, name) VALUES (1, 'local-admin')`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_targets (id, target_type, entity_id) VALUES (2, 'disk', 700)`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_grants (entity_id, set_id, target_id) VALUES (10, 1, 2)`); err != nil {
		t.Fatal(err)
	}

	// The composite primary key rejects a duplicate grant row.
	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_grants (entity_id, set_id, target_id) VALUES (10, 1, 2)`); err == nil {
		t.Fatal("expected unique violation on duplicate grant")
	}
}

func TestOrphanQuery(t *testing.T) {
	conn := startPostgres(t)
	applySchema(t, conn)
	ctx := context.Background()

	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_op_sets (id, name) VALUES (1, 'ops')`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_targets (id, target_type) VALUES (2, 'global_host')`); err != nil {
		t.Fatal(err)
	}
	// One live grant and one pointing at a set that does not exist.
	if _, err := conn.Exec(ctx,
		`INSERT INTO provost_grants (entity_id, set_id, target_id) VALUES (10, 1, 2), (11, 999, 2)`); err != nil {
		t.Fatal(err)
	}

	const orphanWhere = `set_id NOT IN (SELECT id FROM provost_op_sets)
		OR target_id NOT IN (SELECT id FROM provost_targets)`

	var n int
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM provost_grants WHERE `+orphanWhere).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 orphan, got %d", n)
	}

	tag, err := conn.Exec(ctx, `DELETE FROM provost_grants WHERE `+orphanWhere)
	if err != nil {
		t.Fatal(err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("expected 1 pruned, got %d", tag.RowsAffected())
	}
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM provost_grants`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("live grant should survive prune, got %d rows", n)
	}
}
