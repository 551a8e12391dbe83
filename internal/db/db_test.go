package db

import (
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	if err := InitDB("sqlite", dsn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return dsn
}

// openForInspection hands back a plain handle on the same shared in-memory
// database the store uses, for schema-level assertions.
func openForInspection(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open inspection handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestMigrationsCreateSchema(t *testing.T) {
	sqlDB := openForInspection(t, newTestDB(t))

	for _, table := range []string{"schema_migrations", "records", "sealed_records", "audit_log"} {
		var name string
		err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing after migrations: %v", table, err)
		}
	}

	var applied int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count recorded versions: %v", err)
	}
	if applied == 0 {
		t.Fatal("no migration versions were recorded")
	}
}

func TestMigrationsRecordAppliedAt(t *testing.T) {
	sqlDB := openForInspection(t, newTestDB(t))

	// Selecting the column fails outright if the backfill never ran.
	var ts sql.NullString
	if err := sqlDB.QueryRow("SELECT applied_at FROM schema_migrations LIMIT 1").Scan(&ts); err != nil {
		t.Fatalf("applied_at not queryable: %v", err)
	}
	if !ts.Valid || ts.String == "" {
		t.Fatalf("applied_at not populated: %+v", ts)
	}
}

func TestMigrationsRerunIsNoOp(t *testing.T) {
	sqlDB := openForInspection(t, newTestDB(t))

	if err := RunMigrations(sqlDB, "sqlite"); err != nil {
		t.Fatalf("second run errored: %v", err)
	}

	var applied int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count recorded versions: %v", err)
	}
	if applied != 3 {
		t.Fatalf("version rows = %d after rerun, want 3", applied)
	}
}

func TestNewStoreFromDSNRejectsUnknownEngine(t *testing.T) {
	_, err := NewStoreFromDSN("oracle", "whatever")
	if err == nil || !strings.Contains(err.Error(), "unsupported database type") {
		t.Fatalf("want unsupported-type error, got %v", err)
	}
}

func TestIsInitialized(t *testing.T) {
	saved := store
	t.Cleanup(func() { store = saved })

	store = nil
	if IsInitialized() {
		t.Fatal("nil store reported as initialized")
	}
	newTestDB(t)
	if !IsInitialized() {
		t.Fatal("store not visible after InitDB")
	}
}

func TestRunDBMaintenanceSqlite(t *testing.T) {
	// Maintenance opens its own connection, so the database must be
	// file-backed to outlive the store's pool.
	path := t.TempDir() + "/maint.db"
	if err := InitDB("sqlite", path); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := RunDBMaintenance("sqlite", path); err != nil {
		t.Fatalf("maintenance errored: %v", err)
	}
}

func TestRunDBMaintenanceUnknownEngine(t *testing.T) {
	if err := RunDBMaintenance("oracle", "whatever"); err == nil {
		t.Fatal("expected an error for an engine without a maintenance routine")
	}
}
