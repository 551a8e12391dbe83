// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/lorekeeper/lorekeeper/internal/db"

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// The drivers register themselves on import.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/lorekeeper/lorekeeper/internal/model"
)

var (
	store Store
	//go:embed migrations
	embeddedMigrations embed.FS
	// Tests swap sqlOpenFunc out to make opening fail on demand.
	sqlOpenFunc = sql.Open
)

// InitDB initializes the database connection based on the provided type
// and DSN. It sets the package-level store and runs pending migrations.
func InitDB(dbType, dsn string) error {
	s, err := NewStoreFromDSN(dbType, dsn)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	store = s
	return nil
}

// IsInitialized tells whether InitDB has produced a usable store yet.
func IsInitialized() bool {
	return store != nil
}

// RunDBMaintenance performs engine-specific maintenance tasks for the
// given database DSN. For SQLite this runs PRAGMA optimize, VACUUM and
// a WAL checkpoint; for Postgres VACUUM ANALYZE; for MySQL OPTIMIZE
// TABLE across all tables.
func RunDBMaintenance(dbType, dsn string) error {
	driverName := dbType
	if dbType == "postgres" {
		driverName = "pgx"
	}
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open database for maintenance: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	// Bounded so maintenance cannot block forever.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch dbType {
	case "sqlite":
		return maintainSQLite(ctx, sqlDB)
	case "postgres":
		return maintainPostgres(ctx, sqlDB)
	case "mysql":
		return maintainMySQL(ctx, sqlDB)
	default:
		return fmt.Errorf("no maintenance routine for database type %q", dbType)
	}
}

// maintainSQLite vacuums, checkpoints the WAL and verifies integrity.
// PRAGMA optimize is best-effort since not every build supports it.
func maintainSQLite(ctx context.Context, sqlDB *sql.DB) error {
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		dbLogf("db: pragma optimize skipped: %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("vacuum sqlite: %w", err)
	}
	_, _ = sqlDB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")

	var verdict string
	if row := sqlDB.QueryRowContext(ctx, "PRAGMA integrity_check;"); row != nil {
		_ = row.Scan(&verdict)
		if verdict != "ok" {
			return fmt.Errorf("sqlite integrity check: %s", verdict)
		}
	}
	return nil
}

func maintainPostgres(ctx context.Context, sqlDB *sql.DB) error {
	if _, err := sqlDB.ExecContext(ctx, "VACUUM ANALYZE;"); err != nil {
		return fmt.Errorf("vacuum analyze postgres: %w", err)
	}
	return nil
}

// maintainMySQL optimizes every table. Per-table failures are logged and
// reported at the end so one bad table does not stop the rest.
func maintainMySQL(ctx context.Context, sqlDB *sql.DB) error {
	rows, err := sqlDB.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return fmt.Errorf("list mysql tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lastErr error
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return fmt.Errorf("scan mysql table name: %w", err)
		}
		if _, err := sqlDB.ExecContext(ctx, "OPTIMIZE TABLE "+table); err != nil {
			dbLogf("db: optimize table %s: %v", table, err)
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("optimize mysql tables: %w", lastErr)
	}
	return rows.Err()
}

// NewStoreFromDSN opens the database behind dsn, brings its schema up to
// date and wraps it in a Store backed by a long-lived *bun.DB. Callers
// above this point never see the raw *sql.DB.
func NewStoreFromDSN(dbType, dsn string) (Store, error) {
	switch dbType {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database type: '%s'", dbType)
	}

	// The pgx stdlib driver registers itself under "pgx".
	driverName := dbType
	if dbType == "postgres" {
		driverName = "pgx"
	}
	opened := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	maxOpen, idleSecs, lifetime := tunePool(sqlDB, dbType, dsn)
	dbLogf("db: %s pool ready in %s (max open=%d, idle=%ds, lifetime=%s)",
		driverName, time.Since(opened), maxOpen, idleSecs, lifetime)

	if err := RunMigrations(sqlDB, dbType); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return NewBunStore(createBunDB(sqlDB, dbType)), nil
}

// envInt reads a non-negative integer override from the environment,
// falling back to def when unset or malformed.
func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// tunePool applies connection pool limits. The defaults are conservative
// for small deployments; LOREKEEPER_DB_* variables override them for CI
// or larger installs. In-memory SQLite keeps one database per connection,
// so the pool collapses to a single connection there or schema changes
// would be invisible across the pool.
func tunePool(sqlDB *sql.DB, dbType, dsn string) (maxOpen, idleSecs int, lifetime time.Duration) {
	maxOpen = envInt("LOREKEEPER_DB_MAX_OPEN_CONNS", 25)
	maxIdle := envInt("LOREKEEPER_DB_MAX_IDLE_CONNS", 25)
	if dbType == "sqlite" && dsn == ":memory:" {
		maxOpen, maxIdle = 1, 1
	}
	lifetime = time.Duration(envInt("LOREKEEPER_DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second
	idleSecs = envInt("LOREKEEPER_DB_CONN_MAX_IDLE_SECONDS", 60)

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(time.Duration(idleSecs) * time.Second)
	return maxOpen, idleSecs, lifetime
}

// createBunDB wraps the raw connection in a *bun.DB with the dialect
// matching the engine, so dialect selection lives in exactly one place.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		// Callers validate dbType before opening; anything else gets the
		// SQLite dialect.
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// RunMigrations applies the pending schema migrations for one connection.
// Each migration runs in its own transaction and is recorded in
// schema_migrations, so reruns are cheap no-ops.
func RunMigrations(sqlDB *sql.DB, dbType string) error {
	start := time.Now()
	dir := "migrations/" + dbType

	entries, err := fs.ReadDir(embeddedMigrations, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			dbLogf("db: no embedded migrations for %s", dbType)
			return nil
		}
		return fmt.Errorf("read embedded migrations %s: %w", dir, err)
	}

	var scripts []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			scripts = append(scripts, e.Name())
		}
	}
	sort.Strings(scripts)

	if err := ensureSchemaMigrationsTable(sqlDB, dbType); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	applied, err := appliedVersions(sqlDB)
	if err != nil {
		return err
	}

	for _, fname := range scripts {
		version := strings.TrimSuffix(fname, ".up.sql")
		if _, done := applied[version]; done {
			continue
		}
		data, err := embeddedMigrations.ReadFile(path.Join(dir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if err := applyMigration(sqlDB, dbType, version, string(data)); err != nil {
			return err
		}
	}
	dbLogf("db: %s schema current after %s", dbType, time.Since(start))
	return nil
}

// appliedVersions reads the recorded migration versions into a set.
func appliedVersions(sqlDB *sql.DB) (map[string]struct{}, error) {
	rows, err := sqlDB.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[string]struct{})
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = struct{}{}
	}
	return applied, rows.Err()
}

// applyMigration executes one migration script and records its version
// inside a single transaction.
func applyMigration(sqlDB *sql.DB, dbType, version, script string) error {
	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", version, err)
	}
	record := "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"
	if dbType == "postgres" {
		record = "INSERT INTO schema_migrations(version, applied_at) VALUES($1, $2)"
	}
	if _, err := tx.Exec(record, version, time.Now()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

// ensureSchemaMigrationsTable creates schema_migrations when missing and
// backfills the applied_at column on tables created by older builds.
func ensureSchemaMigrationsTable(sqlDB *sql.DB, dbType string) error {
	// MySQL cannot index TEXT without a length, so the version column is
	// a bounded VARCHAR there.
	create := `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`
	if dbType == "mysql" {
		create = `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, applied_at TIMESTAMP)`
	}
	if _, err := sqlDB.Exec(create); err != nil {
		return err
	}

	hasCol, err := hasAppliedAtColumn(sqlDB, dbType)
	if err != nil {
		return err
	}
	if !hasCol {
		if _, err := sqlDB.Exec("ALTER TABLE schema_migrations ADD COLUMN applied_at TIMESTAMP"); err != nil {
			return fmt.Errorf("add applied_at to schema_migrations: %w", err)
		}
	}
	return nil
}

// hasAppliedAtColumn detects the applied_at column. SQLite exposes table
// metadata through PRAGMA, the other engines through information_schema.
func hasAppliedAtColumn(sqlDB *sql.DB, dbType string) (bool, error) {
	switch dbType {
	case "sqlite":
		rows, err := sqlDB.Query("PRAGMA table_info(schema_migrations)")
		if err != nil {
			return false, err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				cid, notnull, pk int
				name, typ        string
				dflt             sql.NullString
			)
			if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
				return false, err
			}
			if name == "applied_at" {
				return true, nil
			}
		}
		return false, rows.Err()
	case "postgres", "mysql":
		query := `SELECT column_name FROM information_schema.columns WHERE table_name='schema_migrations'`
		if dbType == "mysql" {
			query += ` AND table_schema=DATABASE()`
		}
		rows, err := sqlDB.Query(query)
		if err != nil {
			return false, err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return false, err
			}
			if name == "applied_at" {
				return true, nil
			}
		}
		return false, rows.Err()
	default:
		// Unknown engine; assume the table shape is fine.
		return true, nil
	}
}

// AddRecord adds a new community record to the database.
func AddRecord(record model.CommunityRecord) error {
	return store.AddRecord(record)
}

// GetRecord retrieves a single community record by ID, or nil when the
// record does not exist.
func GetRecord(id string) (*model.CommunityRecord, error) {
	return store.GetRecord(id)
}

// GetAllRecords retrieves all community records from the database.
func GetAllRecords() ([]model.CommunityRecord, error) {
	return store.GetAllRecords()
}

// UpdateRecord rewrites the stored fields of an existing record.
func UpdateRecord(record model.CommunityRecord) error {
	return store.UpdateRecord(record)
}

// DeleteRecord removes a community record and its sealed envelope.
func DeleteRecord(id string) error {
	return store.DeleteRecord(id)
}

// CountRecords returns the number of stored community records.
func CountRecords() (int, error) {
	return store.CountRecords()
}

// SaveSealedRecord stores a sealed envelope, replacing any previous one
// for the same record.
func SaveSealedRecord(sealed model.SealedRecord) error {
	return store.SaveSealedRecord(sealed)
}

// GetSealedRecord retrieves the sealed envelope for a record ID, or nil
// when none exists.
func GetSealedRecord(recordID string) (*model.SealedRecord, error) {
	return store.GetSealedRecord(recordID)
}

// GetAllSealedRecords retrieves all sealed envelopes, newest first.
func GetAllSealedRecords() ([]model.SealedRecord, error) {
	return store.GetAllSealedRecords()
}

// DeleteSealedRecord removes the sealed envelope for a record ID.
func DeleteSealedRecord(recordID string) error {
	return store.DeleteSealedRecord(recordID)
}

// CountSealedRecords returns the number of sealed envelopes.
func CountSealedRecords() (int, error) {
	return store.CountSealedRecords()
}

// LogAction appends an event to the audit trail.
func LogAction(action string, details string) error {
	return store.LogAction(action, details)
}

// GetAllAuditLogEntries returns the audit trail, newest entry first.
func GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return store.GetAllAuditLogEntries()
}

// ExportDataForBackup collects every table into one backup structure.
func ExportDataForBackup() (*model.BackupData, error) {
	return store.ExportDataForBackup()
}

// ImportDataFromBackup wipes the database and loads the backup in its place.
func ImportDataFromBackup(backup *model.BackupData) error {
	return store.ImportDataFromBackup(backup)
}

// IntegrateDataFromBackup merges the backup into the existing data without
// deleting anything that is already there.
func IntegrateDataFromBackup(backup *model.BackupData) error {
	return store.IntegrateDataFromBackup(backup)
}
