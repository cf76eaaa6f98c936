package inject

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/dbops"
)

const trackingTableName = "_content_injections"

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Checksum returns the hex blake2b-256 digest of content.
func Checksum(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// EnsureTrackingTable creates the _content_injections table if it doesn't exist.
func EnsureTrackingTable(ctx context.Context, db *sql.DB, dialect string) error {
	var createSQL string

	switch dialect {
	case dburl.DialectPostgres:
		createSQL = `
			CREATE TABLE IF NOT EXISTS _content_injections (
				id          BIGSERIAL PRIMARY KEY,
				file_name   VARCHAR(255) NOT NULL,
				checksum    CHAR(64) NOT NULL,
				statements  INTEGER NOT NULL,
				successful  INTEGER NOT NULL,
				failed      INTEGER NOT NULL,
				injected_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`
	case dburl.DialectMySQL:
		createSQL = `
			CREATE TABLE IF NOT EXISTS _content_injections (
				id          BIGINT AUTO_INCREMENT PRIMARY KEY,
				file_name   VARCHAR(255) NOT NULL,
				checksum    CHAR(64) NOT NULL,
				statements  INT NOT NULL,
				successful  INT NOT NULL,
				failed      INT NOT NULL,
				injected_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`
	case dburl.DialectSQLite:
		createSQL = `
			CREATE TABLE IF NOT EXISTS _content_injections (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				file_name   TEXT NOT NULL,
				checksum    TEXT NOT NULL,
				statements  INTEGER NOT NULL,
				successful  INTEGER NOT NULL,
				failed      INTEGER NOT NULL,
				injected_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`
	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}

	_, err := db.ExecContext(ctx, createSQL)
	return err
}

// IsApplied reports whether a run with the given checksum is recorded.
func IsApplied(ctx context.Context, db *sql.DB, dialect, checksum string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE checksum = %s",
		trackingTableName, dbops.Placeholder(dialect, 1))

	var n int
	if err := db.QueryRowContext(ctx, query, checksum).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", trackingTableName, err)
	}
	return n > 0, nil
}

// RecordInjection inserts a row describing result into the tracking table.
// Pass the transaction that ran the script so the record commits with it.
func RecordInjection(ctx context.Context, db execer, dialect string, result *Result) error {
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (file_name, checksum, statements, successful, failed, injected_at) VALUES (%s)",
		trackingTableName, dbops.Placeholders(dialect, 6))

	var injectedAt any = time.Now()
	if dialect == dburl.DialectSQLite {
		injectedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err := db.ExecContext(ctx, insertSQL,
		result.Name, result.Checksum, result.TotalStatements, result.Successful, result.Failed, injectedAt)
	if err != nil {
		return fmt.Errorf("failed to record injection of %s: %w", result.Name, err)
	}
	return nil
}

// Injection is one row of the tracking table.
type Injection struct {
	FileName   string
	Checksum   string
	Statements int
	Successful int
	Failed     int
	InjectedAt string
}

// History returns the most recent injections, newest first.
func History(ctx context.Context, db *sql.DB, dialect string, limit int) ([]Injection, error) {
	query := fmt.Sprintf(
		"SELECT file_name, checksum, statements, successful, failed, injected_at FROM %s ORDER BY id DESC LIMIT %d",
		trackingTableName, limit)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", trackingTableName, err)
	}
	defer rows.Close()

	var history []Injection
	for rows.Next() {
		var inj Injection
		var injectedAt any
		if err := rows.Scan(&inj.FileName, &inj.Checksum, &inj.Statements, &inj.Successful, &inj.Failed, &injectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan injection: %w", err)
		}
		inj.InjectedAt = formatTimestamp(injectedAt)
		history = append(history, inj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating injections: %w", err)
	}
	return history, nil
}

func formatTimestamp(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
