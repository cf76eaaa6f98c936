// Package backup copies the content database aside before an injection run
// and optionally ships the copy to S3.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
)

// ErrUnsupportedDialect is returned for databases that cannot be copied to a
// local file.
var ErrUnsupportedDialect = errors.New("backups are only supported for sqlite databases")

// Create writes a backup of db to dest.
func Create(ctx context.Context, db *sql.DB, dialect, dest string) error {
	if dialect != dburl.DialectSQLite {
		return fmt.Errorf("%w (got %s)", ErrUnsupportedDialect, dialect)
	}
	return SQLite(ctx, db, dest)
}

// SQLite writes a consistent copy of the database to dest with VACUUM INTO.
// An existing file at dest is replaced.
func SQLite(ctx context.Context, db *sql.DB, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove old backup: %w", err)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("failed to back up database to %s: %w", dest, err)
	}
	return nil
}
