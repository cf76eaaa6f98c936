// Package inject executes SQL content scripts against a database one
// statement at a time.
//
// A rejected statement is recorded and execution moves on to the next one;
// all accepted statements of a script are committed together at the end.
package inject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/logging"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/sqlsplit"
)

// ErrRead is returned when a script file cannot be read. Nothing has been
// executed when it is returned.
var ErrRead = errors.New("failed to read SQL file")

// ErrTransactionControl is recorded for BEGIN, COMMIT, ROLLBACK and similar
// statements. They are not executed: each script runs in one transaction
// owned by the Injector.
var ErrTransactionControl = errors.New("transaction control statement not executed; the file is committed as a whole")

const savepointName = "content_stmt"

// Injector runs scripts against one database.
type Injector struct {
	db          *sql.DB
	dialect     string
	logger      *slog.Logger
	track       bool
	skipApplied bool
}

// Option configures an Injector.
type Option func(*Injector)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Injector) { in.logger = logger }
}

// WithTracking records every run in the _content_injections table.
func WithTracking(track bool) Option {
	return func(in *Injector) { in.track = track }
}

// WithSkipApplied skips scripts whose checksum is already recorded.
// It has no effect without tracking.
func WithSkipApplied(skip bool) Option {
	return func(in *Injector) { in.skipApplied = skip }
}

// New returns an Injector for db, which speaks the given dialect.
func New(db *sql.DB, dialect string, opts ...Option) *Injector {
	in := &Injector{
		db:      db,
		dialect: dialect,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ExecuteFile reads path and executes it. A read failure, including content
// that is not valid UTF-8, wraps ErrRead.
func (in *Injector) ExecuteFile(ctx context.Context, path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrRead, path, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w %s: not valid UTF-8", ErrRead, path)
	}
	return in.ExecuteScript(ctx, filepath.Base(path), string(content))
}

// ExecuteScript splits script into statements and executes them in order
// inside a single transaction. Rejected statements are recorded in the
// result. The returned error is reserved for failures of the transaction
// itself or of the tracking table.
func (in *Injector) ExecuteScript(ctx context.Context, name, script string) (*Result, error) {
	result := newResult(name)
	result.Checksum = Checksum([]byte(script))
	logger := in.logger.With("file", name)

	if in.track {
		if err := EnsureTrackingTable(ctx, in.db, in.dialect); err != nil {
			return nil, fmt.Errorf("failed to create tracking table: %w", err)
		}
		if in.skipApplied {
			applied, err := IsApplied(ctx, in.db, in.dialect, result.Checksum)
			if err != nil {
				return nil, err
			}
			if applied {
				logger.Info("skipping already applied file", "checksum", result.Checksum)
				result.AlreadyApplied = true
				return result, nil
			}
		}
	}

	statements := sqlsplit.Statements(script)
	result.TotalStatements = len(statements)

	tx, err := in.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction for %s: %w", name, err)
	}
	defer tx.Rollback() // no-op if committed

	reject := func(i int, stmt string, execErr error) {
		_, digest := sqlsplit.Fingerprint(stmt)
		result.Failed++
		result.Errors = append(result.Errors, StatementError{
			Index:   i + 1,
			Message: execErr.Error(),
			SQL:     sqlsplit.Excerpt(stmt),
			Digest:  digest,
		})
		logger.Warn("statement rejected",
			"statement", i+1,
			"digest", digest,
			"error", execErr)
	}

	for i, stmt := range statements {
		// a COMMIT in the script would end tx underneath us
		if sqlsplit.IsTransactionControl(stmt) {
			reject(i, stmt, ErrTransactionControl)
			continue
		}

		res, execErr, err := in.exec(ctx, tx, stmt)
		if err != nil {
			return nil, fmt.Errorf("%s: statement %d: %w", name, i+1, err)
		}
		if execErr != nil {
			reject(i, stmt, execErr)
			continue
		}

		result.Successful++
		if !sqlsplit.IsInsert(stmt) {
			continue
		}
		table, ok := sqlsplit.InsertTable(stmt)
		if !ok {
			logger.Debug("insert target not recognised", "statement", i+1)
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			logger.Debug("last insert id unavailable", "statement", i+1, "table", table, "error", err)
			continue
		}
		result.InsertedIDs[table] = append(result.InsertedIDs[table], id)
	}

	if in.track {
		if err := RecordInjection(ctx, tx, in.dialect, result); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s: %w", name, err)
	}

	logger.Info("file injected",
		"statements", result.TotalStatements,
		"successful", result.Successful,
		"failed", result.Failed,
		"inserted", result.InsertedCount())

	return result, nil
}

// exec runs one statement on tx. execErr is the store's rejection of the
// statement; err is a failure to manage the savepoint around it.
//
// On postgres a rejected statement aborts the whole transaction, so every
// statement runs under a savepoint that is rolled back on rejection.
func (in *Injector) exec(ctx context.Context, tx *sql.Tx, stmt string) (res sql.Result, execErr, err error) {
	if in.dialect != dburl.DialectPostgres {
		res, execErr = tx.ExecContext(ctx, stmt)
		return res, execErr, nil
	}

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepointName); err != nil {
		return nil, nil, fmt.Errorf("failed to create savepoint: %w", err)
	}
	res, execErr = tx.ExecContext(ctx, stmt)
	if execErr != nil {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); err != nil {
			return nil, nil, fmt.Errorf("failed to roll back savepoint: %w", err)
		}
		return nil, execErr, nil
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
		return nil, nil, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return res, nil, nil
}

// ExecuteDir executes every *.sql file in dir, sorted by name, one after
// another. Unreadable files are recorded in Skipped and the batch continues.
func (in *Injector) ExecuteDir(ctx context.Context, dir string) (*BatchResult, error) {
	files, err := ListScripts(dir)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{}
	for _, path := range files {
		result, err := in.ExecuteFile(ctx, path)
		if errors.Is(err, ErrRead) {
			in.logger.Warn("skipping unreadable file", "file", path, "error", err)
			batch.Skipped = append(batch.Skipped, SkippedFile{Name: filepath.Base(path), Err: err})
			continue
		}
		if err != nil {
			return batch, err
		}
		batch.add(result)
	}
	return batch, nil
}

// ListScripts returns the paths of the *.sql files directly inside dir,
// sorted by name.
func ListScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
