package inject

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
)

// recorder is a database/sql driver that logs every statement it receives
// and rejects those containing reject.
type recorder struct {
	mu     sync.Mutex
	log    []string
	reject string
}

func (r *recorder) record(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, query)
}

func (r *recorder) statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

func (r *recorder) Connect(context.Context) (driver.Conn, error) { return &recorderConn{r}, nil }
func (r *recorder) Driver() driver.Driver                         { return r }
func (r *recorder) Open(string) (driver.Conn, error)              { return &recorderConn{r}, nil }

type recorderConn struct{ r *recorder }

func (c *recorderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *recorderConn) Close() error { return nil }

func (c *recorderConn) Begin() (driver.Tx, error) {
	c.r.record("BEGIN")
	return &recorderTx{c.r}, nil
}

func (c *recorderConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.r.record(query)
	if c.r.reject != "" && strings.Contains(query, c.r.reject) {
		return nil, errors.New("relation does not exist")
	}
	return driver.RowsAffected(1), nil
}

type recorderTx struct{ r *recorder }

func (tx *recorderTx) Commit() error   { tx.r.record("COMMIT"); return nil }
func (tx *recorderTx) Rollback() error { tx.r.record("ROLLBACK"); return nil }

func openRecorder(t *testing.T, reject string) (*sql.DB, *recorder) {
	t.Helper()
	r := &recorder{reject: reject}
	db := sql.OpenDB(r)
	t.Cleanup(func() { db.Close() })
	return db, r
}

func TestExecuteScript_PostgresSavepoints(t *testing.T) {
	db, r := openRecorder(t, "missing_table")
	in := New(db, dburl.DialectPostgres)

	result, err := in.ExecuteScript(context.Background(), "content.sql",
		"INSERT INTO missing_table VALUES (1); INSERT INTO t (v) VALUES ('a');")
	if err != nil {
		t.Fatalf("ExecuteScript() error = %v", err)
	}
	if result.Successful != 1 || result.Failed != 1 {
		t.Errorf("got successful=%d failed=%d, want 1/1", result.Successful, result.Failed)
	}
	if len(result.InsertedIDs) != 0 {
		t.Errorf("no ids should be tracked without LastInsertId, got %v", result.InsertedIDs)
	}

	want := []string{
		"BEGIN",
		"SAVEPOINT content_stmt",
		"INSERT INTO missing_table VALUES (1)",
		"ROLLBACK TO SAVEPOINT content_stmt",
		"SAVEPOINT content_stmt",
		"INSERT INTO t (v) VALUES ('a')",
		"RELEASE SAVEPOINT content_stmt",
		"COMMIT",
	}
	if got := r.statements(); !reflect.DeepEqual(got, want) {
		t.Errorf("statements sent:\n got %q\nwant %q", got, want)
	}
}

func TestExecuteScript_NoSavepointsOutsidePostgres(t *testing.T) {
	db, r := openRecorder(t, "missing_table")
	in := New(db, dburl.DialectMySQL)

	if _, err := in.ExecuteScript(context.Background(), "content.sql",
		"INSERT INTO missing_table VALUES (1); INSERT INTO t (v) VALUES ('a');"); err != nil {
		t.Fatalf("ExecuteScript() error = %v", err)
	}

	want := []string{
		"BEGIN",
		"INSERT INTO missing_table VALUES (1)",
		"INSERT INTO t (v) VALUES ('a')",
		"COMMIT",
	}
	if got := r.statements(); !reflect.DeepEqual(got, want) {
		t.Errorf("statements sent:\n got %q\nwant %q", got, want)
	}
}

func TestExecuteScript_TransactionControlNeverSent(t *testing.T) {
	db, r := openRecorder(t, "")
	in := New(db, dburl.DialectPostgres)

	result, err := in.ExecuteScript(context.Background(), "wrapped.sql",
		"BEGIN; INSERT INTO t (v) VALUES ('a'); COMMIT;")
	if err != nil {
		t.Fatalf("ExecuteScript() error = %v", err)
	}
	if result.Successful != 1 || result.Failed != 2 {
		t.Errorf("got successful=%d failed=%d, want 1/2", result.Successful, result.Failed)
	}

	want := []string{
		"BEGIN",
		"SAVEPOINT content_stmt",
		"INSERT INTO t (v) VALUES ('a')",
		"RELEASE SAVEPOINT content_stmt",
		"COMMIT",
	}
	if got := r.statements(); !reflect.DeepEqual(got, want) {
		t.Errorf("statements sent:\n got %q\nwant %q", got, want)
	}
}

func TestExecuteScript_SavepointFailureAborts(t *testing.T) {
	db, r := openRecorder(t, "SAVEPOINT")
	in := New(db, dburl.DialectPostgres)

	result, err := in.ExecuteScript(context.Background(), "content.sql", "INSERT INTO t (v) VALUES ('a');")
	if err == nil {
		t.Fatalf("expected an error, got result %+v", result)
	}
	if !strings.Contains(err.Error(), "failed to create savepoint") {
		t.Errorf("unexpected error: %v", err)
	}

	got := r.statements()
	if got[len(got)-1] != "ROLLBACK" {
		t.Errorf("transaction should be rolled back, statements sent: %q", got)
	}
}
