package dbops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
)

// Open opens and pings the database behind dbURL and returns it with its dialect.
func Open(ctx context.Context, dbURL string) (*sql.DB, string, error) {
	dialect, err := dburl.Dialect(dbURL)
	if err != nil {
		return nil, "", err
	}

	dsn, driverName, err := URLToDSNWithDriver(dbURL, dialect)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, dialect, nil
}

// URLToDSNWithDriver converts a URL to a driver-specific DSN and returns the driver name.
func URLToDSNWithDriver(dbURL, dialect string) (dsn string, driver string, err error) {
	switch dialect {
	case dburl.DialectPostgres:
		return dbURL, "pgx", nil
	case dburl.DialectMySQL:
		dsn, err = MySQLURLToDSN(dbURL)
		return dsn, "mysql", err
	case dburl.DialectSQLite:
		return SQLiteURLToPath(dbURL), "sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// MySQLURLToDSN converts a mysql:// URL to a MySQL driver DSN.
// Format: user:password@tcp(host:port)/dbname
func MySQLURLToDSN(mysqlURL string) (string, error) {
	rest := strings.TrimPrefix(mysqlURL, "mysql://")

	atIdx := strings.LastIndex(rest, "@")
	if atIdx == -1 {
		return "", fmt.Errorf("invalid MySQL URL: missing @ separator")
	}
	user := rest[:atIdx]
	rest = rest[atIdx+1:]

	var hostPort, dbName string
	if slashIdx := strings.Index(rest, "/"); slashIdx == -1 {
		hostPort = rest
	} else {
		hostPort = rest[:slashIdx]
		dbName = rest[slashIdx+1:]
	}

	return fmt.Sprintf("%s@tcp(%s)/%s", user, hostPort, dbName), nil
}

// SQLiteURLToPath extracts the file path from a SQLite URL.
func SQLiteURLToPath(sqliteURL string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(sqliteURL, prefix) && len(sqliteURL) > len(prefix) {
			return sqliteURL[len(prefix):]
		}
	}
	return sqliteURL
}
