// Package dburl inspects database URLs and locates local SQLite files.
package dburl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Dialects understood by the content tools.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

var (
	ErrUnknownDialect = errors.New("unknown database dialect")
	ErrInvalidURL     = errors.New("invalid database URL")
)

var schemes = map[string]string{
	"postgres":   DialectPostgres,
	"postgresql": DialectPostgres,
	"mysql":      DialectMySQL,
	"sqlite":     DialectSQLite,
	"sqlite3":    DialectSQLite,
}

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// Dialect maps the URL scheme to one of the Dialect constants.
func Dialect(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if d, ok := schemes[scheme]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, scheme)
}

// IsLocalhost reports whether dbURL targets this machine. SQLite files
// always do; unparseable URLs never do.
func IsLocalhost(dbURL string) bool {
	u, err := url.Parse(dbURL)
	if err != nil {
		return false
	}
	if schemes[strings.ToLower(u.Scheme)] == DialectSQLite {
		return true
	}
	return loopbackHosts[strings.ToLower(u.Hostname())]
}

// BuildSQLiteURL turns a file path into a sqlite URL: sqlite:///abs/path
// or sqlite:rel/path.
func BuildSQLiteURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return "sqlite://" + path
	}
	return "sqlite:" + path
}

// Redact hides the password in dbURL so it can be printed.
func Redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return dbURL
	}
	return u.Redacted()
}
