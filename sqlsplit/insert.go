package sqlsplit

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxExcerptLen is the number of characters of a statement kept in an excerpt.
const MaxExcerptLen = 100

var (
	insertTableRe = regexp.MustCompile(`(?i)INSERT\s+INTO\s+(\w+)`)
	txControlRe   = regexp.MustCompile(`(?i)^\s*(BEGIN|COMMIT|END|ROLLBACK|ABORT|START\s+TRANSACTION)\b`)
	rollbackToRe  = regexp.MustCompile(`(?i)^\s*ROLLBACK(\s+(WORK|TRANSACTION))?\s+TO\b`)
)

// IsInsert reports whether the statement's leading keyword is INSERT.
func IsInsert(stmt string) bool {
	stmt = strings.TrimLeft(stmt, " \t\r\n")
	return len(stmt) >= 6 && strings.EqualFold(stmt[:6], "INSERT")
}

// IsTransactionControl reports whether stmt starts, commits or aborts a
// transaction (BEGIN, COMMIT, END, ROLLBACK, ABORT, START TRANSACTION).
// ROLLBACK TO SAVEPOINT only undoes part of a transaction and is not
// transaction control.
func IsTransactionControl(stmt string) bool {
	return txControlRe.MatchString(stmt) && !rollbackToRe.MatchString(stmt)
}

// InsertTable returns the first table named after "INSERT INTO" in stmt.
// Quoted, schema-qualified or multi-table forms are matched best effort and
// may yield no table or only the leading part of the name.
func InsertTable(stmt string) (string, bool) {
	m := insertTableRe.FindStringSubmatch(stmt)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Excerpt truncates stmt to MaxExcerptLen characters and appends "..." when
// anything was cut.
func Excerpt(stmt string) string {
	if utf8.RuneCountInString(stmt) <= MaxExcerptLen {
		return stmt
	}
	runes := []rune(stmt)
	return string(runes[:MaxExcerptLen]) + "..."
}
