package dbops

import (
	"fmt"
	"strings"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
)

// QuoteIdentifier quotes a database identifier to prevent SQL injection.
// For postgres/sqlite, uses double quotes with doubled internal quotes.
// For mysql, uses backticks with doubled internal backticks.
func QuoteIdentifier(name string, dialect string) string {
	quote := `"`
	if dialect == dburl.DialectMySQL {
		quote = "`"
	}
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

// Placeholder returns the n-th (1-based) bind parameter marker for dialect.
func Placeholder(dialect string, n int) string {
	if dialect == dburl.DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Placeholders returns n comma-separated bind parameter markers.
func Placeholders(dialect string, n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = Placeholder(dialect, i+1)
	}
	return strings.Join(marks, ", ")
}
