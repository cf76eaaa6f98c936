package proptest

import (
	"fmt"
	"strings"
)

// literalChars never contain quotes or comment markers, so a literal built
// from them survives comment stripping and is closed by its matching quote.
const literalChars = CharsetAlphaNum + " ;(),.=<>"

// SQLLiteral returns a quoted string literal whose body may contain
// semicolons and parentheses but no quote characters.
func (g *Generator) SQLLiteral() string {
	quote := Pick(g, "'", `"`)
	return quote + g.StringFrom(literalChars, 20) + quote
}

// SQLValue returns an integer, a literal, or a parenthesized subquery.
func (g *Generator) SQLValue() string {
	switch g.Intn(3) {
	case 0:
		return fmt.Sprint(g.IntRange(-1000, 1000))
	case 1:
		return g.SQLLiteral()
	default:
		return fmt.Sprintf("(SELECT %s FROM %s WHERE id = %d)",
			g.IdentifierLower(8), g.IdentifierLower(8), g.IntRange(1, 99))
	}
}

// SQLInsert returns a well-formed INSERT statement without a trailing
// semicolon. Values may contain semicolons inside literals or parentheses.
func (g *Generator) SQLInsert(table string) string {
	values := Many(g, 1, 5, func(g *Generator) string { return g.SQLValue() })
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(values, ", "))
}

// SQLStatement returns a well-formed INSERT, UPDATE or SELECT statement
// without a trailing semicolon.
func (g *Generator) SQLStatement() string {
	table := g.IdentifierLower(12)
	switch g.Intn(3) {
	case 0:
		return g.SQLInsert(table)
	case 1:
		return fmt.Sprintf("UPDATE %s SET %s = %s WHERE id = %d",
			table, g.IdentifierLower(8), g.SQLValue(), g.IntRange(1, 99))
	default:
		return fmt.Sprintf("SELECT %s FROM %s WHERE name = %s",
			g.IdentifierLower(8), table, g.SQLLiteral())
	}
}

// SQLScript joins statements into a script terminated by semicolons with
// random whitespace and, optionally, comments between them. Comments never
// contain quote characters.
func (g *Generator) SQLScript(statements []string, withComments bool) string {
	var b strings.Builder
	for _, stmt := range statements {
		if withComments && g.Bool() {
			b.WriteString("-- " + g.StringFrom(CharsetAlphaNum+" ;()", 30) + "\n")
		}
		if withComments && g.Bool() {
			b.WriteString("/* " + g.StringFrom(CharsetAlphaNum+" ;()\n", 30) + " */ ")
		}
		b.WriteString(stmt)
		b.WriteString(";")
		b.WriteString(Pick(g, "", " ", "\n", "\n\n", "\t"))
	}
	return b.String()
}
