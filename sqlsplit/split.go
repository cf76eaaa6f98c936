// Package sqlsplit turns a raw SQL script into the ordered list of statements
// it contains.
//
// Splitting is a single pass over the text that tracks whether the scanner is
// inside a single- or double-quoted literal and how deeply it is nested in
// parentheses. A semicolon only ends a statement outside quotes at depth zero.
//
// Known limitation: quote characters are never treated as escaped. A literal
// such as 'it''s' or 'it\'s' toggles the quote state twice and the scanner
// loses track of where the string ends. Scripts that rely on escaped quotes
// may be split in the wrong place; the store then rejects the fragments.
package sqlsplit

import "strings"

// Statements strips comments from script and splits the remainder.
func Statements(script string) []string {
	return Split(StripComments(script))
}

// Split splits comment-free SQL text on top-level semicolons. Each statement
// is trimmed; empty statements are dropped. Parenthesis depth may go negative
// on unbalanced input and is not reported.
func Split(text string) []string {
	var (
		statements []string
		current    strings.Builder
		depth      int
		inQuote    bool
		quoteChar  byte
	)

	// every delimiter is ASCII, so scanning bytes leaves other text untouched
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case (c == '\'' || c == '"') && !inQuote:
			inQuote = true
			quoteChar = c
		case inQuote && c == quoteChar:
			inQuote = false
			quoteChar = 0
		case c == '(' && !inQuote:
			depth++
		case c == ')' && !inQuote:
			depth--
		case c == ';' && !inQuote && depth == 0:
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteByte(c)
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
