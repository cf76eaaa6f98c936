package sqlsplit

import (
	"regexp"
	"strings"
)

var lineCommentRe = regexp.MustCompile(`(?m)--.*$`)

// StripComments removes "--" line comments and "/* */" block comments from
// script. Line comments are removed first, then block comments. Block comments
// do not nest, and an unterminated block comment swallows the rest of the text.
//
// Comment markers are matched anywhere, including inside string literals.
func StripComments(script string) string {
	script = lineCommentRe.ReplaceAllString(script, "")
	return stripBlockComments(script)
}

func stripBlockComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for {
		start := strings.Index(s, "/*")
		if start == -1 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])

		end := strings.Index(s[start+2:], "*/")
		if end == -1 {
			return b.String()
		}
		s = s[start+2+end+2:]
	}
}
