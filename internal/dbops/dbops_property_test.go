package dbops_test

import (
	"strings"
	"testing"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/dbops"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/proptest"
)

// Property: QuoteIdentifier should always produce a wrapped identifier with
// every internal quote doubled, for any input string.
func TestProperty_QuoteIdentifierPreventsInjection(t *testing.T) {
	proptest.QuickCheck(t, "quote identifier prevents injection", func(g *proptest.Generator) bool {
		input := proptest.PickFunc(g,
			func(g *proptest.Generator) string { return g.EdgeCaseString() },
			func(g *proptest.Generator) string { return g.String(100) },
			func(g *proptest.Generator) string { return g.IdentifierLower(20) },
		)

		for _, dialect := range []string{"postgres", "mysql", "sqlite"} {
			quote := `"`
			if dialect == "mysql" {
				quote = "`"
			}

			quoted := dbops.QuoteIdentifier(input, dialect)
			if !strings.HasPrefix(quoted, quote) || !strings.HasSuffix(quoted, quote) || len(quoted) < 2 {
				t.Logf("%s quoted identifier not wrapped: %q", dialect, quoted)
				return false
			}

			inner := quoted[1 : len(quoted)-1]
			if strings.Count(inner, quote)%2 != 0 {
				t.Logf("%s quoted identifier has an odd quote count: %q", dialect, quoted)
				return false
			}
			if strings.ReplaceAll(inner, quote+quote, quote) != input {
				t.Logf("%s quoted identifier does not round-trip: %q -> %q", dialect, input, quoted)
				return false
			}
		}
		return true
	})
}

// Property: Placeholders yields exactly n markers.
func TestProperty_PlaceholdersCount(t *testing.T) {
	proptest.QuickCheck(t, "placeholders count", func(g *proptest.Generator) bool {
		n := g.IntRange(1, 30)
		for _, dialect := range []string{"postgres", "mysql", "sqlite"} {
			parts := strings.Split(dbops.Placeholders(dialect, n), ", ")
			if len(parts) != n {
				return false
			}
		}
		return true
	})
}
