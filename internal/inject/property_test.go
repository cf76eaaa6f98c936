package inject

import (
	"context"
	"strings"
	"testing"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/proptest"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/sqlsplit"
)

// Property: every statement is attempted once and lands in exactly one of
// the two counters, whatever the store makes of it.
func TestProperty_CountsSumToTotal(t *testing.T) {
	db := openTestDB(t, "CREATE TABLE items (v)")
	in := New(db, dburl.DialectSQLite)
	ctx := context.Background()

	proptest.Check(t, "successful + failed == total", proptest.Config{NumTrials: 30}, func(g *proptest.Generator) bool {
		stmts := proptest.Many(g, 0, 6, func(g *proptest.Generator) string {
			switch g.Intn(4) {
			case 0:
				return proptest.Pick(g, "BEGIN", "COMMIT", "ROLLBACK", "END TRANSACTION")
			case 1:
				return g.SQLInsert("items")
			default:
				return g.SQLStatement()
			}
		})
		script := g.SQLScript(stmts, g.Bool())

		result, err := in.ExecuteScript(ctx, "generated.sql", script)
		if err != nil {
			t.Logf("script %q: unexpected error %v", script, err)
			return false
		}
		if result.TotalStatements != len(sqlsplit.Statements(script)) {
			t.Logf("script %q: total %d", script, result.TotalStatements)
			return false
		}
		if result.Successful+result.Failed != result.TotalStatements {
			t.Logf("script %q: %d + %d != %d", script, result.Successful, result.Failed, result.TotalStatements)
			return false
		}
		if len(result.Errors) != result.Failed {
			t.Logf("script %q: %d error records for %d failures", script, len(result.Errors), result.Failed)
			return false
		}
		return true
	})
}

// Property: failure excerpts never exceed 100 characters plus the ellipsis.
func TestProperty_FailureExcerptsAreBounded(t *testing.T) {
	db := openTestDB(t, "")
	in := New(db, dburl.DialectSQLite)
	ctx := context.Background()

	proptest.Check(t, "excerpts bounded", proptest.Config{NumTrials: 30}, func(g *proptest.Generator) bool {
		padding := strings.Repeat("x", g.IntRange(0, 300))
		script := "INSERT INTO missing_table VALUES ('" + padding + "');"

		result, err := in.ExecuteScript(ctx, "long.sql", script)
		if err != nil || len(result.Errors) != 1 {
			return false
		}
		excerpt := result.Errors[0].SQL
		return len(excerpt) <= sqlsplit.MaxExcerptLen+3
	})
}
