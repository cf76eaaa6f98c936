package inject

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/dbops"
)

// TableCount is the number of active rows in one content table.
type TableCount struct {
	Table string
	Count int64
}

// Stats holds table counts in the order they were requested.
type Stats []TableCount

// Get returns the count for table and whether it is present.
func (s Stats) Get(table string) (int64, bool) {
	for _, tc := range s {
		if tc.Table == table {
			return tc.Count, true
		}
	}
	return 0, false
}

// ContentStats counts the rows with is_active set in each table.
func ContentStats(ctx context.Context, db *sql.DB, dialect string, tables []string) (Stats, error) {
	// postgres has a real boolean type and rejects comparing it with 1
	predicate := "is_active = 1"
	if dialect == dburl.DialectPostgres {
		predicate = "is_active"
	}

	stats := make(Stats, 0, len(tables))
	for _, table := range tables {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", dbops.QuoteIdentifier(table, dialect), predicate)

		var count int64
		if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats = append(stats, TableCount{Table: table, Count: count})
	}
	return stats, nil
}

// StatsDelta compares one table's count before and after a run.
type StatsDelta struct {
	Table  string
	Before int64
	After  int64
}

// Growth returns After - Before.
func (d StatsDelta) Growth() int64 { return d.After - d.Before }

// String formats the delta as "table: old → new (+growth)".
func (d StatsDelta) String() string {
	return fmt.Sprintf("%s: %d → %d (%+d)", d.Table, d.Before, d.After, d.Growth())
}

// CompareStats pairs before and after counts in the order of before. A
// table missing from after counts as zero.
func CompareStats(before, after Stats) []StatsDelta {
	deltas := make([]StatsDelta, 0, len(before))
	for _, tc := range before {
		now, _ := after.Get(tc.Table)
		deltas = append(deltas, StatsDelta{Table: tc.Table, Before: tc.Count, After: now})
	}
	return deltas
}
