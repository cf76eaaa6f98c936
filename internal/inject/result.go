package inject

// StatementError records one statement the store rejected.
type StatementError struct {
	Index   int    // 1-based position of the statement in the script
	Message string // the store's error text
	SQL     string // statement excerpt, at most sqlsplit.MaxExcerptLen chars plus "..."
	Digest  string // digest of the normalized statement
}

// Result is the outcome of executing one script.
type Result struct {
	Name            string
	Checksum        string
	TotalStatements int
	Successful      int
	Failed          int
	Errors          []StatementError

	// InsertedIDs maps table name to the row ids generated by recognised
	// INSERT statements, in execution order.
	InsertedIDs map[string][]int64

	// AlreadyApplied is set when the script was skipped because a run with
	// the same checksum is recorded in the tracking table.
	AlreadyApplied bool
}

func newResult(name string) *Result {
	return &Result{
		Name:        name,
		InsertedIDs: make(map[string][]int64),
	}
}

// InsertedCount returns the number of tracked inserts across all tables.
func (r *Result) InsertedCount() int {
	n := 0
	for _, ids := range r.InsertedIDs {
		n += len(ids)
	}
	return n
}

// FailureGroup collects failures whose statements share a digest.
type FailureGroup struct {
	Digest  string
	Indexes []int
	Example StatementError
}

// Count returns the number of failures in the group.
func (g FailureGroup) Count() int { return len(g.Indexes) }

// FailureGroups groups Errors by digest, in order of first occurrence.
func (r *Result) FailureGroups() []FailureGroup {
	var groups []FailureGroup
	pos := make(map[string]int)
	for _, e := range r.Errors {
		i, ok := pos[e.Digest]
		if !ok {
			i = len(groups)
			pos[e.Digest] = i
			groups = append(groups, FailureGroup{Digest: e.Digest, Example: e})
		}
		groups[i].Indexes = append(groups[i].Indexes, e.Index)
	}
	return groups
}

// SkippedFile is a file the batch could not read.
type SkippedFile struct {
	Name string
	Err  error
}

// BatchResult aggregates the results of a directory run.
type BatchResult struct {
	Files           []*Result
	Skipped         []SkippedFile
	FilesProcessed  int
	TotalStatements int
	Successful      int
	Failed          int
}

func (b *BatchResult) add(r *Result) {
	b.Files = append(b.Files, r)
	if r.AlreadyApplied {
		return
	}
	b.FilesProcessed++
	b.TotalStatements += r.TotalStatements
	b.Successful += r.Successful
	b.Failed += r.Failed
}

// AlreadyApplied returns the names of files skipped as already injected.
func (b *BatchResult) AlreadyApplied() []string {
	var names []string
	for _, r := range b.Files {
		if r.AlreadyApplied {
			names = append(names, r.Name)
		}
	}
	return names
}
