package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultNoisyDirs are skipped anywhere below the snapshot root.
var DefaultNoisyDirs = []string{
	"node_modules", ".next", ".git", "dist", "build",
	"coverage", ".nyc_output", ".cache", ".vscode",
	"__pycache__", ".pytest_cache", ".idea", ".DS_Store",
}

// DefaultExts are the file suffixes treated as source.
var DefaultExts = []string{
	".ts", ".tsx", ".js", ".jsx", ".py", ".json",
	".prisma", ".sql", ".md", ".txt", ".yml", ".yaml",
	".css", ".scss", ".html", ".env", ".example", ".go",
}

var (
	skipNames    = map[string]bool{"package-lock.json": true, "yarn.lock": true, ".DS_Store": true}
	skipSuffixes = []string{".log", ".min.js", ".min.css"}
)

const (
	wideRule     = 80
	dirRule      = 60
	fileRule     = 40
	thinRuleChar = "─"
)

// SnapshotOptions control Collect and Write.
type SnapshotOptions struct {
	// IncludeExts are suffixes accepted in addition to DefaultExts.
	IncludeExts []string

	// IgnoreDirs are directory names skipped in addition to DefaultNoisyDirs.
	IgnoreDirs []string

	// SkipPaths are files never included, typically the output file itself.
	SkipPaths []string
}

// Summary describes a written snapshot.
type Summary struct {
	Files      int
	Extensions map[string]int // "" for files without an extension
	Bytes      int64
	Lines      int
}

// SortedExtensions returns the keys of Extensions in order.
func (s *Summary) SortedExtensions() []string {
	exts := make([]string, 0, len(s.Extensions))
	for ext := range s.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

type filter struct {
	noisy map[string]bool
	exts  []string
	skip  map[string]bool
}

func newFilter(opts SnapshotOptions) *filter {
	f := &filter{
		noisy: toSet(DefaultNoisyDirs, opts.IgnoreDirs),
		exts:  append(append([]string(nil), DefaultExts...), opts.IncludeExts...),
		skip:  make(map[string]bool),
	}
	for _, p := range opts.SkipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			f.skip[abs] = true
		}
	}
	return f
}

func (f *filter) include(path, name string) bool {
	if skipNames[name] || f.noisy[name] {
		return false
	}
	lower := strings.ToLower(name)
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	if abs, err := filepath.Abs(path); err == nil && f.skip[abs] {
		return false
	}
	for _, ext := range f.exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Collect returns the paths, relative to root and sorted, of the files a
// snapshot of root would include. Unreadable subdirectories are skipped.
func Collect(root string, opts SnapshotOptions) ([]string, error) {
	f := newFilter(opts)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && f.noisy[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !f.include(path, d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Write emits a snapshot of root to w: a header, then every collected file
// grouped by directory with its contents.
func Write(w io.Writer, root string, opts SnapshotOptions) (*Summary, error) {
	files, err := Collect(root, opts)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cw := &countingWriter{w: w}
	out := bufio.NewWriter(cw)

	summary := &Summary{Files: len(files), Extensions: make(map[string]int)}

	wide := strings.Repeat("=", wideRule)
	fmt.Fprintf(out, "%s\nPROJECT SNAPSHOT\n%s\n", wide, wide)
	fmt.Fprintf(out, "Generated from: %s\n", absRoot)
	fmt.Fprintf(out, "Total files included: %d\n", len(files))
	fmt.Fprintf(out, "%s\n\n", wide)

	byDir := make(map[string][]string)
	for _, rel := range files {
		dir := filepath.Dir(rel)
		if dir == "." {
			dir = ""
		}
		byDir[dir] = append(byDir[dir], rel)
		summary.Extensions[extOf(filepath.Base(rel))]++
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	dirLine := strings.Repeat("=", dirRule)
	fileLine := strings.Repeat(thinRuleChar, fileRule)
	for _, dir := range dirs {
		label := dir
		if label == "" {
			label = "ROOT"
		}
		fmt.Fprintf(out, "\n%s\nDIRECTORY: %s\n%s\n\n", dirLine, label, dirLine)

		for _, rel := range byDir[dir] {
			fmt.Fprintf(out, "%s\nFILE: %s\n%s\n\n", fileLine, rel, fileLine)
			out.WriteString(readContent(filepath.Join(root, rel)))
			out.WriteString("\n\n")
		}
	}

	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	summary.Bytes = cw.n
	summary.Lines = cw.lines
	return summary, nil
}

// readContent returns the file as text. Invalid UTF-8 is decoded as
// Latin-1 and line endings are normalized to \n. Failures are reported
// inline so one bad file does not spoil the snapshot.
func readContent(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("# ERROR: Could not read %s - %v\n\n", path, err)
	}

	text := string(data)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return fmt.Sprintf("# ERROR: Could not read %s (binary or unsupported encoding)\n\n", path)
		}
		text = string(decoded)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

type countingWriter struct {
	w     io.Writer
	n     int64
	lines int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	for _, b := range p[:n] {
		if b == '\n' {
			c.lines++
		}
	}
	return n, err
}
