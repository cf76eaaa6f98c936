package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultIgnoreDirs are never descended into when drawing a tree.
var DefaultIgnoreDirs = []string{
	"node_modules", ".git", ".cache", "dist", "build",
	".next", ".nuxt", ".venv", "venv", "__pycache__",
}

// ignoredExts and ignoredFiles hide editor and OS clutter from the tree.
var (
	ignoredExts  = map[string]bool{".log": true, ".tmp": true}
	ignoredFiles = map[string]bool{".DS_Store": true, "Thumbs.db": true}
)

const (
	branch     = "├─ "
	lastBranch = "└─ "
	pipe       = "│  "
	space      = "   "
)

// TreeOptions control Tree.
type TreeOptions struct {
	// MaxDepth limits how many directory levels are listed. 0 means no limit.
	MaxDepth int

	// IncludeFiles lists files as well as directories.
	IncludeFiles bool

	// IncludeExts, when set, keeps only files with these extensions
	// (lowercase, with the leading dot).
	IncludeExts []string

	// IgnoreDirs are directory names hidden in addition to DefaultIgnoreDirs.
	IgnoreDirs []string
}

// DefaultTreeOptions lists everything, files included.
func DefaultTreeOptions() TreeOptions {
	return TreeOptions{IncludeFiles: true}
}

type treeBuilder struct {
	opts        TreeOptions
	ignoreDirs  map[string]bool
	includeExts map[string]bool
	lines       []string
}

// Tree draws root as an ASCII tree. The first line is the root's name
// followed by a slash; directories come before files and both are sorted
// case-insensitively. A directory that cannot be listed shows a bracketed
// note instead of its children.
func Tree(root string, opts TreeOptions) string {
	b := &treeBuilder{
		opts:        opts,
		ignoreDirs:  toSet(DefaultIgnoreDirs, opts.IgnoreDirs),
		includeExts: toSet(opts.IncludeExts),
	}
	b.lines = append(b.lines, filepath.Base(filepath.Clean(root))+"/")
	b.walk(root, "", 0)
	return strings.Join(b.lines, "\n")
}

func (b *treeBuilder) walk(dir, prefix string, depth int) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrPermission):
		b.lines = append(b.lines, prefix+"[Permission Denied]")
		return
	case errors.Is(err, fs.ErrNotExist):
		b.lines = append(b.lines, prefix+"[Not Found]")
		return
	case err != nil:
		b.lines = append(b.lines, prefix+fmt.Sprintf("[Error: %v]", err))
		return
	}

	dirs, files := b.filter(entries)
	children := append(dirs, files...)

	for i, entry := range children {
		last := i == len(children)-1
		connector, extension := branch, pipe
		if last {
			connector, extension = lastBranch, space
		}

		if !entry.IsDir() {
			b.lines = append(b.lines, prefix+connector+entry.Name())
			continue
		}

		b.lines = append(b.lines, prefix+connector+entry.Name()+"/")
		if b.opts.MaxDepth == 0 || depth+1 < b.opts.MaxDepth {
			b.walk(filepath.Join(dir, entry.Name()), prefix+extension, depth+1)
		}
	}
}

// filter splits entries into visible directories and files, each sorted
// case-insensitively.
func (b *treeBuilder) filter(entries []os.DirEntry) (dirs, files []os.DirEntry) {
	for _, e := range entries {
		name := e.Name()
		ext := strings.ToLower(extOf(name))

		if b.ignoreDirs[name] || ignoredExts[ext] {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, e)
			continue
		}
		if !b.opts.IncludeFiles || ignoredFiles[name] {
			continue
		}
		if len(b.includeExts) > 0 && !b.includeExts[ext] {
			continue
		}
		files = append(files, e)
	}

	byName := func(s []os.DirEntry) {
		sort.SliceStable(s, func(i, j int) bool {
			return strings.ToLower(s[i].Name()) < strings.ToLower(s[j].Name())
		})
	}
	byName(dirs)
	byName(files)
	return dirs, files
}
