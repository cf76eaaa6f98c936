package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/cli"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/config"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/snapshot"
)

const usage = `codesnap - draw a folder tree or snapshot a project's source files

Usage:
  codesnap [flags] <path>...

Flags:
`

type options struct {
	mode        string
	maxDepth    int
	files       bool
	includeExts string
	ignore      string
	output      string
	configDir   string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses flags and returns an exit code.
func run(args []string) int {
	return runWithOutput(args, os.Stdout, os.Stderr)
}

// runWithOutput runs codesnap with custom output writers.
func runWithOutput(args []string, stdout, stderr io.Writer) int {
	cli.Stdout, cli.Stderr = stdout, stderr

	opts := &options{}
	fs := flag.NewFlagSet("codesnap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.mode, "mode", "tree", "tree (folder structure) or snapshot (file contents)")
	fs.IntVar(&opts.maxDepth, "max-depth", 0, "limit recursion depth in tree mode (0 means no limit)")
	fs.BoolVar(&opts.files, "files", true, "list files as well as directories in tree mode")
	fs.StringVar(&opts.includeExts, "include-exts", "", "comma-separated file extensions to include")
	fs.StringVar(&opts.ignore, "ignore", "", "comma-separated extra directory names to ignore")
	fs.StringVar(&opts.output, "output", "", "output file")
	fs.StringVar(&opts.configDir, "config", "", "directory containing nated.ini with [snapshot] defaults")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if opts.mode != "tree" && opts.mode != "snapshot" {
		fmt.Fprintf(stderr, "error: invalid -mode %q: expected tree or snapshot\n", opts.mode)
		return 2
	}
	if opts.maxDepth < 0 {
		fmt.Fprintf(stderr, "error: -max-depth must not be negative, got %d\n", opts.maxDepth)
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	exts := config.NormalizeExts(splitList(opts.includeExts))
	ignore := splitList(opts.ignore)
	maxDepth := opts.maxDepth
	if opts.configDir != "" {
		cfg, err := config.Load(opts.configDir)
		if err != nil {
			cli.Error("failed to load config", err)
			return 1
		}
		exts = append(cfg.Snapshot.IncludeExts, exts...)
		ignore = append(cfg.Snapshot.Ignore, ignore...)
		if maxDepth == 0 {
			maxDepth = cfg.Snapshot.MaxDepth
		}
	}

	code := 0
	for _, arg := range fs.Args() {
		path := snapshot.NormalizePath(arg)
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(stderr, "Error: Path not found -> %s\n", path)
			code = 1
			continue
		}

		var err error
		switch opts.mode {
		case "tree":
			err = writeTree(path, opts.output, snapshot.TreeOptions{
				MaxDepth:     maxDepth,
				IncludeFiles: opts.files,
				IncludeExts:  exts,
				IgnoreDirs:   ignore,
			})
		case "snapshot":
			err = writeSnapshot(path, opts.output, snapshot.SnapshotOptions{
				IncludeExts: exts,
				IgnoreDirs:  ignore,
			})
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			code = 1
		}
	}
	return code
}

func writeTree(root, output string, opts snapshot.TreeOptions) error {
	tree := snapshot.Tree(root, opts)
	cli.Info(tree)

	if output == "" {
		output = filepath.Base(root) + "-tree.txt"
	}
	if err := os.WriteFile(output, []byte(tree), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	cli.Infof("\n[Saved to %s]\n", output)
	return nil
}

func writeSnapshot(root, output string, opts snapshot.SnapshotOptions) error {
	cli.Info("Project Snapshot Generator")
	cli.Infof("Project root: %s", root)

	if output == "" {
		output = filepath.Base(root) + "_snapshot.txt"
	}
	opts.SkipPaths = append(opts.SkipPaths, output)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	summary, err := snapshot.Write(f, root, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", root, err)
	}

	cli.Infof("Found %d relevant files", summary.Files)
	cli.Successf("Project snapshot created: %s", output)
	cli.Infof("Total size: %d bytes", summary.Bytes)
	cli.Section("SUMMARY")
	for _, ext := range summary.SortedExtensions() {
		label := ext
		if label == "" {
			label = "no ext"
		}
		cli.Infof("  %s: %d files", label, summary.Extensions[ext])
	}
	cli.Infof("Output file: %d lines", summary.Lines)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
