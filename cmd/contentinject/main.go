package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/cli"
)

const usage = `contentinject - load generated SQL content into the NATED database

Usage:
  contentinject [command] [flags]

Commands:
  run      Back up the database and inject every .sql file in the content dir (default)
  stats    Show active row counts and recent injections
  backup   Back up the database without injecting
  watch    Inject .sql files as they appear in the content dir

Flags:
  -config <dir>    Directory containing nated.ini (default: search upward from cwd)
  -db <url>        Database URL (overrides [db] url and DATABASE_URL)
  -dir <path>      Content directory (overrides [content] dir)
  -no-backup       Skip the backup before injecting
  -skip-applied    Skip files whose checksum is already recorded
  -v               Debug logging

Run 'contentinject <command> -h' for the flags a command accepts.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches commands and returns an exit code.
func run(args []string) int {
	return runWithOutput(args, os.Stdout, os.Stderr)
}

// runWithOutput dispatches commands with custom output writers.
func runWithOutput(args []string, stdout, stderr io.Writer) int {
	cli.Stdout, cli.Stderr = stdout, stderr

	cmd := "run"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	case "run":
		return runCmd(args)
	case "stats":
		return statsCmd(args)
	case "backup":
		return backupCmd(args)
	case "watch":
		return watchCmd(args)
	default:
		fmt.Fprintf(stderr, "error: unknown command: %s\n", cmd)
		fmt.Fprintln(stderr, "Run 'contentinject help' for usage.")
		return 1
	}
}
