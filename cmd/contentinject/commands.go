package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/cli"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/inject"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/watch"
)

// historyLimit is how many tracked injections "stats" lists.
const historyLimit = 10

// statsCmd implements "contentinject stats".
func statsCmd(args []string) int {
	fs, f := newFlagSet("stats")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	e, err := setup(ctx, f)
	if err != nil {
		cli.Error("failed to start", err)
		return 1
	}
	defer e.close()

	cli.Infof("Using database: %s", dburl.Redact(e.dbURL))

	stats, err := inject.ContentStats(ctx, e.db, e.dialect, e.cfg.Content.StatsTables)
	if err != nil {
		cli.Error("failed to read content statistics", err)
		return 1
	}
	cli.Section("Database Statistics")
	for _, tc := range stats {
		cli.Infof("  %s: %d", tc.Table, tc.Count)
	}

	if !e.cfg.Content.Track {
		return 0
	}
	history, err := inject.History(ctx, e.db, e.dialect, historyLimit)
	if err != nil {
		// the tracking table only exists after the first tracked run
		e.logger.Debug("no injection history", "error", err)
		cli.Info("\nNo injections recorded yet.")
		return 0
	}
	cli.Section("Recent Injections")
	for _, inj := range history {
		cli.Bullet("%s  %s  %d statements, %d ok, %d failed",
			inj.InjectedAt, inj.FileName, inj.Statements, inj.Successful, inj.Failed)
	}
	return 0
}

// backupCmd implements "contentinject backup".
func backupCmd(args []string) int {
	fs, f := newFlagSet("backup")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	e, err := setup(ctx, f)
	if err != nil {
		cli.Error("failed to start", err)
		return 1
	}
	defer e.close()

	// an explicit backup ignores [backup] enabled
	e.cfg.Backup.Enabled = true
	// an empty path means the dialect has no file backup
	if path, ok := takeBackup(ctx, e); !ok || path == "" {
		return 1
	}
	return 0
}

// watchCmd implements "contentinject watch".
func watchCmd(args []string) int {
	fs, f := newFlagSet("watch")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, f)
	if err != nil {
		cli.Error("failed to start", err)
		return 1
	}
	defer e.close()

	dir := e.contentDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		cli.Error("failed to create content directory", err)
		return 1
	}

	if _, ok := takeBackup(ctx, e); !ok {
		return 1
	}

	cli.Infof("Watching %s for SQL files (Ctrl+C to stop)", dir)
	err = watch.Dir(ctx, dir, injectHandler(e.injector()), watch.WithLogger(e.logger))
	if err != nil {
		cli.Error("watch failed", err)
		return 1
	}
	cli.Info("Stopped.")
	return 0
}

// injectHandler executes each file handed over by the watcher and prints
// its result.
func injectHandler(in *inject.Injector) watch.Handler {
	return func(ctx context.Context, path string) error {
		result, err := in.ExecuteFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to inject %s: %w", path, err)
		}
		printResult(result)
		return nil
	}
}
