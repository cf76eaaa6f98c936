package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/cli"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/backup"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/inject"
)

// maxErrorsShown is how many failures are printed per file.
const maxErrorsShown = 3

// runCmd implements "contentinject run".
func runCmd(args []string) int {
	fs, f := newFlagSet("run")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	cli.Info("NATED Content Injector")

	e, err := setup(ctx, f)
	if err != nil {
		cli.Error("failed to start", err)
		return 1
	}
	defer e.close()

	cli.Infof("Using database: %s", dburl.Redact(e.dbURL))
	if !dburl.IsLocalhost(e.dbURL) {
		cli.Warn("the target database is not on this machine")
	}
	e.logger.Info("injection started", "dialect", e.dialect)

	backupPath, ok := takeBackup(ctx, e)
	if !ok {
		return 1
	}

	before, err := inject.ContentStats(ctx, e.db, e.dialect, e.cfg.Content.StatsTables)
	if err != nil {
		cli.Warnf("could not read content statistics: %v", err)
	} else {
		cli.Section("Current Database Statistics")
		for _, tc := range before {
			cli.Infof("  %s: %d", tc.Table, tc.Count)
		}
	}

	dir := e.contentDir()
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			cli.Error("failed to create content directory", err)
			return 1
		}
		cli.Successf("Created %s", dir)
		cli.Infof("Place your SQL files in %s, then run this command again.", dir)
		return 0
	}

	files, err := inject.ListScripts(dir)
	if err != nil {
		cli.Error("failed to list SQL files", err)
		return 1
	}
	if len(files) == 0 {
		cli.Warnf("no SQL files found in %s", dir)
		return 0
	}

	cli.Section("SQL Files")
	for _, path := range files {
		cli.Bullet("%s", filepath.Base(path))
	}

	batch, err := e.injector().ExecuteDir(ctx, dir)
	if batch != nil {
		for _, r := range batch.Files {
			printResult(r)
		}
		for _, s := range batch.Skipped {
			cli.Warnf("skipped %s: %v", s.Name, s.Err)
		}
	}
	if err != nil {
		cli.Error("injection aborted", err)
		return 1
	}

	printBatch(batch)

	if before != nil {
		after, err := inject.ContentStats(ctx, e.db, e.dialect, e.cfg.Content.StatsTables)
		if err != nil {
			cli.Warnf("could not read content statistics: %v", err)
		} else {
			cli.Section("Database Statistics Comparison")
			for _, d := range inject.CompareStats(before, after) {
				cli.Infof("  %s", d)
			}
		}
	}

	e.logger.Info("injection finished",
		"files", batch.FilesProcessed,
		"statements", batch.TotalStatements,
		"successful", batch.Successful,
		"failed", batch.Failed)

	cli.Info("")
	cli.Success("All operations completed")
	if backupPath != "" {
		cli.Infof("Backup saved as: %s", backupPath)
	}
	cli.Infof("Run id: %s", e.runID)
	return 0
}

// takeBackup backs up the database when enabled. It reports false only when
// a backup was attempted and failed.
func takeBackup(ctx context.Context, e *env) (string, bool) {
	if !e.cfg.Backup.Enabled {
		return "", true
	}

	path := filepath.Join(e.cfg.Resolve(e.cfg.Backup.Dir), e.cfg.Backup.File)
	err := backup.Create(ctx, e.db, e.dialect, path)
	if errors.Is(err, backup.ErrUnsupportedDialect) {
		cli.Warnf("skipping backup: %v", err)
		return "", true
	}
	if err != nil {
		cli.Error("backup failed", err)
		return "", false
	}
	cli.Successf("Database backed up to: %s", path)
	e.logger.Info("backup written", "path", path)

	if e.cfg.Backup.S3Bucket == "" {
		return path, true
	}

	uploader := backup.NewS3Uploader(backup.S3Config{
		Bucket:    e.cfg.Backup.S3Bucket,
		Prefix:    e.cfg.Backup.S3Prefix,
		Region:    e.cfg.Backup.S3Region,
		Endpoint:  e.cfg.Backup.S3Endpoint,
		AccessKey: e.cfg.Backup.AccessKey,
		SecretKey: e.cfg.Backup.SecretKey,
	})
	location, err := uploader.Upload(ctx, path, uploader.Key(path, time.Now()))
	if err != nil {
		// the local copy is still good
		cli.Warnf("backup upload failed: %v", err)
		return path, true
	}
	cli.Successf("Backup uploaded to: %s", location)
	return path, true
}

func printResult(r *inject.Result) {
	cli.Section("Processing: " + r.Name)
	if r.AlreadyApplied {
		cli.Info("  already applied, skipped")
		return
	}

	cli.Infof("  Statements: %d", r.TotalStatements)
	cli.Infof("  Successful: %d", r.Successful)
	cli.Infof("  Failed: %d", r.Failed)

	if len(r.InsertedIDs) > 0 {
		tables := make([]string, 0, len(r.InsertedIDs))
		for table := range r.InsertedIDs {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cli.Info("  Inserted rows:")
		for _, table := range tables {
			cli.Infof("    %s: %d", table, len(r.InsertedIDs[table]))
		}
	}

	if len(r.Errors) == 0 {
		return
	}
	cli.Infof("  Errors (first %d):", maxErrorsShown)
	for i, se := range r.Errors {
		if i == maxErrorsShown {
			break
		}
		cli.Infof("    - Statement %d: %s", se.Index, se.Message)
		cli.Infof("      %s", se.SQL)
	}

	groups := r.FailureGroups()
	if len(groups) < len(r.Errors) {
		cli.Info("  Failures by statement shape:")
		for _, g := range groups {
			cli.Infof("    - %d x %s (%s)", g.Count(), g.Example.SQL, g.Example.Message)
		}
	}
}

func printBatch(b *inject.BatchResult) {
	cli.Section("INJECTION COMPLETE")
	cli.Infof("Files processed: %d", b.FilesProcessed)
	if applied := b.AlreadyApplied(); len(applied) > 0 {
		cli.Infof("Files already applied: %d", len(applied))
	}
	if len(b.Skipped) > 0 {
		cli.Infof("Files skipped: %d", len(b.Skipped))
	}
	cli.Infof("Total statements: %d", b.TotalStatements)
	cli.Infof("Successful: %d", b.Successful)
	cli.Infof("Failed: %d", b.Failed)
}
