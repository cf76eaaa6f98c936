package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/cli"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/config"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/dbops"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/internal/inject"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/logging"
)

// flags shared by every subcommand.
type flags struct {
	configDir   string
	dbURL       string
	contentDir  string
	noBackup    bool
	skipApplied bool
	verbose     bool
}

func newFlagSet(name string) (*flag.FlagSet, *flags) {
	f := &flags{}
	fs := flag.NewFlagSet("contentinject "+name, flag.ContinueOnError)
	fs.SetOutput(cli.Stderr)
	fs.StringVar(&f.configDir, "config", "", "directory containing nated.ini")
	fs.StringVar(&f.dbURL, "db", "", "database URL")
	fs.StringVar(&f.contentDir, "dir", "", "content directory")
	fs.BoolVar(&f.noBackup, "no-backup", false, "skip the backup before injecting")
	fs.BoolVar(&f.skipApplied, "skip-applied", false, "skip files that were already injected")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	return fs, f
}

// env is everything a subcommand needs once flags are parsed.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	runID   string
	dbURL   string
	db      *sql.DB
	dialect string
}

// setup loads configuration, applies flag overrides and connects.
func setup(ctx context.Context, f *flags) (*env, error) {
	cfg, err := config.Load(f.configDir)
	if err != nil {
		return nil, err
	}
	if f.contentDir != "" {
		// flag paths are relative to the working directory
		dir, err := filepath.Abs(f.contentDir)
		if err != nil {
			return nil, err
		}
		cfg.Content.Dir = dir
	}
	if f.noBackup {
		cfg.Backup.Enabled = false
	}
	if f.skipApplied {
		cfg.Content.SkipApplied = true
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, cli.Stderr)
	if err != nil {
		return nil, err
	}
	logger, runID := logging.WithRun(logger)

	dbURL, err := resolveDBURL(cfg, f.dbURL)
	if err != nil {
		return nil, err
	}

	db, dialect, err := dbops.Open(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("connected", "db", dburl.Redact(dbURL), "dialect", dialect)

	return &env{
		cfg:     cfg,
		logger:  logger,
		runID:   runID,
		dbURL:   dbURL,
		db:      db,
		dialect: dialect,
	}, nil
}

// resolveDBURL picks the database: the -db flag, then [db] url or
// DATABASE_URL, then the first .sqlite file in the search paths.
func resolveDBURL(cfg *config.Config, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if cfg.DB.URL != "" {
		return cfg.DB.URL, nil
	}

	dirs := make([]string, len(cfg.DB.SearchPaths))
	for i, p := range cfg.DB.SearchPaths {
		dirs[i] = cfg.Resolve(p)
	}
	path, err := dburl.DiscoverSQLite(dirs)
	if errors.Is(err, dburl.ErrNoDatabase) {
		return "", fmt.Errorf("%w; set [db] url in %s, DATABASE_URL, or -db", err, config.ConfigFilename)
	}
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return dburl.BuildSQLiteURL(abs), nil
}

func (e *env) close() {
	e.db.Close()
}

func (e *env) injector() *inject.Injector {
	return inject.New(e.db, e.dialect,
		inject.WithLogger(e.logger),
		inject.WithTracking(e.cfg.Content.Track),
		inject.WithSkipApplied(e.cfg.Content.SkipApplied))
}

func (e *env) contentDir() string {
	return e.cfg.Resolve(e.cfg.Content.Dir)
}
