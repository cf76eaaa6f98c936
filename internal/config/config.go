// Package config provides unified configuration loading from nated.ini.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nkosisibusisokingjunior-lang/psychic-engine/dburl"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/inifile"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/logging"
	"github.com/nkosisibusisokingjunior-lang/psychic-engine/project"
)

// ConfigFilename is the name of the unified config file.
const ConfigFilename = project.ConfigFile

// DefaultStatsTables are the content tables counted before and after a run.
var DefaultStatsTables = []string{"subjects", "modules", "topics", "skills", "questions"}

// Config holds the complete configuration from nated.ini.
type Config struct {
	// ConfigDir is the directory containing nated.ini, or the working
	// directory when no file was found. Relative paths resolve against it.
	ConfigDir string

	DB       DBConfig
	Content  ContentConfig
	Backup   BackupConfig
	Log      LogConfig
	Snapshot SnapshotConfig
}

// DBConfig holds the [db] section.
type DBConfig struct {
	URL         string
	SearchPaths []string
}

// ContentConfig holds the [content] section.
type ContentConfig struct {
	Dir         string
	StatsTables []string
	Track       bool
	SkipApplied bool
}

// BackupConfig holds the [backup] section.
type BackupConfig struct {
	Enabled    bool
	Dir        string
	File       string
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
	AccessKey  string
	SecretKey  string
}

// LogConfig holds the [log] section.
type LogConfig struct {
	Format string
	Level  string
}

// SnapshotConfig holds the [snapshot] section.
type SnapshotConfig struct {
	Ignore      []string
	IncludeExts []string
	MaxDepth    int
}

// Load reads nated.ini from dir. An empty dir means: search upward from the
// working directory. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	if dir == "" {
		found, err := project.FindConfigDir()
		switch {
		case err == nil:
			dir = found
		case errors.Is(err, project.ErrConfigNotFound):
			if dir, err = os.Getwd(); err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
		default:
			return nil, err
		}
	}

	cfg := Default(dir)

	iniPath := filepath.Join(dir, ConfigFilename)
	f, err := inifile.ParseFile(iniPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
	}
	if f != nil {
		if err := apply(f, cfg); err != nil {
			return nil, err
		}
	}

	// Apply DATABASE_URL fallback if db.url is empty
	if cfg.DB.URL == "" {
		cfg.DB.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Backup.AccessKey == "" {
		cfg.Backup.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if cfg.Backup.SecretKey == "" {
		cfg.Backup.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nated.ini is absent.
func Default(dir string) *Config {
	return &Config{
		ConfigDir: dir,
		DB: DBConfig{
			SearchPaths: append([]string(nil), dburl.DefaultSearchPaths...),
		},
		Content: ContentConfig{
			Dir:         "generated_content",
			StatsTables: append([]string(nil), DefaultStatsTables...),
			Track:       true,
		},
		Backup: BackupConfig{
			Enabled:  true,
			Dir:      "database_backups",
			File:     "backup_before_injection.sqlite",
			S3Region: "us-east-1",
		},
		Log: LogConfig{
			Format: logging.FormatPretty,
			Level:  "info",
		},
	}
}

func apply(f *inifile.File, cfg *Config) error {
	// [db]
	if v := f.Get("db", "url"); v != "" {
		cfg.DB.URL = v
	}
	if v := f.GetList("db", "search_paths"); len(v) > 0 {
		cfg.DB.SearchPaths = v
	}

	// [content]
	if v := f.Get("content", "dir"); v != "" {
		cfg.Content.Dir = v
	}
	if v := f.GetList("content", "stats_tables"); len(v) > 0 {
		cfg.Content.StatsTables = v
	}
	if err := setBool(f, "content", "track", &cfg.Content.Track); err != nil {
		return err
	}
	if err := setBool(f, "content", "skip_applied", &cfg.Content.SkipApplied); err != nil {
		return err
	}

	// [backup]
	if err := setBool(f, "backup", "enabled", &cfg.Backup.Enabled); err != nil {
		return err
	}
	setString(f, "backup", "dir", &cfg.Backup.Dir)
	setString(f, "backup", "file", &cfg.Backup.File)
	setString(f, "backup", "s3_bucket", &cfg.Backup.S3Bucket)
	setString(f, "backup", "s3_prefix", &cfg.Backup.S3Prefix)
	setString(f, "backup", "s3_region", &cfg.Backup.S3Region)
	setString(f, "backup", "s3_endpoint", &cfg.Backup.S3Endpoint)

	// [log]
	setString(f, "log", "format", &cfg.Log.Format)
	setString(f, "log", "level", &cfg.Log.Level)

	// [snapshot]
	cfg.Snapshot.Ignore = f.GetList("snapshot", "ignore")
	cfg.Snapshot.IncludeExts = NormalizeExts(f.GetList("snapshot", "include_exts"))
	if v, ok, err := f.GetInt("snapshot", "max_depth"); err != nil {
		return fmt.Errorf("%s: %w", ConfigFilename, err)
	} else if ok {
		cfg.Snapshot.MaxDepth = v
	}

	return nil
}

func setString(f *inifile.File, section, key string, dst *string) {
	if v := f.Get(section, key); v != "" {
		*dst = v
	}
}

func setBool(f *inifile.File, section, key string, dst *bool) error {
	v, ok, err := f.GetBool(section, key)
	if err != nil {
		return fmt.Errorf("%s: %w", ConfigFilename, err)
	}
	if ok {
		*dst = v
	}
	return nil
}

// Validate checks values that would otherwise fail later with a worse message.
func (c *Config) Validate() error {
	if c.DB.URL != "" {
		if _, err := dburl.Dialect(c.DB.URL); err != nil {
			return fmt.Errorf("%s: db.url: %w\n"+
				"  Supported schemes: sqlite:, postgres://, mysql://", ConfigFilename, err)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case logging.FormatJSON, logging.FormatPretty:
	default:
		return fmt.Errorf("%s: invalid log.format %q (expected json or pretty)", ConfigFilename, c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: log.level: %w", ConfigFilename, err)
	}

	if c.Snapshot.MaxDepth < 0 {
		return fmt.Errorf("%s: snapshot.max_depth must not be negative, got %d", ConfigFilename, c.Snapshot.MaxDepth)
	}

	if strings.TrimSpace(c.Backup.File) == "" || strings.ContainsAny(c.Backup.File, `/\`) {
		return fmt.Errorf("%s: backup.file must be a plain file name, got %q", ConfigFilename, c.Backup.File)
	}

	for _, table := range c.Content.StatsTables {
		if strings.ContainsAny(table, " ;") {
			return fmt.Errorf("%s: invalid table name %q in content.stats_tables", ConfigFilename, table)
		}
	}

	return nil
}

// Resolve makes a relative path relative to ConfigDir.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ConfigDir, path)
}

// NormalizeExts lowercases extensions and adds a leading dot where missing.
func NormalizeExts(exts []string) []string {
	var result []string
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		result = append(result, e)
	}
	return result
}
