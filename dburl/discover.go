package dburl

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSearchPaths are the directories checked for a local SQLite file, in
// order: the wrangler D1 state directories used during local development,
// then the working directory.
var DefaultSearchPaths = []string{
	".wrangler/state/v3/d1/miniflare-D1DatabaseObject/",
	".wrangler/state/v3/d1/",
	"./",
}

// ErrNoDatabase is returned when no SQLite file is found in any search path.
var ErrNoDatabase = errors.New("no .sqlite database file found")

// DiscoverSQLite returns the path of the first *.sqlite file found in the
// search directories. Directories are tried in order and files within a
// directory by name. Missing directories are skipped.
func DiscoverSQLite(dirs []string) (string, error) {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".sqlite") {
				names = append(names, e.Name())
			}
		}
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		return filepath.Join(dir, names[0]), nil
	}
	return "", ErrNoDatabase
}
