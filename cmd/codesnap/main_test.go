package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCapture(args ...string) (int, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := runWithOutput(args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func fixture(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "site")
	files := map[string]string{
		"main.go":             "package main\n",
		"README.md":           "# site\n",
		"db/schema.sql":       "CREATE TABLE subjects (id INTEGER);\n",
		"node_modules/x/a.js": "ignored\n",
		"logo.png":            "\x89PNG",
	}
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	return root
}

func TestRun_NoPaths(t *testing.T) {
	code, _, stderr := runCapture()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage:")
}

func TestRun_BadMode(t *testing.T) {
	code, _, stderr := runCapture("-mode", "dump", ".")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `invalid -mode "dump"`)
}

func TestRun_Tree(t *testing.T) {
	root := fixture(t)
	t.Chdir(t.TempDir())

	code, stdout, stderr := runCapture(root)
	require.Equal(t, 0, code, stderr)

	want := strings.Join([]string{
		"site/",
		"├─ db/",
		"│  └─ schema.sql",
		"├─ logo.png",
		"├─ main.go",
		"└─ README.md",
	}, "\n")
	assert.Contains(t, stdout, want)
	assert.Contains(t, stdout, "[Saved to site-tree.txt]")

	saved, err := os.ReadFile("site-tree.txt")
	require.NoError(t, err)
	assert.Equal(t, want, string(saved))
}

func TestRun_TreeOptions(t *testing.T) {
	root := fixture(t)
	out := filepath.Join(t.TempDir(), "tree.txt")

	code, _, stderr := runCapture("-include-exts", "GO, sql", "-ignore", "db", "-output", out, root)
	require.Equal(t, 0, code, stderr)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "site/\n└─ main.go", string(saved))
}

func TestRun_Snapshot(t *testing.T) {
	root := fixture(t)
	t.Chdir(root)

	code, stdout, stderr := runCapture("-mode", "snapshot", root)
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Project snapshot created: site_snapshot.txt")
	assert.Contains(t, stdout, "  .go: 1 files")
	assert.Contains(t, stdout, "  .md: 1 files")
	assert.Contains(t, stdout, "  .sql: 1 files")
	assert.Contains(t, stdout, "Output file:")

	saved, err := os.ReadFile("site_snapshot.txt")
	require.NoError(t, err)
	text := string(saved)
	assert.Contains(t, text, "Total files included: 3")
	assert.Contains(t, text, "FILE: db/schema.sql")
	assert.NotContains(t, text, "node_modules")
	assert.NotContains(t, text, "FILE: site_snapshot.txt")
}

func TestRun_MissingPathContinues(t *testing.T) {
	root := fixture(t)
	t.Chdir(t.TempDir())
	missing := filepath.Join(t.TempDir(), "gone")

	code, stdout, stderr := runCapture(missing, root)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: Path not found -> "+missing)
	assert.Contains(t, stdout, "[Saved to site-tree.txt]")
}

func TestRun_ConfigDefaults(t *testing.T) {
	root := fixture(t)
	cfgDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "nated.ini"),
		[]byte("[snapshot]\nignore = db\nmax_depth = 1\n"), 0644))
	out := filepath.Join(t.TempDir(), "tree.txt")

	code, _, stderr := runCapture("-config", cfgDir, "-files=false", "-output", out, root)
	require.Equal(t, 0, code, stderr)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "site/", string(saved))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}
