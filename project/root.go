package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the shared configuration file for both tools.
const ConfigFile = "nated.ini"

var ErrConfigNotFound = errors.New("nated.ini not found in this directory or any parent")

// FindConfigDir walks up from the current working directory looking for nated.ini.
func FindConfigDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindConfigDirFrom(cwd)
}

// FindConfigDirFrom walks up from the given directory looking for nated.ini.
// Returns the directory containing it, or ErrConfigNotFound.
func FindConfigDirFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if HasConfig(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrConfigNotFound
		}
		dir = parent
	}
}

// HasConfig returns true if the given directory contains a nated.ini file.
func HasConfig(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ConfigFile))
	return err == nil && !info.IsDir()
}

// Name returns the folder name of dir, used for default output file names.
func Name(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}
