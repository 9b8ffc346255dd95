// Package home manages the bookreader home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the bookreader home directory.
	DefaultDirName = ".bookreader"

	// DocumentsDirName is the subdirectory for uploaded document payloads.
	DocumentsDirName = "documents"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// SessionDBName is the default reading-session database file name.
	SessionDBName = "sessions.db"
)

// Dir represents the bookreader home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.bookreader).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DocumentsPath returns the directory holding uploaded document payloads.
func (d *Dir) DocumentsPath() string {
	return filepath.Join(d.path, DocumentsDirName)
}

// DocumentPath returns the payload path for one document. The extension
// carries the detected format so the file is self-describing on disk.
func (d *Dir) DocumentPath(docID, format string) string {
	if format == "" {
		format = "bin"
	}
	return filepath.Join(d.DocumentsPath(), fmt.Sprintf("%s.%s", docID, format))
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// SessionDBPath returns the path to a session database file under the home
// directory.
func (d *Dir) SessionDBPath(name string) string {
	if name == "" {
		name = SessionDBName
	}
	return filepath.Join(d.path, name)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create documents directory (this also creates the parent)
	if err := os.MkdirAll(d.DocumentsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
