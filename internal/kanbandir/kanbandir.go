// Package kanbandir provides constants and utilities for the .kanban state directory.
package kanbandir

import "path/filepath"

const (
	// Dir is the name of the kanban state directory, kept in the user's home.
	Dir = ".kanban"

	// DBFile is the project registry database file name (inside .kanban).
	DBFile = "kanban.db"

	// ConfigFile is the user config file name (inside .kanban).
	ConfigFile = "kanban.toml"

	// LogsDir is the run log directory name (inside .kanban).
	LogsDir = "logs"
)

// Default locations relative to the home directory, in "~/" form.
const (
	DefaultDBPath = "~/" + Dir + "/" + DBFile
	DefaultLogDir = "~/" + Dir + "/" + LogsDir
)

// DirPath returns the full path to the .kanban directory within a base directory.
func DirPath(baseDir string) string {
	if baseDir == "." || baseDir == "" {
		return Dir
	}
	return filepath.Join(baseDir, Dir)
}

// ConfigPath returns the full path to the user config file within a base directory.
func ConfigPath(baseDir string) string {
	return filepath.Join(DirPath(baseDir), ConfigFile)
}
