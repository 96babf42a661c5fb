// Package projects keeps the project registry and gives confined access to
// files inside registered projects.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrProjectNotFound is returned for an unknown project id.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNoActiveProject is returned when no project is marked active.
	ErrNoActiveProject = errors.New("no active project")
	// ErrProjectExists is returned when adding a path that is already registered.
	ErrProjectExists = errors.New("project already registered")
	// ErrPathOutsideProject is returned for relative paths escaping the project root.
	ErrPathOutsideProject = errors.New("path outside project")
)

// IsNotFound reports whether err means a project file or directory is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Project is a registered project directory.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileEntry is one directory entry inside a project.
type FileEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	path TEXT NOT NULL UNIQUE,
	active INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_active ON projects(active);
`

// Store is a SQLite-backed project registry.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the registry database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add registers dir as a project. An empty name defaults to the directory name.
func (s *Store) Add(ctx context.Context, name, dir string) (Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Project{}, fmt.Errorf("resolve project path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Project{}, fmt.Errorf("stat project path: %w", err)
	}
	if !info.IsDir() {
		return Project{}, fmt.Errorf("project path %s is not a directory", abs)
	}
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(abs)
	}

	var existing int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM projects WHERE path = ?`, abs).Scan(&existing)
	switch {
	case err == nil:
		return Project{}, fmt.Errorf("%w: %s (id %d)", ErrProjectExists, abs, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return Project{}, fmt.Errorf("lookup project: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, path, active, created_at) VALUES (?, ?, 0, ?)`,
		name, abs, now.Format(time.RFC3339Nano))
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}

	return Project{ID: id, Name: name, Path: abs, CreatedAt: now}, nil
}

// List returns all projects ordered by id.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, active, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var list []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return list, nil
}

// Get returns the project with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, path, active, created_at FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: %d", ErrProjectNotFound, id)
	}
	return p, err
}

// ActiveProject returns the project currently marked active.
func (s *Store) ActiveProject(ctx context.Context) (Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, path, active, created_at FROM projects WHERE active = 1 ORDER BY id LIMIT 1`)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNoActiveProject
	}
	return p, err
}

// SetActive marks id as the only active project.
func (s *Store) SetActive(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("clear active project: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE projects SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("set active project: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("set active project: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %d", ErrProjectNotFound, id)
	}

	return tx.Commit()
}

// Remove unregisters a project. Files on disk are left alone.
func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove project: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("remove project: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %d", ErrProjectNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p       Project
		active  int
		created string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &active, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, err
		}
		return Project{}, fmt.Errorf("scan project: %w", err)
	}
	p.Active = active == 1
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		p.CreatedAt = ts
	}
	return p, nil
}
