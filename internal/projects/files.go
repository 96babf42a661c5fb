package projects

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListProjectFiles lists the entries of a project-relative directory, sorted
// by name. A missing directory yields an error for which IsNotFound is true.
func (s *Store) ListProjectFiles(ctx context.Context, projectID int64, relPath string) ([]FileEntry, error) {
	full, err := s.resolve(ctx, projectID, relPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", relPath, err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		files = append(files, FileEntry{Name: e.Name(), IsDirectory: e.IsDir()})
	}
	return files, nil
}

// ReadProjectFile returns the text content of a project-relative file.
func (s *Store) ReadProjectFile(ctx context.Context, projectID int64, relPath string) (string, error) {
	full, err := s.resolve(ctx, projectID, relPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", relPath, err)
	}
	return string(data), nil
}

// WriteProjectFile writes content to a project-relative file, creating parent
// directories as needed.
func (s *Store) WriteProjectFile(ctx context.Context, projectID int64, relPath, content string) error {
	full, err := s.resolve(ctx, projectID, relPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	return nil
}

func (s *Store) resolve(ctx context.Context, projectID int64, relPath string) (string, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return "", err
	}
	return ResolvePath(p.Path, relPath)
}

// ResolvePath joins a slash-separated relative path onto root, rejecting
// absolute paths and paths that climb out of root.
func ResolvePath(root, relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideProject, relPath)
	}

	full := filepath.Join(root, clean)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideProject, relPath)
	}
	return full, nil
}
