package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nibzard/crystal-kanban/internal/projects"
)

// TasksDir is the project-relative directory holding task files.
const TasksDir = "tasks"

// DefaultConcurrency bounds parallel task file reads.
const DefaultConcurrency = 4

// Messages returned in LoadResult.Errors.
const (
	msgNoActiveProject = "No active project found. Please select a project first."
	msgNoTasksDir      = "Tasks directory not found - create /tasks directory with .json files"
	msgNoTaskFiles     = "No .json task files found in /tasks directory."
	msgInvalidRecord   = "missing required fields or invalid values"
)

// FileAccess is the project file capability the loader reads through.
// ListProjectFiles must report a missing directory with an error for which
// projects.IsNotFound returns true.
type FileAccess interface {
	ActiveProject(ctx context.Context) (projects.Project, error)
	ListProjectFiles(ctx context.Context, projectID int64, relPath string) ([]projects.FileEntry, error)
	ReadProjectFile(ctx context.Context, projectID int64, relPath string) (string, error)
}

// LoadResult is the outcome of one LoadTasks call.
// Errors may be non-empty when Success is true; those entries are advisory.
type LoadResult struct {
	Success   bool     `json:"success"`
	ProjectID int64    `json:"projectId,omitempty"`
	Tasks     []Task   `json:"tasks"`
	Errors    []string `json:"errors"`
}

// Warnings reports whether a successful load carried advisory errors.
func (r *LoadResult) Warnings() bool {
	return r.Success && len(r.Errors) > 0
}

func failed(msg string) *LoadResult {
	return &LoadResult{Tasks: []Task{}, Errors: []string{msg}}
}

func advisory(projectID int64, msg string) *LoadResult {
	return &LoadResult{Success: true, ProjectID: projectID, Tasks: []Task{}, Errors: []string{msg}}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency bounds the number of files read in parallel.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLocale sets the BCP 47 language used to collate task titles.
// Unparseable tags leave the default in place.
func WithLocale(tag string) LoaderOption {
	return func(l *Loader) {
		if t, err := language.Parse(tag); err == nil {
			l.locale = t
		}
	}
}

// Loader reads task files for a project.
type Loader struct {
	access      FileAccess
	logger      *log.Logger
	concurrency int
	locale      language.Tag
}

// NewLoader creates a loader reading through access.
func NewLoader(access FileAccess, opts ...LoaderOption) *Loader {
	l := &Loader{
		access:      access,
		logger:      log.New(io.Discard),
		concurrency: DefaultConcurrency,
		locale:      language.English,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// fileContent is the read outcome for one candidate file.
type fileContent struct {
	name    string
	content string
	err     error
	panic   any
}

// LoadTasks reads, validates and deduplicates every task file of a project.
// A zero projectID selects the active project. LoadTasks never panics; any
// unexpected failure becomes an unsuccessful result.
func (l *Loader) LoadTasks(ctx context.Context, projectID int64) (result *LoadResult) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task load aborted", "panic", r)
			result = failed(fmt.Sprint(r))
		}
	}()

	if projectID == 0 {
		project, err := l.access.ActiveProject(ctx)
		if err != nil || project.ID == 0 {
			l.logger.Debug("no active project", "err", err)
			return failed(msgNoActiveProject)
		}
		projectID = project.ID
	}
	logger := l.logger.With("project", projectID)

	entries, err := l.access.ListProjectFiles(ctx, projectID, TasksDir)
	if err != nil {
		if projects.IsNotFound(err) {
			logger.Debug("tasks directory missing", "err", err)
			return advisory(projectID, msgNoTasksDir)
		}
		logger.Error("list tasks directory", "err", err)
		res := failed(fmt.Sprintf("Failed to list tasks directory: %v", err))
		res.ProjectID = projectID
		return res
	}

	candidates := taskFileNames(entries)
	if len(candidates) == 0 {
		return advisory(projectID, msgNoTaskFiles)
	}

	contents, err := l.readAll(ctx, projectID, candidates)
	if err != nil {
		logger.Error("read task files", "err", err)
		return failed(err.Error())
	}

	var (
		accepted []Task
		errs     = []string{}
		seen     = make(map[string]struct{})
	)
	for _, fc := range contents {
		if fc.panic != nil {
			panic(fc.panic)
		}
		if fc.err != nil {
			logger.Warn("read task file", "file", fc.name, "err", fc.err)
			errs = append(errs, fmt.Sprintf("Failed to read %s: %v", fc.name, fc.err))
			continue
		}
		fileTasks, fileErrs := l.parseFile(logger, fc.name, fc.content, seen)
		accepted = append(accepted, fileTasks...)
		errs = append(errs, fileErrs...)
	}

	if accepted == nil {
		accepted = []Task{}
	}
	l.sortByTitle(accepted)

	logger.Debug("tasks loaded", "files", len(candidates), "tasks", len(accepted), "warnings", len(errs))
	return &LoadResult{
		Success:   true,
		ProjectID: projectID,
		Tasks:     accepted,
		Errors:    errs,
	}
}

// taskFileNames keeps non-directory entries with a .json suffix, in listing order.
func taskFileNames(entries []projects.FileEntry) []string {
	var names []string
	for _, e := range entries {
		if e.IsDirectory {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name), ".json") {
			names = append(names, e.Name)
		}
	}
	return names
}

// readAll reads the candidate files in parallel. The returned slice is in the
// same order as names regardless of completion order.
func (l *Loader) readAll(ctx context.Context, projectID int64, names []string) ([]fileContent, error) {
	contents := make([]fileContent, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, name := range names {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					contents[i] = fileContent{name: name, panic: r}
				}
			}()
			content, err := l.access.ReadProjectFile(gctx, projectID, path.Join(TasksDir, name))
			contents[i] = fileContent{name: name, content: content, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return contents, nil
}

// parseFile decodes one file and validates its records. Ids already present in
// seen are rejected; accepted ids are added to seen.
func (l *Loader) parseFile(logger *log.Logger, name, content string, seen map[string]struct{}) ([]Task, []string) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		logger.Warn("invalid task file", "file", name, "err", err)
		return nil, []string{fmt.Sprintf("Invalid JSON in %s: %v", name, err)}
	}

	isArray := bytes.HasPrefix(bytes.TrimLeft(raw, " \t\r\n"), []byte("["))
	records := []json.RawMessage{raw}
	if isArray {
		records = nil
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, []string{fmt.Sprintf("Invalid JSON in %s: %v", name, err)}
		}
	}

	var (
		accepted []Task
		errs     []string
	)
	for i, rec := range records {
		location := name
		if isArray {
			location = fmt.Sprintf("%s (index %d)", name, i)
		}

		task, verdict := decodeTask(rec)
		if !verdict.Valid {
			logger.Debug("invalid task record", "file", name, "index", i, "reason", verdict.Reason)
			errs = append(errs, fmt.Sprintf("Invalid task data in %s: %s", location, msgInvalidRecord))
			continue
		}
		if _, dup := seen[task.ID]; dup {
			logger.Debug("duplicate task id", "file", name, "index", i, "id", task.ID)
			errs = append(errs, fmt.Sprintf("Duplicate task ID '%s' found in %s", task.ID, location))
			continue
		}
		seen[task.ID] = struct{}{}
		accepted = append(accepted, task)
	}
	return accepted, errs
}

func decodeTask(rec json.RawMessage) (Task, Verdict) {
	var v any
	if err := json.Unmarshal(rec, &v); err != nil {
		return Task{}, invalid("", "%v", err)
	}
	verdict := ValidateTask(v)
	if !verdict.Valid {
		return Task{}, verdict
	}
	return taskFromRecord(v.(map[string]any)), verdict
}

// taskFromRecord builds a Task from a validated record. Fields are read by
// exact key; keys differing only in case are ignored like any other extra key.
func taskFromRecord(rec map[string]any) Task {
	str := func(key string) string {
		s, _ := rec[key].(string)
		return s
	}
	t := Task{
		ID:          str("id"),
		Title:       str("title"),
		Description: str("description"),
		Status:      Status(str("status")),
		Priority:    Priority(str("priority")),
		Assignee:    str("assignee"),
		CreatedAt:   str("createdAt"),
		UpdatedAt:   str("updatedAt"),
		DueDate:     str("dueDate"),
		Branch:      str("branch"),
	}
	if tags, ok := rec["tags"].([]any); ok {
		t.Tags = make([]string, 0, len(tags))
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				t.Tags = append(t.Tags, s)
			}
		}
	}
	return t
}

func (l *Loader) sortByTitle(list []Task) {
	c := collate.New(l.locale)
	slices.SortStableFunc(list, func(a, b Task) int {
		return c.CompareString(a.Title, b.Title)
	})
}
