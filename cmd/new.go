package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"path"

	"github.com/nibzard/crystal-kanban/internal/tasks"
)

// newCommand writes a sample task file into a project's task directory.
func newCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("kanban new", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectID := fs.Int64("project", 0, "Project id (default: active project)")
	title := fs.String("title", "", "Task title (default: Sample Task)")
	status := fs.String("status", string(tasks.StatusTodo), "Task status")
	priority := fs.String("priority", string(tasks.PriorityMedium), "Task priority")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	task := tasks.NewSampleTask(a.now())
	if *title != "" {
		task.Title = *title
	}
	s, err := tasks.ParseStatus(*status)
	if err != nil {
		return err
	}
	p, err := tasks.ParsePriority(*priority)
	if err != nil {
		return err
	}
	task.Status, task.Priority = s, p

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	project, err := resolveProject(ctx, store, *projectID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	rel := path.Join(tasks.TasksDir, task.ID+".json")
	if err := store.WriteProjectFile(ctx, project.ID, rel, string(data)+"\n"); err != nil {
		return err
	}

	a.logger.Debug("task file written", "project", project.ID, "file", rel)
	fmt.Fprintf(stdout, "Created %s in %s\n", rel, project.Name)
	return nil
}
