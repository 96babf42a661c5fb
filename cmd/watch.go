package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/crystal-kanban/internal/tasks"
	"github.com/nibzard/crystal-kanban/internal/ui"
	"github.com/nibzard/crystal-kanban/internal/watch"
)

// watchCommand shows a live view of a project's tasks.
func watchCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("kanban watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectID := fs.Int64("project", 0, "Project id (default: active project)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !ui.IsTTY(stdout) {
		return fmt.Errorf("watch requires a TTY")
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	project, err := resolveProject(ctx, store, *projectID)
	if err != nil {
		return err
	}

	w, err := watch.New(project.Path, tasks.TasksDir, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	changes, err := w.Start(ctx)
	if err != nil {
		return err
	}

	rl := a.runLog(project)
	defer rl.Close()

	loader := a.newLoader(store)
	return ui.RunWatch(ctx, ui.WatchOptions{
		Project: project.Name,
		Load: func(ctx context.Context) *tasks.LoadResult {
			res := loader.LoadTasks(ctx, project.ID)
			a.recordLoad(rl, "watch", res)
			return res
		},
		Changes: changes,
		Now:     a.now,
	})
}
