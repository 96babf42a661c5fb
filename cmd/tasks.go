package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/crystal-kanban/internal/tasks"
	"github.com/nibzard/crystal-kanban/internal/utils"
)

// tasksCommand loads a project's tasks and prints them grouped by status.
func tasksCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("kanban tasks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectID := fs.Int64("project", 0, "Project id (default: active project)")
	statusFilter := fs.String("status", "", "Only show tasks with these statuses (comma-separated)")
	asJSON := fs.Bool("json", false, "Print the load result as JSON")
	verbose := fs.Bool("verbose", false, "Show more details")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	filter := make(map[tasks.Status]bool)
	for _, name := range utils.SplitAndTrim(*statusFilter, ",") {
		s, err := tasks.ParseStatus(name)
		if err != nil {
			return err
		}
		filter[s] = true
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	res := a.newLoader(store).LoadTasks(ctx, *projectID)

	if res.ProjectID != 0 {
		if p, err := store.Get(ctx, res.ProjectID); err == nil {
			rl := a.runLog(p)
			a.recordLoad(rl, "tasks", res)
			rl.Close()
		}
	}

	shown := res.Tasks
	if len(filter) > 0 {
		shown = make([]tasks.Task, 0, len(res.Tasks))
		for _, t := range res.Tasks {
			if filter[t.Status] {
				shown = append(shown, t)
			}
		}
	}

	if *asJSON {
		out := *res
		out.Tasks = shown
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printLoadResult(res, shown, len(filter) > 0, *verbose, a)
	}

	if !res.Success {
		return errors.New(strings.Join(res.Errors, "; "))
	}
	return nil
}

func printLoadResult(res *tasks.LoadResult, shown []tasks.Task, filtered, verbose bool, a *app) {
	if res.Success {
		if !filtered {
			groups := tasks.GroupByStatus(shown)
			for _, s := range tasks.Statuses() {
				printTasksByStatus(s, groups[s], verbose, a)
			}
		} else {
			printTaskList(shown, verbose, a)
		}
		fmt.Fprintf(stdout, "%d task(s) loaded\n", len(res.Tasks))
	}

	if len(res.Errors) == 0 {
		return
	}
	if res.Success {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Warnings:")
		for _, e := range res.Errors {
			fmt.Fprintf(stdout, "  ⚠️  %s\n", e)
		}
		return
	}
	for _, e := range res.Errors {
		fmt.Fprintf(stdout, "❌ %s\n", e)
	}
}

// printTasksByStatus prints the tasks of one status column.
func printTasksByStatus(status tasks.Status, list []tasks.Task, verbose bool, a *app) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(stdout, "%s (%d):\n", status, len(list))
	for i := range list {
		printTask(&list[i], verbose, a)
	}
	fmt.Fprintln(stdout)
}

// printTaskList prints a flat list of tasks.
func printTaskList(list []tasks.Task, verbose bool, a *app) {
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No tasks found.")
		return
	}
	for i := range list {
		printTask(&list[i], verbose, a)
	}
}

// printTask prints a single task.
func printTask(t *tasks.Task, verbose bool, a *app) {
	statusIcon := "❓"
	switch t.Status {
	case tasks.StatusTodo:
		statusIcon = "📝"
	case tasks.StatusPlanned:
		statusIcon = "🗓️"
	case tasks.StatusInProgress:
		statusIcon = "🔄"
	case tasks.StatusDone, tasks.StatusCompleted:
		statusIcon = "✅"
	}

	line := fmt.Sprintf("  %s [%s] (%s) %s", statusIcon, t.ID, t.Priority, t.Title)
	if t.IsOverdue(a.now()) {
		line += " (overdue)"
	}
	fmt.Fprintln(stdout, line)

	if verbose {
		if t.Description != "" {
			fmt.Fprintf(stdout, "      Description: %s\n", t.Description)
		}
		if t.Assignee != "" {
			fmt.Fprintf(stdout, "      Assignee: %s\n", t.Assignee)
		}
		if len(t.Tags) > 0 {
			fmt.Fprintf(stdout, "      Tags: %s\n", strings.Join(t.Tags, ", "))
		}
		if t.DueDate != "" {
			fmt.Fprintf(stdout, "      Due: %s\n", t.DueDate)
		}
		if t.Branch != "" {
			fmt.Fprintf(stdout, "      Branch: %s\n", t.Branch)
		}
	}
}
