package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nibzard/crystal-kanban/internal/logging"
	"github.com/nibzard/crystal-kanban/internal/projects"
	"github.com/nibzard/crystal-kanban/internal/tasks"
)

// doctorCommand checks config, registry, active project and task files.
func doctorCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("kanban doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out := stdout
	fmt.Fprintln(out, "Kanban Doctor")
	fmt.Fprintln(out, "=============")
	fmt.Fprintln(out)

	allOK := true

	// Check config
	fmt.Fprintln(out, "Config:")
	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(out, "  File: %s\n", file)
	} else {
		fmt.Fprintln(out, "  File: (none, using defaults)")
	}
	if err := a.cfg.Validate(); err != nil {
		fmt.Fprintf(out, "  ❌ Invalid: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(out, "  ✅ OK")
	}
	fmt.Fprintln(out)

	// Check database
	store, err := a.openStore(ctx)
	if err != nil {
		fmt.Fprintf(out, "Database: %s\n", a.cfg.DBPath)
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "⚠️  Some checks failed.")
		return fmt.Errorf("doctor checks failed")
	}
	defer store.Close()
	fmt.Fprintf(out, "Database: %s\n", store.Path())

	list, err := store.List(ctx)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(out, "  ✅ OK (%d project(s))\n", len(list))
	}
	fmt.Fprintln(out)

	// Check active project
	fmt.Fprintln(out, "Active project:")
	project, err := store.ActiveProject(ctx)
	if err != nil {
		if errors.Is(err, projects.ErrNoActiveProject) {
			fmt.Fprintln(out, "  ⚠️  None selected (use 'kanban project use <id>')")
		} else {
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Fprintf(out, "  ✅ %d %s (%s)\n", project.ID, project.Name, project.Path)
		if !checkProject(ctx, a, store, project, *verbose) {
			allOK = false
		}
	}
	fmt.Fprintln(out)

	// Check log directory
	fmt.Fprintf(out, "Log directory: %s\n", a.cfg.LogDir)
	if !a.cfg.RunLogs {
		fmt.Fprintln(out, "  ⚠️  Run logs disabled")
	} else if _, err := os.Stat(a.cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "  ⚠️  Not found (will be created on first load)")
		} else {
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Fprintln(out, "  ✅ OK")
		if project.Path != "" {
			printLastLoad(out, a.cfg.LogDir, project.Path)
		}
	}
	fmt.Fprintln(out)

	if allOK {
		fmt.Fprintln(out, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// printLastLoad summarizes the most recent run log event of a project.
func printLastLoad(out io.Writer, logBase, projectPath string) {
	logDir, err := logging.FindLogDir(logBase, projectPath)
	if err != nil {
		return
	}
	latest, err := logging.FindLatestLog(logDir)
	if err != nil || latest == "" {
		return
	}
	events, err := logging.ReadEvents(latest)
	if err != nil || len(events) == 0 {
		return
	}
	last := events[len(events)-1]
	result := "ok"
	if !last.Success {
		result = "failed"
	}
	fmt.Fprintf(out, "  Last load: %s (%s, %d task(s), %d error(s))\n",
		last.Time.Local().Format("2006-01-02 15:04:05"), result, last.Tasks, len(last.Errors))
}

// checkProject reports on the project's task directory and a trial load.
func checkProject(ctx context.Context, a *app, store *projects.Store, project projects.Project, verbose bool) bool {
	out := stdout
	tasksDir := filepath.Join(project.Path, tasks.TasksDir)
	fmt.Fprintf(out, "  Tasks directory: %s\n", tasksDir)
	info, err := os.Stat(tasksDir)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(out, "  ⚠️  Not found (create it or run 'kanban new')")
		return true
	case err != nil:
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		return false
	case !info.IsDir():
		fmt.Fprintln(out, "  ❌ Error: path is not a directory")
		return false
	}

	res := a.newLoader(store).LoadTasks(ctx, project.ID)
	if !res.Success {
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  ❌ %s\n", e)
		}
		return false
	}
	fmt.Fprintf(out, "  ✅ Loaded %d task(s)\n", len(res.Tasks))
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  ⚠️  %s\n", e)
	}
	if verbose {
		for _, t := range res.Tasks {
			fmt.Fprintf(out, "    - [%s] %s: %s\n", t.Status, t.ID, t.Title)
		}
	}
	return true
}
