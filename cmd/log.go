package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/crystal-kanban/internal/logging"
)

// logCommand tails the latest run log of a project.
func logCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("kanban log", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectID := fs.Int64("project", 0, "Project id (default: active project)")
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	listRuns := fs.Bool("runs", false, "List run logs instead of tailing")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	project, err := resolveProject(ctx, store, *projectID)
	store.Close()
	if err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, project.Path)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *listRuns {
		runs, err := logging.FindLogRuns(logDir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(stdout, "No log files found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %s  %d bytes\n", r.RunID, r.ModTime.Format("2006-01-02 15:04:05"), r.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}
