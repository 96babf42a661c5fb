// Package cmd implements the CLI command structure for kanban.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/crystal-kanban/internal/config"
	"github.com/nibzard/crystal-kanban/internal/logging"
	"github.com/nibzard/crystal-kanban/internal/projects"
	"github.com/nibzard/crystal-kanban/internal/tasks"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app carries the resolved configuration shared by subcommands.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
	now     func() time.Time
}

// Run executes the kanban CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("kanban", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	cfg := cws.Config
	a := &app{
		cfg:     cfg,
		sources: cws,
		logger:  logging.NewConsoleLoggerFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
		now:     time.Now,
	}

	// If no args or first arg is a flag, use "tasks" as default
	subcommand := "tasks"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "doctor":
		return doctorCommand(ctx, a, remainingArgs)
	case "config":
		return configCommand(a, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch subcommand {
	case "tasks", "ls":
		return tasksCommand(ctx, a, remainingArgs)
	case "project", "projects":
		return projectCommand(ctx, a, remainingArgs)
	case "new":
		return newCommand(ctx, a, remainingArgs)
	case "watch":
		return watchCommand(ctx, a, remainingArgs)
	case "log", "tail":
		return logCommand(ctx, a, remainingArgs)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func (a *app) openStore(ctx context.Context) (*projects.Store, error) {
	store, err := projects.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening project registry: %w", err)
	}
	return store, nil
}

func (a *app) newLoader(access tasks.FileAccess) *tasks.Loader {
	return tasks.NewLoader(access,
		tasks.WithLogger(a.logger),
		tasks.WithConcurrency(a.cfg.ReadConcurrency),
		tasks.WithLocale(a.cfg.Locale),
	)
}

// resolveProject returns the project with the given id, or the active
// project when id is zero.
func resolveProject(ctx context.Context, store *projects.Store, id int64) (projects.Project, error) {
	if id != 0 {
		return store.Get(ctx, id)
	}
	p, err := store.ActiveProject(ctx)
	if errors.Is(err, projects.ErrNoActiveProject) {
		return projects.Project{}, fmt.Errorf("%w: run 'kanban project use <id>' first", err)
	}
	return p, err
}

// runLog opens a run log for project when run logs are enabled. Failures are
// logged and yield a nil logger, which ignores writes.
func (a *app) runLog(project projects.Project) *logging.RunLogger {
	if !a.cfg.RunLogs || project.Path == "" {
		return nil
	}
	rl, err := logging.NewRunLogger(a.cfg.LogDir, project.Path)
	if err != nil {
		a.logger.Warn("run log disabled", "err", err)
		return nil
	}
	return rl
}

// recordLoad appends the outcome of a load to rl.
func (a *app) recordLoad(rl *logging.RunLogger, command string, res *tasks.LoadResult) {
	if rl == nil || res == nil {
		return
	}
	err := rl.Log(logging.LoadEvent{
		Time:      a.now().UTC(),
		ProjectID: res.ProjectID,
		Command:   command,
		Success:   res.Success,
		Tasks:     len(res.Tasks),
		Errors:    res.Errors,
	})
	if err != nil {
		a.logger.Warn("write run log", "err", err)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q", s)
	}
	return id, nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "kanban version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Kanban - task file loader for project boards")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  kanban [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tasks                      Load and list tasks (default command)")
	fmt.Fprintln(w, "  project add <name> [path]  Register a project directory")
	fmt.Fprintln(w, "  project list               List registered projects")
	fmt.Fprintln(w, "  project use <id>           Select the active project")
	fmt.Fprintln(w, "  project remove <id>        Unregister a project")
	fmt.Fprintln(w, "  new                        Write a sample task file")
	fmt.Fprintln(w, "  watch                      Live view that reloads on file changes")
	fmt.Fprintln(w, "  doctor                     Check config, registry and task files")
	fmt.Fprintln(w, "  config                     Show effective configuration and sources")
	fmt.Fprintln(w, "  log                        Show the latest run log")
	fmt.Fprintln(w, "  version                    Show version information")
	fmt.Fprintln(w, "  help                       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tasks Options:")
	fmt.Fprintln(w, "  -project int   Project id (default: active project)")
	fmt.Fprintln(w, "  -status string Only show tasks with these statuses (comma-separated)")
	fmt.Fprintln(w, "  -json          Print the load result as JSON")
	fmt.Fprintln(w, "  -verbose       Show more details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Log Options:")
	fmt.Fprintln(w, "  -n int         Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -f, -follow    Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -runs          List run logs instead of tailing")
}
