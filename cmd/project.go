package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/nibzard/crystal-kanban/internal/config"
	"github.com/nibzard/crystal-kanban/internal/projects"
)

// projectCommand manages the project registry.
func projectCommand(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("project: missing subcommand (add, list, use, remove)")
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		return projectAdd(ctx, store, rest)
	case "list", "ls":
		return projectList(ctx, store, rest)
	case "use":
		return projectUse(ctx, store, rest)
	case "remove", "rm":
		return projectRemove(ctx, store, rest)
	default:
		return fmt.Errorf("project: unknown subcommand %q", sub)
	}
}

func projectAdd(ctx context.Context, store *projects.Store, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: kanban project add <name> [path]")
	}
	name, dir := args[0], "."
	if len(args) == 2 {
		dir = config.ExpandPath(args[1])
	}

	p, err := store.Add(ctx, name, dir)
	if err != nil {
		return err
	}

	// The first registered project becomes active.
	if _, err := store.ActiveProject(ctx); errors.Is(err, projects.ErrNoActiveProject) {
		if err := store.SetActive(ctx, p.ID); err != nil {
			return err
		}
		p.Active = true
	}

	fmt.Fprintf(stdout, "Added project %d: %s (%s)\n", p.ID, p.Name, p.Path)
	if p.Active {
		fmt.Fprintln(stdout, "Project is now active.")
	}
	return nil
}

func projectList(ctx context.Context, store *projects.Store, args []string) error {
	fs := flag.NewFlagSet("kanban project list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print projects as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := store.List(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		if list == nil {
			list = []projects.Project{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(stdout, "No projects registered. Use 'kanban project add <name> <path>'.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tPATH")
	for _, p := range list {
		marker := ""
		if p.Active {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", marker, p.ID, p.Name, p.Path)
	}
	return tw.Flush()
}

func projectUse(ctx context.Context, store *projects.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: kanban project use <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := store.SetActive(ctx, id); err != nil {
		return err
	}
	p, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Active project: %d %s\n", p.ID, p.Name)
	return nil
}

func projectRemove(ctx context.Context, store *projects.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: kanban project remove <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Removed project %d\n", id)
	return nil
}
