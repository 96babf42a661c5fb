package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/nibzard/crystal-kanban/internal/config"
)

// configCommand prints the effective configuration and where each value came from.
func configCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("kanban config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	type entry struct {
		Key    string              `json:"key"`
		Value  string              `json:"value"`
		Source config.ConfigSource `json:"source"`
	}
	entries := make([]entry, 0, len(config.Fields()))
	for _, field := range config.Fields() {
		entries = append(entries, entry{
			Key:    field,
			Value:  a.cfg.Value(field),
			Source: a.sources.Sources[field],
		})
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "Config file: %s\n\n", file)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
	}
	return tw.Flush()
}
