// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/crystal-kanban/internal/tasks"
)

// LoadFunc performs one task load for the watched project.
type LoadFunc func(ctx context.Context) *tasks.LoadResult

// WatchOptions configures the watch view.
type WatchOptions struct {
	// Project is the label shown in the header.
	Project string
	// Load is called on start, on every change signal and on manual reload.
	Load LoadFunc
	// Changes delivers debounced file change signals. May be nil.
	Changes <-chan struct{}
	// Now defaults to time.Now.
	Now func() time.Time
}

// RunWatch runs the watch view until the user quits or ctx is done.
func RunWatch(ctx context.Context, opts WatchOptions) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("watch requires a TTY")
	}
	if opts.Load == nil {
		return fmt.Errorf("watch: no load function")
	}

	model := newWatchModel(ctx, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type watchModel struct {
	ctx      context.Context
	project  string
	load     LoadFunc
	changes  <-chan struct{}
	now      func() time.Time
	result   *tasks.LoadResult
	loadedAt time.Time
	reloads  int
	watching bool
	filter   tasks.Status
	showHelp bool

	// loadSeq numbers started loads; shownSeq is the load currently displayed.
	loadSeq  int
	shownSeq int
}

type loadedMsg struct {
	seq    int
	result *tasks.LoadResult
	at     time.Time
}

type changeMsg struct{}

type changesClosedMsg struct{}

func newWatchModel(ctx context.Context, opts WatchOptions) *watchModel {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &watchModel{
		ctx:      ctx,
		project:  opts.Project,
		load:     opts.Load,
		changes:  opts.Changes,
		now:      now,
		watching: opts.Changes != nil,
	}
}

func (m *watchModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd()}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			return m, m.loadCmd()
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "0":
			m.filter = ""
			return m, nil
		case "1", "2", "3", "4", "5":
			m.filter = tasks.Statuses()[msg.String()[0]-'1']
			return m, nil
		}
	case loadedMsg:
		if msg.seq < m.shownSeq {
			return m, nil
		}
		m.shownSeq = msg.seq
		m.result = msg.result
		m.loadedAt = msg.at
		m.reloads++
	case changeMsg:
		return m, tea.Batch(m.loadCmd(), waitForChange(m.changes))
	case changesClosedMsg:
		m.watching = false
	}
	return m, nil
}

func (m *watchModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.project)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.watching)
		return b.String()
	}

	if m.result == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.watching)
		return b.String()
	}

	writeStatusLine(&b, m.result, m.loadedAt, m.reloads)
	writeCounts(&b, m.result.Tasks)
	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}
	writeTaskList(&b, m.result.Tasks, m.filter, m.now())
	writeErrors(&b, m.result)
	writeFooter(&b, m.watching)
	return b.String()
}

func (m *watchModel) loadCmd() tea.Cmd {
	m.loadSeq++
	seq, load, ctx, now := m.loadSeq, m.load, m.ctx, m.now
	return func() tea.Msg {
		return loadedMsg{seq: seq, result: load(ctx), at: now()}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return changesClosedMsg{}
		}
		return changeMsg{}
	}
}

func writeTitle(b *strings.Builder, project string) {
	title := "Kanban Tasks"
	if project != "" {
		title += " - " + project
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeStatusLine(b *strings.Builder, result *tasks.LoadResult, at time.Time, reloads int) {
	state := okStyle.Render("loaded")
	if !result.Success {
		state = errorStyle.Render("failed")
	} else if result.Warnings() {
		state = warnStyle.Render("loaded with warnings")
	}
	fmt.Fprintf(b, "%s at %s (load #%d)\n\n", state, at.Format("15:04:05"), reloads)
}

func writeCounts(b *strings.Builder, list []tasks.Task) {
	groups := tasks.GroupByStatus(list)
	parts := make([]string, 0, len(tasks.Statuses()))
	for _, s := range tasks.Statuses() {
		parts = append(parts, fmt.Sprintf("%s: %d", s, len(groups[s])))
	}
	b.WriteString(headerStyle.Render("Overview") + "\n\n")
	b.WriteString("  " + strings.Join(parts, "  ") + "\n\n")
}

func writeTaskList(b *strings.Builder, list []tasks.Task, filter tasks.Status, now time.Time) {
	b.WriteString(headerStyle.Render("Tasks") + "\n\n")
	shown := 0
	for i := range list {
		t := &list[i]
		if filter != "" && t.Status != filter {
			continue
		}
		b.WriteString(FormatTask(t, now) + "\n")
		shown++
	}
	if shown == 0 {
		b.WriteString(dimStyle.Render("  No tasks.") + "\n")
	}
	b.WriteString("\n")
}

func writeErrors(b *strings.Builder, result *tasks.LoadResult) {
	if len(result.Errors) == 0 {
		return
	}
	style := warnStyle
	label := "Warnings"
	if !result.Success {
		style = errorStyle
		label = "Errors"
	}
	fmt.Fprintf(b, "%s (%d)\n\n", headerStyle.Render(label), len(result.Errors))
	for _, e := range result.Errors {
		b.WriteString("  " + style.Render(e) + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	for i, s := range tasks.Statuses() {
		fmt.Fprintf(b, "  %d            Filter by %s\n", i+1, s)
	}
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, watching bool) {
	mode := "watching for changes"
	if !watching {
		mode = "not watching, press r to reload"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Press h for help | q to quit | %s", mode)) + "\n")
}

// StatusIcon returns a one-character marker for a status.
func StatusIcon(s tasks.Status) string {
	switch s {
	case tasks.StatusPlanned:
		return "~"
	case tasks.StatusInProgress:
		return ">"
	case tasks.StatusDone, tasks.StatusCompleted:
		return "x"
	default:
		return " "
	}
}

// FormatTask renders one task line.
func FormatTask(t *tasks.Task, now time.Time) string {
	line := fmt.Sprintf("  %s [%s] (%s) %s", StatusIcon(t.Status), t.ID, t.Priority, t.Title)
	if t.Branch != "" {
		line += dimStyle.Render(" @" + t.Branch)
	}
	if t.IsOverdue(now) {
		line += " " + overdueStyle.Render("overdue")
	}
	return line
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
