package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nibzard/crystal-kanban/internal/utils"
)

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusPlanned    Status = "planned"
	StatusCompleted  Status = "completed"
)

// Statuses returns every accepted status in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusPlanned, StatusInProgress, StatusDone, StatusCompleted}
}

// Valid reports whether s is one of the accepted statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusPlanned, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus normalizes user input such as "In Progress" or "in_progress"
// into an accepted status.
func ParseStatus(input string) (Status, error) {
	s := Status(utils.NormalizeToken(input))
	if s == "inprogress" || s == "wip" {
		s = StatusInProgress
	}
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q, must be one of: todo, in-progress, done, planned, completed", input)
	}
	return s, nil
}

// Finished reports whether the status marks the task as complete.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusCompleted
}

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the accepted priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority normalizes user input into an accepted priority.
func ParsePriority(input string) (Priority, error) {
	p := Priority(utils.NormalizeToken(input))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q, must be one of: low, medium, high", input)
	}
	return p, nil
}

// Task is a validated task record.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Assignee    string   `json:"assignee,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	DueDate     string   `json:"dueDate,omitempty"`
	Branch      string   `json:"branch,omitempty"` // git branch/worktree association
}

// DueTime parses DueDate as RFC 3339 or a plain calendar date.
// The second return value is false when there is no usable due date.
func (t *Task) DueTime() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if ts, err := time.Parse(layout, t.DueDate); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// IsOverdue reports whether the task is past its due date and not finished.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status.Finished() {
		return false
	}
	due, ok := t.DueTime()
	if !ok {
		return false
	}
	return due.Before(now)
}

// GroupByStatus buckets tasks by status, preserving their relative order.
// Every accepted status has an entry, possibly empty.
func GroupByStatus(list []Task) map[Status][]Task {
	groups := make(map[Status][]Task, len(Statuses()))
	for _, s := range Statuses() {
		groups[s] = []Task{}
	}
	for _, t := range list {
		groups[t.Status] = append(groups[t.Status], t)
	}
	return groups
}

// NewSampleTask returns a valid task for seeding a project's task directory.
func NewSampleTask(now time.Time) Task {
	stamp := now.UTC().Format(time.RFC3339)
	return Task{
		ID:          "task-" + uuid.NewString()[:8],
		Title:       "Sample Task",
		Description: "This is a sample task for testing the task loader",
		Status:      StatusTodo,
		Priority:    PriorityMedium,
		Assignee:    "Developer",
		Tags:        []string{"sample", "test"},
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
		DueDate:     now.UTC().Add(7 * 24 * time.Hour).Format(time.RFC3339),
	}
}
