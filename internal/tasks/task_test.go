package tasks

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"todo", StatusTodo, false},
		{"In Progress", StatusInProgress, false},
		{"in_progress", StatusInProgress, false},
		{"WIP", StatusInProgress, false},
		{"done", StatusDone, false},
		{"planned", StatusPlanned, false},
		{" completed ", StatusCompleted, false},
		{"blocked", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	for _, in := range []string{"low", "Medium", " HIGH "} {
		if _, err := ParsePriority(in); err != nil {
			t.Errorf("ParsePriority(%q): unexpected error %v", in, err)
		}
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("expected error for urgent")
	}
}

func TestStatusFinished(t *testing.T) {
	finished := map[Status]bool{
		StatusTodo:       false,
		StatusPlanned:    false,
		StatusInProgress: false,
		StatusDone:       true,
		StatusCompleted:  true,
	}
	for s, want := range finished {
		if got := s.Finished(); got != want {
			t.Errorf("%s.Finished(): got %v, want %v", s, got, want)
		}
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{Status: StatusTodo}, false},
		{"past rfc3339", Task{Status: StatusTodo, DueDate: "2024-05-01T00:00:00Z"}, true},
		{"past date only", Task{Status: StatusInProgress, DueDate: "2024-05-31"}, true},
		{"future", Task{Status: StatusTodo, DueDate: "2024-07-01T00:00:00Z"}, false},
		{"past but done", Task{Status: StatusDone, DueDate: "2024-05-01T00:00:00Z"}, false},
		{"past but completed", Task{Status: StatusCompleted, DueDate: "2024-05-01"}, false},
		{"unparseable", Task{Status: StatusTodo, DueDate: "next week"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupByStatus(t *testing.T) {
	list := []Task{
		{ID: "1", Status: StatusTodo},
		{ID: "2", Status: StatusDone},
		{ID: "3", Status: StatusTodo},
		{ID: "4", Status: StatusCompleted},
	}

	groups := GroupByStatus(list)

	if len(groups) != len(Statuses()) {
		t.Fatalf("groups: got %d, want %d", len(groups), len(Statuses()))
	}
	if diff := cmp.Diff([]string{"1", "3"}, taskIDs(groups[StatusTodo])); diff != "" {
		t.Errorf("todo group mismatch (-want +got):\n%s", diff)
	}
	if len(groups[StatusInProgress]) != 0 || groups[StatusInProgress] == nil {
		t.Errorf("expected empty non-nil in-progress group, got %#v", groups[StatusInProgress])
	}
	if len(groups[StatusDone]) != 1 || len(groups[StatusCompleted]) != 1 {
		t.Errorf("unexpected finished groups: %v", groups)
	}
}

func TestNewSampleTaskIsValid(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task := NewSampleTask(now)

	if !strings.HasPrefix(task.ID, "task-") {
		t.Errorf("ID: got %q, want task- prefix", task.ID)
	}
	if task.DueDate != "2024-01-08T00:00:00Z" {
		t.Errorf("DueDate: got %q", task.DueDate)
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if verdict := ValidateTask(v); !verdict.Valid {
		t.Errorf("sample task invalid: %s", verdict.Reason)
	}

	if other := NewSampleTask(now); other.ID == task.ID {
		t.Errorf("expected unique ids, both %q", task.ID)
	}
}
