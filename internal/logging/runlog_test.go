// Package logging provides tests for JSONL run logs and tail output.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewRunLogger(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		baseDir := t.TempDir()
		projectDir := t.TempDir()

		logger, err := NewRunLogger(baseDir, projectDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if logger.RunID == "" {
			t.Error("expected RunID to be set")
		}
		if !strings.HasPrefix(logger.Dir, baseDir) {
			t.Errorf("expected Dir under %s, got %s", baseDir, logger.Dir)
		}
		if _, err := os.Stat(logger.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewRunLogger("", t.TempDir())
		if err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
		if !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})

	t.Run("creates nested log directory", func(t *testing.T) {
		baseDir := filepath.Join(t.TempDir(), "new-logs", "nested")

		logger, err := NewRunLogger(baseDir, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(baseDir); err != nil {
			t.Errorf("log directory not created: %v", err)
		}
	})
}

func TestRunLoggerLog(t *testing.T) {
	logger, err := NewRunLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewRunLogger: %v", err)
	}

	stamp := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := logger.Log(LoadEvent{Time: stamp, ProjectID: 7, Command: "tasks", Success: true, Tasks: 3}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := logger.Log(LoadEvent{ProjectID: 7, Errors: []string{"No active project found. Please select a project first."}}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events, err := ReadEvents(logger.LogPath)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Time.Equal(stamp) || events[0].Tasks != 3 || !events[0].Success {
		t.Errorf("first event mismatch: %+v", events[0])
	}
	if events[1].Time.IsZero() {
		t.Error("expected zero time to be filled in")
	}
	if len(events[1].Errors) != 1 || events[1].Success {
		t.Errorf("second event mismatch: %+v", events[1])
	}

	if err := logger.Log(LoadEvent{}); err == nil {
		t.Error("expected error logging after close")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestRunLoggerConcurrentLog(t *testing.T) {
	logger, err := NewRunLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewRunLogger: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = logger.Log(LoadEvent{ProjectID: int64(i), Success: true})
		}(i)
	}
	wg.Wait()
	logger.Close()

	events, err := ReadEvents(logger.LogPath)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 20 {
		t.Errorf("expected 20 events, got %d", len(events))
	}
}

func TestNilRunLogger(t *testing.T) {
	var logger *RunLogger
	if err := logger.Log(LoadEvent{}); err != nil {
		t.Errorf("nil Log: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-project", "my-project"},
		{"My Project!", "My_Project"},
		{"a  b", "a_b"},
		{"   ", "project"},
		{"###", "project"},
		{"v1.2_x", "v1.2_x"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindLogDir(t *testing.T) {
	base := t.TempDir()
	project := filepath.Join(t.TempDir(), "board")

	dir, err := FindLogDir(base, project)
	if err != nil {
		t.Fatalf("FindLogDir: %v", err)
	}
	want := filepath.Join(base, "board-"+hashPath(project))
	if dir != want {
		t.Errorf("got %q, want %q", dir, want)
	}

	other, _ := FindLogDir(base, filepath.Join(t.TempDir(), "board"))
	if other == dir {
		t.Error("projects with the same name in different places must not share a log dir")
	}

	rel, err := FindLogDir("logs", project)
	if err != nil {
		t.Fatalf("FindLogDir relative: %v", err)
	}
	if !strings.HasPrefix(rel, filepath.Join(project, "logs")) {
		t.Errorf("relative base should resolve under the project, got %q", rel)
	}

	if _, err := FindLogDir("", project); err == nil {
		t.Error("expected error for empty base dir")
	}
}

func TestFindLatestLog(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		got, err := FindLatestLog(filepath.Join(t.TempDir(), "nope"))
		if err != nil || got != "" {
			t.Errorf("expected empty result, got %q, %v", got, err)
		}
	})

	t.Run("picks newest jsonl", func(t *testing.T) {
		dir := t.TempDir()
		old := filepath.Join(dir, "20240101-000000-1.jsonl")
		newer := filepath.Join(dir, "20240102-000000-1.jsonl")
		other := filepath.Join(dir, "notes.txt")
		for _, p := range []string{old, newer, other} {
			if err := os.WriteFile(p, []byte("{}\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		now := time.Now()
		os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour))
		os.Chtimes(newer, now.Add(-time.Hour), now.Add(-time.Hour))
		os.Chtimes(other, now, now)

		got, err := FindLatestLog(dir)
		if err != nil {
			t.Fatalf("FindLatestLog: %v", err)
		}
		if got != newer {
			t.Errorf("got %q, want %q", got, newer)
		}

		runs, err := FindLogRuns(dir)
		if err != nil {
			t.Fatalf("FindLogRuns: %v", err)
		}
		if len(runs) != 2 || runs[0].RunID != "20240102-000000-1" {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	var content strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&content, "line %d\n", i)
	}
	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"all", 0, content.String()},
		{"last two", 2, "line 4\nline 5\n"},
		{"more than file", 10, content.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "x"), 0, false)
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTailLogFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	if err := os.WriteFile(path, []byte("first\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- TailLog(ctx, out, path, 1, true) }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintln(f, "second")
	f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "second") {
		if time.Now().After(deadline) {
			t.Fatalf("appended line not followed, got %q", out.String())
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("TailLog returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("TailLog did not stop after cancel")
	}

	if got := out.String(); got != "first\nsecond\n" {
		t.Errorf("got %q", got)
	}
}
