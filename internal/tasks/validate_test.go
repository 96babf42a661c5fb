package tasks

import (
	"encoding/json"
	"strings"
	"testing"
)

func decodeAny(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestValidateTask(t *testing.T) {
	const base = `"id":"t1","title":"Title","status":"todo","priority":"low","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"`

	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string // substring expected in Verdict.Reason
	}{
		{name: "minimal valid", input: `{` + base + `}`, valid: true},
		{name: "all optional fields", input: `{` + base + `,"description":"d","assignee":"a","tags":["x","y"],"dueDate":"2024-02-01","branch":"main"}`, valid: true},
		{name: "unknown fields ignored", input: `{` + base + `,"worktreeId":7,"executionOrder":2}`, valid: true},
		{name: "case-variant keys ignored", input: `{` + base + `,"ID":7,"STATUS":"bogus","Title":"  "}`, valid: true},
		{name: "empty tags", input: `{` + base + `,"tags":[]}`, valid: true},
		{name: "status planned", input: `{"id":"t1","title":"T","status":"planned","priority":"high","createdAt":"x","updatedAt":"y"}`, valid: true},
		{name: "status completed", input: `{"id":"t1","title":"T","status":"completed","priority":"medium","createdAt":"x","updatedAt":"y"}`, valid: true},
		{name: "bare string", input: `"not a task"`, reason: "expected object, got string"},
		{name: "null", input: `null`, reason: "expected object, got null"},
		{name: "array", input: `[{` + base + `}]`, reason: "expected object, got array"},
		{name: "number", input: `3`, reason: "expected object, got number"},
		{name: "missing fields", input: `{"id":"t1","title":"T"}`, reason: "missing"},
		{name: "unknown status", input: `{"id":"t1","title":"T","status":"blocked","priority":"low","createdAt":"x","updatedAt":"y"}`, reason: "status"},
		{name: "unknown priority", input: `{"id":"t1","title":"T","status":"todo","priority":"urgent","createdAt":"x","updatedAt":"y"}`, reason: "priority"},
		{name: "numeric id", input: `{"id":1,"title":"T","status":"todo","priority":"low","createdAt":"x","updatedAt":"y"}`, reason: "id"},
		{name: "blank id", input: `{"id":"  ","title":"T","status":"todo","priority":"low","createdAt":"x","updatedAt":"y"}`, reason: "id: must not be blank"},
		{name: "blank title", input: `{"id":"t1","title":"\t\n","status":"todo","priority":"low","createdAt":"x","updatedAt":"y"}`, reason: "title: must not be blank"},
		{name: "empty createdAt", input: `{"id":"t1","title":"T","status":"todo","priority":"low","createdAt":"","updatedAt":"y"}`, reason: "createdAt: must not be blank"},
		{name: "null description", input: `{` + base + `,"description":null}`, reason: "description"},
		{name: "numeric assignee", input: `{` + base + `,"assignee":3}`, reason: "assignee"},
		{name: "tags not array", input: `{` + base + `,"tags":"ui"}`, reason: "tags"},
		{name: "tags with number", input: `{` + base + `,"tags":["ui",2]}`, reason: "tags[1]"},
		{name: "dueDate number", input: `{` + base + `,"dueDate":20240101}`, reason: "dueDate"},
		{name: "branch not string", input: `{` + base + `,"branch":true}`, reason: "branch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateTask(decodeAny(t, tt.input))
			if got.Valid != tt.valid {
				t.Fatalf("Valid: got %v, want %v (reason %q)", got.Valid, tt.valid, got.Reason)
			}
			if tt.valid {
				if got.Reason != "" {
					t.Errorf("expected empty reason, got %q", got.Reason)
				}
				return
			}
			if !strings.Contains(got.Reason, tt.reason) {
				t.Errorf("Reason: got %q, want substring %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestValidateTaskNonJSONValue(t *testing.T) {
	got := ValidateTask(struct{}{})
	if got.Valid {
		t.Fatal("expected struct value to be invalid")
	}
	if !strings.Contains(got.Reason, "expected object") {
		t.Errorf("unexpected reason %q", got.Reason)
	}
}
