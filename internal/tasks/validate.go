package tasks

import (
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/crystal-kanban/internal/utils"
)

// taskSchemaJSON describes the structural shape of a task record. Blank-string
// checks happen in Go because JSON Schema has no trim semantics.
const taskSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "title", "status", "priority", "createdAt", "updatedAt"],
  "properties": {
    "id": {"type": "string"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "status": {"enum": ["todo", "in-progress", "done", "planned", "completed"]},
    "priority": {"enum": ["low", "medium", "high"]},
    "assignee": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "createdAt": {"type": "string"},
    "updatedAt": {"type": "string"},
    "dueDate": {"type": "string"},
    "branch": {"type": "string"}
  }
}`

var taskSchema = jsonschema.MustCompileString("task.schema.json", taskSchemaJSON)

// nonBlankFields must contain at least one non-whitespace character.
var nonBlankFields = []string{"id", "title", "createdAt", "updatedAt"}

// Verdict is the outcome of validating one decoded task record.
type Verdict struct {
	Valid bool
	// Reason names the first failed check, as "path: message".
	Reason string
}

func invalid(path, format string, args ...any) Verdict {
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		msg = path + ": " + msg
	}
	return Verdict{Reason: msg}
}

// ValidateTask checks a value produced by json.Unmarshal into an any against
// the task record rules. It has no side effects.
func ValidateTask(v any) Verdict {
	obj, ok := v.(map[string]any)
	if !ok {
		return invalid("", "expected object, got %s", jsonKind(v))
	}

	if err := taskSchema.Validate(obj); err != nil {
		return Verdict{Reason: schemaReason(err)}
	}

	for _, field := range nonBlankFields {
		s, _ := obj[field].(string)
		if strings.TrimSpace(s) == "" {
			return invalid(field, "must not be blank")
		}
	}

	return Verdict{Valid: true}
}

// schemaReason flattens a schema error to its first leaf cause.
func schemaReason(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if path := utils.JSONPointerToPath(ve.InstanceLocation); path != "" {
		return path + ": " + ve.Message
	}
	return ve.Message
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
