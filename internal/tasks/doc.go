// Package tasks loads and validates Kanban task files.
//
// Task files live under the project-relative tasks/ directory. Each *.json file
// holds either a single task object or an array of task objects:
//
//	[
//	  {
//	    "id": "task-1",
//	    "title": "Wire the board",
//	    "description": "Optional details",
//	    "status": "in-progress",
//	    "priority": "high",
//	    "assignee": "sam",
//	    "tags": ["ui"],
//	    "createdAt": "2024-01-01T00:00:00Z",
//	    "updatedAt": "2024-01-02T00:00:00Z",
//	    "dueDate": "2024-02-01T00:00:00Z",
//	    "branch": "feature/board"
//	  }
//	]
//
// # Loading
//
// Loader.LoadTasks never fails on bad input data. Unreadable files, malformed
// JSON, records that fail validation and duplicate ids are reported as advisory
// errors next to the tasks that could be recovered. Only a missing active
// project, a failed directory listing or an unexpected panic make the load
// fail as a whole.
//
// # Task Status Values
//
// Two status vocabularies are in use by task authors and both are accepted:
//
//   - "todo", "in-progress", "done"
//   - "planned", "in-progress", "completed"
//
// # Ordering
//
// Loaded tasks are sorted by title using locale-aware collation, so the result
// order never depends on file read order.
package tasks
