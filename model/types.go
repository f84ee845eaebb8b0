// Package model holds the shared domain types exchanged between the tool
// layer, the agent loop, and presentation: file change notifications, todo
// items, and per-run statistics.
package model

import (
	"fmt"
	"strings"
)

// ChangeType classifies a file mutation reported by a tool.
type ChangeType string

const (
	ChangeCreated  ChangeType = "CREATED"
	ChangeModified ChangeType = "MODIFIED"
	ChangeDeleted  ChangeType = "DELETED"
	ChangeRenamed  ChangeType = "RENAMED"
	ChangeCopied   ChangeType = "COPIED"
	ChangeMoved    ChangeType = "MOVED"
)

// DiffStats summarizes a change as added/removed line counts.
type DiffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// FileChangeEvent describes one file mutation, with enough context for a
// review surface to render a diff. OldContent is empty for creations,
// NewContent is empty for deletions. For renames, copies and moves Path is
// the destination and OldPath the source.
type FileChangeEvent struct {
	Path       string     `json:"path"`
	OldPath    string     `json:"old_path,omitempty"`
	Type       ChangeType `json:"type"`
	OldContent string     `json:"old_content,omitempty"`
	NewContent string     `json:"new_content,omitempty"`
	Stats      DiffStats  `json:"stats"`
}

// TodoStatus is the lifecycle state of a todo item.
type TodoStatus string

const (
	TodoPending    TodoStatus = "PENDING"
	TodoInProgress TodoStatus = "IN_PROGRESS"
	TodoCompleted  TodoStatus = "COMPLETED"
)

// ParseTodoStatus parses a status string case-insensitively.
func ParseTodoStatus(s string) (TodoStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return TodoPending, nil
	case "IN_PROGRESS":
		return TodoInProgress, nil
	case "COMPLETED":
		return TodoCompleted, nil
	default:
		return "", fmt.Errorf("invalid todo status: %q", s)
	}
}

// TodoItem is a single planning entry scoped to a project.
type TodoItem struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TodoStatus `json:"status"`
}

// ToolCallStats aggregates tool usage across an agent run.
type ToolCallStats struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	ByName    map[string]int `json:"by_name,omitempty"`
}

// Record counts one tool invocation.
func (s *ToolCallStats) Record(name string, ok bool) {
	s.Total++
	if ok {
		s.Succeeded++
	} else {
		s.Failed++
	}
	if s.ByName == nil {
		s.ByName = make(map[string]int)
	}
	s.ByName[name]++
}
