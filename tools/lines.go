// Line-addressed file tools. Lines are 1-based, matching what editors show.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pocketforge/forge/model"
)

// --- insert_at_line ---

type InsertAtLineTool struct {
	tb *Toolbox
}

func NewInsertAtLineTool(tb *Toolbox) *InsertAtLineTool {
	return &InsertAtLineTool{tb: tb}
}

func (t *InsertAtLineTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "insert_at_line",
		Description: "Insert content before the given 1-based line of a file.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
			{Name: "line", ParamType: "integer", Description: "1-based line number to insert before; past-the-end appends", Required: true},
			{Name: "content", ParamType: "string", Description: "Content to insert", Required: true},
		},
	}
}

type insertAtLineArgs struct {
	Path    string  `json:"path"`
	Line    *int    `json:"line"`
	Content *string `json:"content"`
}

func (t *InsertAtLineTool) parse(raw json.RawMessage) (insertAtLineArgs, error) {
	var a insertAtLineArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	if a.Line == nil {
		return a, missingArg("line")
	}
	if a.Content == nil {
		return a, missingArg("content")
	}
	return a, nil
}

func (t *InsertAtLineTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *InsertAtLineTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	if *a.Line < 1 {
		return FailureResultf("line must be >= 1, got %d", *a.Line), nil
	}

	before, err := t.tb.Repo.ReadFile(a.Path)
	if err != nil {
		return FailureResult(err), nil
	}

	lines := strings.Split(before, "\n")
	idx := *a.Line - 1
	if idx > len(lines) {
		idx = len(lines)
	}

	inserted := strings.Split(strings.TrimSuffix(*a.Content, "\n"), "\n")
	updated := make([]string, 0, len(lines)+len(inserted))
	updated = append(updated, lines[:idx]...)
	updated = append(updated, inserted...)
	updated = append(updated, lines[idx:]...)
	after := strings.Join(updated, "\n")

	if err := t.tb.Repo.WriteFile(a.Path, after); err != nil {
		return FailureResult(err), nil
	}

	stats := computeStats(before, after)
	t.tb.notifyChange(model.FileChangeEvent{
		Path:       a.Path,
		Type:       model.ChangeModified,
		OldContent: before,
		NewContent: after,
		Stats:      stats,
	})
	return Successf("Inserted %d line(s) into `%s` (+%d -%d)", len(inserted), a.Path, stats.Added, stats.Removed), nil
}

// --- read_lines ---

type ReadLinesTool struct {
	tb *Toolbox
}

func NewReadLinesTool(tb *Toolbox) *ReadLinesTool {
	return &ReadLinesTool{tb: tb}
}

func (t *ReadLinesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_lines",
		Description: "Read a 1-based inclusive line range from a file.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
			{Name: "start", ParamType: "integer", Description: "First line to read (1-based)", Required: true},
			{Name: "end", ParamType: "integer", Description: "Last line to read, inclusive", Required: true},
		},
	}
}

type readLinesArgs struct {
	Path  string `json:"path"`
	Start *int   `json:"start"`
	End   *int   `json:"end"`
}

func (t *ReadLinesTool) parse(raw json.RawMessage) (readLinesArgs, error) {
	var a readLinesArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	if a.Start == nil {
		return a, missingArg("start")
	}
	if a.End == nil {
		return a, missingArg("end")
	}
	return a, nil
}

func (t *ReadLinesTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *ReadLinesTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	start, end := *a.Start, *a.End
	if start < 1 || end < start {
		return FailureResultf("invalid line range %d-%d", start, end), nil
	}

	content, err := t.tb.Repo.ReadFile(a.Path)
	if err != nil {
		return FailureResult(err), nil
	}

	lines := strings.Split(content, "\n")
	if start > len(lines) {
		return FailureResultf("file `%s` has only %d lines", a.Path, len(lines)), nil
	}
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&sb, "%d: %s\n", i, lines[i-1])
	}
	return SuccessResult(strings.TrimSuffix(sb.String(), "\n")), nil
}

var (
	_ Tool = (*InsertAtLineTool)(nil)
	_ Tool = (*ReadLinesTool)(nil)
)
