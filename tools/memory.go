// Key/value memory tools backed by the project's MemoryStore.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// --- save_memory ---

type SaveMemoryTool struct {
	tb *Toolbox
}

func NewSaveMemoryTool(tb *Toolbox) *SaveMemoryTool {
	return &SaveMemoryTool{tb: tb}
}

func (t *SaveMemoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "save_memory",
		Description: "Store a value under a key for later recall. Overwrites an existing key.",
		Parameters: []ToolParameter{
			{Name: "key", ParamType: "string", Description: "Memory key", Required: true},
			{Name: "value", ParamType: "string", Description: "Value to remember", Required: true},
		},
	}
}

type memoryKVArgs struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

func (t *SaveMemoryTool) parse(raw json.RawMessage) (memoryKVArgs, error) {
	var a memoryKVArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Key == "" {
		return a, missingArg("key")
	}
	if a.Value == nil {
		return a, missingArg("value")
	}
	return a, nil
}

func (t *SaveMemoryTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *SaveMemoryTool) Execute(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	if err := t.tb.Memory.Save(ctx, t.tb.ProjectID, a.Key, *a.Value); err != nil {
		return FailureResult(err), nil
	}
	return Successf("Saved memory %q.", a.Key), nil
}

// --- recall_memory ---

type RecallMemoryTool struct {
	tb *Toolbox
}

func NewRecallMemoryTool(tb *Toolbox) *RecallMemoryTool {
	return &RecallMemoryTool{tb: tb}
}

func (t *RecallMemoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "recall_memory",
		Description: "Recall the value stored under a key.",
		Parameters: []ToolParameter{
			{Name: "key", ParamType: "string", Description: "Memory key", Required: true},
		},
	}
}

type memoryKeyArgs struct {
	Key string `json:"key"`
}

func (t *RecallMemoryTool) parse(raw json.RawMessage) (memoryKeyArgs, error) {
	var a memoryKeyArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Key == "" {
		return a, missingArg("key")
	}
	return a, nil
}

func (t *RecallMemoryTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *RecallMemoryTool) Execute(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	value, ok, err := t.tb.Memory.Recall(ctx, t.tb.ProjectID, a.Key)
	if err != nil {
		return FailureResult(err), nil
	}
	if !ok {
		return FailureResultf("no memory stored under %q", a.Key), nil
	}
	return SuccessResult(value), nil
}

// --- list_memories ---

type ListMemoriesTool struct {
	tb *Toolbox
}

func NewListMemoriesTool(tb *Toolbox) *ListMemoriesTool {
	return &ListMemoriesTool{tb: tb}
}

func (t *ListMemoriesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_memories",
		Description: "List all stored memory keys and values for this project.",
		Parameters:  nil,
	}
}

func (t *ListMemoriesTool) Validate(json.RawMessage) error {
	return nil
}

func (t *ListMemoriesTool) Execute(ctx context.Context, _ json.RawMessage) (ToolResult, error) {
	memories, err := t.tb.Memory.List(ctx, t.tb.ProjectID)
	if err != nil {
		return FailureResult(err), nil
	}
	if len(memories) == 0 {
		return SuccessResult("No memories stored."), nil
	}

	keys := make([]string, 0, len(memories))
	for k := range memories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, memories[k])
	}
	return SuccessResult(strings.TrimSuffix(sb.String(), "\n")), nil
}

// --- delete_memory ---

type DeleteMemoryTool struct {
	tb *Toolbox
}

func NewDeleteMemoryTool(tb *Toolbox) *DeleteMemoryTool {
	return &DeleteMemoryTool{tb: tb}
}

func (t *DeleteMemoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "delete_memory",
		Description: "Delete the memory stored under a key.",
		Parameters: []ToolParameter{
			{Name: "key", ParamType: "string", Description: "Memory key", Required: true},
		},
	}
}

func (t *DeleteMemoryTool) parse(raw json.RawMessage) (memoryKeyArgs, error) {
	var a memoryKeyArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Key == "" {
		return a, missingArg("key")
	}
	return a, nil
}

func (t *DeleteMemoryTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *DeleteMemoryTool) Execute(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	existed, err := t.tb.Memory.Delete(ctx, t.tb.ProjectID, a.Key)
	if err != nil {
		return FailureResult(err), nil
	}
	if !existed {
		return FailureResultf("no memory stored under %q", a.Key), nil
	}
	return Successf("Deleted memory %q.", a.Key), nil
}

// --- update_memory ---

type UpdateMemoryTool struct {
	tb *Toolbox
}

func NewUpdateMemoryTool(tb *Toolbox) *UpdateMemoryTool {
	return &UpdateMemoryTool{tb: tb}
}

func (t *UpdateMemoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "update_memory",
		Description: "Update the value of an existing memory key.",
		Parameters: []ToolParameter{
			{Name: "key", ParamType: "string", Description: "Memory key", Required: true},
			{Name: "value", ParamType: "string", Description: "New value", Required: true},
		},
	}
}

func (t *UpdateMemoryTool) parse(raw json.RawMessage) (memoryKVArgs, error) {
	var a memoryKVArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Key == "" {
		return a, missingArg("key")
	}
	if a.Value == nil {
		return a, missingArg("value")
	}
	return a, nil
}

func (t *UpdateMemoryTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *UpdateMemoryTool) Execute(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	_, ok, err := t.tb.Memory.Recall(ctx, t.tb.ProjectID, a.Key)
	if err != nil {
		return FailureResult(err), nil
	}
	if !ok {
		return FailureResultf("no memory stored under %q", a.Key), nil
	}
	if err := t.tb.Memory.Save(ctx, t.tb.ProjectID, a.Key, *a.Value); err != nil {
		return FailureResult(err), nil
	}
	return Successf("Updated memory %q.", a.Key), nil
}

var (
	_ Tool = (*SaveMemoryTool)(nil)
	_ Tool = (*RecallMemoryTool)(nil)
	_ Tool = (*ListMemoriesTool)(nil)
	_ Tool = (*DeleteMemoryTool)(nil)
	_ Tool = (*UpdateMemoryTool)(nil)
)
