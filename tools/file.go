// File tools operating on the project repository.
//
// Every mutating tool follows the same shape: capture the before-content,
// perform the operation, then notify the callback with a FileChangeEvent
// carrying both versions and line-level diff stats. Outputs embed the path in
// backticks and the stats as (+N -M) so the transcript segmenter can recover
// them.

package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pocketforge/forge/model"
)

// --- read_file ---

type ReadFileTool struct {
	tb *Toolbox
}

func NewReadFileTool(tb *Toolbox) *ReadFileTool {
	return &ReadFileTool{tb: tb}
}

func (t *ReadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_file",
		Description: "Read the full content of a file in the project.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
		},
	}
}

type readFileArgs struct {
	Path string `json:"path"`
}

func (t *ReadFileTool) parse(raw json.RawMessage) (readFileArgs, error) {
	var a readFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	return a, nil
}

func (t *ReadFileTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *ReadFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	content, err := t.tb.Repo.ReadFile(a.Path)
	if err != nil {
		return FailureResult(err), nil
	}
	return SuccessResult(content), nil
}

// --- write_file ---

type WriteFileTool struct {
	tb *Toolbox
}

func NewWriteFileTool(tb *Toolbox) *WriteFileTool {
	return &WriteFileTool{tb: tb}
}

func (t *WriteFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "write_file",
		Description: "Create or overwrite a file with the given content.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
			{Name: "content", ParamType: "string", Description: "Full file content to write", Required: true},
		},
	}
}

type writeFileArgs struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

func (t *WriteFileTool) parse(raw json.RawMessage) (writeFileArgs, error) {
	var a writeFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	if a.Content == nil {
		return a, missingArg("content")
	}
	return a, nil
}

func (t *WriteFileTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *WriteFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	content := *a.Content

	before, readErr := t.tb.Repo.ReadFile(a.Path)
	existed := readErr == nil

	if existed {
		if err := t.tb.Repo.WriteFile(a.Path, content); err != nil {
			return FailureResult(err), nil
		}
	} else {
		// Probe create first; fall back to a plain write when creation
		// races with something else producing the file.
		if err := t.tb.Repo.CreateFile(a.Path, content); err != nil {
			if err := t.tb.Repo.WriteFile(a.Path, content); err != nil {
				return FailureResult(err), nil
			}
		}
		before = ""
	}

	stats := computeStats(before, content)
	changeType := model.ChangeCreated
	if existed {
		changeType = model.ChangeModified
	}
	t.tb.notifyChange(model.FileChangeEvent{
		Path:       a.Path,
		Type:       changeType,
		OldContent: before,
		NewContent: content,
		Stats:      stats,
	})

	verb := "Created"
	if existed {
		verb = "Updated"
	}
	return Successf("%s `%s` (+%d -%d)", verb, a.Path, stats.Added, stats.Removed), nil
}

// --- list_files ---

type ListFilesTool struct {
	tb *Toolbox
}

func NewListFilesTool(tb *Toolbox) *ListFilesTool {
	return &ListFilesTool{tb: tb}
}

func (t *ListFilesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_files",
		Description: "List files in the project, optionally under a directory.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory to list; empty for the whole project", Required: false},
		},
	}
}

type listFilesArgs struct {
	Path string `json:"path"`
}

func (t *ListFilesTool) Validate(raw json.RawMessage) error {
	var a listFilesArgs
	return decodeArgs(raw, &a)
}

func (t *ListFilesTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var a listFilesArgs
	if err := decodeArgs(raw, &a); err != nil {
		return FailureResult(err), nil
	}

	files, err := t.tb.Repo.FileTree()
	if err != nil {
		return FailureResult(err), nil
	}

	prefix := strings.Trim(a.Path, "/")
	var matched []string
	for _, f := range files {
		if prefix == "" || f == prefix || strings.HasPrefix(f, prefix+"/") {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return SuccessResult("No files found."), nil
	}
	return SuccessResult(strings.Join(matched, "\n")), nil
}

// --- delete_file ---

type DeleteFileTool struct {
	tb *Toolbox
}

func NewDeleteFileTool(tb *Toolbox) *DeleteFileTool {
	return &DeleteFileTool{tb: tb}
}

func (t *DeleteFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "delete_file",
		Description: "Delete a file from the project.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
		},
	}
}

func (t *DeleteFileTool) parse(raw json.RawMessage) (readFileArgs, error) {
	var a readFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	return a, nil
}

func (t *DeleteFileTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *DeleteFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	before, _ := t.tb.Repo.ReadFile(a.Path)
	if err := t.tb.Repo.DeleteFile(a.Path); err != nil {
		return FailureResult(err), nil
	}

	stats := computeStats(before, "")
	t.tb.notifyChange(model.FileChangeEvent{
		Path:       a.Path,
		Type:       model.ChangeDeleted,
		OldContent: before,
		Stats:      stats,
	})
	return Successf("Deleted `%s` (+%d -%d)", a.Path, stats.Added, stats.Removed), nil
}

// --- create_folder ---

type CreateFolderTool struct {
	tb *Toolbox
}

func NewCreateFolderTool(tb *Toolbox) *CreateFolderTool {
	return &CreateFolderTool{tb: tb}
}

func (t *CreateFolderTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "create_folder",
		Description: "Create a directory, including missing parents.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory path relative to the project root", Required: true},
		},
	}
}

func (t *CreateFolderTool) parse(raw json.RawMessage) (readFileArgs, error) {
	var a readFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	return a, nil
}

func (t *CreateFolderTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *CreateFolderTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}
	if err := t.tb.Repo.CreateFolder(a.Path); err != nil {
		return FailureResult(err), nil
	}
	return Successf("Created folder `%s`", a.Path), nil
}

// --- rename_file / copy_file / move_file ---

// twoPathArgs covers the source/destination tools.
type twoPathArgs struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	Source      string `json:"source_path"`
	Destination string `json:"destination_path"`
}

// paths normalizes the two accepted naming conventions.
func (a twoPathArgs) paths() (string, string) {
	src, dst := a.Source, a.Destination
	if src == "" {
		src = a.OldPath
	}
	if dst == "" {
		dst = a.NewPath
	}
	return src, dst
}

type RenameFileTool struct {
	tb *Toolbox
}

func NewRenameFileTool(tb *Toolbox) *RenameFileTool {
	return &RenameFileTool{tb: tb}
}

func (t *RenameFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "rename_file",
		Description: "Rename a file.",
		Parameters: []ToolParameter{
			{Name: "old_path", ParamType: "string", Description: "Current file path", Required: true},
			{Name: "new_path", ParamType: "string", Description: "New file path", Required: true},
		},
	}
}

func (t *RenameFileTool) parse(raw json.RawMessage) (string, string, error) {
	var a twoPathArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", "", err
	}
	src, dst := a.paths()
	if src == "" {
		return "", "", missingArg("old_path")
	}
	if dst == "" {
		return "", "", missingArg("new_path")
	}
	return src, dst, nil
}

func (t *RenameFileTool) Validate(raw json.RawMessage) error {
	_, _, err := t.parse(raw)
	return err
}

func (t *RenameFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	src, dst, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	content, _ := t.tb.Repo.ReadFile(src)
	if err := t.tb.Repo.RenameFile(src, dst); err != nil {
		return FailureResult(err), nil
	}

	t.tb.notifyChange(model.FileChangeEvent{
		Path:       dst,
		OldPath:    src,
		Type:       model.ChangeRenamed,
		OldContent: content,
		NewContent: content,
	})
	return Successf("Renamed `%s` to `%s`", src, dst), nil
}

type CopyFileTool struct {
	tb *Toolbox
}

func NewCopyFileTool(tb *Toolbox) *CopyFileTool {
	return &CopyFileTool{tb: tb}
}

func (t *CopyFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "copy_file",
		Description: "Copy a file to a new path.",
		Parameters: []ToolParameter{
			{Name: "source_path", ParamType: "string", Description: "File to copy", Required: true},
			{Name: "destination_path", ParamType: "string", Description: "Destination path", Required: true},
		},
	}
}

func (t *CopyFileTool) parse(raw json.RawMessage) (string, string, error) {
	var a twoPathArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", "", err
	}
	src, dst := a.paths()
	if src == "" {
		return "", "", missingArg("source_path")
	}
	if dst == "" {
		return "", "", missingArg("destination_path")
	}
	return src, dst, nil
}

func (t *CopyFileTool) Validate(raw json.RawMessage) error {
	_, _, err := t.parse(raw)
	return err
}

func (t *CopyFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	src, dst, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	if err := t.tb.Repo.CopyFile(src, dst); err != nil {
		return FailureResult(err), nil
	}

	content, _ := t.tb.Repo.ReadFile(dst)
	stats := computeStats("", content)
	t.tb.notifyChange(model.FileChangeEvent{
		Path:       dst,
		OldPath:    src,
		Type:       model.ChangeCopied,
		NewContent: content,
		Stats:      stats,
	})
	return Successf("Copied `%s` to `%s`", src, dst), nil
}

type MoveFileTool struct {
	tb *Toolbox
}

func NewMoveFileTool(tb *Toolbox) *MoveFileTool {
	return &MoveFileTool{tb: tb}
}

func (t *MoveFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "move_file",
		Description: "Move a file to a new path.",
		Parameters: []ToolParameter{
			{Name: "source_path", ParamType: "string", Description: "File to move", Required: true},
			{Name: "destination_path", ParamType: "string", Description: "Destination path", Required: true},
		},
	}
}

func (t *MoveFileTool) parse(raw json.RawMessage) (string, string, error) {
	var a twoPathArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", "", err
	}
	src, dst := a.paths()
	if src == "" {
		return "", "", missingArg("source_path")
	}
	if dst == "" {
		return "", "", missingArg("destination_path")
	}
	return src, dst, nil
}

func (t *MoveFileTool) Validate(raw json.RawMessage) error {
	_, _, err := t.parse(raw)
	return err
}

func (t *MoveFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	src, dst, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	content, _ := t.tb.Repo.ReadFile(src)
	if err := t.tb.Repo.MoveFile(src, dst); err != nil {
		return FailureResult(err), nil
	}

	t.tb.notifyChange(model.FileChangeEvent{
		Path:       dst,
		OldPath:    src,
		Type:       model.ChangeMoved,
		OldContent: content,
		NewContent: content,
	})
	return Successf("Moved `%s` to `%s`", src, dst), nil
}

// --- get_file_info ---

type GetFileInfoTool struct {
	tb *Toolbox
}

func NewGetFileInfoTool(tb *Toolbox) *GetFileInfoTool {
	return &GetFileInfoTool{tb: tb}
}

func (t *GetFileInfoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "get_file_info",
		Description: "Get size, modification time and line count for a file.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
		},
	}
}

func (t *GetFileInfoTool) parse(raw json.RawMessage) (readFileArgs, error) {
	var a readFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	return a, nil
}

func (t *GetFileInfoTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *GetFileInfoTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	info, err := t.tb.Repo.Stat(a.Path)
	if err != nil {
		return FailureResult(err), nil
	}
	if info.IsDir {
		return Successf("`%s` is a directory", a.Path), nil
	}

	lines := 0
	if content, err := t.tb.Repo.ReadFile(a.Path); err == nil {
		lines = countLines(content)
	}
	return Successf("`%s`: %d bytes, %d lines, modified %s",
		a.Path, info.Size, lines, info.ModTime.Format("2006-01-02 15:04:05")), nil
}

// --- append_to_file ---

type AppendToFileTool struct {
	tb *Toolbox
}

func NewAppendToFileTool(tb *Toolbox) *AppendToFileTool {
	return &AppendToFileTool{tb: tb}
}

func (t *AppendToFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "append_to_file",
		Description: "Append content to the end of a file, creating it if absent.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
			{Name: "content", ParamType: "string", Description: "Content to append", Required: true},
		},
	}
}

func (t *AppendToFileTool) parse(raw json.RawMessage) (writeFileArgs, error) {
	var a writeFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	if a.Content == nil {
		return a, missingArg("content")
	}
	return a, nil
}

func (t *AppendToFileTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *AppendToFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	before, readErr := t.tb.Repo.ReadFile(a.Path)
	existed := readErr == nil

	updated := before + *a.Content
	if err := t.tb.Repo.WriteFile(a.Path, updated); err != nil {
		return FailureResult(err), nil
	}

	stats := computeStats(before, updated)
	changeType := model.ChangeCreated
	if existed {
		changeType = model.ChangeModified
	}
	t.tb.notifyChange(model.FileChangeEvent{
		Path:       a.Path,
		Type:       changeType,
		OldContent: before,
		NewContent: updated,
		Stats:      stats,
	})
	return Successf("Appended to `%s` (+%d -%d)", a.Path, stats.Added, stats.Removed), nil
}

// Interface checks for this file's tools.
var (
	_ Tool = (*ReadFileTool)(nil)
	_ Tool = (*WriteFileTool)(nil)
	_ Tool = (*ListFilesTool)(nil)
	_ Tool = (*DeleteFileTool)(nil)
	_ Tool = (*CreateFolderTool)(nil)
	_ Tool = (*RenameFileTool)(nil)
	_ Tool = (*CopyFileTool)(nil)
	_ Tool = (*MoveFileTool)(nil)
	_ Tool = (*GetFileInfoTool)(nil)
	_ Tool = (*AppendToFileTool)(nil)
)
