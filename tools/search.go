// Search and bulk-edit tools.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pocketforge/forge/model"
)

// maxDiffLines caps diff_files output for large files.
const maxDiffLines = 50

// --- search_files ---

type SearchFilesTool struct {
	tb *Toolbox
}

func NewSearchFilesTool(tb *Toolbox) *SearchFilesTool {
	return &SearchFilesTool{tb: tb}
}

func (t *SearchFilesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "search_files",
		Description: "Case-insensitive text search across project files.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "Text to search for", Required: true},
			{Name: "pattern", ParamType: "string", Description: "Glob pattern limiting which files are searched", Required: false},
		},
	}
}

type searchFilesArgs struct {
	Query   string `json:"query"`
	Pattern string `json:"pattern"`
}

func (t *SearchFilesTool) parse(raw json.RawMessage) (searchFilesArgs, error) {
	var a searchFilesArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Query == "" {
		return a, missingArg("query")
	}
	return a, nil
}

func (t *SearchFilesTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *SearchFilesTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	files, err := t.tb.Repo.FileTree()
	if err != nil {
		return FailureResult(err), nil
	}

	needle := strings.ToLower(a.Query)
	var sb strings.Builder
	matches := 0
	for _, path := range files {
		if a.Pattern != "" && !matchPattern(path, a.Pattern) {
			continue
		}
		content, err := t.tb.Repo.ReadFile(path)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(content, "\n") {
			if strings.Contains(strings.ToLower(line), needle) {
				fmt.Fprintf(&sb, "%s:%d: %s\n", path, i+1, strings.TrimSpace(line))
				matches++
			}
		}
	}

	if matches == 0 {
		return Successf("No matches for %q.", a.Query), nil
	}
	return SuccessResult(strings.TrimSuffix(sb.String(), "\n")), nil
}

// --- search_replace ---

type SearchReplaceTool struct {
	tb *Toolbox
}

func NewSearchReplaceTool(tb *Toolbox) *SearchReplaceTool {
	return &SearchReplaceTool{tb: tb}
}

func (t *SearchReplaceTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "search_replace",
		Description: "Replace text across project files, with an optional dry run.",
		Parameters: []ToolParameter{
			{Name: "old", ParamType: "string", Description: "Text to replace", Required: true},
			{Name: "new", ParamType: "string", Description: "Replacement text", Required: true},
			{Name: "pattern", ParamType: "string", Description: "Glob pattern limiting which files are touched", Required: false},
			{Name: "dry_run", ParamType: "boolean", Description: "Report counts without writing", Required: false},
		},
	}
}

type searchReplaceArgs struct {
	Old     string  `json:"old"`
	New     *string `json:"new"`
	Pattern string  `json:"pattern"`
	DryRun  bool    `json:"dry_run"`
}

func (t *SearchReplaceTool) parse(raw json.RawMessage) (searchReplaceArgs, error) {
	var a searchReplaceArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Old == "" {
		return a, missingArg("old")
	}
	if a.New == nil {
		return a, missingArg("new")
	}
	return a, nil
}

func (t *SearchReplaceTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *SearchReplaceTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	files, err := t.tb.Repo.FileTree()
	if err != nil {
		return FailureResult(err), nil
	}

	var sb strings.Builder
	total := 0
	for _, path := range files {
		if a.Pattern != "" && !matchPattern(path, a.Pattern) {
			continue
		}
		before, err := t.tb.Repo.ReadFile(path)
		if err != nil {
			continue
		}
		count := strings.Count(before, a.Old)
		if count == 0 {
			continue
		}

		if !a.DryRun {
			after := strings.ReplaceAll(before, a.Old, *a.New)
			if err := t.tb.Repo.WriteFile(path, after); err != nil {
				return FailureResult(err), nil
			}
			stats := computeStats(before, after)
			t.tb.notifyChange(model.FileChangeEvent{
				Path:       path,
				Type:       model.ChangeModified,
				OldContent: before,
				NewContent: after,
				Stats:      stats,
			})
		}

		fmt.Fprintf(&sb, "%s: %d replacement(s)\n", path, count)
		total += count
	}

	verb := "Replaced"
	if a.DryRun {
		verb = "Would replace"
	}
	fmt.Fprintf(&sb, "%s %d occurrence(s) in total", verb, total)
	return SuccessResult(sb.String()), nil
}

// --- patch_file ---

type PatchFileTool struct {
	tb *Toolbox
}

func NewPatchFileTool(tb *Toolbox) *PatchFileTool {
	return &PatchFileTool{tb: tb}
}

func (t *PatchFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "patch_file",
		Description: "Replace one exact occurrence of old content with new content in a file.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path relative to the project root", Required: true},
			{Name: "old_content", ParamType: "string", Description: "Exact content to replace", Required: true},
			{Name: "new_content", ParamType: "string", Description: "Replacement content", Required: true},
		},
	}
}

type patchFileArgs struct {
	Path       string  `json:"path"`
	OldContent string  `json:"old_content"`
	NewContent *string `json:"new_content"`
}

func (t *PatchFileTool) parse(raw json.RawMessage) (patchFileArgs, error) {
	var a patchFileArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, missingArg("path")
	}
	if a.OldContent == "" {
		return a, missingArg("old_content")
	}
	if a.NewContent == nil {
		return a, missingArg("new_content")
	}
	return a, nil
}

func (t *PatchFileTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *PatchFileTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	before, err := t.tb.Repo.ReadFile(a.Path)
	if err != nil {
		return FailureResult(err), nil
	}
	if err := t.tb.Repo.PatchFile(a.Path, a.OldContent, *a.NewContent); err != nil {
		return FailureResult(err), nil
	}

	after, _ := t.tb.Repo.ReadFile(a.Path)
	stats := computeStats(before, after)
	t.tb.notifyChange(model.FileChangeEvent{
		Path:       a.Path,
		Type:       model.ChangeModified,
		OldContent: before,
		NewContent: after,
		Stats:      stats,
	})
	return Successf("Patched `%s` (+%d -%d)", a.Path, stats.Added, stats.Removed), nil
}

// --- find_files ---

type FindFilesTool struct {
	tb *Toolbox
}

func NewFindFilesTool(tb *Toolbox) *FindFilesTool {
	return &FindFilesTool{tb: tb}
}

func (t *FindFilesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "find_files",
		Description: "Find files matching a glob pattern (* within a segment, ** across segments).",
		Parameters: []ToolParameter{
			{Name: "pattern", ParamType: "string", Description: "Glob pattern, e.g. *.js or src/**/*.go", Required: true},
		},
	}
}

type findFilesArgs struct {
	Pattern string `json:"pattern"`
}

func (t *FindFilesTool) parse(raw json.RawMessage) (findFilesArgs, error) {
	var a findFilesArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Pattern == "" {
		return a, missingArg("pattern")
	}
	return a, nil
}

func (t *FindFilesTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *FindFilesTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	files, err := t.tb.Repo.FileTree()
	if err != nil {
		return FailureResult(err), nil
	}

	var matched []string
	for _, f := range files {
		if matchPattern(f, a.Pattern) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return Successf("No files match %q.", a.Pattern), nil
	}
	return SuccessResult(strings.Join(matched, "\n")), nil
}

// --- diff_files ---

type DiffFilesTool struct {
	tb *Toolbox
}

func NewDiffFilesTool(tb *Toolbox) *DiffFilesTool {
	return &DiffFilesTool{tb: tb}
}

func (t *DiffFilesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "diff_files",
		Description: "Compare two files line by line, reporting up to 50 differences.",
		Parameters: []ToolParameter{
			{Name: "file1", ParamType: "string", Description: "First file path", Required: true},
			{Name: "file2", ParamType: "string", Description: "Second file path", Required: true},
		},
	}
}

type diffFilesArgs struct {
	File1 string `json:"file1"`
	File2 string `json:"file2"`
}

func (t *DiffFilesTool) parse(raw json.RawMessage) (diffFilesArgs, error) {
	var a diffFilesArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.File1 == "" {
		return a, missingArg("file1")
	}
	if a.File2 == "" {
		return a, missingArg("file2")
	}
	return a, nil
}

func (t *DiffFilesTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *DiffFilesTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	left, err := t.tb.Repo.ReadFile(a.File1)
	if err != nil {
		return FailureResult(err), nil
	}
	right, err := t.tb.Repo.ReadFile(a.File2)
	if err != nil {
		return FailureResult(err), nil
	}

	// Positional line-by-line comparison, not an LCS diff. Good enough to
	// spot divergence, cheap on big files.
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")
	n := len(leftLines)
	if len(rightLines) > n {
		n = len(rightLines)
	}

	var sb strings.Builder
	diffs := 0
	for i := 0; i < n && diffs < maxDiffLines; i++ {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		if l != r {
			fmt.Fprintf(&sb, "line %d:\n- %s\n+ %s\n", i+1, l, r)
			diffs++
		}
	}

	if diffs == 0 {
		return SuccessResult("Files are identical."), nil
	}
	if diffs == maxDiffLines {
		fmt.Fprintf(&sb, "(stopped after %d differences)", maxDiffLines)
	}
	return SuccessResult(strings.TrimSuffix(sb.String(), "\n")), nil
}

// --- get_project_summary ---

type ProjectSummaryTool struct {
	tb *Toolbox
}

func NewProjectSummaryTool(tb *Toolbox) *ProjectSummaryTool {
	return &ProjectSummaryTool{tb: tb}
}

func (t *ProjectSummaryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "get_project_summary",
		Description: "Summarize the project: file count, total size, files by extension.",
		Parameters:  nil,
	}
}

func (t *ProjectSummaryTool) Validate(json.RawMessage) error {
	return nil
}

func (t *ProjectSummaryTool) Execute(_ context.Context, _ json.RawMessage) (ToolResult, error) {
	files, err := t.tb.Repo.FileTree()
	if err != nil {
		return FailureResult(err), nil
	}

	var totalSize int64
	byExt := make(map[string]int)
	for _, f := range files {
		info, err := t.tb.Repo.Stat(f)
		if err == nil {
			totalSize += info.Size
		}
		ext := "(none)"
		if idx := strings.LastIndex(f, "."); idx >= 0 && idx < len(f)-1 && !strings.Contains(f[idx:], "/") {
			ext = f[idx:]
		}
		byExt[ext]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d files, %d bytes\n", len(files), totalSize)
	for _, ext := range sortedKeys(byExt) {
		fmt.Fprintf(&sb, "%s: %d\n", ext, byExt[ext])
	}
	return SuccessResult(strings.TrimSuffix(sb.String(), "\n")), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	_ Tool = (*SearchFilesTool)(nil)
	_ Tool = (*SearchReplaceTool)(nil)
	_ Tool = (*PatchFileTool)(nil)
	_ Tool = (*FindFilesTool)(nil)
	_ Tool = (*DiffFilesTool)(nil)
	_ Tool = (*ProjectSummaryTool)(nil)
)
