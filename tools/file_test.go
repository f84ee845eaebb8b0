package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pocketforge/forge/model"
)

func runTool(t *testing.T, tool Tool, args string) ToolResult {
	t.Helper()
	result, err := tool.Execute(context.Background(), json.RawMessage(args))
	if err != nil {
		t.Fatalf("%s: unexpected transport error: %v", tool.Metadata().Name, err)
	}
	return result
}

func mustSucceed(t *testing.T, tool Tool, args string) ToolResult {
	t.Helper()
	result := runTool(t, tool, args)
	if !result.Success() {
		t.Fatalf("%s(%s): %v", tool.Metadata().Name, args, result.Error)
	}
	return result
}

func TestWriteFileCreateThenUpdate(t *testing.T) {
	tb, cb := newTestToolbox(t)
	write := NewWriteFileTool(tb)

	result := mustSucceed(t, write, `{"path":"hello.py","content":"print('hi')\nprint('bye')\n"}`)
	if result.Output != "Created `hello.py` (+2 -0)" {
		t.Errorf("create output = %q", result.Output)
	}
	if len(cb.changes) != 1 || cb.changes[0].Type != model.ChangeCreated {
		t.Fatalf("changes = %+v", cb.changes)
	}
	if cb.changes[0].OldContent != "" || !strings.Contains(cb.changes[0].NewContent, "print('hi')") {
		t.Errorf("event contents = %+v", cb.changes[0])
	}

	result = mustSucceed(t, write, `{"path":"hello.py","content":"print('changed')\n"}`)
	if !strings.HasPrefix(result.Output, "Updated `hello.py` ") {
		t.Errorf("update output = %q", result.Output)
	}
	if len(cb.changes) != 2 || cb.changes[1].Type != model.ChangeModified {
		t.Fatalf("changes = %+v", cb.changes)
	}
	if cb.changes[1].OldContent == "" {
		t.Error("modify event lost the previous content")
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"a.txt","content":"alpha"}`)

	result := mustSucceed(t, NewReadFileTool(tb), `{"path":"a.txt"}`)
	if result.Output != "alpha" {
		t.Errorf("read = %q", result.Output)
	}
}

func TestDeleteFileNotifies(t *testing.T) {
	tb, cb := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"gone.txt","content":"x\n"}`)

	result := mustSucceed(t, NewDeleteFileTool(tb), `{"path":"gone.txt"}`)
	if result.Output != "Deleted `gone.txt` (+0 -1)" {
		t.Errorf("output = %q", result.Output)
	}

	last := cb.changes[len(cb.changes)-1]
	if last.Type != model.ChangeDeleted || last.OldContent != "x\n" {
		t.Errorf("delete event = %+v", last)
	}

	if read := runTool(t, NewReadFileTool(tb), `{"path":"gone.txt"}`); read.Success() {
		t.Error("deleted file still readable")
	}
}

func TestRenameFileAcceptsBothArgConventions(t *testing.T) {
	tb, cb := newTestToolbox(t)
	write := NewWriteFileTool(tb)
	rename := NewRenameFileTool(tb)

	mustSucceed(t, write, `{"path":"one.txt","content":"1"}`)
	mustSucceed(t, rename, `{"old_path":"one.txt","new_path":"uno.txt"}`)

	mustSucceed(t, write, `{"path":"two.txt","content":"2"}`)
	mustSucceed(t, rename, `{"source_path":"two.txt","destination_path":"dos.txt"}`)

	last := cb.changes[len(cb.changes)-1]
	if last.Type != model.ChangeRenamed || last.OldPath != "two.txt" || last.Path != "dos.txt" {
		t.Errorf("rename event = %+v", last)
	}

	if result := runTool(t, NewReadFileTool(tb), `{"path":"uno.txt"}`); !result.Success() {
		t.Errorf("renamed file unreadable: %v", result.Error)
	}
}

func TestCopyFileKeepsSource(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"src.txt","content":"data"}`)
	mustSucceed(t, NewCopyFileTool(tb), `{"source_path":"src.txt","destination_path":"dup.txt"}`)

	for _, path := range []string{"src.txt", "dup.txt"} {
		result := mustSucceed(t, NewReadFileTool(tb), `{"path":"`+path+`"}`)
		if result.Output != "data" {
			t.Errorf("%s = %q", path, result.Output)
		}
	}
}

func TestListFilesUnderDirectory(t *testing.T) {
	tb, _ := newTestToolbox(t)
	write := NewWriteFileTool(tb)
	mustSucceed(t, write, `{"path":"src/a.go","content":"a"}`)
	mustSucceed(t, write, `{"path":"src/b.go","content":"b"}`)
	mustSucceed(t, write, `{"path":"docs/readme.md","content":"r"}`)

	result := mustSucceed(t, NewListFilesTool(tb), `{"path":"src"}`)
	if result.Output != "src/a.go\nsrc/b.go" {
		t.Errorf("list = %q", result.Output)
	}

	all := mustSucceed(t, NewListFilesTool(tb), `{}`)
	if !strings.Contains(all.Output, "docs/readme.md") {
		t.Errorf("full listing missing docs: %q", all.Output)
	}
}

func TestAppendToFile(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"log.txt","content":"first\n"}`)
	mustSucceed(t, NewAppendToFileTool(tb), `{"path":"log.txt","content":"second\n"}`)

	result := mustSucceed(t, NewReadFileTool(tb), `{"path":"log.txt"}`)
	if result.Output != "first\nsecond\n" {
		t.Errorf("content = %q", result.Output)
	}
}

func TestInsertAtLine(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"f.txt","content":"one\nthree"}`)
	mustSucceed(t, NewInsertAtLineTool(tb), `{"path":"f.txt","line":2,"content":"two"}`)

	result := mustSucceed(t, NewReadFileTool(tb), `{"path":"f.txt"}`)
	if result.Output != "one\ntwo\nthree" {
		t.Errorf("content = %q", result.Output)
	}
}

func TestInsertAtLinePastEndAppends(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"f.txt","content":"one"}`)
	mustSucceed(t, NewInsertAtLineTool(tb), `{"path":"f.txt","line":99,"content":"last"}`)

	result := mustSucceed(t, NewReadFileTool(tb), `{"path":"f.txt"}`)
	if result.Output != "one\nlast" {
		t.Errorf("content = %q", result.Output)
	}
}

func TestInsertAtLineRejectsZero(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"f.txt","content":"one"}`)

	if result := runTool(t, NewInsertAtLineTool(tb), `{"path":"f.txt","line":0,"content":"x"}`); result.Success() {
		t.Error("line 0 accepted")
	}
}

func TestReadLinesNumbersOutput(t *testing.T) {
	tb, _ := newTestToolbox(t)
	mustSucceed(t, NewWriteFileTool(tb), `{"path":"f.txt","content":"a\nb\nc\nd"}`)

	result := mustSucceed(t, NewReadLinesTool(tb), `{"path":"f.txt","start":2,"end":3}`)
	if result.Output != "2: b\n3: c" {
		t.Errorf("output = %q", result.Output)
	}

	// end past the file clamps instead of failing.
	result = mustSucceed(t, NewReadLinesTool(tb), `{"path":"f.txt","start":4,"end":10}`)
	if result.Output != "4: d" {
		t.Errorf("clamped output = %q", result.Output)
	}

	if bad := runTool(t, NewReadLinesTool(tb), `{"path":"f.txt","start":9,"end":10}`); bad.Success() {
		t.Error("start past the file accepted")
	}
}
