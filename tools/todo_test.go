package tools

import (
	"strings"
	"testing"

	"github.com/pocketforge/forge/model"
)

func TestCreateTodoNotifiesAndLists(t *testing.T) {
	tb, cb := newTestToolbox(t)

	result := mustSucceed(t, NewCreateTodoTool(tb), `{"title":"add tests","description":"cover the parser"}`)
	if !strings.HasPrefix(result.Output, "Created todo ") || !strings.HasSuffix(result.Output, ": add tests") {
		t.Errorf("output = %q", result.Output)
	}
	if len(cb.todos) != 1 || cb.todos[0].Status != model.TodoPending {
		t.Fatalf("callback todos = %+v", cb.todos)
	}

	list := mustSucceed(t, NewListTodosTool(tb), `{}`)
	if !strings.Contains(list.Output, "[PENDING]") || !strings.Contains(list.Output, "add tests - cover the parser") {
		t.Errorf("list = %q", list.Output)
	}
}

func TestUpdateTodoStatus(t *testing.T) {
	tb, cb := newTestToolbox(t)
	mustSucceed(t, NewCreateTodoTool(tb), `{"title":"ship it"}`)
	id := cb.todos[0].ID

	result := mustSucceed(t, NewUpdateTodoTool(tb), `{"id":"`+id+`","status":"in_progress"}`)
	if !strings.Contains(result.Output, "is now IN_PROGRESS.") {
		t.Errorf("output = %q", result.Output)
	}

	// Any transition is allowed, including going back to pending.
	mustSucceed(t, NewUpdateTodoTool(tb), `{"id":"`+id+`","status":"COMPLETED"}`)
	mustSucceed(t, NewUpdateTodoTool(tb), `{"id":"`+id+`","status":"PENDING"}`)
}

func TestUpdateTodoRejectsUnknownIDAndStatus(t *testing.T) {
	tb, cb := newTestToolbox(t)
	mustSucceed(t, NewCreateTodoTool(tb), `{"title":"x"}`)
	id := cb.todos[0].ID

	if result := runTool(t, NewUpdateTodoTool(tb), `{"id":"no-such-id","status":"COMPLETED"}`); result.Success() {
		t.Error("unknown todo ID accepted")
	}
	if result := runTool(t, NewUpdateTodoTool(tb), `{"id":"`+id+`","status":"DONE_ISH"}`); result.Success() {
		t.Error("invalid status accepted")
	}
}

func TestListTodosEmpty(t *testing.T) {
	tb, _ := newTestToolbox(t)

	result := mustSucceed(t, NewListTodosTool(tb), `{}`)
	if result.Output != "No todos." {
		t.Errorf("output = %q", result.Output)
	}
}

func TestAskUserWithCallback(t *testing.T) {
	tb, cb := newTestToolbox(t)
	cb.answer = "yes, go ahead"

	result := mustSucceed(t, NewAskUserTool(tb), `{"question":"Proceed?"}`)
	if result.Output != "yes, go ahead" {
		t.Errorf("output = %q", result.Output)
	}
}

func TestAskUserDegradesWithoutUser(t *testing.T) {
	tb, _ := newTestToolbox(t)
	tb.Callback = NopCallback{}

	result := mustSucceed(t, NewAskUserTool(tb), `{"question":"Proceed?"}`)
	if result.Output != "Proceed?" {
		t.Errorf("output = %q, want the question echoed back", result.Output)
	}
}

func TestFinishTaskReportsSummary(t *testing.T) {
	tb, cb := newTestToolbox(t)

	result := mustSucceed(t, NewFinishTaskTool(tb), `{"summary":"All done."}`)
	if result.Output != "All done." {
		t.Errorf("output = %q", result.Output)
	}
	if len(cb.finished) != 1 || cb.finished[0] != "All done." {
		t.Errorf("finished = %v", cb.finished)
	}
}
