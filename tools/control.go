// Control tools: user interaction and task termination.

package tools

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoUserAvailable is returned by AskUser when no interactive channel
// exists. ask_user turns it into a graceful degradation: the question is
// surfaced as plain tool output for the model to include in its reply.
var ErrNoUserAvailable = errors.New("no user interaction channel available")

// --- ask_user ---

type AskUserTool struct {
	tb *Toolbox
}

func NewAskUserTool(tb *Toolbox) *AskUserTool {
	return &AskUserTool{tb: tb}
}

func (t *AskUserTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "ask_user",
		Description: "Ask the user a question and wait for their answer.",
		Parameters: []ToolParameter{
			{Name: "question", ParamType: "string", Description: "Question to present to the user", Required: true},
		},
	}
}

type askUserArgs struct {
	Question string `json:"question"`
}

func (t *AskUserTool) parse(raw json.RawMessage) (askUserArgs, error) {
	var a askUserArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Question == "" {
		return a, missingArg("question")
	}
	return a, nil
}

func (t *AskUserTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *AskUserTool) Execute(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	if t.tb.Callback == nil {
		return SuccessResult(a.Question), nil
	}

	answer, err := t.tb.Callback.AskUser(ctx, a.Question)
	if errors.Is(err, ErrNoUserAvailable) {
		return SuccessResult(a.Question), nil
	}
	if err != nil {
		return FailureResult(err), nil
	}
	return SuccessResult(answer), nil
}

// --- finish_task ---

type FinishTaskTool struct {
	tb *Toolbox
}

func NewFinishTaskTool(tb *Toolbox) *FinishTaskTool {
	return &FinishTaskTool{tb: tb}
}

func (t *FinishTaskTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "finish_task",
		Description: "Signal that the task is complete, with a final summary.",
		Parameters: []ToolParameter{
			{Name: "summary", ParamType: "string", Description: "Summary of what was done", Required: true},
		},
	}
}

type finishTaskArgs struct {
	Summary string `json:"summary"`
}

func (t *FinishTaskTool) parse(raw json.RawMessage) (finishTaskArgs, error) {
	var a finishTaskArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Summary == "" {
		return a, missingArg("summary")
	}
	return a, nil
}

func (t *FinishTaskTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *FinishTaskTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	if t.tb.Callback != nil {
		t.tb.Callback.OnTaskFinished(a.Summary)
	}
	return SuccessResult(a.Summary), nil
}

var (
	_ Tool = (*AskUserTool)(nil)
	_ Tool = (*FinishTaskTool)(nil)
)
