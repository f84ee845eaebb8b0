// Tool dispatch.
//
// The executor is the single entry point between a finalized model tool call
// and the registry. Its failure messages are part of the protocol with the
// model: "Unknown tool:", "Missing required argument:" and "Error executing
// tool:" prefixes are read back by the model on the next turn, so they stay
// stable.

package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pocketforge/forge/llm"
)

// Executor dispatches finalized tool calls against a registry.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Registry returns the underlying registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs one tool call. Every failure is reported inside the
// ToolResult rather than as a Go error, so the model always receives a
// response it can react to.
func (e *Executor) Execute(ctx context.Context, call llm.ToolCall) ToolResult {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return FailureResultf("Unknown tool: %s", call.Name)
	}

	if err := tool.Validate(call.Arguments); err != nil {
		return FailureResult(normalizeToolError(err))
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		slog.Debug("tool execution failed", "tool", call.Name, "error", err)
		return FailureResult(normalizeToolError(err))
	}
	if result.Error != nil {
		result.Error = normalizeToolError(result.Error)
	}
	return result
}

// normalizeToolError maps a tool failure onto the protocol message set.
// Missing-argument errors already carry their exact message; everything else
// gets the generic execution prefix.
func normalizeToolError(err error) error {
	var missing *MissingArgumentError
	if errors.As(err, &missing) {
		return missing
	}
	return errors.New("Error executing tool: " + err.Error())
}
