// Interaction callbacks: the narrow contract through which tools notify the
// embedding application of side effects and ask it questions.

package tools

import (
	"context"

	"github.com/pocketforge/forge/model"
)

// InteractionCallback receives tool side-effect notifications and user
// interaction requests. All methods are called from the agent's turn
// goroutine; implementations should return quickly.
type InteractionCallback interface {
	// AskUser poses a question and blocks for the answer.
	AskUser(ctx context.Context, question string) (string, error)

	// OnFileChanged reports a file mutation with diff context.
	OnFileChanged(event model.FileChangeEvent)

	// OnTodoCreated reports a new todo item.
	OnTodoCreated(item model.TodoItem)

	// OnTodoUpdated reports a todo status change.
	OnTodoUpdated(item model.TodoItem)

	// OnTaskFinished reports the agent's final summary.
	OnTaskFinished(summary string)
}

// NopCallback ignores every notification. AskUser reports that no user is
// available, which ask_user degrades into plain output.
type NopCallback struct{}

func (NopCallback) AskUser(context.Context, string) (string, error) {
	return "", ErrNoUserAvailable
}

func (NopCallback) OnFileChanged(model.FileChangeEvent) {}
func (NopCallback) OnTodoCreated(model.TodoItem)        {}
func (NopCallback) OnTodoUpdated(model.TodoItem)        {}
func (NopCallback) OnTaskFinished(string)               {}

// Verify NopCallback implements InteractionCallback
var _ InteractionCallback = NopCallback{}
