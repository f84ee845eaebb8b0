package agent

// Config controls the agent's turn loop.
type Config struct {
	// SystemPrompt is prepended to the conversation as the system message.
	SystemPrompt string

	// MaxTurns bounds how many model round-trips one Run may take.
	MaxTurns int

	// TranscriptOutputLimit truncates tool output in status marker lines.
	// The full output still goes back to the model.
	TranscriptOutputLimit int
}

// DefaultConfig returns the default agent configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:          defaultSystemPrompt,
		MaxTurns:              20,
		TranscriptOutputLimit: 200,
	}
}

const defaultSystemPrompt = `You are a coding assistant working inside a project workspace.
Use the available tools to read, modify and search files, keep notes with the
memory tools, and track multi-step work with the todo tools. When the task is
complete, call finish_task with a short summary.`
