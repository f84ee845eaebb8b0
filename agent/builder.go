package agent

import (
	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/tools"
)

// Builder configures an Agent fluently.
type Builder struct {
	provider llm.Provider
	executor *tools.Executor
	config   Config
	onUpdate UpdateFunc
}

// NewBuilder starts building an agent over a provider and executor.
func NewBuilder(provider llm.Provider, executor *tools.Executor) *Builder {
	return &Builder{
		provider: provider,
		executor: executor,
		config:   DefaultConfig(),
	}
}

// WithSystemPrompt overrides the default system prompt.
func (b *Builder) WithSystemPrompt(prompt string) *Builder {
	b.config.SystemPrompt = prompt
	return b
}

// WithMaxTurns sets the turn budget for one run.
func (b *Builder) WithMaxTurns(turns int) *Builder {
	b.config.MaxTurns = turns
	return b
}

// WithUpdateFunc registers the live transcript hook.
func (b *Builder) WithUpdateFunc(fn UpdateFunc) *Builder {
	b.onUpdate = fn
	return b
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// Build creates the agent.
func (b *Builder) Build() *Agent {
	a := New(b.provider, b.executor)
	a.config = b.config
	a.onUpdate = b.onUpdate
	return a
}
