// Package agent runs the conversation loop between an LLM provider and the
// tool layer.
package agent

import (
	"errors"

	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/model"
	"github.com/pocketforge/forge/segment"
)

// ErrMaxTurnsExceeded is returned when the model keeps requesting tools past
// the configured turn budget.
var ErrMaxTurnsExceeded = errors.New("maximum turns exceeded")

// ErrBusy is returned when Run is called while a previous run is in flight.
// Runs are single-flight per agent.
var ErrBusy = errors.New("a run is already in progress")

// UpdateFunc receives the re-segmented live transcript after every change.
type UpdateFunc func(blocks []segment.Block)

// RunResult is the outcome of one completed agent run.
type RunResult struct {
	// Transcript is the full accumulated text: model prose interleaved
	// with tool-status marker lines.
	Transcript string

	// Blocks is the final segmentation of the transcript.
	Blocks []segment.Block

	// Finished reports whether the model called finish_task.
	Finished bool

	// Summary is the finish_task summary, when Finished.
	Summary string

	// Usage aggregates token usage across all turns.
	Usage llm.TokenUsage

	// ToolStats aggregates tool invocations across the run.
	ToolStats model.ToolCallStats
}
