// Package segment parses a model's visible output into typed content blocks.
//
// A streamed assistant message interleaves prose, fenced code, inline
// reasoning tags, and tool-status marker lines in one growing string. The
// segmenter splits that string into an ordered block list a renderer can
// display progressively without prose and tool output bleeding into each
// other.
package segment

import "github.com/pocketforge/forge/model"

// ToolStatus is the rendered state of a tool-status line.
type ToolStatus int

const (
	// StatusRunning means the tool line has no terminal glyph yet.
	StatusRunning ToolStatus = iota
	// StatusSuccess maps from the ✅ glyph.
	StatusSuccess
	// StatusError maps from the ❌ glyph.
	StatusError
)

// String returns the status name.
func (s ToolStatus) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Block is one semantically distinct unit of a rendered message.
type Block interface {
	blockMarker()
}

// TextBlock is plain prose.
type TextBlock struct {
	Text string
}

// CodeBlock is the content of a closed fenced code block.
type CodeBlock struct {
	Code     string
	Language string
}

// ReasoningBlock is the content of a reasoning/thinking tag pair. Active is
// true while the closing tag has not arrived yet during streaming.
type ReasoningBlock struct {
	Text   string
	Active bool
}

// ToolCallBlock is one parsed tool-status line. FilePath and Stats are
// populated when the output carries a backticked path and (+N -M) counters.
type ToolCallBlock struct {
	Name     string
	Status   ToolStatus
	Output   string
	FilePath string
	Stats    *model.DiffStats
}

func (TextBlock) blockMarker()      {}
func (CodeBlock) blockMarker()      {}
func (ReasoningBlock) blockMarker() {}
func (ToolCallBlock) blockMarker()  {}
