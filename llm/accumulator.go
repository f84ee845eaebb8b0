// Tool call accumulation for streamed completions.
//
// Providers stream tool calls as index-keyed fragments: the first delta for a
// slot usually carries the call id and function name, and every delta may
// carry a partial slice of the JSON arguments. The accumulator reassembles
// them without validating the JSON; validation happens in the tool executor
// so a provider that emits odd fragments mid-stream never stalls decoding.

package llm

import (
	"encoding/json"
	"sort"
	"strings"
)

// ToolCallAccumulator reassembles fragmented tool call deltas into complete
// calls. One slot is open per delta index at a time; Finalize snapshots all
// open slots exactly once.
type ToolCallAccumulator struct {
	slots     map[int]*toolCallSlot
	finalized bool
}

type toolCallSlot struct {
	id   string
	name string
	args strings.Builder
}

// NewToolCallAccumulator creates an empty accumulator.
func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{
		slots: make(map[int]*toolCallSlot),
	}
}

// Add merges a delta into its slot, creating the slot on first sight.
// Argument fragments are concatenated in arrival order. Deltas received after
// finalization are dropped.
func (a *ToolCallAccumulator) Add(delta ToolCallDelta) {
	if a.finalized {
		return
	}

	slot, ok := a.slots[delta.Index]
	if !ok {
		slot = &toolCallSlot{}
		a.slots[delta.Index] = slot
	}

	if delta.ID != "" {
		slot.id = delta.ID
	}
	if delta.Name != "" {
		slot.name = delta.Name
	}
	slot.args.WriteString(delta.Arguments)
}

// Open reports whether any slots are accumulating.
func (a *ToolCallAccumulator) Open() bool {
	return !a.finalized && len(a.slots) > 0
}

// Finalize snapshots all open slots into complete tool calls, ordered by slot
// index. It returns nil on a second call or when no slots are open.
func (a *ToolCallAccumulator) Finalize() []ToolCall {
	if a.finalized {
		return nil
	}
	a.finalized = true

	if len(a.slots) == 0 {
		return nil
	}

	indices := make([]int, 0, len(a.slots))
	for idx := range a.slots {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	calls := make([]ToolCall, 0, len(indices))
	for _, idx := range indices {
		slot := a.slots[idx]
		calls = append(calls, ToolCall{
			ID:        slot.id,
			Name:      slot.name,
			Arguments: json.RawMessage(slot.args.String()),
		})
	}
	return calls
}
