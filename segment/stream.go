// Incremental segmentation for live transcripts.
//
// Re-parsing the whole transcript on every delta is O(n) per token. Blocks
// that sit entirely before the last tool-segment boundary can never change as
// text is appended, so StreamParser caches them and only re-parses the tail.
// Any edit that rewrites earlier text (a ⏳ marker flipping to ✅) breaks the
// prefix property and triggers a full re-parse.

package segment

import "strings"

// StreamParser segments a growing transcript incrementally.
type StreamParser struct {
	stableText   string
	stableBlocks []Block
}

// NewStreamParser creates an empty incremental parser.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// Update segments the full transcript as it stands now. The caller passes the
// whole accumulated text each time; the parser decides what actually needs
// re-parsing.
func (p *StreamParser) Update(full string, isStreaming bool) []Block {
	if !strings.HasPrefix(full, p.stableText) {
		// Earlier text changed under us: drop the cache and start over.
		p.stableText = ""
		p.stableBlocks = nil
	}

	tail := full[len(p.stableText):]

	// Advance the stable point to the start of the last tool segment in the
	// tail: everything before it is final.
	if idx := strings.LastIndex(tail, boundary); idx > 0 {
		settled := tail[:idx]
		p.stableBlocks = append(p.stableBlocks, Parse(settled, false)...)
		p.stableText += settled
		tail = tail[idx:]
	}

	blocks := make([]Block, len(p.stableBlocks), len(p.stableBlocks)+4)
	copy(blocks, p.stableBlocks)
	return append(blocks, Parse(tail, isStreaming)...)
}

// Reset clears the cached parse.
func (p *StreamParser) Reset() {
	p.stableText = ""
	p.stableBlocks = nil
}
