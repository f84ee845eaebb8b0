// Full-text segmentation.
//
// The grammar, informally:
//
//	message     = segment (boundary segment)*
//	boundary    = "\n\n" before a tool marker, or a tool marker at offset 0
//	tool line   = "🔧 **name**\n<glyph> <output>"   (✅ ❌ or pending)
//	reasoning   = "<thinking>…</thinking>" and synonyms think/reasoning/reflection
//	code        = closed ``` fences inside prose
//
// Parse is total: malformed input degrades to plain text, it never drops
// content or returns an error.

package segment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pocketforge/forge/model"
)

// ToolMarker prefixes every tool-status line in the transcript.
const ToolMarker = "🔧"

const boundary = "\n\n" + ToolMarker

var (
	toolLineRe  = regexp.MustCompile(`(?s)^🔧 \*\*([^*]+)\*\*\n(.*)$`)
	openTagRe   = regexp.MustCompile(`<(thinking|think|reasoning|reflection)>`)
	codeFenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9+_.-]*)\n(.*?)```")
	statsRe     = regexp.MustCompile(`\(\+(\d+) -(\d+)\)`)
	pathRe      = regexp.MustCompile("`([^`\n]+)`")
)

// Parse segments the full accumulated text into ordered blocks. isStreaming
// controls whether a trailing unclosed reasoning tag renders as an active
// reasoning block or stays plain text.
func Parse(text string, isStreaming bool) []Block {
	var blocks []Block

	rest := text
	for rest != "" {
		start, ok := nextToolSegment(rest)
		if !ok {
			blocks = append(blocks, parseTextSegment(rest, isStreaming)...)
			break
		}

		if pre := rest[:start]; strings.TrimSpace(pre) != "" {
			blocks = append(blocks, parseTextSegment(pre, isStreaming)...)
		}

		seg := rest[start:]
		if strings.HasPrefix(seg, "\n\n") {
			seg = seg[2:]
		}

		// The tool segment runs until the next blank line.
		end := strings.Index(seg, "\n\n")
		if end < 0 {
			blocks = append(blocks, parseToolSegment(seg))
			break
		}
		blocks = append(blocks, parseToolSegment(seg[:end]))
		rest = seg[end:]
	}

	if len(blocks) == 0 && text != "" {
		blocks = []Block{TextBlock{Text: text}}
	}
	return blocks
}

// nextToolSegment returns the offset of the next tool segment boundary: a
// tool marker at the very start, or the "\n\n" preceding one.
func nextToolSegment(s string) (int, bool) {
	if strings.HasPrefix(s, ToolMarker) {
		return 0, true
	}
	if idx := strings.Index(s, boundary); idx >= 0 {
		return idx, true
	}
	return 0, false
}

// parseToolSegment parses one "🔧 **name**\n<glyph> <output>" segment.
// A segment that does not match the shape degrades to a text block.
func parseToolSegment(seg string) Block {
	seg = strings.TrimSpace(seg)
	m := toolLineRe.FindStringSubmatch(seg)
	if m == nil {
		return TextBlock{Text: seg}
	}

	name := m[1]
	body := strings.TrimSpace(m[2])

	status := StatusRunning
	switch {
	case strings.HasPrefix(body, "✅"):
		status = StatusSuccess
		body = strings.TrimSpace(strings.TrimPrefix(body, "✅"))
	case strings.HasPrefix(body, "❌"):
		status = StatusError
		body = strings.TrimSpace(strings.TrimPrefix(body, "❌"))
	case strings.HasPrefix(body, "⏳"):
		body = strings.TrimSpace(strings.TrimPrefix(body, "⏳"))
	}

	block := ToolCallBlock{Name: name, Status: status, Output: body}
	if pm := pathRe.FindStringSubmatch(body); pm != nil {
		block.FilePath = pm[1]
	}
	if sm := statsRe.FindStringSubmatch(body); sm != nil {
		added, _ := strconv.Atoi(sm[1])
		removed, _ := strconv.Atoi(sm[2])
		block.Stats = &model.DiffStats{Added: added, Removed: removed}
	}
	return block
}

// parseTextSegment extracts reasoning tag pairs from a prose segment, then
// code fences from the remaining plain text.
func parseTextSegment(seg string, isStreaming bool) []Block {
	var blocks []Block

	rest := seg
	for {
		loc := openTagRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			blocks = append(blocks, parsePlainText(rest)...)
			return blocks
		}

		tag := rest[loc[2]:loc[3]]
		closing := "</" + tag + ">"
		closeIdx := strings.Index(rest[loc[1]:], closing)

		if closeIdx < 0 {
			if isStreaming {
				// Trailing unclosed tag: everything after it is live reasoning.
				blocks = append(blocks, parsePlainText(rest[:loc[0]])...)
				blocks = append(blocks, ReasoningBlock{
					Text:   strings.TrimSpace(rest[loc[1]:]),
					Active: true,
				})
			} else {
				// Not streaming: the tag never closed, keep it as plain text.
				blocks = append(blocks, parsePlainText(rest)...)
			}
			return blocks
		}

		blocks = append(blocks, parsePlainText(rest[:loc[0]])...)
		inner := rest[loc[1] : loc[1]+closeIdx]
		blocks = append(blocks, ReasoningBlock{Text: strings.TrimSpace(inner)})
		rest = rest[loc[1]+closeIdx+len(closing):]
	}
}

// parsePlainText splits prose around closed code fences.
func parsePlainText(text string) []Block {
	var blocks []Block

	rest := text
	for {
		loc := codeFenceRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			if t := strings.TrimSpace(rest); t != "" {
				blocks = append(blocks, TextBlock{Text: t})
			}
			return blocks
		}

		if pre := strings.TrimSpace(rest[:loc[0]]); pre != "" {
			blocks = append(blocks, TextBlock{Text: pre})
		}
		blocks = append(blocks, CodeBlock{
			Language: rest[loc[2]:loc[3]],
			Code:     rest[loc[4]:loc[5]],
		})
		rest = rest[loc[1]:]
	}
}
