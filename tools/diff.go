// Diff statistics for file change notifications.

package tools

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/pocketforge/forge/model"
)

// computeStats counts added and removed lines between two file versions
// using a line-granular diff.
func computeStats(oldText, newText string) model.DiffStats {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var stats model.DiffStats
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Added += n
		case diffmatchpatch.DiffDelete:
			stats.Removed += n
		}
	}
	return stats
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
