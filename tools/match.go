// Glob-style pattern matching for find_files and search_files.
//
// The accepted syntax is the small glob subset users actually type: `*`
// matches within one path segment, `**` crosses segments. A pattern that
// fails to compile degrades to substring containment rather than erroring, so
// a malformed pattern still returns something useful.

package tools

import (
	"regexp"
	"strings"
)

// matchPattern reports whether a slash-separated relative path matches a glob
// pattern. Matching is against the full path; a bare filename pattern like
// "*.js" therefore only matches top-level entries.
func matchPattern(path, pattern string) bool {
	re, err := compileGlob(pattern)
	if err != nil {
		return strings.Contains(path, strings.ReplaceAll(pattern, "*", ""))
	}
	return re.MatchString(path)
}

// compileGlob translates a glob pattern to an anchored regexp:
// `**` -> `.*`, `*` -> `[^/]*`, `.` -> `\.`. Other characters pass through
// verbatim, so stray regex metacharacters surface as a compile error and take
// the substring fallback.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			sb.WriteString(".*")
			i++
		case pattern[i] == '*':
			sb.WriteString("[^/]*")
		case pattern[i] == '.':
			sb.WriteString(`\.`)
		default:
			sb.WriteByte(pattern[i])
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
