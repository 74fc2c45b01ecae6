package metrics

import (
	"strings"

	"github.com/filescope/filescope/pkg/textutil"
)

// commentPrefixes are the line-start tokens that classify a trimmed,
// non-blank line as a comment. The list is shared by both analyzers.
var commentPrefixes = []string{"#", "//", "/*", "*", "--", "%", ";"}

// CountLines counts lines the way an editor would: newlines, plus one for
// a trailing fragment without a terminating newline. Empty content is zero.
func CountLines(content string) int {
	return textutil.CountLines([]byte(content))
}

// countLineTypes splits content on newlines and classifies every resulting
// line as blank, comment, or code. The split-based total is the line basis
// for the maintainability formula and the comment/blank invariant.
func countLineTypes(content string) (total, blank, comment int) {
	if content == "" {
		return 0, 0, 0
	}

	lines := strings.Split(content, "\n")
	total = len(lines)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			blank++
		case isCommentLine(trimmed):
			comment++
		}
	}

	return total, blank, comment
}

func isCommentLine(trimmed string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}

	return false
}
