package metrics

import (
	"fmt"
	"regexp"
	"strings"
)

// markerKinds is the fixed marker vocabulary in priority order. The order
// matters: scanning tries each kind in turn and a line yields at most one
// TodoItem, attributed to the first kind that matches.
var markerKinds = []string{"TODO", "FIXME", "HACK", "BUG", "NOTE", "XXX"}

// Comment families a marker can live in, as regexp templates. The hash
// family serves Python-style sources; the generic set additionally covers
// C-style line and block comments and HTML comments. Matching never spans
// lines.
var (
	hashCommentFamilies = []string{
		`(?i)#.*?%s:?\s*(.*)$`,
	}

	genericCommentFamilies = []string{
		`(?i)(?://|#|--)\s*%s:?\s*(.*)$`,
		`(?i)/\*.*?%s:?\s*(.*?)\*/`,
		`(?i)<!--.*?%s:?\s*(.*?)-->`,
	}
)

type todoPattern struct {
	kind string
	re   *regexp.Regexp
}

var (
	hashTodoPatterns    = compileTodoPatterns(hashCommentFamilies)
	genericTodoPatterns = compileTodoPatterns(genericCommentFamilies)
)

func compileTodoPatterns(families []string) []todoPattern {
	patterns := make([]todoPattern, 0, len(markerKinds)*len(families))

	for _, kind := range markerKinds {
		for _, family := range families {
			patterns = append(patterns, todoPattern{
				kind: kind,
				re:   regexp.MustCompile(fmt.Sprintf(family, kind)),
			})
		}
	}

	return patterns
}

// findTodos scans content line by line against the given pattern set.
// Line numbers are 1-based. When the capture after the marker is empty,
// the whole trimmed line stands in as the item text.
func findTodos(content, filePath string, patterns []todoPattern) []TodoItem {
	var todos []TodoItem

	for lineNum, line := range strings.Split(content, "\n") {
		for _, pattern := range patterns {
			match := pattern.re.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			text := strings.TrimSpace(match[1])
			if text == "" {
				text = strings.TrimSpace(line)
			}

			todos = append(todos, TodoItem{
				Line:     lineNum + 1,
				Kind:     pattern.kind,
				Text:     text,
				FilePath: filePath,
			})

			break
		}
	}

	return todos
}
