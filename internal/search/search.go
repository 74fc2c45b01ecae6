// Package search finds files by glob or filename regex, and file contents
// by literal text, with context lines around content hits.
package search

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/filescope/filescope/internal/fsio"
	"github.com/filescope/filescope/internal/langdetect"
)

// Search modes.
const (
	TypeGlob    = "glob"
	TypeRegex   = "regex"
	TypeContent = "content"
)

// binaryProbeSize is how many leading bytes feed the binary skip check
// during content search.
const binaryProbeSize = 512

// Match is a single search hit. File-level hits carry line number zero.
type Match struct {
	FilePath      string   `json:"file_path"`
	Line          int      `json:"line_number"`
	Content       string   `json:"content"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
}

// Result is the outcome of one search request.
type Result struct {
	Matches      []Match  `json:"matches"`
	TotalMatches int      `json:"total_matches"`
	SearchTime   float64  `json:"search_time"`
	Pattern      string   `json:"search_pattern"`
	Type         string   `json:"search_type"`
	Errors       []string `json:"errors"`
}

// Limits caps search output volume.
type Limits struct {
	ContextLines   int
	MatchesPerFile int
	TotalMatches   int
}

// Engine executes search requests.
type Engine struct {
	fs     *fsio.Manager
	limits Limits
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(fsm *fsio.Manager, limits Limits, logger *slog.Logger) *Engine {
	return &Engine{
		fs:     fsm,
		limits: limits,
		logger: logger,
	}
}

// Search runs a search of the given type under basePath. Failures land in
// the result's Errors field.
func (e *Engine) Search(ctx context.Context, pattern, searchType, basePath string, filters []string) Result {
	start := time.Now()

	result := Result{
		Matches: []Match{},
		Pattern: pattern,
		Type:    searchType,
		Errors:  []string{},
	}

	base, err := filepath.Abs(basePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("resolve base path: %v", err))
		result.SearchTime = time.Since(start).Seconds()

		return result
	}

	var matches []Match

	switch searchType {
	case TypeGlob:
		matches, err = e.searchGlob(pattern, base, filters)
	case TypeRegex:
		matches, err = e.searchRegex(ctx, pattern, base, filters)
	case TypeContent:
		matches, err = e.searchContent(ctx, pattern, base, filters)
	default:
		err = fmt.Errorf("unknown search type: %s", searchType)
	}

	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	result.TotalMatches = len(matches)

	if len(matches) > e.limits.TotalMatches {
		matches = matches[:e.limits.TotalMatches]
	}

	result.Matches = matches
	result.SearchTime = time.Since(start).Seconds()

	return result
}

// searchGlob matches file paths against a glob pattern relative to base.
func (e *Engine) searchGlob(pattern, base string, filters []string) ([]Match, error) {
	paths, err := doublestar.Glob(os.DirFS(base), pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}

	var matches []Match

	for _, rel := range paths {
		path := filepath.Join(base, rel)

		info := e.fs.Stat(path)
		if !info.IsFile {
			continue
		}

		name := filepath.Base(path)
		if !matchesFilters(name, filters) || !e.fs.Readable(path) {
			continue
		}

		matches = append(matches, fileMatch(path, name))

		if len(matches) >= e.limits.TotalMatches {
			break
		}
	}

	return matches, nil
}

// searchRegex matches file names against a regular expression anywhere
// under base.
func (e *Engine) searchRegex(ctx context.Context, pattern, base string, filters []string) ([]Match, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	var matches []Match

	walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Debug("walk error", "path", path, "error", err)

			return nil
		}

		if ctx.Err() != nil {
			return fs.SkipAll
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if !re.MatchString(name) || !matchesFilters(name, filters) || !e.fs.Readable(path) {
			return nil
		}

		matches = append(matches, fileMatch(path, name))

		if len(matches) >= e.limits.TotalMatches {
			return fs.SkipAll
		}

		return nil
	})
	if walkErr != nil {
		return matches, fmt.Errorf("walk directory: %w", walkErr)
	}

	return matches, nil
}

// searchContent finds a literal text pattern inside files, case
// insensitively, skipping binaries.
func (e *Engine) searchContent(ctx context.Context, pattern, base string, filters []string) ([]Match, error) {
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))

	var matches []Match

	walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Debug("walk error", "path", path, "error", err)

			return nil
		}

		if ctx.Err() != nil {
			return fs.SkipAll
		}

		if d.IsDir() {
			return nil
		}

		if !matchesFilters(d.Name(), filters) {
			return nil
		}

		head, headErr := e.fs.ReadHead(path, binaryProbeSize)
		if headErr != nil || langdetect.IsBinary(path, head) {
			return nil
		}

		if !e.fs.Readable(path) {
			return nil
		}

		matches = append(matches, e.matchFileContent(path, re)...)

		if len(matches) >= e.limits.TotalMatches {
			return fs.SkipAll
		}

		return nil
	})
	if walkErr != nil {
		return matches, fmt.Errorf("walk directory: %w", walkErr)
	}

	return matches, nil
}

// matchFileContent collects in-file hits with surrounding context lines.
func (e *Engine) matchFileContent(path string, re *regexp.Regexp) []Match {
	content, _, err := e.fs.Read(path)
	if err != nil {
		e.logger.Warn("cannot read file for content search", "path", path, "error", err)

		return nil
	}

	lines := strings.Split(content, "\n")

	var matches []Match

	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}

		matches = append(matches, Match{
			FilePath:      path,
			Line:          i + 1,
			Content:       strings.TrimSpace(line),
			ContextBefore: contextSlice(lines, i-e.limits.ContextLines, i),
			ContextAfter:  contextSlice(lines, i+1, i+1+e.limits.ContextLines),
		})

		if len(matches) >= e.limits.MatchesPerFile {
			break
		}
	}

	return matches
}

// contextSlice returns trimmed lines in [from, to), clamped to bounds.
func contextSlice(lines []string, from, to int) []string {
	if from < 0 {
		from = 0
	}

	if to > len(lines) {
		to = len(lines)
	}

	out := make([]string, 0, max(0, to-from))
	for i := from; i < to; i++ {
		out = append(out, strings.TrimSpace(lines[i]))
	}

	return out
}

func fileMatch(path, name string) Match {
	return Match{
		FilePath:      path,
		Content:       "File: " + name,
		ContextBefore: []string{},
		ContextAfter:  []string{},
	}
}

func matchesFilters(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}

	for _, suffix := range filters {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}
