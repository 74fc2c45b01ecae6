// Package dirscan walks directory trees and aggregates file statistics:
// counts by extension and language, total size, and a tree structure.
// Ignore rules come from .gitignore plus a built-in set.
package dirscan

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/filescope/filescope/internal/fsio"
	"github.com/filescope/filescope/internal/langdetect"
)

// noExtensionKey buckets files without an extension in the type counts.
const noExtensionKey = "no_extension"

// defaultIgnorePatterns are always active, whether or not the scanned
// directory carries a .gitignore.
var defaultIgnorePatterns = []string{
	"__pycache__",
	"*.pyc",
	"*.pyo",
	"*.pyd",
	".git",
	".svn",
	".hg",
	".DS_Store",
	"Thumbs.db",
	"node_modules",
	".venv",
	"venv",
	".env",
	"*.log",
	".pytest_cache",
	".mypy_cache",
	".coverage",
	"htmlcov",
	"dist",
	"build",
	"*.egg-info",
}

// ErrNotDirectory indicates the scan target is not a directory.
var ErrNotDirectory = errors.New("path is not a directory")

// TreeNode is one entry in the hierarchical directory structure.
type TreeNode struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	IsDirectory bool        `json:"is_directory"`
	Size        int64       `json:"size"`
	Children    []*TreeNode `json:"children"`
}

// Report is the aggregate result of a directory scan.
type Report struct {
	DirectoryPath string         `json:"directory_path"`
	TotalFiles    int            `json:"total_files"`
	FileTypes     map[string]int `json:"file_types"`
	TotalSize     int64          `json:"total_size"`
	Languages     map[string]int `json:"languages"`
	Structure     *TreeNode      `json:"structure"`
	AnalysisTime  float64        `json:"analysis_time"`
	Errors        []string       `json:"errors"`
}

// Scanner walks directories under the configured access rules.
type Scanner struct {
	fs       *fsio.Manager
	maxDepth int
	logger   *slog.Logger
}

// NewScanner creates a Scanner. maxDepth bounds recursion below the scan
// root; zero or negative means unbounded.
func NewScanner(fs *fsio.Manager, maxDepth int, logger *slog.Logger) *Scanner {
	return &Scanner{
		fs:       fs,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// Options controls a single scan.
type Options struct {
	// Recursive descends into subdirectories.
	Recursive bool
	// Filters keeps only files whose name ends in one of these suffixes.
	Filters []string
}

// Scan analyzes a directory. Failures are reported in Errors; the zero
// counts stay in place so callers always get a well-formed report.
func (s *Scanner) Scan(ctx context.Context, dir string, opts Options) Report {
	start := time.Now()

	report := Report{
		DirectoryPath: dir,
		FileTypes:     map[string]int{},
		Languages:     map[string]int{},
		Errors:        []string{},
	}

	abs, err := s.fs.ValidatePath(dir)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		report.AnalysisTime = time.Since(start).Seconds()

		return report
	}

	info := s.fs.Stat(abs)
	if !info.IsDir {
		report.Errors = append(report.Errors, ErrNotDirectory.Error()+": "+abs)
		report.AnalysisTime = time.Since(start).Seconds()

		return report
	}

	report.DirectoryPath = abs

	ignore := s.loadIgnorePatterns(abs)

	files := s.collect(ctx, abs, 0, opts, ignore)

	for _, path := range files {
		report.TotalFiles++

		ext := strings.ToLower(filepath.Ext(path))
		if ext == "" {
			ext = noExtensionKey
		}

		report.FileTypes[ext]++

		report.TotalSize += s.fs.Stat(path).Size

		if lang := langdetect.Info(path, nil).Language; lang != langdetect.Unknown {
			report.Languages[lang]++
		}
	}

	report.Structure = s.buildTree(abs, 0, opts, ignore)
	report.AnalysisTime = time.Since(start).Seconds()

	return report
}

// collect gathers the regular files a scan covers, pruning ignored
// directories before descending.
func (s *Scanner) collect(ctx context.Context, dir string, depth int, opts Options, ignore []string) []string {
	if ctx.Err() != nil {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("cannot list directory", "path", dir, "error", err)

		return nil
	}

	var files []string

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if shouldIgnore(path, entry.Name(), entry.IsDir(), ignore) {
			continue
		}

		if entry.IsDir() {
			if opts.Recursive && (s.maxDepth <= 0 || depth+1 < s.maxDepth) {
				files = append(files, s.collect(ctx, path, depth+1, opts, ignore)...)
			}

			continue
		}

		if !matchesFilters(entry.Name(), opts.Filters) {
			continue
		}

		if s.fs.Readable(path) {
			files = append(files, path)
		}
	}

	return files
}

// buildTree mirrors collect but keeps the hierarchy, accumulating sizes
// bottom-up.
func (s *Scanner) buildTree(dir string, depth int, opts Options, ignore []string) *TreeNode {
	node := &TreeNode{
		Name:        filepath.Base(dir),
		Path:        dir,
		IsDirectory: true,
		Children:    []*TreeNode{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("cannot list directory", "path", dir, "error", err)

		return node
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if shouldIgnore(path, entry.Name(), entry.IsDir(), ignore) {
			continue
		}

		if entry.IsDir() {
			if !opts.Recursive || (s.maxDepth > 0 && depth+1 >= s.maxDepth) {
				continue
			}

			child := s.buildTree(path, depth+1, opts, ignore)
			node.Size += child.Size
			node.Children = append(node.Children, child)

			continue
		}

		if !matchesFilters(entry.Name(), opts.Filters) || !s.fs.Readable(path) {
			continue
		}

		size := s.fs.Stat(path).Size
		node.Size += size
		node.Children = append(node.Children, &TreeNode{
			Name:     entry.Name(),
			Path:     path,
			Size:     size,
			Children: []*TreeNode{},
		})
	}

	return node
}

// loadIgnorePatterns merges the scan root's .gitignore with the built-in
// defaults. Comment and blank lines are dropped.
func (s *Scanner) loadIgnorePatterns(dir string) []string {
	patterns := append([]string{}, defaultIgnorePatterns...)

	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return patterns
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, line)
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warn("error reading .gitignore", "path", dir, "error", err)
	}

	return patterns
}

func shouldIgnore(path, name string, isDir bool, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}

		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
			return true
		}

		if isDir && strings.HasSuffix(pattern, "/") {
			if ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/"), name); ok {
				return true
			}
		}
	}

	return false
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
