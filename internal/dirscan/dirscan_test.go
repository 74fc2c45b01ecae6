package dirscan_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filescope/filescope/internal/dirscan"
	"github.com/filescope/filescope/internal/fsio"
)

func newScanner(t *testing.T, maxDepth int) *dirscan.Scanner {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	return dirscan.NewScanner(fsio.NewManager(fsio.Options{}, logger), maxDepth, logger)
}

func seedTree(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("x = 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LICENSE"), []byte("MIT\n"), 0o600))

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "util.py"), []byte("y = 2\n"), 0o600))

	ignored := filepath.Join(dir, "__pycache__")
	require.NoError(t, os.Mkdir(ignored, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ignored, "main.cpython-312.pyc"), []byte{0x00}, 0o600))

	return dir
}

func TestScan_RecursiveTree_CountsAndSizes(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{Recursive: true})

	assert.Empty(t, report.Errors)
	assert.Equal(t, 4, report.TotalFiles)
	assert.Equal(t, 2, report.FileTypes[".py"])
	assert.Equal(t, 1, report.FileTypes[".md"])
	assert.Equal(t, 1, report.FileTypes["no_extension"])
	assert.Equal(t, 2, report.Languages["python"])
	assert.Equal(t, 1, report.Languages["markdown"])
	assert.Equal(t, int64(6+9+4+6), report.TotalSize)
	assert.Positive(t, report.AnalysisTime)
}

func TestScan_IgnoredDirectories_Excluded(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{Recursive: true})

	assert.Zero(t, report.FileTypes[".pyc"])

	for _, child := range report.Structure.Children {
		assert.NotEqual(t, "__pycache__", child.Name)
	}
}

func TestScan_NonRecursive_TopLevelOnly(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{Recursive: false})

	assert.Equal(t, 3, report.TotalFiles)
	assert.Equal(t, 1, report.FileTypes[".py"])
}

func TestScan_ExtensionFilters_Applied(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{
		Recursive: true,
		Filters:   []string{".py"},
	})

	assert.Equal(t, 2, report.TotalFiles)
	assert.Equal(t, map[string]int{".py": 2}, report.FileTypes)
}

func TestScan_GitignorePatterns_Honored(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("# comment\n*.md\n"), 0o600))

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{Recursive: true})

	assert.Zero(t, report.FileTypes[".md"])
}

func TestScan_FileTarget_Error(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "lone.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o600))

	report := newScanner(t, 0).Scan(context.Background(), path, dirscan.Options{Recursive: true})

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "not a directory")
	assert.Zero(t, report.TotalFiles)
}

func TestScan_DepthLimit_StopsDescent(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)

	report := newScanner(t, 1).Scan(context.Background(), dir, dirscan.Options{Recursive: true})

	// Depth 1 keeps the root's files but never enters pkg/.
	assert.Equal(t, 3, report.TotalFiles)
}

func TestScan_TreeStructure_SizesAccumulate(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{Recursive: true})

	require.NotNil(t, report.Structure)
	assert.True(t, report.Structure.IsDirectory)
	assert.Equal(t, report.TotalSize, report.Structure.Size)
}

func TestScan_GitignoreItself_NotCounted(t *testing.T) {
	t.Parallel()

	dir := seedTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.qqq\n"), 0o600))

	report := newScanner(t, 0).Scan(context.Background(), dir, dirscan.Options{Recursive: true})

	// The .gitignore file itself is a regular text file and is counted.
	assert.Equal(t, 5, report.TotalFiles)
}
