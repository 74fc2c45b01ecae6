package metrics_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filescope/filescope/pkg/metrics"
	"github.com/filescope/filescope/pkg/pyast"
)

func TestCountLines_EmptyContent_Zero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, metrics.CountLines(""))
}

func TestCountLines_NoTrailingNewline_CountsLastLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, metrics.CountLines("a"))
	assert.Equal(t, 2, metrics.CountLines("a\nb"))
}

func TestCountLines_TrailingNewline_NotDoubleCounted(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, metrics.CountLines("a\nb\n"))
	assert.Equal(t, 1, metrics.CountLines("\n"))
}

func TestMaintainabilityIndex_EmptyFile_Perfect(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 100.0, metrics.MaintainabilityIndex(0, 0, 0), 0.001)
}

func TestMaintainabilityIndex_HighComplexity_ClampsToZero(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, metrics.MaintainabilityIndex(10, 1000, 0), 0.001)
}

func TestMaintainabilityIndex_CommentHeavy_ClampsToHundred(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 100.0, metrics.MaintainabilityIndex(1, 1, 1), 0.001)
}

func TestMaintainabilityIndex_MidRange_RoundedToTwoDecimals(t *testing.T) {
	t.Parallel()

	// 171 - 5.2*ln(400) - 0.23*10 - 16.2*ln(100) = 62.9406...
	assert.InDelta(t, 62.94, metrics.MaintainabilityIndex(100, 10, 0), 0.005)
}

func TestPythonAnalyzer_Supports_PythonOnly(t *testing.T) {
	t.Parallel()

	analyzer := metrics.NewPythonAnalyzer()

	assert.True(t, analyzer.Supports("python"))
	assert.True(t, analyzer.Supports("Python"))
	assert.False(t, analyzer.Supports("go"))
}

func TestPythonAnalyzer_SimpleFunction_ComplexityCountsBranch(t *testing.T) {
	t.Parallel()

	src := "def add(a, b):\n" +
		"    if a > b:\n" +
		"        return a\n" +
		"    return b\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "add.py")
	require.NoError(t, err)

	assert.Equal(t, 1, result.FunctionCount)
	assert.Equal(t, 0, result.ClassCount)
	assert.Equal(t, 0, result.ImportCount)
	assert.InDelta(t, 2.0, result.CyclomaticComplexity, 0.001)
}

func TestPythonAnalyzer_NestedFunction_AddsComplexity(t *testing.T) {
	t.Parallel()

	src := "def outer():\n" +
		"    def inner():\n" +
		"        pass\n" +
		"    return inner\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "nested.py")
	require.NoError(t, err)

	assert.Equal(t, 2, result.FunctionCount)
	assert.InDelta(t, 2.0, result.CyclomaticComplexity, 0.001)
}

func TestPythonAnalyzer_ClassAndImports_Counted(t *testing.T) {
	t.Parallel()

	src := "import os\n" +
		"import numpy as np\n" +
		"from pathlib import Path\n" +
		"from collections import OrderedDict as OD\n" +
		"\n" +
		"\n" +
		"class Greeter(Base):\n" +
		"    @property\n" +
		"    def name(self):\n" +
		"        return self._name\n" +
		"\n" +
		"    async def greet(self):\n" +
		"        pass\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "greeter.py")
	require.NoError(t, err)

	assert.Equal(t, 1, result.ClassCount)
	assert.Equal(t, 4, result.ImportCount)
	assert.Equal(t, 2, result.FunctionCount)
	assert.InDelta(t, 1.0, result.CyclomaticComplexity, 0.001)
}

func TestPythonAnalyzer_Comprehension_CountsClauses(t *testing.T) {
	t.Parallel()

	src := "xs = [x for x in range(10) if x > 2]\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "comp.py")
	require.NoError(t, err)

	// Base 1 + one for clause + one if clause.
	assert.InDelta(t, 3.0, result.CyclomaticComplexity, 0.001)
}

func TestPythonAnalyzer_InvalidSyntax_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), "def broken(:\n", "broken.py")
	require.Error(t, err)

	var synErr *pyast.SyntaxError

	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Line)
}

func TestPythonAnalyzer_HashTodos_Extracted(t *testing.T) {
	t.Parallel()

	src := "# TODO: refactor this\n" +
		"x = 1  # FIXME broken\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "todo.py")
	require.NoError(t, err)

	require.Len(t, result.Todos, 2)
	assert.Equal(t, 1, result.Todos[0].Line)
	assert.Equal(t, "TODO", result.Todos[0].Kind)
	assert.Equal(t, "refactor this", result.Todos[0].Text)
	assert.Equal(t, 2, result.Todos[1].Line)
	assert.Equal(t, "FIXME", result.Todos[1].Kind)
	assert.Equal(t, "broken", result.Todos[1].Text)
	assert.Equal(t, "todo.py", result.Todos[1].FilePath)
}

func TestPythonAnalyzer_CommentAndBlankLines_Counted(t *testing.T) {
	t.Parallel()

	src := "# header comment\n" +
		"\n" +
		"x = 1\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "counts.py")
	require.NoError(t, err)

	assert.Equal(t, 1, result.CommentLines)
	// The blank middle line plus the empty slot after the trailing newline.
	assert.Equal(t, 2, result.BlankLines)
}

func TestGenericAnalyzer_Supports_KnownSetCaseInsensitive(t *testing.T) {
	t.Parallel()

	analyzer := metrics.NewGenericAnalyzer()

	assert.True(t, analyzer.Supports("go"))
	assert.True(t, analyzer.Supports("JavaScript"))
	assert.False(t, analyzer.Supports("python"))
	assert.False(t, analyzer.Supports("cobol"))
}

func TestGenericAnalyzer_GoSource_ApproximatesMetrics(t *testing.T) {
	t.Parallel()

	src := "package main\n" +
		"\n" +
		"import \"fmt\"\n" +
		"\n" +
		"func Add(a, b int) int {\n" +
		"\tif a > b && b > 0 {\n" +
		"\t\treturn a\n" +
		"\t}\n" +
		"\treturn b\n" +
		"}\n"

	result, err := metrics.NewGenericAnalyzer().Analyze(context.Background(), src, "add.go")
	require.NoError(t, err)

	assert.Equal(t, 1, result.FunctionCount)
	assert.Equal(t, 0, result.ClassCount)
	assert.Equal(t, 1, result.ImportCount)
	// Base 1 + the if keyword. Spaced && has no word boundary and is missed
	// by the pattern table.
	assert.InDelta(t, 2.0, result.CyclomaticComplexity, 0.001)
}

func TestPythonAnalyzer_TodoAndFixmeOnOneLine_SingleItemPrefersTodo(t *testing.T) {
	t.Parallel()

	src := "# TODO and FIXME: both\n"

	result, err := metrics.NewPythonAnalyzer().Analyze(context.Background(), src, "both.py")
	require.NoError(t, err)

	require.Len(t, result.Todos, 1)
	assert.Equal(t, "TODO", result.Todos[0].Kind)
}

func TestGenericAnalyzer_TodoAndFixmeOnOneLine_SingleItemPrefersTodo(t *testing.T) {
	t.Parallel()

	src := "// TODO and FIXME: both\n"

	result, err := metrics.NewGenericAnalyzer().Analyze(context.Background(), src, "both.js")
	require.NoError(t, err)

	require.Len(t, result.Todos, 1)
	assert.Equal(t, "TODO", result.Todos[0].Kind)
}

func TestGenericAnalyzer_ClassLine_CountsEveryPatternHit(t *testing.T) {
	t.Parallel()

	// Each pattern in the class table matches independently, and the PHP
	// entry duplicates the JavaScript shape, so one declaration line counts
	// once per pattern.
	result, err := metrics.NewGenericAnalyzer().Analyze(context.Background(), "class Foo extends Bar {\n", "foo.js")
	require.NoError(t, err)

	assert.Equal(t, 6, result.ClassCount)
}

func TestGenericAnalyzer_SlashTodo_Extracted(t *testing.T) {
	t.Parallel()

	src := "// TODO: ship it\n" +
		"// TODO\n"

	result, err := metrics.NewGenericAnalyzer().Analyze(context.Background(), src, "todo.js")
	require.NoError(t, err)

	require.Len(t, result.Todos, 2)
	assert.Equal(t, "ship it", result.Todos[0].Text)
	// A bare marker with no trailing text falls back to the whole line.
	assert.Equal(t, "// TODO", result.Todos[1].Text)
}

func TestRegistry_UnknownLanguage_NilWithoutError(t *testing.T) {
	t.Parallel()

	registry := metrics.NewRegistry(slog.New(slog.DiscardHandler))

	result, err := registry.Analyze(context.Background(), "cobol", "IDENTIFICATION DIVISION.", "main.cob")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRegistry_PythonPreferredOverGeneric_UsesSyntaxTree(t *testing.T) {
	t.Parallel()

	registry := metrics.NewRegistry(slog.New(slog.DiscardHandler))

	// A string literal containing keywords fools the pattern tables but
	// not the syntax tree.
	src := "msg = \"if for while\"\n"

	result, err := registry.Analyze(context.Background(), "python", src, "literal.py")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.InDelta(t, 1.0, result.CyclomaticComplexity, 0.001)
}

func TestRegistry_SyntaxError_PropagatesError(t *testing.T) {
	t.Parallel()

	registry := metrics.NewRegistry(slog.New(slog.DiscardHandler))

	result, err := registry.Analyze(context.Background(), "python", "def broken(:\n", "broken.py")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.As(err, new(*pyast.SyntaxError)))
}
