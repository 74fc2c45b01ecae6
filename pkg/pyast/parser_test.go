package pyast_test

import (
	"context"
	"testing"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filescope/filescope/pkg/pyast"
)

func TestParse_ValidSource_ReturnsTree(t *testing.T) {
	t.Parallel()

	tree, err := pyast.Parse(context.Background(), []byte("x = 1\n"))
	require.NoError(t, err)

	defer tree.Close()

	root := tree.Root()
	assert.Equal(t, "module", root.Type())
	assert.Equal(t, "x = 1\n", tree.Text(root))
	assert.Equal(t, 1, tree.Line(root))
}

func TestParse_SyntaxError_ReportsLine(t *testing.T) {
	t.Parallel()

	_, err := pyast.Parse(context.Background(), []byte("x = 1\ndef broken(:\n"))
	require.Error(t, err)

	var syntaxErr *pyast.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.GreaterOrEqual(t, syntaxErr.Line, 1)
}

func TestParse_MissingToken_ReportsSyntaxError(t *testing.T) {
	t.Parallel()

	// Recovered as a MISSING ")" token rather than an ERROR node.
	_, err := pyast.Parse(context.Background(), []byte("def broken(:\n"))
	require.Error(t, err)

	var syntaxErr *pyast.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.GreaterOrEqual(t, syntaxErr.Line, 1)
}

func TestWalk_VisitsAllNodes(t *testing.T) {
	t.Parallel()

	tree, err := pyast.Parse(context.Background(), []byte("def f():\n    return 1\n"))
	require.NoError(t, err)

	defer tree.Close()

	var types []string

	pyast.Walk(tree.Root(), func(n sitter.Node) bool {
		types = append(types, n.Type())

		return true
	})

	assert.Contains(t, types, "function_definition")
	assert.Contains(t, types, "return_statement")
}

func TestWalk_PrunesSubtree(t *testing.T) {
	t.Parallel()

	tree, err := pyast.Parse(context.Background(), []byte("def f():\n    return 1\n"))
	require.NoError(t, err)

	defer tree.Close()

	var types []string

	pyast.Walk(tree.Root(), func(n sitter.Node) bool {
		types = append(types, n.Type())

		return n.Type() != "function_definition"
	})

	assert.Contains(t, types, "function_definition")
	assert.NotContains(t, types, "return_statement")
}

func TestNamedChildren_SkipsAnonymousTokens(t *testing.T) {
	t.Parallel()

	tree, err := pyast.Parse(context.Background(), []byte("x = 1\ny = 2\n"))
	require.NoError(t, err)

	defer tree.Close()

	children := pyast.NamedChildren(tree.Root())
	assert.Len(t, children, 2)
}
