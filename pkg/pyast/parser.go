// Package pyast wraps the tree-sitter Python grammar behind a small
// parse-and-walk API. It owns the lifecycle of parsers and syntax trees so
// callers never touch tree-sitter types directly.
package pyast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/filescope/filescope/pkg/safeconv"
)

// Sentinel errors for parser operations.
var (
	ErrNoRootNode = errors.New("pyast: no root node")
	errPoolType   = errors.New("pyast: pool returned unexpected type")
)

// SyntaxError reports that the source failed to parse as Python. Line is
// 1-based and points at the first invalid region.
type SyntaxError struct {
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d", e.Line)
}

var pythonLang = sitter.NewLanguage(python.GetLanguage())

var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(pythonLang)

		return p
	},
}

// Tree is a parsed Python source file. Callers must Close it when done.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// Parse parses Python source. A grammatically invalid file returns a
// *SyntaxError; infrastructure failures return other errors.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	parser, ok := parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parserPool.Put(parser)

	tree, err := parser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("pyast: parse: %w", err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, ErrNoRootNode
	}

	if root.HasError() {
		line := 1
		if errNode, found := findSyntaxNode(root); found {
			line = safeconv.MustUintToInt(errNode.StartPoint().Row) + 1
		}

		tree.Close()

		return nil, &SyntaxError{Line: line}
	}

	return &Tree{tree: tree, source: source}, nil
}

// Root returns the module node of the parsed file.
func (t *Tree) Root() sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source bytes a node spans.
func (t *Tree) Text(n sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint(len(t.source)) {
		return ""
	}

	return string(t.source[start:end])
}

// Line returns the 1-based line a node starts on.
func (t *Tree) Line(n sitter.Node) int {
	return safeconv.MustUintToInt(n.StartPoint().Row) + 1
}

// Close releases the underlying syntax tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// findSyntaxNode locates the first ERROR or MISSING node in document order.
// Recovered parses report some failures only through MISSING tokens, so
// matching on node type alone is not enough.
func findSyntaxNode(root sitter.Node) (sitter.Node, bool) {
	var (
		errNode sitter.Node
		found   bool
	)

	Walk(root, func(n sitter.Node) bool {
		if found {
			return false
		}

		if n.IsError() || n.IsMissing() {
			errNode, found = n, true

			return false
		}

		return true
	})

	return errNode, found
}

// Walk visits n and every descendant in document order. Returning false
// from visit prunes the subtree below the current node.
func Walk(n sitter.Node, visit func(sitter.Node) bool) {
	if n.IsNull() {
		return
	}

	if !visit(n) {
		return
	}

	for i := uint32(0); i < n.ChildCount(); i++ {
		Walk(n.Child(i), visit)
	}
}

// NamedChildren returns the named children of a node.
func NamedChildren(n sitter.Node) []sitter.Node {
	count := n.NamedChildCount()
	children := make([]sitter.Node, 0, safeconv.MustUint32ToInt(count))

	for i := uint32(0); i < count; i++ {
		children = append(children, n.NamedChild(i))
	}

	return children
}
