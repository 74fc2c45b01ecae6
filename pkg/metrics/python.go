package metrics

import (
	"context"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/filescope/filescope/pkg/pyast"
	"github.com/filescope/filescope/pkg/safeconv"
)

// Top-level modules shipped with the Python standard library. Used to tag
// imports; third-party detection is the complement.
var pythonStdlibModules = map[string]struct{}{
	"os": {}, "sys": {}, "json": {}, "datetime": {}, "time": {}, "math": {},
	"random": {}, "collections": {}, "itertools": {}, "functools": {},
	"operator": {}, "copy": {}, "pickle": {}, "sqlite3": {}, "urllib": {},
	"http": {}, "email": {}, "html": {}, "xml": {}, "csv": {},
	"configparser": {}, "logging": {}, "unittest": {}, "doctest": {},
	"argparse": {}, "subprocess": {}, "threading": {}, "multiprocessing": {},
	"asyncio": {}, "concurrent": {}, "queue": {}, "socket": {}, "ssl": {},
	"hashlib": {}, "hmac": {}, "secrets": {}, "uuid": {}, "base64": {},
	"binascii": {}, "struct": {}, "codecs": {}, "locale": {}, "gettext": {},
	"calendar": {}, "zoneinfo": {}, "pathlib": {}, "glob": {}, "fnmatch": {},
	"tempfile": {}, "shutil": {}, "stat": {}, "filecmp": {}, "tarfile": {},
	"zipfile": {}, "gzip": {}, "bz2": {}, "lzma": {}, "zlib": {}, "io": {},
	"stringio": {}, "textwrap": {}, "unicodedata": {}, "string": {},
	"re": {}, "difflib": {}, "readline": {}, "rlcompleter": {},
}

// PythonAnalyzer derives exact structural metrics from the Python grammar.
type PythonAnalyzer struct{}

// NewPythonAnalyzer creates the syntax-tree backed Python analyzer.
func NewPythonAnalyzer() *PythonAnalyzer {
	return &PythonAnalyzer{}
}

// Supports reports whether this analyzer handles the language.
func (a *PythonAnalyzer) Supports(language string) bool {
	return strings.ToLower(language) == "python"
}

// Analyze parses the source and extracts structural metrics. Invalid Python
// returns a *pyast.SyntaxError.
func (a *PythonAnalyzer) Analyze(ctx context.Context, content, filePath string) (*CodeMetrics, error) {
	tree, err := pyast.Parse(ctx, []byte(content))
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	total, blank, comment := countLineTypes(content)

	col := &pythonCollector{tree: tree}
	col.collect(tree.Root(), false, nil)

	todos := findTodos(content, filePath, hashTodoPatterns)

	complexity := pythonComplexity(tree.Root())

	return &CodeMetrics{
		FunctionCount:        len(col.functions),
		ClassCount:           len(col.classes),
		ImportCount:          len(col.imports),
		CommentLines:         comment,
		BlankLines:           blank,
		CyclomaticComplexity: complexity,
		MaintainabilityIndex: MaintainabilityIndex(total, complexity, comment),
		Todos:                todos,
	}, nil
}

// pythonCollector gathers functions, classes, and imports in one traversal.
type pythonCollector struct {
	tree      *pyast.Tree
	functions []FunctionRecord
	classes   []ClassRecord
	imports   []ImportRecord
}

// collect walks statements. inClassBody is true only for direct statements
// of a class block, so nested defs never count as methods.
func (c *pythonCollector) collect(n sitter.Node, inClassBody bool, decorators []string) {
	switch n.Type() {
	case "decorated_definition":
		names := c.decoratorNames(n)

		def := n.ChildByFieldName("definition")
		if !def.IsNull() {
			c.collect(def, inClassBody, names)
		}
	case "function_definition":
		c.collectFunction(n, inClassBody, decorators)
	case "class_definition":
		c.collectClass(n, decorators)
	case "import_statement":
		c.collectImport(n)
	case "import_from_statement":
		c.collectFromImport(n)
	default:
		for _, child := range pyast.NamedChildren(n) {
			c.collect(child, false, nil)
		}
	}
}

func (c *pythonCollector) collectFunction(n sitter.Node, isMethod bool, decorators []string) {
	c.functions = append(c.functions, FunctionRecord{
		Name:       c.fieldText(n, "name"),
		Line:       c.tree.Line(n),
		IsAsync:    isAsyncDef(n),
		IsMethod:   isMethod,
		Decorators: decorators,
		Params:     c.paramNames(n),
	})

	body := n.ChildByFieldName("body")
	if !body.IsNull() {
		for _, child := range pyast.NamedChildren(body) {
			c.collect(child, false, nil)
		}
	}
}

func (c *pythonCollector) collectClass(n sitter.Node, decorators []string) {
	record := ClassRecord{
		Name:       c.fieldText(n, "name"),
		Line:       c.tree.Line(n),
		Decorators: decorators,
	}

	if supers := n.ChildByFieldName("superclasses"); !supers.IsNull() {
		for _, base := range pyast.NamedChildren(supers) {
			switch base.Type() {
			case "identifier", "attribute":
				record.Bases = append(record.Bases, c.tree.Text(base))
			}
		}
	}

	body := n.ChildByFieldName("body")
	if !body.IsNull() {
		for _, child := range pyast.NamedChildren(body) {
			if method, ok := c.methodRecord(child); ok {
				record.Methods = append(record.Methods, method)
			}
		}
	}

	c.classes = append(c.classes, record)

	if !body.IsNull() {
		for _, child := range pyast.NamedChildren(body) {
			c.collect(child, true, nil)
		}
	}
}

// methodRecord builds a MethodRecord from a direct class-body statement,
// unwrapping a decorated definition when present.
func (c *pythonCollector) methodRecord(n sitter.Node) (MethodRecord, bool) {
	var decorators []string

	def := n
	if n.Type() == "decorated_definition" {
		decorators = c.decoratorNames(n)
		def = n.ChildByFieldName("definition")
	}

	if def.IsNull() || def.Type() != "function_definition" {
		return MethodRecord{}, false
	}

	isProperty := false
	for _, name := range decorators {
		if name == "property" {
			isProperty = true

			break
		}
	}

	return MethodRecord{
		Name:       c.fieldText(def, "name"),
		Line:       c.tree.Line(def),
		IsAsync:    isAsyncDef(def),
		IsProperty: isProperty,
	}, true
}

func (c *pythonCollector) collectImport(n sitter.Node) {
	line := c.tree.Line(n)

	for _, child := range pyast.NamedChildren(n) {
		switch child.Type() {
		case "dotted_name":
			module := c.tree.Text(child)
			c.imports = append(c.imports, ImportRecord{
				Module:   module,
				Line:     line,
				IsStdlib: isPythonStdlib(module),
			})
		case "aliased_import":
			module := c.fieldText(child, "name")
			c.imports = append(c.imports, ImportRecord{
				Module:   module,
				Alias:    c.fieldText(child, "alias"),
				Line:     line,
				IsStdlib: isPythonStdlib(module),
			})
		}
	}
}

func (c *pythonCollector) collectFromImport(n sitter.Node) {
	line := c.tree.Line(n)

	module := ""
	level := 0
	moduleStart := -1

	if mod := n.ChildByFieldName("module_name"); !mod.IsNull() {
		moduleStart = safeconv.MustUintToInt(mod.StartByte())

		switch mod.Type() {
		case "dotted_name":
			module = c.tree.Text(mod)
		case "relative_import":
			text := c.tree.Text(mod)
			level = len(text) - len(strings.TrimLeft(text, "."))
			module = strings.TrimLeft(text, ".")
		}
	}

	appendName := func(name, alias string) {
		c.imports = append(c.imports, ImportRecord{
			Module:        module,
			Name:          name,
			Alias:         alias,
			Line:          line,
			IsFrom:        true,
			IsStdlib:      isPythonStdlib(module),
			RelativeLevel: level,
		})
	}

	for _, child := range pyast.NamedChildren(n) {
		if safeconv.MustUintToInt(child.StartByte()) == moduleStart {
			continue // The module clause, not an imported name.
		}

		switch child.Type() {
		case "dotted_name":
			appendName(c.tree.Text(child), "")
		case "aliased_import":
			appendName(c.fieldText(child, "name"), c.fieldText(child, "alias"))
		case "wildcard_import":
			appendName("*", "")
		}
	}
}

// decoratorNames resolves the decorator list of a decorated_definition.
func (c *pythonCollector) decoratorNames(n sitter.Node) []string {
	var names []string

	for _, child := range pyast.NamedChildren(n) {
		if child.Type() != "decorator" {
			continue
		}

		for _, expr := range pyast.NamedChildren(child) {
			names = append(names, c.decoratorName(expr))
		}
	}

	return names
}

func (c *pythonCollector) decoratorName(n sitter.Node) string {
	switch n.Type() {
	case "identifier", "attribute":
		return c.tree.Text(n)
	case "call":
		if fn := n.ChildByFieldName("function"); !fn.IsNull() {
			return c.decoratorName(fn)
		}

		return c.tree.Text(n)
	default:
		return c.tree.Text(n)
	}
}

// paramNames returns the positional parameter names of a function, skipping
// the *args / **kwargs splats.
func (c *pythonCollector) paramNames(n sitter.Node) []string {
	params := n.ChildByFieldName("parameters")
	if params.IsNull() {
		return nil
	}

	var names []string

	for _, param := range pyast.NamedChildren(params) {
		switch param.Type() {
		case "identifier":
			names = append(names, c.tree.Text(param))
		case "typed_parameter":
			if len(pyast.NamedChildren(param)) > 0 {
				first := param.NamedChild(0)
				if first.Type() == "identifier" {
					names = append(names, c.tree.Text(first))
				}
			}
		case "default_parameter", "typed_default_parameter":
			if name := param.ChildByFieldName("name"); !name.IsNull() {
				names = append(names, c.tree.Text(name))
			}
		}
	}

	return names
}

func (c *pythonCollector) fieldText(n sitter.Node, field string) string {
	child := n.ChildByFieldName(field)
	if child.IsNull() {
		return ""
	}

	return c.tree.Text(child)
}

// isAsyncDef reports whether a definition carries the async keyword.
func isAsyncDef(n sitter.Node) bool {
	for i := uint32(0); i < n.ChildCount(); i++ {
		if n.Child(i).Type() == "async" {
			return true
		}
	}

	return false
}

func isPythonStdlib(module string) bool {
	if module == "" {
		return false
	}

	top := module
	if idx := strings.IndexByte(module, '.'); idx >= 0 {
		top = module[:idx]
	}

	_, ok := pythonStdlibModules[top]

	return ok
}

// pythonComplexity counts decision points. Branches, loops, exception
// handlers, boolean operators, and comprehension clauses each add one.
// Closures add one; top-level functions and methods do not open a branch
// and contribute nothing.
func pythonComplexity(root sitter.Node) float64 {
	complexity := 1 // Base complexity.

	var walk func(n sitter.Node, inFunction bool)

	walk = func(n sitter.Node, inFunction bool) {
		nextInFunction := inFunction

		switch n.Type() {
		case "if_statement", "elif_clause", "while_statement", "for_statement",
			"except_clause", "boolean_operator", "for_in_clause", "if_clause":
			complexity++
		case "function_definition":
			if inFunction {
				complexity++
			}

			nextInFunction = true
		}

		for i := uint32(0); i < n.ChildCount(); i++ {
			walk(n.Child(i), nextInFunction)
		}
	}

	walk(root, false)

	return float64(complexity)
}
