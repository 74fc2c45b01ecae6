// Package metrics derives structural code metrics from source text.
//
// The package exposes one pure surface: given source text and a detected
// language label, produce a CodeMetrics record or nil. Two analyzers back
// that surface: a precise one that walks a verified Python syntax tree and
// a heuristic one that runs per-language pattern tables over raw text.
// The split is intentional; the heuristic path trades exactness for breadth
// and its overcounting is part of the contract, not a defect.
package metrics

// TodoItem is a single flagged marker comment (TODO, FIXME and friends).
// Items are created during extraction and never mutated afterwards.
type TodoItem struct {
	Line     int    `json:"line_number"`
	Kind     string `json:"comment_type"`
	Text     string `json:"text"`
	FilePath string `json:"file_path"`
}

// FunctionRecord describes one discovered function definition. Only the
// count survives into CodeMetrics; the precise analyzer keeps full records
// internally to distinguish methods from free functions.
type FunctionRecord struct {
	Name       string
	Line       int
	IsAsync    bool
	IsMethod   bool
	Decorators []string
	Params     []string
}

// MethodRecord describes a function defined directly inside a class body.
type MethodRecord struct {
	Name       string
	Line       int
	IsAsync    bool
	IsProperty bool
}

// ClassRecord describes one discovered class definition.
type ClassRecord struct {
	Name       string
	Line       int
	Bases      []string
	Methods    []MethodRecord
	Decorators []string
}

// ImportRecord describes one discovered import. The precise analyzer
// produces structured records; the heuristic analyzer only counts.
type ImportRecord struct {
	Module        string
	Name          string
	Alias         string
	Line          int
	IsFrom        bool
	IsStdlib      bool
	RelativeLevel int
}

// CodeMetrics is the canonical output of the analysis core. One record is
// built per analyzed file per invocation and is immutable once constructed.
//
// CommentLines + BlankLines never exceeds the total line count of the
// analyzed text, CyclomaticComplexity is at least 1.0 and
// MaintainabilityIndex is clamped to [0, 100].
type CodeMetrics struct {
	FunctionCount        int        `json:"function_count"`
	ClassCount           int        `json:"class_count"`
	ImportCount          int        `json:"import_count"`
	CommentLines         int        `json:"comment_lines"`
	BlankLines           int        `json:"blank_lines"`
	CyclomaticComplexity float64    `json:"cyclomatic_complexity"`
	MaintainabilityIndex float64    `json:"maintainability_index"`
	Todos                []TodoItem `json:"todos"`
}
