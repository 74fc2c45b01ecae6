package metrics

import (
	"context"
	"regexp"
	"strings"
)

// genericLanguages is the set of labels the heuristic analyzer accepts.
var genericLanguages = map[string]struct{}{
	"javascript": {}, "typescript": {}, "java": {}, "c": {}, "c++": {},
	"go": {}, "rust": {}, "ruby": {}, "php": {}, "swift": {}, "kotlin": {},
	"scala": {}, "csharp": {}, "html": {}, "css": {}, "json": {},
	"yaml": {}, "markdown": {}, "shell": {},
}

// Function signature shapes, applied independently to every line. A line
// that matches several patterns yields several records; the overlap is a
// known approximation of the pattern-table approach and stays as is.
var genericFunctionPatterns = []*regexp.Regexp{
	// JavaScript/TypeScript declarations, object methods, and assigned
	// function expressions / arrows.
	regexp.MustCompile(`(?i)(?:function\s+(\w+)\s*\([^)]*\)|(\w+)\s*:\s*function\s*\([^)]*\)|(\w+)\s*=\s*(?:async\s+)?(?:function|\([^)]*\)\s*=>))`),
	// Java-style methods.
	regexp.MustCompile(`(?i)(?:public|private|protected|static|\s)*\s*\w+\s+(\w+)\s*\([^)]*\)\s*(?:throws\s+\w+(?:\s*,\s*\w+)*)?\s*\{`),
	// C-family functions with an opening brace on the same line.
	regexp.MustCompile(`(?i)(?:\w+\s+)*(\w+)\s*\([^)]*\)\s*\{`),
	// Go functions and methods.
	regexp.MustCompile(`(?i)func\s+(?:\(\w+\s+\*?\w+\)\s+)?(\w+)\s*\([^)]*\)`),
	// Rust functions.
	regexp.MustCompile(`(?i)fn\s+(\w+)\s*\([^)]*\)`),
	// Ruby/Python-style def.
	regexp.MustCompile(`(?i)def\s+(\w+)(?:\([^)]*\))?`),
	// PHP functions.
	regexp.MustCompile(`(?i)function\s+(\w+)\s*\([^)]*\)`),
}

var genericClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)class\s+(\w+)(?:\s+extends\s+\w+)?`),
	regexp.MustCompile(`(?i)(?:public|private|protected|\s)*class\s+(\w+)(?:\s+extends\s+\w+)?(?:\s+implements\s+[\w,\s]+)?`),
	regexp.MustCompile(`(?i)class\s+(\w+)(?:\s*:\s*(?:public|private|protected)\s+\w+)?`),
	regexp.MustCompile(`(?i)(?:public|private|protected|internal|\s)*class\s+(\w+)(?:\s*:\s*\w+)?`),
	regexp.MustCompile(`(?i)class\s+(\w+)(?:\s*<\s*\w+)?`),
	// PHP shares the JavaScript shape; both entries fire on the same line
	// and each contributes a record.
	regexp.MustCompile(`(?i)class\s+(\w+)(?:\s+extends\s+\w+)?`),
}

// Import counting is a raw occurrence count of introducing tokens, not a
// structured record list. Coarser than the precise path on purpose.
var genericImportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)import\s+`),
	regexp.MustCompile(`(?i)#include\s*<`),
	regexp.MustCompile(`(?i)use\s+`),
	regexp.MustCompile(`(?i)require\s*\(`),
	regexp.MustCompile(`(?i)@import\s+`),
}

// Decision shapes counted anywhere in the text, string literals included.
// That inflates counts relative to a real syntax tree; the divergence
// between the two analyzer tiers is structural, so it is not corrected.
var genericComplexityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bif\b`),
	regexp.MustCompile(`(?i)\belse\s+if\b`),
	regexp.MustCompile(`(?i)\belif\b`),
	regexp.MustCompile(`(?i)\bwhile\b`),
	regexp.MustCompile(`(?i)\bfor\b`),
	regexp.MustCompile(`(?i)\bswitch\b`),
	regexp.MustCompile(`(?i)\bcase\b`),
	regexp.MustCompile(`(?i)\bcatch\b`),
	regexp.MustCompile(`(?i)\b&&\b`),
	regexp.MustCompile(`(?i)\b\|\|\b`),
	regexp.MustCompile(`\?.*:`),
}

// GenericAnalyzer approximates code metrics for languages without a real
// parser, using ordered line-scoped pattern tables.
type GenericAnalyzer struct{}

// NewGenericAnalyzer creates the heuristic analyzer.
func NewGenericAnalyzer() *GenericAnalyzer {
	return &GenericAnalyzer{}
}

// Supports reports whether the heuristic pattern tables cover the language.
func (a *GenericAnalyzer) Supports(language string) bool {
	_, ok := genericLanguages[strings.ToLower(language)]

	return ok
}

// Analyze produces approximate metrics from raw text. It never fails: any
// text is acceptable input for the pattern tables.
func (a *GenericAnalyzer) Analyze(_ context.Context, content, filePath string) (*CodeMetrics, error) {
	total, blank, comment := countLineTypes(content)

	functions := a.extractFunctions(content)
	classes := a.extractClasses(content)
	imports := a.countImports(content)
	todos := findTodos(content, filePath, genericTodoPatterns)

	complexity := a.complexity(content)

	return &CodeMetrics{
		FunctionCount:        len(functions),
		ClassCount:           len(classes),
		ImportCount:          imports,
		CommentLines:         comment,
		BlankLines:           blank,
		CyclomaticComplexity: complexity,
		MaintainabilityIndex: MaintainabilityIndex(total, complexity, comment),
		Todos:                todos,
	}, nil
}

func (a *GenericAnalyzer) extractFunctions(content string) []FunctionRecord {
	var functions []FunctionRecord

	for lineNum, line := range strings.Split(content, "\n") {
		for _, pattern := range genericFunctionPatterns {
			for _, match := range pattern.FindAllStringSubmatch(line, -1) {
				name := firstGroup(match)
				if name == "" {
					continue
				}

				functions = append(functions, FunctionRecord{
					Name: name,
					Line: lineNum + 1,
				})
			}
		}
	}

	return functions
}

func (a *GenericAnalyzer) extractClasses(content string) []ClassRecord {
	var classes []ClassRecord

	for lineNum, line := range strings.Split(content, "\n") {
		for _, pattern := range genericClassPatterns {
			for _, match := range pattern.FindAllStringSubmatch(line, -1) {
				name := firstGroup(match)
				if name == "" {
					continue
				}

				classes = append(classes, ClassRecord{
					Name: name,
					Line: lineNum + 1,
				})
			}
		}
	}

	return classes
}

func (a *GenericAnalyzer) countImports(content string) int {
	count := 0
	for _, pattern := range genericImportPatterns {
		count += len(pattern.FindAllStringIndex(content, -1))
	}

	return count
}

func (a *GenericAnalyzer) complexity(content string) float64 {
	complexity := 1 // Base complexity.

	for _, pattern := range genericComplexityPatterns {
		complexity += len(pattern.FindAllStringIndex(content, -1))
	}

	return float64(complexity)
}

// firstGroup returns the first non-empty capture group of a submatch.
func firstGroup(match []string) string {
	for _, group := range match[1:] {
		if group != "" {
			return group
		}
	}

	return ""
}
