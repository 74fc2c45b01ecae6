package metrics

import (
	"context"
	"fmt"
	"log/slog"
)

// LanguageAnalyzer extracts code metrics for a family of languages.
type LanguageAnalyzer interface {
	// Supports reports whether the analyzer handles the language label.
	Supports(language string) bool
	// Analyze extracts metrics from source text.
	Analyze(ctx context.Context, content, filePath string) (*CodeMetrics, error)
}

// Registry dispatches analysis to the first analyzer claiming a language.
// Order matters: precise analyzers are registered ahead of heuristic ones.
type Registry struct {
	analyzers []LanguageAnalyzer
	logger    *slog.Logger
}

// NewRegistry creates a registry with the default analyzer chain.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		analyzers: []LanguageAnalyzer{
			NewPythonAnalyzer(),
			NewGenericAnalyzer(),
		},
		logger: logger,
	}
}

// Supports reports whether any registered analyzer handles the language.
func (r *Registry) Supports(language string) bool {
	for _, analyzer := range r.analyzers {
		if analyzer.Supports(language) {
			return true
		}
	}

	return false
}

// Analyze runs the first matching analyzer. A language nobody claims
// returns (nil, nil). Analyzer failures, panics included, come back as
// errors rather than crashing the caller.
func (r *Registry) Analyze(ctx context.Context, language, content, filePath string) (result *CodeMetrics, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("analyzer panic on %s: %v", filePath, rec)
			r.logger.Error("analyzer panic", "file", filePath, "language", language, "panic", rec)
		}
	}()

	for _, analyzer := range r.analyzers {
		if !analyzer.Supports(language) {
			continue
		}

		result, err = analyzer.Analyze(ctx, content, filePath)
		if err != nil {
			r.logger.Warn("code analysis failed",
				"file", filePath, "language", language, "error", err)

			return nil, err
		}

		return result, nil
	}

	return nil, nil
}
