// Package analyzer coordinates single-file analysis: path validation,
// binary detection, language routing, and metric extraction.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/filescope/filescope/internal/fsio"
	"github.com/filescope/filescope/internal/langdetect"
	"github.com/filescope/filescope/pkg/metrics"
)

// headSampleSize is how many leading bytes feed binary detection.
const headSampleSize = 8192

// FileReport is the complete analysis result for a single file.
type FileReport struct {
	FilePath     string               `json:"file_path"`
	FileSize     int64                `json:"file_size"`
	LineCount    int                  `json:"line_count"`
	Language     string               `json:"language"`
	LastModified time.Time            `json:"last_modified"`
	IsBinary     bool                 `json:"is_binary"`
	Encoding     string               `json:"encoding"`
	Metrics      *metrics.CodeMetrics `json:"metrics"`
	Errors       []string             `json:"errors"`
}

// Metadata describes a file without analyzing its contents.
type Metadata struct {
	FilePath    string    `json:"file_path"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
	Permissions string    `json:"permissions"`
	IsFile      bool      `json:"is_file"`
	IsDir       bool      `json:"is_dir"`
	Exists      bool      `json:"exists"`
	IsBinary    bool      `json:"is_binary"`
	Language    string    `json:"language"`
	Errors      []string  `json:"errors"`
}

// Service routes analysis requests and aggregates results. Failures show
// up in the report's Errors field; the service itself does not fail.
type Service struct {
	fs       *fsio.Manager
	registry *metrics.Registry
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(fs *fsio.Manager, registry *metrics.Registry, logger *slog.Logger) *Service {
	return &Service{
		fs:       fs,
		registry: registry,
		logger:   logger,
	}
}

// Metadata returns file metadata without content analysis. A missing or
// rejected path yields a record with Exists false and the error string.
func (s *Service) Metadata(_ context.Context, path string) Metadata {
	meta := Metadata{
		FilePath:    path,
		Permissions: "000",
		Language:    langdetect.Unknown,
		Errors:      []string{},
	}

	abs, err := s.fs.ValidatePath(path)
	if err != nil {
		s.logger.Error("metadata request rejected", "path", path, "error", err)
		meta.Errors = append(meta.Errors, err.Error())

		return meta
	}

	meta.FilePath = abs

	info := s.fs.Stat(abs)
	if !info.Exists {
		return meta
	}

	meta.Size = info.Size
	meta.Modified = info.Modified
	meta.Permissions = fmt.Sprintf("%03o", info.Mode.Perm())
	meta.IsFile = info.IsFile
	meta.IsDir = info.IsDir
	meta.Exists = true

	if !info.IsFile {
		return meta
	}

	head, err := s.fs.ReadHead(abs, headSampleSize)
	if err != nil {
		meta.Errors = append(meta.Errors, err.Error())

		return meta
	}

	if langdetect.IsBinary(abs, head) {
		meta.IsBinary = true
		meta.Language = langdetect.Binary

		return meta
	}

	meta.Language = langdetect.Detect(abs, head)

	return meta
}

// AnalyzeFile analyzes a single file. Binary files get metadata only;
// text files additionally get line counts and, when an analyzer claims
// the language, code metrics.
func (s *Service) AnalyzeFile(ctx context.Context, path string) FileReport {
	report := FileReport{
		FilePath: path,
		Language: langdetect.Unknown,
		Encoding: fsio.EncodingUTF8,
		Errors:   []string{},
	}

	abs, err := s.fs.ValidatePath(path)
	if err != nil {
		s.logger.Error("file analysis rejected", "path", path, "error", err)
		report.Errors = append(report.Errors, err.Error())

		return report
	}

	report.FilePath = abs

	info := s.fs.Stat(abs)
	report.FileSize = info.Size
	report.LastModified = info.Modified

	head, err := s.fs.ReadHead(abs, headSampleSize)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())

		return report
	}

	if langdetect.IsBinary(abs, head) {
		report.IsBinary = true
		report.Language = langdetect.Binary

		return report
	}

	content, encoding, err := s.fs.Read(abs)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())

		return report
	}

	report.Encoding = encoding
	report.Language = langdetect.Detect(abs, []byte(content))
	report.LineCount = metrics.CountLines(content)

	result, err := s.registry.Analyze(ctx, report.Language, content, abs)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())

		return report
	}

	report.Metrics = result

	return report
}
