package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/filescope/filescope/internal/dirscan"
	"github.com/filescope/filescope/internal/search"
)

// Tool name constants.
const (
	ToolNameAnalyzeFile      = "analyze_file"
	ToolNameAnalyzeDirectory = "analyze_directory"
	ToolNameSearchFiles      = "search_files"
	ToolNameFileMetadata     = "get_file_metadata"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyFilePath indicates the file_path parameter is empty.
	ErrEmptyFilePath = errors.New("file_path parameter is required and must not be empty")
	// ErrEmptyDirectoryPath indicates the directory_path parameter is empty.
	ErrEmptyDirectoryPath = errors.New("directory_path parameter is required and must not be empty")
	// ErrEmptyPattern indicates the pattern parameter is empty.
	ErrEmptyPattern = errors.New("pattern parameter is required and must not be empty")
	// ErrUnknownSearchType indicates an unrecognized search_type value.
	ErrUnknownSearchType = errors.New("search_type must be one of: glob, regex, content")
)

// Input types (auto-generate JSON schemas via struct tags).

// AnalyzeFileInput is the input schema for the analyze_file tool.
type AnalyzeFileInput struct {
	FilePath string `json:"file_path" jsonschema:"path to the file to analyze"`
}

// AnalyzeDirectoryInput is the input schema for the analyze_directory tool.
type AnalyzeDirectoryInput struct {
	DirectoryPath string   `json:"directory_path"    jsonschema:"path to the directory to analyze"`
	Recursive     *bool    `json:"recursive,omitempty" jsonschema:"whether to analyze subdirectories recursively (default: true)"`
	Filters       []string `json:"filters,omitempty" jsonschema:"file extension filters (e.g. .py .js)"`
}

// SearchFilesInput is the input schema for the search_files tool.
type SearchFilesInput struct {
	Pattern    string   `json:"pattern"               jsonschema:"search pattern (glob, regex, or literal text)"`
	SearchType string   `json:"search_type,omitempty" jsonschema:"type of search: glob, regex, or content (default: glob)"`
	BasePath   string   `json:"base_path,omitempty"   jsonschema:"directory to search in (default: current directory)"`
	Filters    []string `json:"filters,omitempty"     jsonschema:"file extension filters (e.g. .py .js)"`
}

// FileMetadataInput is the input schema for the get_file_metadata tool.
type FileMetadataInput struct {
	FilePath string `json:"file_path" jsonschema:"path to the file"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// Tool handlers.

func (s *Server) handleAnalyzeFile(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeFileInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.FilePath == "" {
		return errorResult(ErrEmptyFilePath)
	}

	report := s.analyzer.AnalyzeFile(ctx, input.FilePath)

	return jsonResult(report)
}

func (s *Server) handleAnalyzeDirectory(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeDirectoryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.DirectoryPath == "" {
		return errorResult(ErrEmptyDirectoryPath)
	}

	recursive := true
	if input.Recursive != nil {
		recursive = *input.Recursive
	}

	report := s.scanner.Scan(ctx, input.DirectoryPath, dirscan.Options{
		Recursive: recursive,
		Filters:   input.Filters,
	})

	return jsonResult(report)
}

func (s *Server) handleSearchFiles(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input SearchFilesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Pattern == "" {
		return errorResult(ErrEmptyPattern)
	}

	searchType := input.SearchType
	if searchType == "" {
		searchType = search.TypeGlob
	}

	switch searchType {
	case search.TypeGlob, search.TypeRegex, search.TypeContent:
	default:
		return errorResult(fmt.Errorf("%w: got %q", ErrUnknownSearchType, input.SearchType))
	}

	basePath := input.BasePath
	if basePath == "" {
		basePath = "."
	}

	result := s.search.Search(ctx, input.Pattern, searchType, basePath, input.Filters)

	return jsonResult(result)
}

func (s *Server) handleFileMetadata(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input FileMetadataInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.FilePath == "" {
		return errorResult(ErrEmptyFilePath)
	}

	meta := s.analyzer.Metadata(ctx, input.FilePath)

	return jsonResult(meta)
}
