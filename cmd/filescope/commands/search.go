package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/filescope/filescope/internal/observability"
	"github.com/filescope/filescope/internal/search"
)

// SearchCommand holds the flags for the search command.
type SearchCommand struct {
	global     *GlobalOptions
	format     string
	output     string
	searchType string
	basePath   string
	filters    []string
	noColor    bool
}

// NewSearchCommand creates and configures the search command.
func NewSearchCommand(global *GlobalOptions) *cobra.Command {
	cmd := &SearchCommand{global: global}

	cobraCmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Find files or content by pattern",
		Long: "Search a directory tree by glob pattern, filename regex, or\n" +
			"literal content with context lines around each hit.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "text", "Output format: text or json")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.searchType, "type", "t", search.TypeGlob, "Search type: glob, regex, or content")
	cobraCmd.Flags().StringVarP(&cmd.basePath, "base", "b", ".", "Directory to search in")
	cobraCmd.Flags().StringSliceVar(&cmd.filters, "filters", nil, "File extension filters (e.g. .py,.js)")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the search command.
func (c *SearchCommand) Run(cobraCmd *cobra.Command, args []string) error {
	app, err := newApp(c.global, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer shutdownApp(app)

	writer, closeWriter, err := openOutput(c.output)
	if err != nil {
		return err
	}

	defer closeWriter()

	result := app.Search.Search(cobraCmd.Context(), args[0], c.searchType, c.basePath, c.filters)

	if c.format == formatJSON {
		return writeJSON(writer, result)
	}

	c.renderText(writer, result)

	return nil
}

func (c *SearchCommand) renderText(w io.Writer, result search.Result) {
	color.NoColor = c.noColor || c.global.Quiet

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%s search for %q\n", result.Type, result.Pattern)

	for _, match := range result.Matches {
		if match.Line == 0 {
			fmt.Fprintf(w, "  %s\n", match.FilePath)

			continue
		}

		fmt.Fprintf(w, "  %s:%d: %s\n", match.FilePath, match.Line, match.Content)
	}

	shown := len(result.Matches)
	if shown < result.TotalMatches {
		color.New(color.FgYellow).Fprintf(w, "  ... %d more matches truncated\n", result.TotalMatches-shown)
	}

	fmt.Fprintf(w, "%d matches in %.3fs\n", result.TotalMatches, result.SearchTime)

	for _, errMsg := range result.Errors {
		color.New(color.FgRed).Fprintf(w, "  error: %s\n", errMsg)
	}
}
