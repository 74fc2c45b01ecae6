package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/filescope/filescope/internal/dirscan"
	"github.com/filescope/filescope/internal/observability"
)

// StatsCommand holds the flags for the stats command.
type StatsCommand struct {
	global    *GlobalOptions
	format    string
	output    string
	filters   []string
	recursive bool
	noColor   bool
}

// NewStatsCommand creates and configures the stats command.
func NewStatsCommand(global *GlobalOptions) *cobra.Command {
	cmd := &StatsCommand{global: global}

	cobraCmd := &cobra.Command{
		Use:   "stats <directory>",
		Short: "Scan a directory and summarize its contents",
		Long: "Scan a directory tree: file counts by extension and language,\n" +
			"total size, and structure. Honors .gitignore and default ignore patterns.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "text", "Output format: text or json")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().StringSliceVar(&cmd.filters, "filters", nil, "File extension filters (e.g. .py,.js)")
	cobraCmd.Flags().BoolVarP(&cmd.recursive, "recursive", "r", true, "Scan subdirectories recursively")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the stats command.
func (c *StatsCommand) Run(cobraCmd *cobra.Command, args []string) error {
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

	report := app.Scanner.Scan(cobraCmd.Context(), args[0], dirscan.Options{
		Recursive: c.recursive,
		Filters:   c.filters,
	})

	if c.format == formatJSON {
		return writeJSON(writer, report)
	}

	c.renderText(writer, report)

	return nil
}

func (c *StatsCommand) renderText(w io.Writer, report dirscan.Report) {
	color.NoColor = c.noColor || c.global.Quiet

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%s\n", report.DirectoryPath)

	fmt.Fprintf(w, "  Files: %d\n", report.TotalFiles)
	fmt.Fprintf(w, "  Size:  %s\n", humanize.Bytes(uint64(report.TotalSize)))
	fmt.Fprintf(w, "  Scan:  %.3fs\n", report.AnalysisTime)

	if len(report.Languages) > 0 {
		fmt.Fprintf(w, "\n%s\n", countTable("Language", report.Languages))
	}

	if len(report.FileTypes) > 0 {
		fmt.Fprintf(w, "\n%s\n", countTable("Extension", report.FileTypes))
	}

	for _, errMsg := range report.Errors {
		color.New(color.FgRed).Fprintf(w, "  error: %s\n", errMsg)
	}
}

// countTable renders a name-to-count map sorted by count descending,
// name ascending on ties.
func countTable(label string, counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}

		return names[i] < names[j]
	})

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{label, "Files"})

	for _, name := range names {
		tbl.AppendRow(table.Row{name, counts[name]})
	}

	return tbl.Render()
}
