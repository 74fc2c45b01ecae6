package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/filescope/filescope/internal/analyzer"
	"github.com/filescope/filescope/internal/observability"
)

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	global  *GlobalOptions
	format  string
	output  string
	noColor bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand(global *GlobalOptions) *cobra.Command {
	cmd := &AnalyzeCommand{global: global}

	cobraCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a single file for code metrics",
		Long: "Analyze a single file: language, line counts, functions, classes,\n" +
			"imports, cyclomatic complexity, maintainability, and TODO markers.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "text", "Output format: text or json")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the analyze command.
func (c *AnalyzeCommand) Run(cobraCmd *cobra.Command, args []string) error {
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

	report := app.Analyzer.AnalyzeFile(cobraCmd.Context(), args[0])

	if c.format == formatJSON {
		return writeJSON(writer, report)
	}

	c.renderText(writer, report)

	return nil
}

func (c *AnalyzeCommand) renderText(w io.Writer, report analyzer.FileReport) {
	color.NoColor = c.noColor || c.global.Quiet

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%s\n", report.FilePath)

	fmt.Fprintf(w, "  Language: %s\n", report.Language)
	fmt.Fprintf(w, "  Size:     %s\n", humanize.Bytes(uint64(report.FileSize)))
	fmt.Fprintf(w, "  Lines:    %d\n", report.LineCount)
	fmt.Fprintf(w, "  Encoding: %s\n", report.Encoding)

	if report.IsBinary {
		fmt.Fprintln(w, "  Binary file, no code metrics")

		return
	}

	if report.Metrics != nil {
		fmt.Fprintf(w, "\n%s\n", metricsTable(report))
		renderTodos(w, report)
	}

	for _, errMsg := range report.Errors {
		color.New(color.FgRed).Fprintf(w, "  error: %s\n", errMsg)
	}
}

func metricsTable(report analyzer.FileReport) string {
	m := report.Metrics

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Functions", m.FunctionCount})
	tbl.AppendRow(table.Row{"Classes", m.ClassCount})
	tbl.AppendRow(table.Row{"Imports", m.ImportCount})
	tbl.AppendRow(table.Row{"Comment lines", m.CommentLines})
	tbl.AppendRow(table.Row{"Blank lines", m.BlankLines})
	tbl.AppendRow(table.Row{"Cyclomatic complexity", fmt.Sprintf("%.1f", m.CyclomaticComplexity)})
	tbl.AppendRow(table.Row{"Maintainability index", fmt.Sprintf("%.2f", m.MaintainabilityIndex)})

	return tbl.Render()
}

func renderTodos(w io.Writer, report analyzer.FileReport) {
	todos := report.Metrics.Todos
	if len(todos) == 0 {
		return
	}

	color.New(color.FgYellow).Fprintf(w, "\nMarkers (%d):\n", len(todos))

	for _, todo := range todos {
		fmt.Fprintf(w, "  %s:%d [%s] %s\n", report.FilePath, todo.Line, todo.Kind, todo.Text)
	}
}

const formatJSON = "json"

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}

func shutdownApp(app *App) {
	err := app.Providers.Shutdown(context.Background())
	if err != nil {
		app.Providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
