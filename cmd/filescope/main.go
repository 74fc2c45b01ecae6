// Package main provides the entry point for the filescope CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filescope/filescope/cmd/filescope/commands"
	"github.com/filescope/filescope/pkg/version"
)

func main() {
	opts := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "filescope",
		Short: "Filescope - file and code analysis toolkit",
		Long: `Filescope analyzes files and directories for code metrics,
searches file trees, and serves its capabilities as MCP tools.

Commands:
  analyze   Analyze a single file for code metrics
  stats     Scan a directory and summarize its contents
  search    Find files or content by pattern
  mcp       Start the MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")

	rootCmd.AddCommand(commands.NewAnalyzeCommand(opts))
	rootCmd.AddCommand(commands.NewStatsCommand(opts))
	rootCmd.AddCommand(commands.NewSearchCommand(opts))
	rootCmd.AddCommand(commands.NewMCPCommand(opts))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "filescope %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
