package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the skybrief application
var rootCmd = &cobra.Command{
	Use:   "skybrief",
	Short: "SimBrief flight plans and live VATSIM data for AI assistants",
	Long: `skybrief exposes SimBrief dispatch flight plans and live VATSIM network
data through the Model Context Protocol (MCP).

It can run as:
  - An MCP server for AI assistants (default)
  - A one-shot CLI that prints the latest SimBrief flight plan`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "skybrief version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newBriefCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
