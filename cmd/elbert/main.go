package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/elbert/cmd/elbert/commands"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/logger"
)

var rootCmd = &cobra.Command{
	Use:   "elbert",
	Short: "Elbert - keyboard launcher for apps and plugin commands",
	Long: `Elbert - keyboard launcher for applications and plugin commands.

Elbert indexes installed application bundles and the commands declared by
plugin manifests in ~/.elbert/plugins, ranks them against what you type and
opens the best match.

Available commands:
  search  - Rank apps and plugin commands against a query
  run     - Open the top hit for a query
  apps    - List indexed applications
  plugins - Inspect the plugin manifest directory
  repl    - Interactive search with live plugin reloads
  am      - Manage Elbert configuration ("I am")

Examples:
  elbert search safari          # Show ranked matches
  elbert run term               # Open Terminal
  elbert run --dry-run apple    # Print what would run
  elbert plugins list           # Show loaded manifests
  elbert repl -v                # Interactive session with reload logs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs and version info as JSON")

	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.AppsCmd)
	rootCmd.AddCommand(commands.PluginsCmd)
	rootCmd.AddCommand(commands.ReplCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
