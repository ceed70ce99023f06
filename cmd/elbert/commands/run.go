package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/elbert/errors"
)

var runDryRun bool

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run QUERY...",
	Short: "Open the top hit for a query",
	Long: `Search for QUERY and carry out the action of the best match: open the
application or URL, or run the plugin's shell command.

Examples:
  elbert run safari           # Open Safari
  elbert run --dry-run apple  # Print the command line instead`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	RunCmd.Flags().BoolVarP(&runDryRun, "dry-run", "n", false, "Print the command that would run without running it")
}

func runRun(cmd *cobra.Command, args []string) error {
	l, _, err := openLauncher(cmd.Context())
	if err != nil {
		return err
	}
	defer l.Close()

	query := strings.Join(args, " ")

	if runDryRun {
		results := l.Search(query)
		if len(results) == 0 {
			return errors.NewNotFoundError("nothing matches %q", query)
		}
		line, err := l.Describe(results[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", results[0].Title, line)
		return nil
	}

	top, err := l.Run(cmd.Context(), query)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("%s (%s)", top.Title, top.Source)
	return nil
}
