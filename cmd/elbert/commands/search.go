package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit   int
	searchExplain bool
	searchFormat  string
)

// SearchCmd represents the search command
var SearchCmd = &cobra.Command{
	Use:   "search [QUERY...]",
	Short: "Rank apps and plugin commands against a query",
	Long: `Rank installed applications and plugin commands against a query.

With no query, prints the browse list: the first applications by name
followed by every plugin command.

Examples:
  elbert search                     # Browse list
  elbert search saf                 # Prefix match on Safari
  elbert search sfri --explain      # Show which tier matched
  elbert search term --format json  # Machine-readable results`,
	RunE: runSearch,
}

func init() {
	SearchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of results (0 uses search.result_limit)")
	SearchCmd.Flags().BoolVar(&searchExplain, "explain", false, "Show the match tier of each result")
	SearchCmd.Flags().StringVarP(&searchFormat, "format", "f", "text", "Output format: text, json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validateFormat(searchFormat, "text", "json"); err != nil {
		return err
	}

	l, _, err := openLauncher(cmd.Context())
	if err != nil {
		return err
	}
	defer l.Close()

	query := strings.Join(args, " ")
	results := l.Search(query)
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	views := newResultViews(query, results, searchExplain)
	if searchFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), views)
	}
	return renderResults(cmd.OutOrStdout(), views, searchExplain)
}
