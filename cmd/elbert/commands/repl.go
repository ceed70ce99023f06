package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/logger"
)

var (
	replLimit   int
	replExplain bool
)

// ReplCmd represents the repl command
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive search with live plugin reloads",
	Long: `Read queries from stdin and print ranked results after each line.

The plugin directory is watched while the session runs; saving a
manifest rebuilds the index in the background.

Input:
  <query>     Search
  (empty)     Browse list
  !<query>    Run the top hit for <query>
  :run N      Run result N of the last search
  :reload     Rebuild the index now
  :stats      Show index counts
  :quit       Leave (Ctrl+D works too)`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	ReplCmd.Flags().IntVarP(&replLimit, "limit", "l", 10, "Results shown per query")
	ReplCmd.Flags().BoolVar(&replExplain, "explain", false, "Show the match tier of each result")
}

// session is the part of the launcher the repl drives.
type session interface {
	Search(query string) []index.Result
	Execute(ctx context.Context, result index.Result) error
	TryReload(ctx context.Context) error
	Index() *index.Index
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l, cfg, err := openLauncher(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	if cfg.Watch.Enabled {
		if err := l.Watch(ctx); err != nil {
			logger.Warnw("Plugin watcher unavailable, use :reload", logger.FieldError, err)
		}
	}

	r := &repl{s: l, out: cmd.OutOrStdout(), limit: replLimit, explain: replExplain}
	return r.run(ctx, cmd.InOrStdin())
}

type repl struct {
	s       session
	out     io.Writer
	limit   int
	explain bool
	last    []index.Result
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if quit := r.handle(ctx, strings.TrimSpace(scanner.Text())); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// handle processes one input line and reports whether the session ends.
func (r *repl) handle(ctx context.Context, line string) bool {
	switch {
	case line == ":quit" || line == ":q":
		return true
	case line == ":reload":
		r.report(r.s.TryReload(ctx))
		if stats := r.s.Index().Stats(); stats.Generation > 0 {
			fmt.Fprintf(r.out, "%d apps, %d commands\n", stats.Apps, stats.Commands)
		}
	case line == ":stats":
		stats := r.s.Index().Stats()
		fmt.Fprintf(r.out, "%d apps, %d commands, %d dropped, generation %d\n",
			stats.Apps, stats.Commands, stats.Dropped, stats.Generation)
	case strings.HasPrefix(line, ":run"):
		var n int
		if _, err := fmt.Sscanf(strings.TrimPrefix(line, ":run"), "%d", &n); err != nil || n < 1 || n > len(r.last) {
			fmt.Fprintf(r.out, "usage: :run N (1-%d)\n", len(r.last))
			return false
		}
		r.execute(ctx, r.last[n-1])
	case strings.HasPrefix(line, "!"):
		query := strings.TrimSpace(line[1:])
		results := r.s.Search(query)
		if len(results) == 0 {
			fmt.Fprintf(r.out, "nothing matches %q\n", query)
			return false
		}
		r.execute(ctx, results[0])
	case strings.HasPrefix(line, ":"):
		fmt.Fprintf(r.out, "unknown command %s\n", line)
	default:
		results := r.s.Search(line)
		if r.limit > 0 && len(results) > r.limit {
			results = results[:r.limit]
		}
		r.last = results
		r.report(renderResults(r.out, newResultViews(line, results, r.explain), r.explain))
	}
	return false
}

func (r *repl) execute(ctx context.Context, result index.Result) {
	if err := r.s.Execute(ctx, result); err != nil {
		r.report(err)
		return
	}
	fmt.Fprintf(r.out, "opened %s\n", result.Title)
}

func (r *repl) report(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(r.out, "hint: %s\n", hint)
	}
}
