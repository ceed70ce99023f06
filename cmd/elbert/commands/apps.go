package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/elbert/index"
)

var appsFormat string

// AppsCmd represents the apps command
var AppsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List indexed applications",
	Long: `List the application bundles found under discovery.app_dirs, deduplicated
by name, in name order.`,
	Args: cobra.NoArgs,
	RunE: runApps,
}

func init() {
	AppsCmd.Flags().StringVarP(&appsFormat, "format", "f", "text", "Output format: text, json")
}

type appView struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func runApps(cmd *cobra.Command, args []string) error {
	if err := validateFormat(appsFormat, "text", "json"); err != nil {
		return err
	}

	l, _, err := openLauncher(cmd.Context())
	if err != nil {
		return err
	}
	defer l.Close()

	apps := l.Index().Apps()
	if appsFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), appViews(apps))
	}

	data := pterm.TableData{{"Name", "Path"}}
	for _, a := range apps {
		data = append(data, []string{a.Name, a.Path})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, table)
	fmt.Fprintf(out, "%d applications\n", len(apps))
	return nil
}

func appViews(apps []index.App) []appView {
	views := make([]appView, len(apps))
	for i, a := range apps {
		views[i] = appView{Name: a.Name, Path: a.Path}
	}
	return views
}
