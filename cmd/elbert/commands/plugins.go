package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/logger"
	"github.com/teranos/elbert/manifest"
)

// PluginsCmd represents the plugins command
var PluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect the plugin manifest directory",
	Long: `Inspect plugin manifests.

Every *.json, *.yaml, *.yml and *.toml file in plugins.dir declares a
plugin name and a list of commands. Invalid files are skipped with a
warning (run with -v to see them).

Examples:
  elbert plugins list           # Loaded manifests and their commands
  elbert plugins path           # Print the manifest directory
  elbert plugins sample         # Write sample-plugin.json if missing
  elbert plugins sample --print # Print the sample manifest`,
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded plugin manifests",
	Args:  cobra.NoArgs,
	RunE:  runPluginsList,
}

var pluginsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the plugin directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.GetPluginDir())
		return nil
	},
}

var pluginsSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write or print the sample manifest",
	Args:  cobra.NoArgs,
	RunE:  runPluginsSample,
}

var (
	pluginsShowCommands bool
	samplePrint         bool
)

func init() {
	pluginsListCmd.Flags().BoolVarP(&pluginsShowCommands, "commands", "c", false, "Also list each plugin's commands")
	pluginsSampleCmd.Flags().BoolVar(&samplePrint, "print", false, "Print the sample manifest instead of writing it")

	PluginsCmd.AddCommand(pluginsListCmd)
	PluginsCmd.AddCommand(pluginsPathCmd)
	PluginsCmd.AddCommand(pluginsSampleCmd)
}

func newLoader(cfg *am.Config) *manifest.Loader {
	return manifest.NewLoader(cfg.GetPluginDir(),
		manifest.WithWorkers(cfg.GetPluginWorkers()),
		manifest.WithSample(cfg.Plugins.CreateSample),
		manifest.WithLogger(logger.ComponentLogger("manifest")))
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	plugins, err := newLoader(cfg).Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(plugins) == 0 {
		fmt.Fprintf(out, "No plugins in %s\n", cfg.GetPluginDir())
		return nil
	}

	data := pterm.TableData{{"Plugin", "File", "Commands"}}
	for _, p := range plugins {
		data = append(data, []string{p.Name, p.File, strconv.Itoa(len(p.Commands))})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, table)

	if pluginsShowCommands {
		for _, p := range plugins {
			fmt.Fprintf(out, "\n%s\n", p.Name)
			for _, c := range p.Commands {
				fmt.Fprintf(out, "  %-20s %-6s %s\n", c.ID, c.Action.Type, c.Action.Value)
			}
		}
	}
	return nil
}

func runPluginsSample(cmd *cobra.Command, args []string) error {
	if samplePrint {
		data, err := manifest.Encode(manifest.Sample())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	loader := newLoader(cfg)
	if err := os.MkdirAll(loader.Dir(), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "create plugin directory %s", loader.Dir())
	}
	if err := loader.WriteSample(); err != nil {
		return err
	}
	pterm.Success.Printfln("Sample manifest at %s", loader.SamplePath())
	return nil
}
