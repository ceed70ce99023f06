package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/errors"
	"gopkg.in/yaml.v3"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage Elbert configuration",
	Long: `am - Manage Elbert configuration ("I am")

Display and manage launcher settings.

Configuration sources (in order of precedence):
1. Environment variables (ELBERT_* prefix)
2. Project config (./am.toml, searched up directories)
3. User config (~/.elbert/am.toml)
4. System config (/etc/elbert/config.toml)
5. Default values

Examples:
  elbert am show                       # Show current configuration
  elbert am show --format json         # Show configuration in JSON format
  elbert am get plugins.dir            # Get specific config value
  elbert am set search.result_limit 20 # Persist a value in ~/.elbert/am.toml
  elbert am where                      # Show where each value comes from
  elbert am validate                   # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective Elbert configuration from all sources",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., plugins.dir, search.result_limit)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value to the user config",
	Long: `Write a configuration value to ~/.elbert/am.toml.

The value is read as YAML, so 20 is a number, true is a boolean and
[".app", ".prefPane"] is a list. The previous file is kept as a backup.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current Elbert configuration is valid",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and the source of every effective
setting.`,
	Args: cobra.NoArgs,
	RunE: runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	settings := am.GetViper().AllSettings()
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		return writeJSON(out, settings)

	case "yaml":
		data, err := yaml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# Elbert configuration\n%s", data)

	case "toml":
		data, err := toml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# Elbert configuration\n%s", data)

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.IsSet(key) {
		return errors.NewNotFoundError("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.IsSet(key) {
		return errors.WithHint(
			errors.NewNotFoundError("configuration key %q not found", key),
			"run 'elbert am show' to list the known keys")
	}

	value, err := parseSettingValue(args[1])
	if err != nil {
		return err
	}
	if err := am.SetUser(key, value); err != nil {
		return err
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to reload config")
	}
	if err := cfg.Validate(); err != nil {
		pterm.Warning.Printfln("%s saved, but the configuration no longer validates: %v", key, err)
		return nil
	}
	pterm.Success.Printfln("%s = %v (%s)", key, value, am.UserConfigPath())
	return nil
}

// parseSettingValue reads a command-line value as YAML so numbers, booleans
// and lists keep their type in the TOML file.
func parseSettingValue(raw string) (interface{}, error) {
	var value interface{}
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, errors.Wrapf(err, "parse value %q", raw)
	}
	if value == nil {
		return raw, nil
	}
	return value, nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(out, "  2. [SYSTEM]   /etc/elbert/config.toml")
	fmt.Fprintln(out, "  3. [USER]     ~/.elbert/am.toml")
	fmt.Fprintln(out, "  4. [PROJECT]  ./am.toml (searches up directories)")
	fmt.Fprintln(out, "  5. [ENV]      ELBERT_* environment variables")
	fmt.Fprintln(out)

	writeSettingsBySource(out, intro.Settings)
	return nil
}

func writeSettingsBySource(out io.Writer, settings []am.SettingInfo) {
	type group struct {
		source   am.ConfigSource
		path     string
		settings []am.SettingInfo
	}

	groups := make(map[string]*group)
	for _, s := range settings {
		key := string(s.Source)
		path := ""
		if s.Source != am.SourceDefault && s.Source != am.SourceEnvironment {
			path = s.SourcePath
			key += ":" + path
		}
		g, ok := groups[key]
		if !ok {
			g = &group{source: s.Source, path: path}
			groups[key] = g
		}
		g.settings = append(g.settings, s)
	}

	order := map[am.ConfigSource]int{
		am.SourceDefault:     0,
		am.SourceSystem:      1,
		am.SourceUser:        2,
		am.SourceProject:     3,
		am.SourceEnvironment: 4,
	}
	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if order[sorted[i].source] != order[sorted[j].source] {
			return order[sorted[i].source] < order[sorted[j].source]
		}
		return sorted[i].path < sorted[j].path
	})

	fmt.Fprintln(out, "Active configuration:")
	for _, g := range sorted {
		switch {
		case g.path != "":
			fmt.Fprintf(out, "\n%s: %d settings from %s\n", g.source, len(g.settings), g.path)
		case g.source == am.SourceEnvironment:
			fmt.Fprintf(out, "\n%s: %d settings from environment variables\n", g.source, len(g.settings))
		default:
			fmt.Fprintf(out, "\n%s: %d settings\n", g.source, len(g.settings))
		}
		for _, s := range g.settings {
			value := fmt.Sprintf("%v", s.Value)
			if len(value) > 50 {
				value = value[:47] + "..."
			}
			if g.source == am.SourceEnvironment {
				fmt.Fprintf(out, "  %s = %s (%s)\n", s.Key, value, s.SourcePath)
				continue
			}
			fmt.Fprintf(out, "  %s = %s\n", s.Key, value)
		}
	}
}
