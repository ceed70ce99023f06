package am

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/teranos/elbert/index"
)

// Default values that are not ranking options
const (
	DefaultPluginWorkers   = 4
	DefaultWatchDebounceMS = 500
	DefaultShell           = "/bin/zsh"
	DefaultOpener          = "open"
	SampleManifestName     = "sample-plugin.json"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Search ranking defaults
	v.SetDefault("search.result_limit", index.DefaultResultLimit)
	v.SetDefault("search.empty_limit", index.DefaultEmptyLimit)
	v.SetDefault("search.suggestion_count", index.DefaultSuggestionCount)
	v.SetDefault("search.suggestion_score", index.DefaultSuggestionScore)
	v.SetDefault("search.command_boost", index.DefaultCommandBoost)

	// Discovery defaults
	v.SetDefault("discovery.app_dirs", []string{"/Applications", "~/Applications"})
	v.SetDefault("discovery.extensions", []string{".app"})

	// Plugin defaults
	v.SetDefault("plugins.dir", "~/.elbert/plugins")
	v.SetDefault("plugins.create_sample", true)
	v.SetDefault("plugins.workers", DefaultPluginWorkers)

	// Watcher defaults
	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce_ms", DefaultWatchDebounceMS)

	// Launch defaults
	v.SetDefault("launch.shell", DefaultShell)
	v.SetDefault("launch.opener", DefaultOpener)

	v.SetDefault("log.json", false)
}

// BindEnvVars binds settings that also answer to a legacy env name
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("plugins.dir", "ELBERT_PLUGINS_DIR", "ELBERT_PLUGIN_DIR")
}

// SearchOptions returns the ranking options for the index
func (c *Config) SearchOptions() index.Options {
	return index.Options{
		ResultLimit:     c.Search.ResultLimit,
		EmptyLimit:      c.Search.EmptyLimit,
		SuggestionCount: c.Search.SuggestionCount,
		SuggestionScore: c.Search.SuggestionScore,
		CommandBoost:    c.Search.CommandBoost,
	}
}

// IndexOptions returns index constructor options built from the search section
func (c *Config) IndexOptions() []index.Option {
	return []index.Option{index.WithOptions(c.SearchOptions())}
}

// GetPluginDir returns the plugin directory with "~" expanded
func (c *Config) GetPluginDir() string {
	if c.Plugins.Dir == "" {
		return ExpandHome("~/.elbert/plugins")
	}
	return ExpandHome(c.Plugins.Dir)
}

// GetAppDirs returns the discovery roots with "~" expanded
func (c *Config) GetAppDirs() []string {
	dirs := make([]string, 0, len(c.Discovery.AppDirs))
	for _, d := range c.Discovery.AppDirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		dirs = append(dirs, ExpandHome(d))
	}
	return dirs
}

// GetExtensions returns bundle extensions, defaulting to ".app"
func (c *Config) GetExtensions() []string {
	if len(c.Discovery.Extensions) == 0 {
		return []string{".app"}
	}
	return c.Discovery.Extensions
}

// GetPluginWorkers returns the manifest parse pool size (default: 4)
func (c *Config) GetPluginWorkers() int {
	if c.Plugins.Workers <= 0 {
		return DefaultPluginWorkers
	}
	return c.Plugins.Workers
}

// GetDebounce returns the watcher quiet period
func (c *Config) GetDebounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return DefaultWatchDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// GetShell returns the login shell used for shell commands
func (c *Config) GetShell() string {
	if c.Launch.Shell == "" {
		return DefaultShell
	}
	return c.Launch.Shell
}

// GetOpener returns the command used to open applications and URLs
func (c *Config) GetOpener() string {
	if c.Launch.Opener == "" {
		return DefaultOpener
	}
	return c.Launch.Opener
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Paths that don't start with "~" are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Search: {ResultLimit: %d}, Plugins: {Dir: %s}, Watch: {Enabled: %t}}",
		c.Search.ResultLimit, c.Plugins.Dir, c.Watch.Enabled)
}
