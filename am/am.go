// Package am loads the Elbert launcher configuration.
//
// Settings cascade from built-in defaults through system, user and project
// TOML files to ELBERT_* environment variables, last one wins.
package am

// Config represents the launcher configuration
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Plugins   PluginsConfig   `mapstructure:"plugins"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Launch    LaunchConfig    `mapstructure:"launch"`
	Log       LogConfig       `mapstructure:"log"`
}

// SearchConfig tunes result ranking
type SearchConfig struct {
	ResultLimit     int `mapstructure:"result_limit"`     // Max results for a non-empty query (default: 40)
	EmptyLimit      int `mapstructure:"empty_limit"`      // Max results for the empty-query browse list (default: 24)
	SuggestionCount int `mapstructure:"suggestion_count"` // Apps shown in the browse list (default: 12)
	SuggestionScore int `mapstructure:"suggestion_score"` // Flat score of browse-list apps (default: 120)
	CommandBoost    int `mapstructure:"command_boost"`    // Added to matching plugin commands (default: 100)
}

// DiscoveryConfig configures application discovery
type DiscoveryConfig struct {
	AppDirs    []string `mapstructure:"app_dirs"`   // Directories scanned for bundles; "~" expands to home
	Extensions []string `mapstructure:"extensions"` // Bundle directory extensions (default: [".app"])
}

// PluginsConfig configures plugin manifest loading
type PluginsConfig struct {
	Dir          string `mapstructure:"dir"`           // Manifest directory (default: ~/.elbert/plugins)
	CreateSample bool   `mapstructure:"create_sample"` // Write sample-plugin.json when missing (default: true)
	Workers      int    `mapstructure:"workers"`       // Manifest parse pool size (default: 4)
}

// WatchConfig configures the plugin directory watcher
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`     // Rebuild when manifests change (default: true)
	DebounceMS int  `mapstructure:"debounce_ms"` // Quiet period before a rebuild (default: 500)
}

// LaunchConfig configures how actions are executed
type LaunchConfig struct {
	Shell  string `mapstructure:"shell"`  // Login shell for shell commands (default: /bin/zsh)
	Opener string `mapstructure:"opener"` // Command that opens apps and URLs (default: open)
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json"` // Emit JSON logs instead of console output
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
