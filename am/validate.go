package am

import (
	"strings"

	"github.com/teranos/elbert/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Result limits: 0 would hide every result, negative is invalid
	if c.Search.ResultLimit <= 0 {
		return errors.Newf("search.result_limit must be > 0, got %d", c.Search.ResultLimit)
	}
	if c.Search.EmptyLimit <= 0 {
		return errors.Newf("search.empty_limit must be > 0, got %d", c.Search.EmptyLimit)
	}

	// Suggestions: 0 = commands only in the browse list
	if c.Search.SuggestionCount < 0 {
		return errors.Newf("search.suggestion_count must be >= 0, got %d", c.Search.SuggestionCount)
	}
	if c.Search.SuggestionScore < 0 {
		return errors.Newf("search.suggestion_score must be >= 0, got %d", c.Search.SuggestionScore)
	}
	if c.Search.CommandBoost < 0 {
		return errors.Newf("search.command_boost must be >= 0, got %d", c.Search.CommandBoost)
	}

	for _, ext := range c.Discovery.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.WithHint(
				errors.Newf("discovery.extensions entry %q is not an extension", ext),
				"extensions start with a dot, e.g. \".app\"")
		}
	}

	// Plugin workers: 0 = default pool size, negative = invalid
	if c.Plugins.Workers < 0 {
		return errors.Newf("plugins.workers must be >= 0, got %d", c.Plugins.Workers)
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	if strings.TrimSpace(c.Launch.Shell) == "" {
		return errors.New("launch.shell cannot be empty")
	}
	if strings.TrimSpace(c.Launch.Opener) == "" {
		return errors.New("launch.opener cannot be empty")
	}

	return nil
}
