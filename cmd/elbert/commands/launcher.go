package commands

import (
	"context"

	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/launcher"
	"github.com/teranos/elbert/logger"
)

// openLauncher loads the configuration and returns a launcher with a
// freshly built index. Callers Close it.
func openLauncher(ctx context.Context) (*launcher.Launcher, *am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}

	l, err := launcher.New(cfg, launcher.WithLogger(logger.Logger))
	if err != nil {
		return nil, nil, err
	}
	if err := l.Reload(ctx); err != nil {
		l.Close()
		return nil, nil, err
	}
	return l, cfg, nil
}
