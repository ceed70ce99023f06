// Package launcher wires discovery, plugin manifests, the search index and
// action execution into one coordinator.
package launcher

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/discovery"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/launch"
	"github.com/teranos/elbert/logger"
	"github.com/teranos/elbert/manifest"
	"github.com/teranos/elbert/watch"
	"go.uber.org/zap"
)

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the parent logger; components get named children.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(la *Launcher) {
		la.logger = logger.OrNop(l)
	}
}

// Launcher owns the index and keeps it in sync with the disk.
type Launcher struct {
	cfg      *am.Config
	index    *index.Index
	loader   *manifest.Loader
	scanner  *discovery.Scanner
	executor *launch.Executor
	logger   *zap.SugaredLogger

	reloadMu  sync.Mutex
	reloading atomic.Bool
	lastErr   atomic.Pointer[error]

	pluginsMu sync.RWMutex
	plugins   []manifest.Plugin

	watcherMu sync.Mutex
	watcher   *watch.PluginWatcher
}

// New builds a launcher from cfg. The index starts empty; call Reload.
func New(cfg *am.Config, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		return nil, errors.New("launcher needs a config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	l := &Launcher{cfg: cfg, logger: logger.Logger}
	for _, opt := range opts {
		opt(l)
	}

	executor, err := launch.NewExecutor(cfg.GetShell(), cfg.GetOpener(), l.logger.Named("launch"))
	if err != nil {
		return nil, err
	}
	l.executor = executor

	l.index = index.New(append(cfg.IndexOptions(), index.WithLogger(l.logger.Named("index")))...)
	l.scanner = discovery.NewScanner(cfg.GetAppDirs(), cfg.GetExtensions(), l.logger.Named("discovery"))
	l.loader = manifest.NewLoader(cfg.GetPluginDir(),
		manifest.WithWorkers(cfg.GetPluginWorkers()),
		manifest.WithSample(cfg.Plugins.CreateSample),
		manifest.WithLogger(l.logger.Named("manifest")),
		manifest.WithWriteHook(l.markOwnWrite))

	return l, nil
}

// Reload reads the plugin directory, rescans applications and rebuilds the
// index. Reloads run one at a time; a second caller waits for the first.
func (l *Launcher) Reload(ctx context.Context) error {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()
	return l.reloadLocked(ctx)
}

// TryReload is Reload that returns ErrRebuildInProgress instead of waiting.
func (l *Launcher) TryReload(ctx context.Context) error {
	if !l.reloadMu.TryLock() {
		return errors.ErrRebuildInProgress
	}
	defer l.reloadMu.Unlock()
	return l.reloadLocked(ctx)
}

func (l *Launcher) reloadLocked(ctx context.Context) error {
	l.reloading.Store(true)
	defer l.reloading.Store(false)
	start := time.Now()

	plugins, err := l.loader.Load(ctx)
	if err != nil {
		l.setLastErr(err)
		return errors.Wrap(err, "failed to load plugins")
	}

	apps, err := l.scanner.Scan(ctx)
	if err != nil {
		l.setLastErr(err)
		return errors.Wrap(err, "failed to scan applications")
	}

	l.index.Rebuild(apps, manifest.Commands(plugins))

	l.pluginsMu.Lock()
	l.plugins = plugins
	l.pluginsMu.Unlock()
	l.setLastErr(nil)

	stats := l.index.Stats()
	l.logger.Infow("Launcher reloaded",
		logger.FieldApps, stats.Apps,
		logger.FieldCommands, stats.Commands,
		logger.FieldCount, len(plugins),
		logger.FieldGeneration, stats.Generation,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

func (l *Launcher) setLastErr(err error) {
	if err == nil {
		l.lastErr.Store(nil)
		return
	}
	l.lastErr.Store(&err)
}

// LastError returns the error of the most recent failed reload, or nil if
// the last reload succeeded.
func (l *Launcher) LastError() error {
	if p := l.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Rebuilding reports whether a reload is running.
func (l *Launcher) Rebuilding() bool {
	return l.reloading.Load() || l.index.Rebuilding()
}

// Search ranks the current snapshot against query.
func (l *Launcher) Search(query string) []index.Result {
	start := time.Now()
	results := l.index.Search(query)
	l.logger.Debugw("Search",
		logger.FieldQuery, query,
		logger.FieldCount, len(results),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return results
}

// Index exposes the underlying index.
func (l *Launcher) Index() *index.Index {
	return l.index
}

// Plugins returns the manifests of the last successful reload.
func (l *Launcher) Plugins() []manifest.Plugin {
	l.pluginsMu.RLock()
	defer l.pluginsMu.RUnlock()
	out := make([]manifest.Plugin, len(l.plugins))
	copy(out, l.plugins)
	return out
}

// PluginDir returns the plugin directory.
func (l *Launcher) PluginDir() string {
	return l.loader.Dir()
}

// Execute carries out the action of result.
func (l *Launcher) Execute(ctx context.Context, result index.Result) error {
	if result.Action == nil {
		return errors.Mark(errors.Newf("result %q has no action", result.Title), errors.ErrUnsupportedAction)
	}
	l.logger.Infow("Executing result",
		logger.FieldAction, string(result.Action.Kind()),
		"title", result.Title,
		"source", result.Source)
	return l.executor.Execute(ctx, result.Action)
}

// Describe returns the command line Execute would run for result.
func (l *Launcher) Describe(result index.Result) (string, error) {
	return l.executor.Describe(result.Action)
}

// Run searches for query and executes the top hit.
func (l *Launcher) Run(ctx context.Context, query string) (index.Result, error) {
	results := l.Search(query)
	if len(results) == 0 {
		return index.Result{}, errors.WithHint(
			errors.NewNotFoundError("nothing matches %q", query),
			"try a shorter query or run 'elbert apps' to see what is indexed")
	}
	top := results[0]
	return top, l.Execute(ctx, top)
}

// Watch starts reloading whenever a manifest in the plugin directory
// changes, until ctx is done. It returns once the watcher is running.
func (l *Launcher) Watch(ctx context.Context) error {
	l.watcherMu.Lock()
	defer l.watcherMu.Unlock()

	if l.watcher != nil {
		return nil
	}

	dir := l.loader.Dir()
	if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "create plugin directory %s", dir)
	}

	w, err := watch.New(dir,
		watch.WithDebounce(l.cfg.GetDebounce()),
		watch.WithLogger(l.logger.Named("watch")))
	if err != nil {
		return err
	}
	w.OnReload(func() error {
		return l.Reload(ctx)
	})
	w.Start()
	l.watcher = w

	go func() {
		<-ctx.Done()
		l.stopWatcher()
	}()

	l.logger.Infow("Watching plugin directory", logger.FieldPath, dir)
	return nil
}

func (l *Launcher) stopWatcher() {
	l.watcherMu.Lock()
	w := l.watcher
	l.watcher = nil
	l.watcherMu.Unlock()

	if w != nil {
		if err := w.Stop(); err != nil {
			l.logger.Warnw("Plugin watcher stop failed", logger.FieldError, err)
		}
	}
}

// Close stops the watcher if one is running.
func (l *Launcher) Close() {
	l.stopWatcher()
}

func (l *Launcher) markOwnWrite(path string) {
	l.watcherMu.Lock()
	w := l.watcher
	l.watcherMu.Unlock()
	if w != nil {
		w.MarkOwnWrite(path)
	}
}
