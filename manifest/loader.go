package manifest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/logger"
	"go.uber.org/zap"
)

// SampleFile is the manifest created in an empty plugin directory.
const SampleFile = "sample-plugin.json"

const defaultWorkers = 4

// Plugin is a manifest loaded from the plugin directory.
type Plugin struct {
	Name     string
	File     string
	Commands []Command
}

// Commands flattens the commands of every plugin, in plugin order.
func Commands(plugins []Plugin) []index.Command {
	var out []index.Command
	for _, p := range plugins {
		m := Manifest{Name: p.Name, Commands: p.Commands}
		for _, c := range m.IndexCommands() {
			c.Plugin = p.File
			out = append(out, c)
		}
	}
	return out
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithWorkers sets the parse pool size. Values below 1 are ignored.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithSample controls whether Load writes SampleFile when it is missing.
func WithSample(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.createSample = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger.OrNop(log)
	}
}

// WithWriteHook is called with the path of every file the loader writes,
// just before writing it. The plugin watcher uses it to ignore its own
// writes.
func WithWriteHook(fn func(path string)) LoaderOption {
	return func(l *Loader) {
		l.onWrite = fn
	}
}

// Loader reads every manifest in a directory.
type Loader struct {
	dir          string
	workers      int
	createSample bool
	onWrite      func(path string)
	logger       *zap.SugaredLogger
}

// NewLoader creates a loader for dir. By default it writes the sample
// manifest and parses with 4 workers.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:          dir,
		workers:      defaultWorkers,
		createSample: true,
		logger:       logger.ComponentLogger("manifest"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the plugin directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Load makes sure the directory exists, writes the sample manifest if
// enabled and missing, and parses every manifest file. Files that can't be
// read or parsed are skipped with a warning. Plugins come back sorted by
// file name.
func (l *Loader) Load(ctx context.Context) ([]Plugin, error) {
	start := time.Now()

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "create plugin directory %s", l.dir),
			"set plugins.dir in ~/.elbert/am.toml to a writable directory")
	}

	if l.createSample {
		if err := l.WriteSample(); err != nil {
			// Not fatal: the directory may still hold usable manifests
			l.logger.Warnw("Could not write sample manifest",
				logger.FieldError, err)
		}
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read plugin directory %s", l.dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFromPath(e.Name()); ok {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	results := make([]*Plugin, len(files))
	if err := l.parseAll(ctx, files, results); err != nil {
		return nil, err
	}

	plugins := make([]Plugin, 0, len(files))
	commandCount := 0
	for _, p := range results {
		if p == nil {
			continue
		}
		plugins = append(plugins, *p)
		commandCount += len(p.Commands)
	}

	l.logger.Infow("Plugins loaded",
		logger.FieldPath, l.dir,
		logger.FieldCount, len(plugins),
		logger.FieldCommands, commandCount,
		logger.FieldDropped, len(files)-len(plugins),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return plugins, nil
}

// parseAll parses files on a worker pool, storing each result at the same
// position in results.
func (l *Loader) parseAll(ctx context.Context, files []string, results []*Plugin) error {
	if len(files) == 0 {
		return nil
	}

	pool, err := ants.NewPool(min(l.workers, len(files)))
	if err != nil {
		return errors.Wrap(err, "create manifest worker pool")
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = l.parseFile(name)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return errors.Wrap(err, "submit manifest parse")
		}
	}
	wg.Wait()

	return ctx.Err()
}

func (l *Loader) parseFile(name string) *Plugin {
	path := filepath.Join(l.dir, name)
	format, _ := FormatFromPath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warnw("Skipping unreadable manifest",
			logger.FieldFile, name,
			logger.FieldError, err)
		return nil
	}

	m, err := Parse(data, format)
	if err != nil {
		l.logger.Warnw("Skipping invalid manifest",
			logger.FieldFile, name,
			logger.FieldError, err)
		return nil
	}

	return &Plugin{Name: m.Name, File: name, Commands: m.Commands}
}

// SamplePath returns where the sample manifest lives.
func (l *Loader) SamplePath() string {
	return filepath.Join(l.dir, SampleFile)
}

// WriteSample writes the sample manifest unless a file already exists at
// SamplePath. The write goes through a temp file and a rename.
func (l *Loader) WriteSample() error {
	path := l.SamplePath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}

	data, err := Encode(Sample())
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".sample-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp manifest")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp manifest")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "chmod temp manifest")
	}

	if l.onWrite != nil {
		l.onWrite(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "install %s", path)
	}

	l.logger.Infow("Wrote sample manifest", logger.FieldFile, path)
	return nil
}
