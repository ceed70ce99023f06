// Package watch triggers a reload when manifests in the plugin directory
// change.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/logger"
	"github.com/teranos/elbert/manifest"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a reload fires.
const DefaultDebounce = 500 * time.Millisecond

// ownWriteTTL bounds how long a MarkOwnWrite waits for its event.
const ownWriteTTL = 2 * time.Second

// ReloadCallback is called once per burst of changes.
type ReloadCallback func() error

// Option configures a PluginWatcher.
type Option func(*PluginWatcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *PluginWatcher) {
		if d > 0 {
			w.debouncePeriod = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *PluginWatcher) {
		w.logger = logger.OrNop(l)
	}
}

// PluginWatcher watches the plugin directory for manifest changes
type PluginWatcher struct {
	dir            string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	started        bool
	stopped        bool
	logger         *zap.SugaredLogger

	ownWritesMu sync.Mutex
	ownWrites   map[string]time.Time

	done chan struct{}
}

// New creates a watcher on dir. The directory must exist.
func New(dir string, opts ...Option) (*PluginWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch plugin directory %s", dir)
	}

	w := &PluginWatcher{
		dir:            dir,
		watcher:        fw,
		debouncePeriod: DefaultDebounce,
		logger:         logger.ComponentLogger("watch"),
		ownWrites:      make(map[string]time.Time),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// OnReload registers a callback to be called after a burst of changes
func (w *PluginWatcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite marks the next event for path as coming from us
func (w *PluginWatcher) MarkOwnWrite(path string) {
	w.ownWritesMu.Lock()
	defer w.ownWritesMu.Unlock()
	w.ownWrites[filepath.Clean(path)] = time.Now().Add(ownWriteTTL)
}

// checkOwnWrite checks and clears the own-write mark for path
func (w *PluginWatcher) checkOwnWrite(path string) bool {
	w.ownWritesMu.Lock()
	defer w.ownWritesMu.Unlock()

	path = filepath.Clean(path)
	deadline, ok := w.ownWrites[path]
	if !ok {
		return false
	}
	delete(w.ownWrites, path)
	return time.Now().Before(deadline)
}

// Start begins watching for changes
func (w *PluginWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.watchLoop()
}

// watchLoop monitors file system events
func (w *PluginWatcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !IsManifestFile(event.Name) {
				continue
			}

			if w.checkOwnWrite(event.Name) {
				w.logger.Debugw("Plugin watcher ignoring own write",
					logger.FieldFile, event.Name)
				continue
			}

			w.logger.Infow("Plugin watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("Plugin watcher error",
				logger.FieldError, err)
		}
	}
}

// scheduleReload debounces rapid file changes and triggers reload
func (w *PluginWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.reload)
}

// reload calls all callbacks; one failing doesn't stop the rest
func (w *PluginWatcher) reload() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(); err != nil {
			w.logger.Warnw("Plugin reload callback error",
				logger.FieldError, err)
		}
	}
}

// Stop stops watching and cancels any pending reload
func (w *PluginWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}

// Dir returns the watched directory
func (w *PluginWatcher) Dir() string {
	return w.dir
}

// IsManifestFile reports whether a change to path should trigger a reload:
// a manifest extension, not hidden, not an editor backup or temp file
func IsManifestFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasPrefix(base, "#") {
		return false
	}
	if am.IsBackupFile(base) {
		return false
	}
	_, ok := manifest.FormatFromPath(base)
	return ok
}
