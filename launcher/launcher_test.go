package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/manifest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	appsDir   string
	pluginDir string
	cfg       *am.Config
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		appsDir:   filepath.Join(root, "Applications"),
		pluginDir: filepath.Join(root, "plugins"),
	}
	for _, app := range []string{"Safari.app", "Firefox.app", "Utilities/Terminal.app"} {
		require.NoError(t, os.MkdirAll(filepath.Join(f.appsDir, app), 0755))
	}

	v := viper.New()
	am.SetDefaults(v)
	v.Set("discovery.app_dirs", []string{f.appsDir})
	v.Set("plugins.dir", f.pluginDir)
	v.Set("watch.debounce_ms", 50)
	v.Set("launch.shell", "/bin/sh")
	v.Set("launch.opener", "true")
	cfg, err := am.LoadWithViper(v)
	require.NoError(t, err)
	f.cfg = cfg
	return f
}

func newTestLauncher(t *testing.T, f fixture) *Launcher {
	t.Helper()
	l, err := New(f.cfg, WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestReloadIndexesAppsAndPlugins(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)

	assert.Empty(t, l.Search(""))

	require.NoError(t, l.Reload(context.Background()))
	assert.NoError(t, l.LastError())

	stats := l.Index().Stats()
	assert.Equal(t, 3, stats.Apps)
	assert.Equal(t, 1, stats.Commands, "sample manifest is written and loaded")

	plugins := l.Plugins()
	require.Len(t, plugins, 1)
	assert.Equal(t, "Built-in Examples", plugins[0].Name)
	assert.Equal(t, f.pluginDir, l.PluginDir())

	results := l.Search("term")
	require.NotEmpty(t, results)
	assert.Equal(t, "Terminal", results[0].Title)
	assert.Equal(t, index.OpenApplication{Path: filepath.Join(f.appsDir, "Utilities", "Terminal.app")}, results[0].Action)

	results = l.Search("apple")
	require.Len(t, results, 1)
	assert.Equal(t, "Open Apple", results[0].Title)
	assert.Equal(t, index.SourcePlugin, results[0].Source)
}

func TestReloadPicksUpNewManifest(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)
	require.NoError(t, l.Reload(context.Background()))
	assert.Empty(t, l.Search("lock screen"))

	require.NoError(t, os.WriteFile(filepath.Join(f.pluginDir, "system.json"), []byte(`{
		"name": "System",
		"commands": [{"id": "lock", "title": "Lock Screen", "subtitle": "pmset",
			"action": {"type": "shell", "value": "pmset displaysleepnow"}}]}`), 0644))

	require.NoError(t, l.Reload(context.Background()))
	results := l.Search("lock screen")
	require.NotEmpty(t, results)
	assert.Equal(t, index.RunShell{Command: "pmset displaysleepnow"}, results[0].Action)
	assert.Len(t, l.Plugins(), 2)
}

func TestTryReloadWhileReloading(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)

	l.reloadMu.Lock()
	err := l.TryReload(context.Background())
	l.reloadMu.Unlock()
	require.Error(t, err)
	assert.True(t, errors.IsRebuildInProgress(err))

	require.NoError(t, l.TryReload(context.Background()))
	assert.False(t, l.Rebuilding())
}

func TestReloadCancelled(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Reload(ctx)
	require.Error(t, err)
	assert.Error(t, l.LastError())
	assert.Empty(t, l.Search(""), "a failed reload leaves the previous snapshot")
}

func TestWatchRebuildsOnManifestChange(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)
	require.NoError(t, l.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.Watch(ctx))
	require.NoError(t, l.Watch(ctx), "second Watch is a no-op")

	require.NoError(t, os.WriteFile(filepath.Join(f.pluginDir, "docs.json"), []byte(`{
		"name": "Docs",
		"commands": [{"id": "godoc", "title": "Go Docs", "subtitle": "go.dev",
			"action": {"type": "url", "value": "https://go.dev/doc"}}]}`), 0644))

	assert.Eventually(t, func() bool {
		results := l.Search("go docs")
		return len(results) > 0 && results[0].Title == "Go Docs"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRunExecutesTopHit(t *testing.T) {
	f := newFixture(t)
	marker := filepath.Join(t.TempDir(), "ran")
	require.NoError(t, os.MkdirAll(f.pluginDir, 0755))
	data, err := manifest.Encode(manifest.Manifest{
		Name: "Test",
		Commands: []manifest.Command{{
			ID: "touch", Title: "Touch Marker", Subtitle: "",
			Action: manifest.Action{Type: "shell", Value: "touch '" + marker + "'"},
		}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.pluginDir, "test.json"), data, 0644))

	l := newTestLauncher(t, f)
	require.NoError(t, l.Reload(context.Background()))

	top, err := l.Run(context.Background(), "touch marker")
	require.NoError(t, err)
	assert.Equal(t, "Touch Marker", top.Title)
	_, err = os.Stat(marker)
	assert.NoError(t, err)

	line, err := l.Describe(top)
	require.NoError(t, err)
	assert.Contains(t, line, "/bin/sh -lc")
}

func TestRunNothingMatches(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)
	require.NoError(t, l.Reload(context.Background()))

	_, err := l.Run(context.Background(), "zzzzzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestExecuteWithoutAction(t *testing.T) {
	f := newFixture(t)
	l := newTestLauncher(t, f)

	err := l.Execute(context.Background(), index.Result{Title: "Empty"})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedAction))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	f := newFixture(t)
	f.cfg.Search.ResultLimit = 0

	_, err := New(f.cfg)
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)
}

func TestSearchLogsQueryAtDebug(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.DebugLevel)
	l, err := New(f.cfg, WithLogger(zap.New(core).Sugar()))
	require.NoError(t, err)
	t.Cleanup(l.Close)
	require.NoError(t, l.Reload(context.Background()))

	results := l.Search("saf")
	require.Len(t, results, 1)

	entries := logs.FilterMessage("Search").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "saf", fields["query"])
	assert.Equal(t, int64(1), fields["count"])
	assert.Contains(t, fields, "duration_ms")
}
