package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/elbert/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(filepath.Join(root, p), 0755))
	}
}

func TestScanFindsBundles(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"Safari.app/Contents/MacOS",
		"Utilities/Terminal.app",
		"Utilities/Nested.APP",
		"Xcode.app/Contents/Applications/Instruments.app",
		".Hidden.app",
		".hidden/Secret.app",
		"NotABundle",
		".app",
	)
	require.NoError(t, os.WriteFile(filepath.Join(root, "Readme.app"), []byte("file, not a bundle"), 0644))

	s := NewScanner([]string{root}, []string{".app"}, zaptest.NewLogger(t).Sugar())
	apps, err := s.Scan(context.Background())
	require.NoError(t, err)

	names := make(map[string]string)
	for _, a := range apps {
		names[a.Name] = a.Path
	}
	assert.Len(t, apps, 4)
	assert.Equal(t, filepath.Join(root, "Safari.app"), names["Safari"])
	assert.Equal(t, filepath.Join(root, "Utilities", "Terminal.app"), names["Terminal"])
	assert.Contains(t, names, "Nested", "extension match is case-insensitive")
	assert.Contains(t, names, "Xcode")
	assert.NotContains(t, names, "Instruments", "bundles are not descended into")
	assert.NotContains(t, names, "Secret")
	assert.NotContains(t, names, "Readme")
}

func TestScanRootOrderAndMissingRoots(t *testing.T) {
	system := t.TempDir()
	user := t.TempDir()
	mkdirs(t, system, "Notes.app")
	mkdirs(t, user, "Notes.app", "Personal.app")

	apps, err := Scan(context.Background(),
		[]string{filepath.Join(system, "missing"), system, user},
		[]string{".app"})
	require.NoError(t, err)

	require.Len(t, apps, 3)
	assert.Equal(t, filepath.Join(system, "Notes.app"), apps[0].Path, "earlier roots come first")
	assert.Equal(t, "Notes", apps[1].Name)
	assert.Equal(t, "Personal", apps[2].Name)
}

func TestScanExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	mkdirs(t, home, "Applications/Mine.app")

	apps, err := Scan(context.Background(), []string{"~/Applications"}, []string{".app"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, filepath.Join(home, "Applications", "Mine.app"), apps[0].Path)
}

func TestScanMultipleExtensions(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Tool.app", "Pane.prefPane", "Lib.framework")

	apps, err := Scan(context.Background(), []string{root}, []string{".app", ".prefPane"})
	require.NoError(t, err)

	var names []string
	for _, a := range apps {
		names = append(names, a.Name)
	}
	assert.ElementsMatch(t, []string{"Tool", "Pane"}, names)
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "A.app", "B.app")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, []string{root}, []string{".app"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanNoRoots(t *testing.T) {
	apps, err := Scan(context.Background(), nil, []string{".app"})
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestScanTracesBundlesAtTraceVerbosity(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Safari.app", "Utilities/Terminal.app")

	previous := logger.Verbosity
	t.Cleanup(func() { logger.Verbosity = previous })

	tests := []struct {
		verbosity int
		want      int
	}{
		{logger.VerbosityDebug, 0},
		{logger.VerbosityTrace, 2},
	}
	for _, tt := range tests {
		t.Run(logger.LevelName(tt.verbosity), func(t *testing.T) {
			logger.Verbosity = tt.verbosity
			core, logs := observer.New(zapcore.DebugLevel)

			apps, err := NewScanner([]string{root}, []string{".app"}, zap.New(core).Sugar()).Scan(context.Background())
			require.NoError(t, err)
			require.Len(t, apps, 2)

			found := logs.FilterMessage("Found application bundle").All()
			require.Len(t, found, tt.want)
			for _, e := range found {
				assert.Contains(t, []string{"Safari", "Terminal"}, e.ContextMap()["name"])
			}
		})
	}
}
