// Package discovery finds installed application bundles on disk.
package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teranos/elbert/am"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/logger"
	"go.uber.org/zap"
)

// Scanner walks application directories looking for bundles.
type Scanner struct {
	dirs       []string
	extensions []string
	logger     *zap.SugaredLogger
}

// NewScanner creates a scanner over dirs. A nil logger uses the
// "discovery" component logger.
func NewScanner(dirs, extensions []string, log *zap.SugaredLogger) *Scanner {
	if log == nil {
		log = logger.ComponentLogger("discovery")
	}
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &Scanner{dirs: dirs, extensions: exts, logger: log}
}

// Scan is NewScanner(dirs, extensions, nil).Scan(ctx).
func Scan(ctx context.Context, dirs, extensions []string) ([]index.App, error) {
	return NewScanner(dirs, extensions, nil).Scan(ctx)
}

// Scan returns every bundle under the scanner's roots in walk order, roots
// in the order given. Hidden entries are skipped and bundles are not
// descended into. Missing or unreadable roots are skipped; the only error is
// ctx cancellation.
func (s *Scanner) Scan(ctx context.Context) ([]index.App, error) {
	start := time.Now()
	trace := logger.ShouldLogTrace(logger.Verbosity)
	var apps []index.App

	for _, root := range s.dirs {
		root = am.ExpandHome(root)
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			s.logger.Debugw("Skipping application directory",
				logger.FieldPath, root)
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				// Unreadable subtree, keep walking
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if p == root {
				return nil
			}

			if strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				return nil
			}

			if name, ok := s.bundleName(d.Name()); ok {
				apps = append(apps, index.App{Name: name, Path: p})
				if trace {
					s.logger.Debugw("Found application bundle",
						"name", name,
						logger.FieldPath, p)
				}
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", root)
		}
	}

	s.logger.Debugw("Application scan complete",
		logger.FieldCount, len(apps),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return apps, nil
}

// bundleName returns the display name of a bundle directory, or false when
// base has none of the scanner's extensions.
func (s *Scanner) bundleName(base string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "", false
	}
	for _, want := range s.extensions {
		if ext == want {
			name := strings.TrimSuffix(base, filepath.Ext(base))
			return name, name != ""
		}
	}
	return "", false
}
