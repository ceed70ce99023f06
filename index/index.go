// Package index holds the searchable launcher candidates and ranks them
// against a query.
//
// The index is a single cell holding an immutable snapshot of two
// collections: applications (kept raw, scored per query) and plugin commands
// (validated once at rebuild and stored as results). Rebuild assembles the
// next snapshot off to the side and publishes it with one pointer swap, so a
// concurrent Search sees either the old snapshot or the new one, never a mix.
// Rebuilds are serialized; searches never wait for them.
package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/logger"
	"github.com/teranos/elbert/match"
	"go.uber.org/zap"
)

// Base scores for plugin commands in the empty-query listing.
const (
	URLCommandScore   = 400
	ShellCommandScore = 350
)

// Defaults for Options.
const (
	DefaultResultLimit     = 40
	DefaultEmptyLimit      = 24
	DefaultSuggestionCount = 12
	DefaultSuggestionScore = 120
	DefaultCommandBoost    = 100
)

// Options tunes ranking limits and priors.
type Options struct {
	// ResultLimit caps results for a non-empty query.
	ResultLimit int
	// EmptyLimit caps the browse list returned for an empty query.
	EmptyLimit int
	// SuggestionCount is how many applications the browse list includes.
	SuggestionCount int
	// SuggestionScore is the flat score of browse-list applications.
	SuggestionScore int
	// CommandBoost is added to every matching plugin command.
	CommandBoost int
}

// DefaultOptions returns the standard launcher ranking options.
func DefaultOptions() Options {
	return Options{
		ResultLimit:     DefaultResultLimit,
		EmptyLimit:      DefaultEmptyLimit,
		SuggestionCount: DefaultSuggestionCount,
		SuggestionScore: DefaultSuggestionScore,
		CommandBoost:    DefaultCommandBoost,
	}
}

// Option configures an Index.
type Option func(*Index)

// WithOptions replaces the ranking options. Non-positive limits fall back
// to the defaults; scores and boost are taken as given.
func WithOptions(opts Options) Option {
	return func(ix *Index) {
		def := DefaultOptions()
		if opts.ResultLimit <= 0 {
			opts.ResultLimit = def.ResultLimit
		}
		if opts.EmptyLimit <= 0 {
			opts.EmptyLimit = def.EmptyLimit
		}
		if opts.SuggestionCount < 0 {
			opts.SuggestionCount = def.SuggestionCount
		}
		ix.opts = opts
	}
}

// WithLogger sets the logger. Default is the "index" component logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(ix *Index) {
		ix.logger = logger.OrNop(l)
	}
}

// Index is safe for concurrent use.
type Index struct {
	writeMu    sync.Mutex
	rebuilding atomic.Bool
	current    atomic.Pointer[snapshot]

	opts   Options
	logger *zap.SugaredLogger
}

// snapshot is never mutated after publication.
type snapshot struct {
	apps       []App
	commands   []Result
	generation uint64
	builtAt    time.Time
	dropped    int
}

// Stats describes the published snapshot.
type Stats struct {
	Apps       int
	Commands   int
	Dropped    int
	Generation uint64
	BuiltAt    time.Time
}

// New creates an empty index.
func New(opts ...Option) *Index {
	ix := &Index{
		opts:   DefaultOptions(),
		logger: logger.ComponentLogger("index"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.current.Store(&snapshot{})
	return ix
}

// Options returns the ranking options in effect.
func (ix *Index) Options() Options {
	return ix.opts
}

// Rebuild replaces both collections. Concurrent rebuilds run one at a time;
// malformed entries are dropped, never reported.
func (ix *Index) Rebuild(apps []App, commands []Command) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	ix.rebuildLocked(apps, commands)
}

// TryRebuild is Rebuild that returns ErrRebuildInProgress instead of waiting
// when another rebuild holds the index.
func (ix *Index) TryRebuild(apps []App, commands []Command) error {
	if !ix.writeMu.TryLock() {
		return errors.ErrRebuildInProgress
	}
	defer ix.writeMu.Unlock()
	ix.rebuildLocked(apps, commands)
	return nil
}

// Rebuilding reports whether a rebuild is currently running.
func (ix *Index) Rebuilding() bool {
	return ix.rebuilding.Load()
}

func (ix *Index) rebuildLocked(apps []App, commands []Command) {
	ix.rebuilding.Store(true)
	defer ix.rebuilding.Store(false)

	start := time.Now()
	prev := ix.current.Load()

	next := &snapshot{
		apps:       indexApps(apps),
		generation: prev.generation + 1,
	}
	next.dropped = len(apps) - len(next.apps)

	next.commands = make([]Result, 0, len(commands))
	ids := make(map[string]struct{}, len(commands))
	for _, cmd := range commands {
		result, ok := resolveCommand(cmd)
		if !ok {
			next.dropped++
			ix.logger.Debugw("Dropping plugin command",
				logger.FieldPlugin, cmd.Plugin,
				"id", cmd.ID,
				"kind", cmd.Action.Kind,
				"title", cmd.Title)
			continue
		}
		result.ID = uniqueCommandID(cmd, ids)
		next.commands = append(next.commands, result)
	}
	next.builtAt = time.Now()

	ix.current.Store(next)

	ix.logger.Infow("Index rebuilt",
		logger.FieldApps, len(next.apps),
		logger.FieldCommands, len(next.commands),
		logger.FieldDropped, next.dropped,
		logger.FieldGeneration, next.generation,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
}

// uniqueCommandID keeps the manifest id when it is free, qualifies it with
// the plugin on a clash and numbers whatever still collides. The outcome only
// depends on command order, so IDs survive a rebuild of the same input.
func uniqueCommandID(cmd Command, taken map[string]struct{}) string {
	id := cmd.ID
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte("plugin://"+cmd.Plugin+"/"+cmd.Title)).String()
	}
	if _, dup := taken[id]; dup && cmd.Plugin != "" {
		id = cmd.Plugin + "/" + id
	}
	candidate := id
	for n := 2; ; n++ {
		if _, dup := taken[candidate]; !dup {
			break
		}
		candidate = fmt.Sprintf("%s#%d", id, n)
	}
	taken[candidate] = struct{}{}
	return candidate
}

// indexApps drops unnamed entries, keeps the first app per name and sorts
// by name.
func indexApps(apps []App) []App {
	seen := make(map[string]struct{}, len(apps))
	out := make([]App, 0, len(apps))
	for _, app := range apps {
		if app.Name == "" {
			continue
		}
		if _, dup := seen[app.Name]; dup {
			continue
		}
		seen[app.Name] = struct{}{}
		out = append(out, app)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Search ranks the current snapshot against query.
//
// An empty query returns a browse list: the first applications by name at a
// flat score plus every plugin command, highest score first. Otherwise each
// candidate is scored with match.Score; plugin commands also match on half
// their subtitle score and get CommandBoost on top. Results are ordered by
// score, then title, and capped at ResultLimit.
func (ix *Index) Search(query string) []Result {
	snap := ix.current.Load()
	if strings.TrimSpace(query) == "" {
		return ix.browse(snap)
	}

	results := make([]Result, 0, 16)
	for _, app := range snap.apps {
		score := match.Score(query, app.Name)
		if score <= 0 {
			continue
		}
		results = append(results, ix.appResult(app, score))
	}

	for _, cmd := range snap.commands {
		score := max(match.Score(query, cmd.Title), match.Score(query, cmd.Subtitle)/2)
		if score <= 0 {
			continue
		}
		cmd.Score = score + ix.opts.CommandBoost
		results = append(results, cmd)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Title < results[j].Title
	})

	if len(results) > ix.opts.ResultLimit {
		results = results[:ix.opts.ResultLimit]
	}
	return results
}

func (ix *Index) browse(snap *snapshot) []Result {
	n := min(ix.opts.SuggestionCount, len(snap.apps))
	results := make([]Result, 0, n+len(snap.commands))
	for _, app := range snap.apps[:n] {
		results = append(results, ix.appResult(app, ix.opts.SuggestionScore))
	}
	results = append(results, snap.commands...)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > ix.opts.EmptyLimit {
		results = results[:ix.opts.EmptyLimit]
	}
	return results
}

func (ix *Index) appResult(app App, score int) Result {
	return Result{
		ID:       appID(app),
		Title:    app.Name,
		Subtitle: app.Path,
		Source:   SourceApp,
		Score:    score,
		Action:   OpenApplication{Path: app.Path},
	}
}

// appID derives a result ID from the bundle location, so the same app gets
// the same ID in every search.
func appID(app App) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+app.Path)).String()
}

// Apps returns a copy of the indexed applications in name order.
func (ix *Index) Apps() []App {
	snap := ix.current.Load()
	out := make([]App, len(snap.apps))
	copy(out, snap.apps)
	return out
}

// Commands returns a copy of the indexed plugin commands at their base score.
func (ix *Index) Commands() []Result {
	snap := ix.current.Load()
	out := make([]Result, len(snap.commands))
	copy(out, snap.commands)
	return out
}

// Stats describes the published snapshot.
func (ix *Index) Stats() Stats {
	snap := ix.current.Load()
	return Stats{
		Apps:       len(snap.apps),
		Commands:   len(snap.commands),
		Dropped:    snap.dropped,
		Generation: snap.generation,
		BuiltAt:    snap.builtAt,
	}
}
