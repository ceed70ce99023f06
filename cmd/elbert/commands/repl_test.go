package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
)

type fakeSession struct {
	ix        *index.Index
	executed  []index.Result
	reloadErr error
	reloads   int
}

func (f *fakeSession) Search(query string) []index.Result { return f.ix.Search(query) }
func (f *fakeSession) Index() *index.Index                { return f.ix }

func (f *fakeSession) Execute(_ context.Context, r index.Result) error {
	f.executed = append(f.executed, r)
	return nil
}

func (f *fakeSession) TryReload(context.Context) error {
	f.reloads++
	return f.reloadErr
}

func runScript(t *testing.T, s *fakeSession, script string) string {
	t.Helper()
	var out bytes.Buffer
	r := &repl{s: s, out: &out, limit: 10}
	require.NoError(t, r.run(context.Background(), strings.NewReader(script)))
	return out.String()
}

func TestReplSearchAndQuit(t *testing.T) {
	s := &fakeSession{ix: testIndex(t)}
	out := runScript(t, s, "saf\n:quit\nterm\n")

	assert.Contains(t, out, "Safari")
	assert.NotContains(t, out, "Terminal", "input after :quit is not read")
	assert.Empty(t, s.executed)
}

func TestReplRunTopHit(t *testing.T) {
	s := &fakeSession{ix: testIndex(t)}
	out := runScript(t, s, "!term\n!zzzzzz\n")

	require.Len(t, s.executed, 1)
	assert.Equal(t, "Terminal", s.executed[0].Title)
	assert.Contains(t, out, "opened Terminal")
	assert.Contains(t, out, `nothing matches "zzzzzz"`)
}

func TestReplRunNumbered(t *testing.T) {
	s := &fakeSession{ix: testIndex(t)}
	out := runScript(t, s, ":run 1\n\n:run 3\n:run 9\n")

	assert.Contains(t, out, "usage: :run N (1-0)")
	require.Len(t, s.executed, 1)
	assert.Equal(t, 3, len(s.ix.Search("")))
	assert.Equal(t, s.ix.Search("")[2].Title, s.executed[0].Title)
	assert.Contains(t, out, "usage: :run N (1-3)")
}

func TestReplReloadAndStats(t *testing.T) {
	s := &fakeSession{ix: testIndex(t)}
	out := runScript(t, s, ":reload\n:stats\n")
	assert.Equal(t, 1, s.reloads)
	assert.Contains(t, out, "2 apps, 1 commands\n")
	assert.Contains(t, out, "2 apps, 1 commands, 0 dropped, generation 1")

	s.reloadErr = errors.WithHint(errors.ErrRebuildInProgress, "wait for the running reload")
	out = runScript(t, s, ":reload\n")
	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, "hint: wait for the running reload")
}

func TestReplUnknownCommand(t *testing.T) {
	s := &fakeSession{ix: testIndex(t)}
	out := runScript(t, s, ":frobnicate\n")
	assert.Contains(t, out, "unknown command :frobnicate")
}
