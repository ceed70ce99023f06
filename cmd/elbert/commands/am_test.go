package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/elbert/am"
)

func TestParseSettingValue(t *testing.T) {
	tests := []struct {
		raw  string
		want interface{}
	}{
		{"20", 20},
		{"true", true},
		{"/bin/bash", "/bin/bash"},
		{"open -g", "open -g"},
		{"[.app, .prefPane]", []interface{}{".app", ".prefPane"}},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseSettingValue(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseSettingValue("[unclosed")
	assert.Error(t, err)
}

func TestWriteSettingsBySource(t *testing.T) {
	settings := []am.SettingInfo{
		{Key: "launch.shell", Value: "/bin/bash", Source: am.SourceEnvironment, SourcePath: "ELBERT_LAUNCH_SHELL"},
		{Key: "plugins.dir", Value: "/tmp/plugins", Source: am.SourceUser, SourcePath: "/home/u/.elbert/am.toml"},
		{Key: "search.result_limit", Value: 40, Source: am.SourceDefault, SourcePath: "built-in default"},
		{Key: "search.empty_limit", Value: 24, Source: am.SourceDefault, SourcePath: "built-in default"},
	}

	var buf bytes.Buffer
	writeSettingsBySource(&buf, settings)
	out := buf.String()

	def := bytes.Index(buf.Bytes(), []byte("default: 2 settings"))
	user := bytes.Index(buf.Bytes(), []byte("user: 1 settings from /home/u/.elbert/am.toml"))
	env := bytes.Index(buf.Bytes(), []byte("environment: 1 settings from environment variables"))
	require.True(t, def >= 0 && user >= 0 && env >= 0, out)
	assert.Less(t, def, user)
	assert.Less(t, user, env)
	assert.Contains(t, out, "launch.shell = /bin/bash (ELBERT_LAUNCH_SHELL)")
}
