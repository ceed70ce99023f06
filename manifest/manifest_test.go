package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
)

const sampleJSON = `{
  "name": "Dev Tools",
  "commands": [
    {"id": "gh", "title": "GitHub", "subtitle": "github.com",
     "action": {"type": "url", "value": "https://github.com"}},
    {"id": "lock", "title": "Lock Screen", "subtitle": "pmset",
     "action": {"type": "shell", "value": "pmset displaysleepnow"}},
    {"id": "nosub", "title": "Missing Subtitle",
     "action": {"type": "url", "value": "https://example.com"}},
    {"id": 7, "title": "Numeric ID", "subtitle": "",
     "action": {"type": "url", "value": "https://example.com"}},
    {"id": "noval", "title": "No Value", "subtitle": "",
     "action": {"type": "shell"}},
    "not an object"
  ]
}`

func TestParseJSON(t *testing.T) {
	m, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "Dev Tools", m.Name)
	require.Len(t, m.Commands, 2)
	assert.Equal(t, Command{
		ID:       "gh",
		Title:    "GitHub",
		Subtitle: "github.com",
		Action:   Action{Type: "url", Value: "https://github.com"},
	}, m.Commands[0])
	assert.Equal(t, "lock", m.Commands[1].ID)
}

func TestParseYAML(t *testing.T) {
	doc := `
name: Dev Tools
commands:
  - id: gh
    title: GitHub
    subtitle: github.com
    action:
      type: url
      value: https://github.com
  - id: broken
    title: Broken
`
	m, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "Dev Tools", m.Name)
	require.Len(t, m.Commands, 1)
	assert.Equal(t, "https://github.com", m.Commands[0].Action.Value)
}

func TestParseTOML(t *testing.T) {
	doc := `
name = "Dev Tools"

[[commands]]
id = "lock"
title = "Lock Screen"
subtitle = "pmset"
action = { type = "shell", value = "pmset displaysleepnow" }

[[commands]]
id = "partial"
title = "Partial"
`
	m, err := Parse([]byte(doc), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "Dev Tools", m.Name)
	require.Len(t, m.Commands, 1)
	assert.Equal(t, Action{Type: "shell", Value: "pmset displaysleepnow"}, m.Commands[0].Action)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"malformed json", `{"name": `, FormatJSON},
		{"missing name", `{"commands": []}`, FormatJSON},
		{"numeric name", `{"name": 3, "commands": []}`, FormatJSON},
		{"missing commands", `{"name": "x"}`, FormatJSON},
		{"commands not a list", `{"name": "x", "commands": {}}`, FormatJSON},
		{"top level array", `[]`, FormatJSON},
		{"malformed yaml", "name: [unclosed", FormatYAML},
		{"malformed toml", "name = ", FormatTOML},
		{"unknown format", `{}`, Format("xml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidManifest(err), "got %v", err)
		})
	}
}

func TestParseEmptyCommands(t *testing.T) {
	m, err := Parse([]byte(`{"name": "Empty", "commands": []}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, m.Commands)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.JSON", FormatJSON, true},
		{"a.yml", FormatYAML, true},
		{"a.yaml", FormatYAML, true},
		{"a.toml", FormatTOML, true},
		{"a.txt", "", false},
		{"json", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestEncodeSample(t *testing.T) {
	data, err := Encode(Sample())
	require.NoError(t, err)

	// keys sorted, URL not HTML-escaped
	assert.Contains(t, string(data), `"action": {`)
	assert.Less(t, strings.Index(string(data), `"commands"`), strings.Index(string(data), `"name"`))
	assert.Contains(t, string(data), `"value": "https://apple.com"`)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &generic))

	m, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Sample(), *m)
}

func TestIndexCommands(t *testing.T) {
	m := Sample()
	cmds := m.IndexCommands()
	require.Len(t, cmds, 1)
	assert.Equal(t, index.Command{
		ID:       "open-apple",
		Title:    "Open Apple",
		Subtitle: "https://apple.com",
		Action:   index.CommandAction{Kind: index.CommandURL, Value: "https://apple.com"},
	}, cmds[0])
}
