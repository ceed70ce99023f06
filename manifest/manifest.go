// Package manifest reads plugin manifests: named lists of commands that open
// a URL or run a shell command.
//
// A manifest looks like
//
//	{
//	  "name": "Built-in Examples",
//	  "commands": [
//	    {
//	      "id": "open-apple",
//	      "title": "Open Apple",
//	      "subtitle": "https://apple.com",
//	      "action": {"type": "url", "value": "https://apple.com"}
//	    }
//	  ]
//	}
//
// JSON is the native format; YAML and TOML files with the same shape are
// accepted too.
package manifest

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"gopkg.in/yaml.v3"
)

// Format is a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension, case-insensitively.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Action is the raw action of a command. Type is not checked here; the
// index drops kinds it cannot run.
type Action struct {
	Type  string
	Value string
}

// Command is one manifest entry.
type Command struct {
	ID       string
	Title    string
	Subtitle string
	Action   Action
}

// Manifest is a parsed plugin file.
type Manifest struct {
	Name     string
	Commands []Command
}

// Parse decodes a manifest. The document must have a string "name" and a
// "commands" list; commands missing any of id, title, subtitle, action.type
// or action.value (or holding a non-string there) are dropped silently.
func Parse(data []byte, format Format) (*Manifest, error) {
	doc := make(map[string]interface{})

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.WrapInvalidManifest(err, "decode json")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.WrapInvalidManifest(err, "decode yaml")
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, errors.WrapInvalidManifest(err, "decode toml")
		}
	default:
		return nil, errors.NewInvalidManifestError("unknown manifest format %q", format)
	}

	name, ok := doc["name"].(string)
	if !ok {
		return nil, errors.NewInvalidManifestError("manifest has no string \"name\"")
	}

	entries, ok := objectList(doc["commands"])
	if !ok {
		return nil, errors.NewInvalidManifestError("manifest %q has no \"commands\" list", name)
	}

	m := &Manifest{Name: name, Commands: make([]Command, 0, len(entries))}
	for _, entry := range entries {
		if cmd, ok := parseCommand(entry); ok {
			m.Commands = append(m.Commands, cmd)
		}
	}
	return m, nil
}

// objectList accepts the list shapes the three decoders produce. Non-object
// items become nil and are dropped by parseCommand.
func objectList(v interface{}) ([]map[string]interface{}, bool) {
	switch list := v.(type) {
	case []map[string]interface{}:
		return list, true
	case []interface{}:
		out := make([]map[string]interface{}, len(list))
		for i, item := range list {
			out[i], _ = item.(map[string]interface{})
		}
		return out, true
	}
	return nil, false
}

func parseCommand(entry map[string]interface{}) (Command, bool) {
	if entry == nil {
		return Command{}, false
	}
	id, ok1 := entry["id"].(string)
	title, ok2 := entry["title"].(string)
	subtitle, ok3 := entry["subtitle"].(string)
	action, ok4 := entry["action"].(map[string]interface{})
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Command{}, false
	}
	typ, ok5 := action["type"].(string)
	value, ok6 := action["value"].(string)
	if !ok5 || !ok6 {
		return Command{}, false
	}
	return Command{
		ID:       id,
		Title:    title,
		Subtitle: subtitle,
		Action:   Action{Type: typ, Value: value},
	}, true
}

// Encode renders m as indented JSON with sorted keys.
func Encode(m Manifest) ([]byte, error) {
	commands := make([]map[string]interface{}, 0, len(m.Commands))
	for _, c := range m.Commands {
		commands = append(commands, map[string]interface{}{
			"id":       c.ID,
			"title":    c.Title,
			"subtitle": c.Subtitle,
			"action": map[string]string{
				"type":  c.Action.Type,
				"value": c.Action.Value,
			},
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{
		"name":     m.Name,
		"commands": commands,
	}); err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	return buf.Bytes(), nil
}

// Sample is the manifest written into an empty plugin directory.
func Sample() Manifest {
	return Manifest{
		Name: "Built-in Examples",
		Commands: []Command{{
			ID:       "open-apple",
			Title:    "Open Apple",
			Subtitle: "https://apple.com",
			Action:   Action{Type: "url", Value: "https://apple.com"},
		}},
	}
}

// IndexCommands converts manifest commands to index descriptors.
func (m *Manifest) IndexCommands() []index.Command {
	out := make([]index.Command, 0, len(m.Commands))
	for _, c := range m.Commands {
		out = append(out, index.Command{
			ID:       c.ID,
			Title:    c.Title,
			Subtitle: c.Subtitle,
			Action: index.CommandAction{
				Kind:  index.CommandKind(c.Action.Type),
				Value: c.Action.Value,
			},
		})
	}
	return out
}
