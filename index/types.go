package index

import (
	"net/url"
	"strings"
)

// Source labels attached to results.
const (
	SourceApp    = "App"
	SourcePlugin = "Plugin"
)

// App is an application candidate produced by discovery.
type App struct {
	Name string
	Path string
}

// CommandKind is the action type declared by a plugin command.
type CommandKind string

const (
	CommandURL   CommandKind = "url"
	CommandShell CommandKind = "shell"
)

// CommandAction is the raw, unvalidated action of a plugin command.
type CommandAction struct {
	Kind  CommandKind
	Value string
}

// Command is a plugin command descriptor as parsed from a manifest.
type Command struct {
	// Plugin names the manifest the command came from; it qualifies ID when
	// two manifests declare the same one.
	Plugin   string
	ID       string
	Title    string
	Subtitle string
	Action   CommandAction
}

// ActionKind identifies the variant of an Action.
type ActionKind string

const (
	ActionOpenApplication ActionKind = "open_application"
	ActionOpenURL         ActionKind = "open_url"
	ActionRunShell        ActionKind = "run_shell"
)

// Action is what happens when a result is chosen. It is a closed set:
// OpenApplication, OpenURL and RunShell are the only implementations.
// Actions carry data only; executing them is the caller's job.
type Action interface {
	Kind() ActionKind
	// Target is the path, URL or command line the action operates on.
	Target() string
	isAction()
}

// OpenApplication launches the application bundle at Path.
type OpenApplication struct {
	Path string
}

func (OpenApplication) Kind() ActionKind { return ActionOpenApplication }
func (a OpenApplication) Target() string { return a.Path }
func (OpenApplication) isAction()        {}

// OpenURL opens URL with the system handler. The URL is held by value so
// results never share it.
type OpenURL struct {
	URL url.URL
}

func (OpenURL) Kind() ActionKind { return ActionOpenURL }
func (a OpenURL) Target() string { return a.URL.String() }
func (OpenURL) isAction()        {}

// RunShell runs Command through the user's login shell.
type RunShell struct {
	Command string
}

func (RunShell) Kind() ActionKind { return ActionRunShell }
func (a RunShell) Target() string { return a.Command }
func (RunShell) isAction()        {}

// Result is one ranked entry returned by Search.
type Result struct {
	ID       string
	Title    string
	Subtitle string
	Source   string
	Score    int
	Action   Action
}

// resolveCommand validates a plugin command and materializes it as a result.
// ok is false for unsupported kinds, unparseable URLs and untitled entries.
func resolveCommand(cmd Command) (Result, bool) {
	if strings.TrimSpace(cmd.Title) == "" {
		return Result{}, false
	}

	result := Result{
		ID:       cmd.ID,
		Title:    cmd.Title,
		Subtitle: cmd.Subtitle,
		Source:   SourcePlugin,
	}

	switch CommandKind(strings.ToLower(string(cmd.Action.Kind))) {
	case CommandURL:
		u, err := url.Parse(strings.TrimSpace(cmd.Action.Value))
		if err != nil || u.Scheme == "" {
			return Result{}, false
		}
		result.Score = URLCommandScore
		result.Action = OpenURL{URL: *u}
	case CommandShell:
		result.Score = ShellCommandScore
		result.Action = RunShell{Command: cmd.Action.Value}
	default:
		return Result{}, false
	}

	return result, true
}
