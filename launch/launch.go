// Package launch carries out the action of a chosen result.
package launch

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/teranos/elbert/errors"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/logger"
	"go.uber.org/zap"
)

// Defaults used when the executor is built with empty settings.
const (
	DefaultShell  = "/bin/zsh"
	DefaultOpener = "open"
)

// Executor runs actions as child processes: applications and URLs go
// through the opener, shell commands through "<shell> -lc".
type Executor struct {
	shell  string
	opener []string
	logger *zap.SugaredLogger
}

// NewExecutor creates an executor. opener may carry arguments
// ("open -g"); it is split with shell quoting rules.
func NewExecutor(shell, opener string, log *zap.SugaredLogger) (*Executor, error) {
	if strings.TrimSpace(shell) == "" {
		shell = DefaultShell
	}
	if strings.TrimSpace(opener) == "" {
		opener = DefaultOpener
	}
	openerArgs, err := shellquote.Split(opener)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "parse opener %q", opener),
			"check launch.opener quoting in am.toml")
	}
	if len(openerArgs) == 0 {
		return nil, errors.Newf("opener %q is empty", opener)
	}
	if log == nil {
		log = logger.ComponentLogger("launch")
	}
	return &Executor{shell: shell, opener: openerArgs, logger: log}, nil
}

// Command returns the program and arguments that would carry out action.
func (e *Executor) Command(action index.Action) (string, []string, error) {
	switch a := action.(type) {
	case index.OpenApplication:
		return e.opener[0], append(e.opener[1:len(e.opener):len(e.opener)], a.Path), nil
	case index.OpenURL:
		return e.opener[0], append(e.opener[1:len(e.opener):len(e.opener)], a.URL.String()), nil
	case index.RunShell:
		return e.shell, []string{"-lc", a.Command}, nil
	case nil:
		return "", nil, errors.Mark(errors.New("no action"), errors.ErrUnsupportedAction)
	}
	return "", nil, errors.Mark(errors.Newf("unsupported action %T", action), errors.ErrUnsupportedAction)
}

// Describe renders the command line for action, quoted for a POSIX shell.
func (e *Executor) Describe(action index.Action) (string, error) {
	name, args, err := e.Command(action)
	if err != nil {
		return "", err
	}
	return shellquote.Join(append([]string{name}, args...)...), nil
}

// Execute runs action and waits for it to finish. A non-zero exit or a
// missing program is reported as ErrActionFailed.
func (e *Executor) Execute(ctx context.Context, action index.Action) error {
	name, args, err := e.Command(action)
	if err != nil {
		return err
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	stderr := &tailBuffer{limit: 4096}
	cmd.Stdout = &logWriter{logger: e.logger, action: action.Kind()}
	cmd.Stderr = stderr
	// Grandchildren can hold the pipes open after a cancel
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()

	e.logger.Debugw("Action finished",
		logger.FieldAction, string(action.Kind()),
		"target", action.Target(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
		logger.FieldError, runErr)

	if runErr == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrapf(ctxErr, "%s interrupted", action.Kind())
	}

	failed := errors.Mark(errors.Wrap(runErr, failureMessage(action)), errors.ErrActionFailed)
	if out := strings.TrimSpace(stderr.String()); out != "" {
		failed = errors.WithDetail(failed, out)
	}
	return errors.WithHint(failed, hintFor(action, name))
}

func failureMessage(action index.Action) string {
	switch action.(type) {
	case index.OpenApplication:
		return "could not open app at " + action.Target()
	case index.OpenURL:
		return "could not open URL " + action.Target()
	default:
		return "could not run shell command"
	}
}

func hintFor(action index.Action, program string) string {
	switch action.(type) {
	case index.RunShell:
		return "run the command in a terminal to see its output; launch.shell is " + program
	default:
		return "check that launch.opener (" + program + ") can open " + action.Target()
	}
}

// logWriter forwards child stdout to the debug log line by line.
type logWriter struct {
	logger *zap.SugaredLogger
	action index.ActionKind
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		w.logger.Debugw("Action output",
			logger.FieldAction, string(w.action),
			"line", line)
	}
	return len(p), nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
	if over := b.buf.Len() - b.limit; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
