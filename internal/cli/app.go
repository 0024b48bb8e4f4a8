// Package cli wires the Gerrit client, git helpers and renderers into
// the user-facing commands. Each command validates its arguments,
// normalises the change identifier, performs the REST or git calls in
// a fixed order and hands the result to the renderer.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"ger/internal/config"
	"ger/internal/gerrit"
	"ger/internal/git"
	"ger/internal/ident"
	"ger/internal/render"
)

// App carries the dependencies shared by all commands. Tests inject
// their own writers and a client pointed at a fake server.
type App struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Renderer render.Renderer
	Git      *git.Git

	cfg    *config.Config
	client *gerrit.Client
}

// NewApp builds an App rendering to stdout in the given format.
func NewApp(format render.Format, stdout, stderr io.Writer) *App {
	return &App{
		Stdout:   stdout,
		Stderr:   stderr,
		Renderer: render.New(format, stdout),
		Git:      git.New(),
	}
}

// ensureClient resolves credentials and builds the REST client on
// first use, so commands that never talk to the server (install-hook
// on an existing hook, workspace --list) do not require configuration.
func (a *App) ensureClient() (*gerrit.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	cfg, err := a.ensureConfig()
	if err != nil {
		return nil, err
	}
	a.client = gerrit.New(cfg)
	return a.client, nil
}

func (a *App) ensureConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// newFlags builds a flag set that reports parse errors instead of
// exiting, so main can map them to the validation exit code.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// usageError marks a malformed command line; main maps it to exit
// code 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsageError reports whether err is an argument validation failure.
func IsUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}

// changeID resolves the change identifier for a command: the first
// positional argument when given, otherwise the Change-Id trailer of
// the HEAD commit.
func (a *App) changeID(ctx context.Context, args []string) (ident.Identifier, []string, error) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, err := ident.NormalizeChangeID(args[0])
		if err != nil {
			return ident.Identifier{}, nil, err
		}
		return id, args[1:], nil
	}
	msg, err := a.Git.HeadMessage(ctx)
	if err != nil {
		return ident.Identifier{}, nil, err
	}
	id, err := ident.ChangeIDFromMessage(msg)
	if err != nil {
		return ident.Identifier{}, nil, err
	}
	return id, args, nil
}

// changeNumber returns the numeric change number for an identifier,
// asking the server when only the Change-Id form is known.
func (a *App) changeNumber(ctx context.Context, id ident.Identifier) (string, error) {
	if id.Kind == ident.Number {
		return id.Value, nil
	}
	client, err := a.ensureClient()
	if err != nil {
		return "", err
	}
	info, err := client.Change(ctx, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", info.Number), nil
}

func (a *App) render(v any) error {
	return a.Renderer.Render(v)
}
