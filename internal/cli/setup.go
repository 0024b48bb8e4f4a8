package cli

import (
	"context"
	"errors"
	"fmt"

	"ger/internal/config"
	"ger/internal/gerrit"
	"ger/internal/ident"
	"ger/internal/model"
	"ger/internal/tui"
)

// Setup collects credentials interactively, verifies them against the
// server and writes ~/.ger/config.json.
func (a *App) Setup(ctx context.Context, args []string) error {
	fs := newFlags("setup")
	skipVerify := fs.Bool("skip-verify", false, "save without testing the connection")
	if err := fs.Parse(args); err != nil {
		return usagef("setup: %v", err)
	}

	// Prefill from an existing configuration when there is one.
	existing, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		var invalid *config.InvalidError
		if !errors.As(err, &invalid) {
			return err
		}
		existing = nil
	}

	cfg, err := tui.RunSetup(existing)
	if err != nil {
		return err
	}
	host, err := ident.NormalizeHost(cfg.Host)
	if err != nil {
		return err
	}
	cfg.Host = host

	if !*skipVerify {
		probe := gerrit.New(cfg)
		if !probe.TestConnection(ctx) {
			return fmt.Errorf("could not authenticate against %s; check host, username and HTTP password (or re-run with --skip-verify)", cfg.Host)
		}
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	path, err := config.Path()
	if err != nil {
		path = "~/.ger/config.json"
	}
	return a.render(model.ActionResult{Status: "success", Message: "configuration saved to " + path})
}
