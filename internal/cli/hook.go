package cli

import (
	"context"

	"ger/internal/hook"
	"ger/internal/model"
)

// InstallHook downloads and installs the Gerrit commit-msg hook. An
// existing hook is left alone unless --force is given. With --amend,
// a HEAD commit missing its Change-Id trailer is amended afterwards
// so the fresh hook can add one.
func (a *App) InstallHook(ctx context.Context, args []string) error {
	fs := newFlags("install-hook")
	force := fs.Bool("force", false, "overwrite an existing hook")
	amend := fs.Bool("amend", false, "amend HEAD if it has no Change-Id")
	if err := fs.Parse(args); err != nil {
		return usagef("install-hook: %v", err)
	}

	installed, err := hook.Installed(a.Git)
	if err != nil {
		return err
	}
	if installed && !*force {
		return a.render(model.ActionResult{
			Status:  "success",
			Message: "commit-msg hook already installed (use --force to overwrite)",
		})
	}

	cfg, err := a.ensureConfig()
	if err != nil {
		return err
	}
	if err := hook.Install(ctx, a.Git, cfg.Host); err != nil {
		return err
	}

	if *amend {
		msg, err := a.Git.HeadMessage(ctx)
		if err != nil {
			return err
		}
		if !hook.HasChangeID(msg) {
			if err := hook.AmendHead(ctx, a.Git); err != nil {
				return err
			}
		}
	}
	return a.render(model.ActionResult{Status: "success", Message: "commit-msg hook installed"})
}
