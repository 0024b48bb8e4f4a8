package cli

import (
	"context"
	"fmt"
	"strings"

	"ger/internal/git"
	"ger/internal/ident"
	"ger/internal/model"
	"ger/internal/refspec"
)

// Push uploads HEAD to Gerrit through the magic ref for the target
// branch.
func (a *App) Push(ctx context.Context, args []string) error {
	fs := newFlags("push")
	var (
		branch    = fs.String("branch", "", "target branch (defaults to the remote default branch)")
		remote    = fs.String("remote", "origin", "git remote")
		topic     = fs.String("topic", "", "set the topic")
		wip       = fs.Bool("wip", false, "mark the change work-in-progress")
		draft     = fs.Bool("draft", false, "same as --wip")
		ready     = fs.Bool("ready", false, "mark the change ready for review")
		private   = fs.Bool("private", false, "mark the change private")
		reviewers stringList
		ccs       stringList
		hashtags  stringList
	)
	fs.Var(&reviewers, "reviewer", "reviewer email (repeatable)")
	fs.Var(&reviewers, "r", "reviewer email (shorthand)")
	fs.Var(&ccs, "cc", "CC email (repeatable)")
	fs.Var(&hashtags, "hashtag", "hashtag (repeatable)")
	if err := fs.Parse(args); err != nil {
		return usagef("push: %v", err)
	}

	if err := a.Git.CheckRepo(ctx); err != nil {
		return err
	}
	target := *branch
	if target == "" {
		target = a.Git.DefaultBranch(ctx)
	}
	ref, err := refspec.Build(target, refspec.Options{
		Topic:     *topic,
		WIP:       *wip,
		Draft:     *draft,
		Ready:     *ready,
		Private:   *private,
		Reviewers: reviewers,
		CC:        ccs,
		Hashtags:  hashtags,
	})
	if err != nil {
		return err
	}
	if err := a.Git.Push(ctx, *remote, "HEAD:"+ref); err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: "pushed HEAD to " + ref})
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Workspace manages review worktrees: create one for a change
// (default), list the live ones, or tear one down.
func (a *App) Workspace(ctx context.Context, args []string) error {
	fs := newFlags("workspace")
	list := fs.Bool("list", false, "list review worktrees")
	cleanup := fs.String("cleanup", "", "remove the review worktree at this path")
	if err := fs.Parse(args); err != nil {
		return usagef("workspace: %v", err)
	}

	switch {
	case *list:
		paths, err := a.Git.ListReviewWorktrees(ctx)
		if err != nil {
			return err
		}
		return a.render(paths)
	case *cleanup != "":
		return a.cleanupWorkspace(ctx, *cleanup)
	}

	if fs.NArg() != 1 {
		return usagef("workspace: exactly one change is required")
	}
	id, err := ident.NormalizeChangeID(fs.Arg(0))
	if err != nil {
		return err
	}
	wt, err := a.checkoutPatchsetInWorktree(ctx, id)
	if err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: wt.Path})
}

func (a *App) cleanupWorkspace(ctx context.Context, path string) error {
	base, err := git.WorktreeBase()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(path, base+"/") {
		return &ident.InvalidInputError{Field: "path", Value: path, Reason: "not a review worktree path"}
	}
	wt := &git.Worktree{Path: path}
	wt.Cleanup(ctx)
	return a.render(model.ActionResult{Status: "success", Message: "removed " + path})
}

// checkoutPatchsetInWorktree creates a detached worktree and checks
// out the latest patchset of the change in it. On fetch failure the
// half-built worktree is torn down.
func (a *App) checkoutPatchsetInWorktree(ctx context.Context, id ident.Identifier) (*git.Worktree, error) {
	num, err := a.changeNumber(ctx, id)
	if err != nil {
		return nil, err
	}
	wt, err := a.Git.CreateWorktree(ctx, id.Value)
	if err != nil {
		return nil, err
	}
	ps, err := a.Git.LatestPatchset(ctx, "origin", num)
	if err != nil {
		wt.Cleanup(ctx)
		return nil, err
	}
	ref := git.FetchRef(num, ps)
	if err := wt.FetchAndCheckout(ctx, "origin", ref); err != nil {
		wt.Cleanup(ctx)
		return nil, err
	}
	return wt, nil
}

// Checkout fetches a change's patchset into the current repository
// and checks out FETCH_HEAD. Requires a clean working tree.
func (a *App) Checkout(ctx context.Context, args []string) error {
	fs := newFlags("checkout")
	patchset := fs.Int("patchset", 0, "patchset number (defaults to the latest)")
	if err := fs.Parse(args); err != nil {
		return usagef("checkout: %v", err)
	}
	if fs.NArg() != 1 {
		return usagef("checkout: exactly one change is required")
	}
	id, err := ident.NormalizeChangeID(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := a.Git.CheckRepo(ctx); err != nil {
		return err
	}
	if err := a.Git.CheckClean(ctx); err != nil {
		return err
	}

	num, err := a.changeNumber(ctx, id)
	if err != nil {
		return err
	}
	ps := *patchset
	if ps <= 0 {
		ps, err = a.Git.LatestPatchset(ctx, "origin", num)
		if err != nil {
			return err
		}
	}
	ref := git.FetchRef(num, ps)
	if !ident.IsFetchRefspec(ref) {
		return &ident.InvalidInputError{Field: "refspec", Value: ref, Reason: "not a refs/changes fetch refspec"}
	}
	if err := a.Git.Run(ctx, "fetch", "origin", ref); err != nil {
		return &git.FetchError{Output: err.Error()}
	}
	if err := a.Git.Run(ctx, "checkout", "FETCH_HEAD"); err != nil {
		return &git.FetchError{Output: err.Error()}
	}
	return a.render(model.ActionResult{
		Status:  "success",
		Message: fmt.Sprintf("checked out patchset %d of change %s", ps, num),
	})
}
