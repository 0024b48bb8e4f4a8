package cli

import (
	"context"
	"fmt"

	"ger/internal/model"
	"ger/internal/review"
)

// Review fetches a change's patch into an isolated worktree, runs the
// configured AI tool over it and posts the resulting message as a
// review. With --dry-run the message is printed instead of posted.
func (a *App) Review(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("review")
	dryRun := fs.Bool("dry-run", false, "print the review instead of posting it")
	tool := fs.String("tool", "", "AI tool to use (overrides configuration)")
	if err := fs.Parse(rest); err != nil {
		return usagef("review: %v", err)
	}

	cfg, err := a.ensureConfig()
	if err != nil {
		return err
	}
	toolName := *tool
	if toolName == "" {
		toolName, err = review.DetectTool(cfg)
		if err != nil {
			return err
		}
	}

	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	patch, err := client.Patch(ctx, id, "current")
	if err != nil {
		return err
	}

	wt, err := a.checkoutPatchsetInWorktree(ctx, id)
	if err != nil {
		return err
	}
	defer wt.Cleanup(ctx)

	fmt.Fprintf(a.Stderr, "reviewing change %s with %s...\n", id.Value, toolName)
	text, err := review.Run(ctx, toolName, wt.Path, patch)
	if err != nil {
		return err
	}

	if *dryRun {
		return a.render(text)
	}
	if err := client.SetReview(ctx, id, model.ReviewInput{Message: text}); err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: "review posted on change " + id.Value})
}
