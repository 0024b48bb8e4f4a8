package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ger/internal/gerrit"
	"ger/internal/ident"
	"ger/internal/model"
)

// Abandon abandons a change with an optional message.
func (a *App) Abandon(ctx context.Context, args []string) error {
	return a.simpleAction(ctx, "abandon", "abandoned", args, func(ctx context.Context, c *gerrit.Client, id ident.Identifier, message string) error {
		return c.Abandon(ctx, id, message)
	})
}

// Restore restores an abandoned change.
func (a *App) Restore(ctx context.Context, args []string) error {
	return a.simpleAction(ctx, "restore", "restored", args, func(ctx context.Context, c *gerrit.Client, id ident.Identifier, message string) error {
		return c.Restore(ctx, id, message)
	})
}

func (a *App) simpleAction(ctx context.Context, name, done string, args []string, action func(context.Context, *gerrit.Client, ident.Identifier, string) error) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags(name)
	message := fs.String("message", "", "message to attach")
	fs.StringVar(message, "m", "", "message to attach (shorthand)")
	if err := fs.Parse(rest); err != nil {
		return usagef("%s: %v", name, err)
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	if err := action(ctx, client, id, *message); err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: done + " change " + id.Value})
}

// Rebase rebases a change, optionally onto an explicit base.
func (a *App) Rebase(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("rebase")
	base := fs.String("base", "", "revision to rebase onto")
	if err := fs.Parse(rest); err != nil {
		return usagef("rebase: %v", err)
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	if err := client.Rebase(ctx, id, *base); err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: "rebased change " + id.Value})
}

// Submit submits a change.
func (a *App) Submit(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usagef("submit: unexpected arguments: %s", strings.Join(rest, " "))
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	if err := client.Submit(ctx, id); err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: "submitted change " + id.Value})
}

// Vote casts label votes on the current revision. Labels come from
// --code-review, --verified and repeated "--label NAME VALUE" pairs.
func (a *App) Vote(ctx context.Context, args []string) error {
	labelArgs, rest := extractLabelArgs(args)
	id, rest, err := a.changeID(ctx, rest)
	if err != nil {
		return err
	}
	fs := newFlags("vote")
	codeReview := fs.String("code-review", "", "Code-Review vote value")
	verified := fs.String("verified", "", "Verified vote value")
	message := fs.String("message", "", "message to attach")
	fs.StringVar(message, "m", "", "message to attach (shorthand)")
	if err := fs.Parse(rest); err != nil {
		return usagef("vote: %v", err)
	}

	labels, err := buildLabels(*codeReview, *verified, labelArgs)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return usagef("vote: at least one of --code-review, --verified or --label is required")
	}

	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	if err := client.SetReview(ctx, id, model.ReviewInput{Message: *message, Labels: labels}); err != nil {
		return err
	}
	return a.render(model.ActionResult{Status: "success", Message: "voted on change " + id.Value})
}

// extractLabelArgs pulls every "--label NAME VALUE" pair out of args
// so the remaining flags parse normally. The pair tokens are kept in
// order for validation.
func extractLabelArgs(args []string) (labels, rest []string) {
	for i := 0; i < len(args); i++ {
		if args[i] != "--label" && args[i] != "-label" {
			rest = append(rest, args[i])
			continue
		}
		for j := 0; j < 2 && i+1 < len(args); j++ {
			labels = append(labels, args[i+1])
			i++
		}
	}
	return labels, rest
}

func buildLabels(codeReview, verified string, labelArgs []string) (map[string]int, error) {
	labels := map[string]int{}
	set := func(name, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return &ident.InvalidInputError{Field: "label " + name, Value: value, Reason: "not an integer"}
		}
		labels[name] = v
		return nil
	}
	if codeReview != "" {
		if err := set("Code-Review", codeReview); err != nil {
			return nil, err
		}
	}
	if verified != "" {
		if err := set("Verified", verified); err != nil {
			return nil, err
		}
	}
	if len(labelArgs)%2 != 0 {
		return nil, &ident.InvalidInputError{
			Field:  "label",
			Value:  strings.Join(labelArgs, " "),
			Reason: "label arguments come in NAME VALUE pairs",
		}
	}
	for i := 0; i < len(labelArgs); i += 2 {
		if err := set(labelArgs[i], labelArgs[i+1]); err != nil {
			return nil, err
		}
	}
	return labels, nil
}

// Topic gets, sets or deletes the topic of a change.
func (a *App) Topic(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("topic")
	set := fs.String("set", "", "set the topic")
	del := fs.Bool("delete", false, "delete the topic")
	if err := fs.Parse(rest); err != nil {
		return usagef("topic: %v", err)
	}
	if *set != "" && *del {
		return usagef("topic: --set and --delete are mutually exclusive")
	}

	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	switch {
	case *set != "":
		if err := client.SetTopic(ctx, id, *set); err != nil {
			return err
		}
		return a.render(model.ActionResult{Status: "success", Message: "topic set to " + *set})
	case *del:
		if err := client.DeleteTopic(ctx, id); err != nil {
			return err
		}
		return a.render(model.ActionResult{Status: "success", Message: "topic deleted"})
	default:
		topic, err := client.Topic(ctx, id)
		if err != nil {
			// No topic set surfaces as a 404; that is not an error.
			if gerrit.NotFound(err) {
				return a.render("")
			}
			return err
		}
		return a.render(topic)
	}
}

// notifyValues are the accepted --notify values, uppercased before
// they go on the wire.
var notifyValues = map[string]bool{
	"NONE":            true,
	"OWNER":           true,
	"OWNER_REVIEWERS": true,
	"ALL":             true,
}

func normalizeNotify(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	upper := strings.ToUpper(s)
	if !notifyValues[upper] {
		return "", &ident.InvalidInputError{Field: "notify", Value: s, Reason: "expected none, owner, owner_reviewers or all"}
	}
	return upper, nil
}

// AddReviewer adds one or more reviewers (or CCs) to a change.
func (a *App) AddReviewer(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("add-reviewer")
	cc := fs.Bool("cc", false, "add as CC instead of reviewer")
	notify := fs.String("notify", "", "who to notify: none, owner, owner_reviewers, all")
	if err := fs.Parse(rest); err != nil {
		return usagef("add-reviewer: %v", err)
	}
	reviewers := fs.Args()
	if len(reviewers) == 0 {
		return usagef("add-reviewer: at least one reviewer is required")
	}
	notifyValue, err := normalizeNotify(*notify)
	if err != nil {
		return err
	}

	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	state := ""
	if *cc {
		state = "CC"
	}
	report := model.ReviewerReport{Status: "success"}
	for _, r := range reviewers {
		input := model.ReviewerInput{Reviewer: r, State: state, Notify: notifyValue}
		if err := client.AddReviewer(ctx, id, input); err != nil {
			report.Results = append(report.Results, model.ReviewerResult{Reviewer: r, OK: false, Error: err.Error()})
			report.Status = "partial_failure"
			continue
		}
		report.Results = append(report.Results, model.ReviewerResult{Reviewer: r, OK: true})
	}
	return a.render(report)
}

// RemoveReviewer removes one or more reviewers from a change.
// Individual failures do not cancel subsequent removals; the report
// carries a per-reviewer outcome.
func (a *App) RemoveReviewer(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("remove-reviewer")
	notify := fs.String("notify", "", "who to notify: none, owner, owner_reviewers, all")
	if err := fs.Parse(rest); err != nil {
		return usagef("remove-reviewer: %v", err)
	}
	reviewers := fs.Args()
	if len(reviewers) == 0 {
		return usagef("remove-reviewer: at least one reviewer is required")
	}
	notifyValue, err := normalizeNotify(*notify)
	if err != nil {
		return err
	}

	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	report := model.ReviewerReport{Status: "success"}
	failed := 0
	for _, r := range reviewers {
		if err := client.RemoveReviewer(ctx, id, r, notifyValue); err != nil {
			report.Results = append(report.Results, model.ReviewerResult{Reviewer: r, OK: false, Error: err.Error()})
			failed++
			continue
		}
		report.Results = append(report.Results, model.ReviewerResult{Reviewer: r, OK: true})
	}
	if failed > 0 {
		report.Status = "partial_failure"
	}
	if err := a.render(report); err != nil {
		return err
	}
	if failed == len(reviewers) {
		return fmt.Errorf("all reviewer removals failed")
	}
	return nil
}
