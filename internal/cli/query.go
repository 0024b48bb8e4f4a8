package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ger/internal/build"
	"ger/internal/gerrit"
	"ger/internal/ident"
	"ger/internal/model"
)

// List queries changes; the arguments join into a Gerrit query,
// defaulting to is:open.
func (a *App) List(ctx context.Context, args []string) error {
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	changes, err := client.QueryChanges(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return a.render(changes)
}

// Show displays one change with its filtered message timeline.
func (a *App) Show(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usagef("show: unexpected arguments: %s", strings.Join(rest, " "))
	}
	detail, err := a.changeDetail(ctx, id, false)
	if err != nil {
		return err
	}
	return a.render(detail)
}

// Status displays the change for the HEAD commit (or an explicit
// identifier) together with its derived build state.
func (a *App) Status(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usagef("status: unexpected arguments: %s", strings.Join(rest, " "))
	}
	detail, err := a.changeDetail(ctx, id, true)
	if err != nil {
		return err
	}
	return a.render(detail)
}

func (a *App) changeDetail(ctx context.Context, id ident.Identifier, withBuild bool) (*model.ChangeDetail, error) {
	client, err := a.ensureClient()
	if err != nil {
		return nil, err
	}
	info, err := client.Change(ctx, id)
	if err != nil {
		return nil, err
	}
	withMessages, err := client.ChangeWithMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &model.ChangeDetail{
		Change:   info,
		Messages: build.FilterMessages(withMessages.Messages),
	}
	if withBuild {
		detail.BuildState = string(build.Derive(withMessages.Messages, false))
	}
	return detail, nil
}

// Projects lists projects, optionally filtered by a prefix pattern.
func (a *App) Projects(ctx context.Context, args []string) error {
	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	projects, err := client.Projects(ctx, pattern)
	if err != nil {
		return err
	}
	return a.render(projects)
}

// Groups dispatches the groups subcommands: list (default), show and
// members.
func (a *App) Groups(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	switch sub {
	case "list":
		groups, err := client.Groups(ctx)
		if err != nil {
			return err
		}
		return a.render(groups)
	case "show":
		if len(args) != 1 {
			return usagef("groups show: exactly one group name is required")
		}
		group, err := client.Group(ctx, args[0])
		if err != nil {
			return err
		}
		return a.render(group)
	case "members":
		if len(args) != 1 {
			return usagef("groups members: exactly one group name is required")
		}
		members, err := client.GroupMembers(ctx, args[0])
		if err != nil {
			return err
		}
		return a.render(members)
	default:
		return usagef("groups: unknown subcommand %q (expected list, show or members)", sub)
	}
}

// BuildStatus derives and prints the build state of a change as a
// single-field JSON record. A missing change is a valid answer
// (not_found), any other API failure propagates.
func (a *App) BuildStatus(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usagef("build-status: unexpected arguments: %s", strings.Join(rest, " "))
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}

	state := build.NotFound
	info, err := client.ChangeWithMessages(ctx, id)
	switch {
	case gerrit.NotFound(err):
		// fall through with not_found
	case err != nil:
		return err
	default:
		state = build.Derive(info.Messages, false)
	}

	// The record shape is fixed regardless of the selected renderer.
	out, err := json.Marshal(model.BuildStatusResult{State: string(state)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.Stdout, string(out))
	return err
}
