package cli

import (
	"context"
	"strings"
)

// Files lists the files touched by a change's revision.
func (a *App) Files(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("files")
	rev := fs.String("revision", "current", "revision to inspect")
	if err := fs.Parse(rest); err != nil {
		return usagef("files: %v", err)
	}
	if fs.NArg() > 0 {
		return usagef("files: unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	files, err := client.Files(ctx, id, *rev)
	if err != nil {
		return err
	}
	return a.render(files)
}

// Diff shows the diff of one file in a change's revision, optionally
// against an older patchset.
func (a *App) Diff(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("diff")
	rev := fs.String("revision", "current", "revision to inspect")
	base := fs.String("base", "", "patchset to diff against")
	if err := fs.Parse(rest); err != nil {
		return usagef("diff: %v", err)
	}
	if fs.NArg() != 1 {
		return usagef("diff: exactly one file path is required")
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	diff, err := client.Diff(ctx, id, *rev, fs.Arg(0), *base)
	if err != nil {
		return err
	}
	return a.render(diff)
}

// Cat prints the content of one file at a change's revision.
func (a *App) Cat(ctx context.Context, args []string) error {
	id, rest, err := a.changeID(ctx, args)
	if err != nil {
		return err
	}
	fs := newFlags("cat")
	rev := fs.String("revision", "current", "revision to inspect")
	if err := fs.Parse(rest); err != nil {
		return usagef("cat: %v", err)
	}
	if fs.NArg() != 1 {
		return usagef("cat: exactly one file path is required")
	}
	client, err := a.ensureClient()
	if err != nil {
		return err
	}
	content, err := client.FileContent(ctx, id, *rev, fs.Arg(0))
	if err != nil {
		return err
	}
	// Raw file bytes go out as-is, never re-framed by a renderer.
	_, err = a.Stdout.Write(content)
	return err
}
