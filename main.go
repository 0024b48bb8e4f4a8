// Command ger is a command-line client for a Gerrit code-review
// server: list and inspect changes, act on them (abandon, restore,
// rebase, submit, vote, review), manage reviewers and topics, push
// through Gerrit's magic refs, and drive a local review workflow in
// isolated worktrees.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"ger/internal/cli"
	"ger/internal/config"
	"ger/internal/gerrit"
	"ger/internal/ident"
	"ger/internal/render"
)

const version = "0.3.0"

const usage = `Usage: ger [--json|--xml] <command> [arguments]

Commands:
	setup                    configure host and credentials
	status [change]          show the change for HEAD and its build state
	list [query]             list changes (default query: is:open)
	show [change]            show one change with its messages
	abandon [change]         abandon a change
	restore [change]         restore an abandoned change
	rebase [change]          rebase a change
	submit [change]          submit a change
	vote [change]            vote on labels (--code-review, --verified, --label)
	review [change]          run the AI review flow and post the result
	topic [change]           get, --set or --delete the topic
	push                     push HEAD through refs/for/<branch>
	add-reviewer [change]    add reviewers or CCs
	remove-reviewer [change] remove reviewers
	files [change]           list the files touched by a change
	diff [change] <path>     show the diff of one file
	cat [change] <path>      print a file's content at a revision
	projects [pattern]       list projects
	groups [list|show|members]
	build-status [change]    print {"state": ...} derived from CI messages
	install-hook             install the commit-msg hook
	workspace <change>       check out a patchset in a review worktree
	checkout <change>        fetch a patchset into the current repo
	version                  print the version

Exit codes: 0 ok, 1 operation error, 2 invalid input, 3 Gerrit API error.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	format := render.Plain
	for len(args) > 0 && (args[0] == "--json" || args[0] == "--xml") {
		if args[0] == "--json" {
			format = render.JSON
		} else {
			format = render.XML
		}
		args = args[1:]
	}

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	command, rest := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(format, os.Stdout, os.Stderr)

	var err error
	switch command {
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	case "version":
		fmt.Fprintln(os.Stdout, "ger "+version)
		return 0
	case "setup":
		err = app.Setup(ctx, rest)
	case "status":
		err = app.Status(ctx, rest)
	case "list":
		err = app.List(ctx, rest)
	case "show":
		err = app.Show(ctx, rest)
	case "abandon":
		err = app.Abandon(ctx, rest)
	case "restore":
		err = app.Restore(ctx, rest)
	case "rebase":
		err = app.Rebase(ctx, rest)
	case "submit":
		err = app.Submit(ctx, rest)
	case "vote":
		err = app.Vote(ctx, rest)
	case "review":
		err = app.Review(ctx, rest)
	case "topic":
		err = app.Topic(ctx, rest)
	case "push":
		err = app.Push(ctx, rest)
	case "add-reviewer":
		err = app.AddReviewer(ctx, rest)
	case "remove-reviewer":
		err = app.RemoveReviewer(ctx, rest)
	case "files":
		err = app.Files(ctx, rest)
	case "diff":
		err = app.Diff(ctx, rest)
	case "cat":
		err = app.Cat(ctx, rest)
	case "projects":
		err = app.Projects(ctx, rest)
	case "groups":
		err = app.Groups(ctx, rest)
	case "build-status":
		err = app.BuildStatus(ctx, rest)
	case "install-hook":
		err = app.InstallHook(ctx, rest)
	case "workspace":
		err = app.Workspace(ctx, rest)
	case "checkout":
		err = app.Checkout(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "ger: unknown command %q\n\n%s", command, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ger: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps the error taxonomy onto the documented exit codes:
// invalid input 2, Gerrit API failures 3, everything else 1.
func exitCode(err error) int {
	var invalid *ident.InvalidInputError
	var configInvalid *config.InvalidError
	var apiErr *gerrit.APIError
	switch {
	case cli.IsUsageError(err), errors.As(err, &invalid), errors.As(err, &configInvalid):
		return 2
	case errors.As(err, &apiErr):
		return 3
	default:
		return 1
	}
}
