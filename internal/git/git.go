// Package git wraps the git subprocess calls the review workflow
// needs: repository introspection, pushing, and detached review
// worktrees. Every invocation passes arguments as an argv list.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"ger/internal/ident"
)

// ErrNotGitRepo is returned when a command needs a repository and the
// current directory is not inside one.
var ErrNotGitRepo = errors.New("Current directory is not a git repository")

// ErrDirtyRepo is returned by CheckClean when there are uncommitted
// changes.
var ErrDirtyRepo = errors.New("Working directory has uncommitted changes")

// Git runs git commands in a fixed working directory. The zero-value
// dir means the process working directory.
type Git struct {
	dir string
}

// New returns a Git bound to the process working directory.
func New() *Git { return &Git{} }

// In returns a Git bound to dir.
func In(dir string) *Git { return &Git{dir: dir} }

// output runs git and returns trimmed stdout. On failure the error
// carries git's stderr.
func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Run runs git for its side effect, surfacing combined output on
// failure.
func (g *Git) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(out)))
	}
	return nil
}

// Dir returns the absolute .git directory of the repository, or
// ErrNotGitRepo.
func (g *Git) Dir() (string, error) {
	out, err := g.output(context.Background(), "rev-parse", "--git-dir")
	if err != nil {
		return "", ErrNotGitRepo
	}
	if !filepath.IsAbs(out) {
		abs, err := filepath.Abs(filepath.Join(g.dir, out))
		if err != nil {
			return "", err
		}
		out = abs
	}
	return out, nil
}

// RepoRoot returns the absolute path of the working tree root.
func (g *Git) RepoRoot(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", ErrNotGitRepo
	}
	return out, nil
}

// CheckRepo verifies the current directory is inside a git repo.
func (g *Git) CheckRepo(ctx context.Context) error {
	if _, err := g.output(ctx, "rev-parse", "--git-dir"); err != nil {
		return ErrNotGitRepo
	}
	return nil
}

// CheckClean verifies there are no uncommitted changes. Whether to
// enforce this is a per-command policy.
func (g *Git) CheckClean(ctx context.Context) error {
	out, err := g.output(ctx, "status", "--porcelain")
	if err != nil {
		return ErrNotGitRepo
	}
	if out != "" {
		return ErrDirtyRepo
	}
	return nil
}

// HeadMessage returns the full commit message of HEAD.
func (g *Git) HeadMessage(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%B")
	cmd.Dir = g.dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git log: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", ErrNotGitRepo
	}
	return string(out), nil
}

// DefaultBranch returns the remote's default branch (e.g. "main"),
// falling back to "main" when it cannot be determined.
func (g *Git) DefaultBranch(ctx context.Context) string {
	out, err := g.output(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err == nil {
		// output is "origin/main" — strip the remote prefix
		if _, after, ok := strings.Cut(out, "/"); ok {
			return after
		}
	}
	return "main"
}

// Push pushes refspec to remote. The remote name is validated before
// it reaches the argv.
func (g *Git) Push(ctx context.Context, remote, refspec string) error {
	if !ident.IsRemoteName(remote) {
		return &ident.InvalidInputError{Field: "remote", Value: remote, Reason: "unsafe remote name"}
	}
	return g.Run(ctx, "push", remote, refspec)
}
