package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"ger/internal/ident"
)

// Worktree is a detached review checkout under ~/.ger/worktrees/,
// owned by the invocation that created it.
type Worktree struct {
	Path        string
	ChangeID    string
	OriginalCwd string
	CreatedAt   time.Time
	PID         int
}

// WorktreeError reports a failed worktree creation; the message is
// git's output verbatim.
type WorktreeError struct {
	Output string
}

func (e *WorktreeError) Error() string { return "creating worktree: " + e.Output }

// FetchError reports a failed patchset fetch or checkout.
type FetchError struct {
	Output string
}

func (e *FetchError) Error() string { return "fetching patchset: " + e.Output }

// WorktreeBase returns ~/.ger/worktrees.
func WorktreeBase() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ger", "worktrees"), nil
}

// worktreePath computes a fresh directory name. The changeId, epoch
// milliseconds and pid together make concurrent invocations disjoint
// without any locking.
func worktreePath(base, changeID string, now time.Time, pid int) string {
	return filepath.Join(base, fmt.Sprintf("%s-%d-%d", changeID, now.UnixMilli(), pid))
}

// CreateWorktree adds a detached worktree for reviewing changeID,
// based on a stable commit of the current repository.
func (g *Git) CreateWorktree(ctx context.Context, changeID string) (*Worktree, error) {
	if err := g.CheckRepo(ctx); err != nil {
		return nil, err
	}
	base, err := g.stableBase(ctx)
	if err != nil {
		return nil, err
	}

	dir, err := WorktreeBase()
	if err != nil {
		return nil, err
	}
	// Keep the parent private; review checkouts can hold credentials
	// in .git files.
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pid := os.Getpid()
	path := worktreePath(dir, changeID, now, pid)
	if err := g.Run(ctx, "worktree", "add", "--detach", path, base); err != nil {
		return nil, &WorktreeError{Output: err.Error()}
	}
	return &Worktree{
		Path:        path,
		ChangeID:    changeID,
		OriginalCwd: cwd,
		CreatedAt:   now,
		PID:         pid,
	}, nil
}

// stableBase picks a commit to seed the worktree with: HEAD when it
// resolves, then origin/main, origin/master, and finally the literal
// ref name.
func (g *Git) stableBase(ctx context.Context) (string, error) {
	if out, err := g.output(ctx, "rev-parse", "HEAD"); err == nil {
		return out, nil
	}
	for _, ref := range []string{"origin/main", "origin/master"} {
		if out, err := g.output(ctx, "rev-parse", "--verify", ref); err == nil {
			return out, nil
		}
	}
	return "HEAD", nil
}

// LatestPatchset finds the highest patchset number published for a
// numeric change by listing its refs on the remote. Defaults to 1
// when nothing is found.
func (g *Git) LatestPatchset(ctx context.Context, remote, changeNum string) (int, error) {
	if !ident.IsRemoteName(remote) {
		return 0, &ident.InvalidInputError{Field: "remote", Value: remote, Reason: "unsafe remote name"}
	}
	pattern := fmt.Sprintf("refs/changes/%s/%s/*", shard(changeNum), changeNum)
	out, err := g.output(ctx, "ls-remote", remote, pattern)
	if err != nil {
		return 0, &FetchError{Output: err.Error()}
	}
	return parseLatestPatchset(out), nil
}

// parseLatestPatchset extracts the max trailing patchset number from
// ls-remote output lines of the form "<sha>\trefs/changes/NN/NUM/PS".
func parseLatestPatchset(out string) int {
	latest := 1
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := fields[1]
		ps, err := strconv.Atoi(ref[strings.LastIndex(ref, "/")+1:])
		if err != nil {
			continue
		}
		if ps > latest {
			latest = ps
		}
	}
	return latest
}

// FetchRef builds the sharded fetch refspec for a patchset:
// refs/changes/<last two digits of NUM>/<NUM>/<PS>.
func FetchRef(changeNum string, patchset int) string {
	return fmt.Sprintf("refs/changes/%s/%s/%d", shard(changeNum), changeNum, patchset)
}

// shard returns the last two digits of a change number, left-padded,
// matching Gerrit's refs/changes sharding.
func shard(changeNum string) string {
	if len(changeNum) == 1 {
		return "0" + changeNum
	}
	return changeNum[len(changeNum)-2:]
}

// FetchAndCheckout fetches the given patchset ref inside the worktree
// and checks out FETCH_HEAD. The ref must already have passed refspec
// validation.
func (w *Worktree) FetchAndCheckout(ctx context.Context, remote, ref string) error {
	if !ident.IsRemoteName(remote) {
		return &ident.InvalidInputError{Field: "remote", Value: remote, Reason: "unsafe remote name"}
	}
	if !ident.IsFetchRefspec(ref) {
		return &ident.InvalidInputError{Field: "refspec", Value: ref, Reason: "not a refs/changes fetch refspec"}
	}
	wg := In(w.Path)
	if err := wg.Run(ctx, "fetch", remote, ref); err != nil {
		return &FetchError{Output: err.Error()}
	}
	if err := wg.Run(ctx, "checkout", "FETCH_HEAD"); err != nil {
		return &FetchError{Output: err.Error()}
	}
	return nil
}

// Cleanup restores the original working directory and removes the
// worktree. Failures are reported as warnings and never propagate;
// teardown must not mask the result of the review itself.
func (w *Worktree) Cleanup(ctx context.Context) {
	if w.OriginalCwd != "" {
		if err := os.Chdir(w.OriginalCwd); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not restore working directory %s: %v\n", w.OriginalCwd, err)
		}
	}
	g := In(w.OriginalCwd)
	if err := g.Run(ctx, "worktree", "remove", "--force", w.Path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not remove worktree %s: %v\n", w.Path, err)
	}
}

// ListReviewWorktrees parses `git worktree list --porcelain` and
// returns the paths that live under the review worktree base,
// sorted for stable output.
func (g *Git) ListReviewWorktrees(ctx context.Context) ([]string, error) {
	base, err := WorktreeBase()
	if err != nil {
		return nil, err
	}
	out, err := g.output(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	paths := parseWorktreePaths(out, base)
	sort.Strings(paths)
	return paths, nil
}

func parseWorktreePaths(raw, base string) []string {
	var paths []string
	for _, block := range strings.Split(strings.TrimSpace(raw), "\n\n") {
		for _, line := range strings.Split(block, "\n") {
			path, ok := strings.CutPrefix(line, "worktree ")
			if !ok {
				continue
			}
			if strings.HasPrefix(path, base+string(filepath.Separator)) {
				paths = append(paths, path)
			}
		}
	}
	return paths
}
