// Package review runs an AI tool over a fetched patch and turns its
// output into a review message. The invocation strategy is deliberately
// thin: one subprocess, patch on stdin, text out.
package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"ger/internal/config"
)

const toolTimeout = 10 * time.Minute

// knownTools are probed in order when auto-detection is enabled.
var knownTools = []string{"claude", "gemini", "codex", "aider"}

const prompt = `You are reviewing a Gerrit change. Below is the full patch.
Point out bugs, risky edge cases and style problems worth a human's time.
Be concise; skip praise and restatements of the diff.`

// DetectTool resolves the AI tool to use: the configured one when
// set, otherwise the first known tool found on PATH.
func DetectTool(cfg *config.Config) (string, error) {
	if cfg.AITool != "" {
		if _, err := exec.LookPath(cfg.AITool); err != nil {
			return "", fmt.Errorf("configured AI tool %q not found in PATH", cfg.AITool)
		}
		return cfg.AITool, nil
	}
	if !cfg.AutoDetect() {
		return "", fmt.Errorf("no AI tool configured and auto-detection is disabled")
	}
	for _, tool := range knownTools {
		if _, err := exec.LookPath(tool); err == nil {
			return tool, nil
		}
	}
	return "", fmt.Errorf("no AI tool found in PATH (looked for %s)", strings.Join(knownTools, ", "))
}

// Run feeds the patch to the tool and returns its review text. dir is
// the worktree holding the checked-out patchset, so the tool can read
// surrounding context.
func Run(ctx context.Context, tool, dir string, patch []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	args := toolArgs(tool)
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(append([]byte(prompt+"\n\n"), patch...))

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%s: %s", tool, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s: %w", tool, err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("%s produced no output", tool)
	}
	return text, nil
}

// toolArgs maps a tool to its non-interactive invocation.
func toolArgs(tool string) []string {
	switch tool {
	case "claude":
		return []string{"-p"}
	case "gemini":
		return []string{"-p"}
	case "codex":
		return []string{"exec"}
	default:
		return nil
	}
}
