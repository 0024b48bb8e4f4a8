// Package hook downloads, validates and installs Gerrit's commit-msg
// hook, which adds the Change-Id trailer to new commits.
package hook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ger/internal/git"
)

// InstallError reports a failed hook download or a rejected script.
type InstallError struct {
	Reason string
}

func (e *InstallError) Error() string { return "commit-msg hook: " + e.Reason }

// shebangs accepted in the first 256 bytes of the downloaded script.
var shebangs = []string{"#!/bin/sh", "#!/bin/bash", "#!/usr/bin/env sh"}

var changeIDTrailerRE = regexp.MustCompile(`(?m)^Change-Id:\s*I[0-9a-f]{40}\s*$`)

const downloadTimeout = 30 * time.Second

// Path returns the commit-msg hook location for the current repo.
func Path(g *git.Git) (string, error) {
	dir, err := g.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hooks", "commit-msg"), nil
}

// Installed reports whether a commit-msg hook already exists.
func Installed(g *git.Git) (bool, error) {
	path, err := Path(g)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Install downloads <host>/tools/hooks/commit-msg, validates that it
// looks like a shell script, and installs it atomically with mode
// 0755. host must already be normalized (no trailing slash).
func Install(ctx context.Context, g *git.Git, host string) error {
	path, err := Path(g)
	if err != nil {
		return err
	}
	script, err := download(ctx, host+"/tools/hooks/commit-msg")
	if err != nil {
		return err
	}
	if !looksLikeScript(script) {
		return &InstallError{Reason: "downloaded content is not a valid script"}
	}
	return writeHook(path, script)
}

// writeHook installs the script atomically: write to a tempfile in
// the hooks directory, chmod, then rename over the destination.
func writeHook(path string, script []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "commit-msg-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(script); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &InstallError{Reason: fmt.Sprintf("failed to download from %s: %v", url, err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &InstallError{Reason: fmt.Sprintf("failed to download from %s: HTTP %d", url, resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}

// looksLikeScript checks for a shell shebang within the first 256
// bytes, which catches HTML error pages served with a 200 status.
func looksLikeScript(content []byte) bool {
	head := string(content)
	if len(head) > 256 {
		head = head[:256]
	}
	for _, s := range shebangs {
		if strings.Contains(head, s) {
			return true
		}
	}
	return false
}

// HasChangeID reports whether a commit message carries a Change-Id
// trailer.
func HasChangeID(message string) bool {
	return changeIDTrailerRE.MatchString(message)
}

// AmendHead re-commits HEAD unchanged so the freshly installed hook
// can add a Change-Id trailer to it.
func AmendHead(ctx context.Context, g *git.Git) error {
	return g.Run(ctx, "commit", "--amend", "--no-edit")
}
