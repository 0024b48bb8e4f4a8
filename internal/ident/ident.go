// Package ident validates and normalises the identifiers that every
// command passes to the Gerrit client and to git: change identifiers,
// server hosts, fetch refspecs and remote names.
package ident

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// InvalidInputError reports a user- or server-supplied value that
// failed validation. Commands map it to exit code 2.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Kind distinguishes the two accepted change identifier forms.
type Kind int

const (
	Number   Kind = iota // numeric _number, e.g. 12345
	ChangeID             // I + 40 hex digits
)

// Identifier is a validated change identifier.
type Identifier struct {
	Kind  Kind
	Value string
}

func (id Identifier) String() string { return id.Value }

var (
	numberRE   = regexp.MustCompile(`^\d+$`)
	changeIDRE = regexp.MustCompile(`^I[0-9a-f]{40}$`)
	refspecRE  = regexp.MustCompile(`^refs/changes/\d+/\d+/\d+$`)
	remoteRE   = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)
	trailerRE  = regexp.MustCompile(`(?m)^Change-Id:\s*(I[0-9a-f]{40})\s*$`)
)

// NormalizeChangeID trims s and accepts either a change number or a
// Change-Id. Anything else is rejected with a message naming both
// accepted forms.
func NormalizeChangeID(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	switch {
	case numberRE.MatchString(s):
		return Identifier{Kind: Number, Value: s}, nil
	case changeIDRE.MatchString(s):
		return Identifier{Kind: ChangeID, Value: s}, nil
	}
	return Identifier{}, &InvalidInputError{
		Field:  "change identifier",
		Value:  s,
		Reason: "expected a change number (e.g. 12345) or a Change-Id (I followed by 40 hex digits)",
	}
}

// NormalizeHost prepends https:// when the scheme is missing, strips
// any trailing slash and validates the result as an absolute URL.
func NormalizeHost(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &InvalidInputError{Field: "host", Value: s, Reason: "empty"}
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	s = strings.TrimRight(s, "/")
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", &InvalidInputError{Field: "host", Value: s, Reason: "not an absolute URL"}
	}
	return s, nil
}

// IsFetchRefspec reports whether s is a refs/changes fetch refspec of
// the exact form refs/changes/NN/NUM/PS. Server-returned refs must
// pass this check before they reach a git argv.
func IsFetchRefspec(s string) bool { return refspecRE.MatchString(s) }

// IsRemoteName reports whether s is safe to pass to git as a remote.
func IsRemoteName(s string) bool { return remoteRE.MatchString(s) }

// ChangeIDFromMessage extracts the Change-Id trailer from a commit
// message. Commands fall back to this when no change identifier is
// given on the command line.
func ChangeIDFromMessage(msg string) (Identifier, error) {
	m := trailerRE.FindStringSubmatch(msg)
	if m == nil {
		return Identifier{}, fmt.Errorf("No Change-ID found in HEAD commit")
	}
	return Identifier{Kind: ChangeID, Value: m[1]}, nil
}
