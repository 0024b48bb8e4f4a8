// Package refspec assembles Gerrit magic-ref push refspecs of the
// form refs/for/<branch>%opt,opt,... The option order is fixed so a
// given input always produces the same string.
package refspec

import (
	"net/url"
	"regexp"
	"strings"

	"ger/internal/ident"
)

// Options are the push options carried in the magic ref.
type Options struct {
	Topic     string
	WIP       bool
	Draft     bool
	Ready     bool
	Private   bool
	Reviewers []string
	CC        []string
	Hashtags  []string
}

// emailRE is deliberately loose: Gerrit does its own account
// resolution, this only catches obvious non-addresses.
var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Build produces the push refspec for branch with the given options.
// Token order: topic, wip, ready, private, reviewers, CCs, hashtags.
// wip and draft collapse into a single "wip" token.
func Build(branch string, o Options) (string, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return "", &ident.InvalidInputError{Field: "branch", Value: branch, Reason: "empty"}
	}

	for _, r := range o.Reviewers {
		if !emailRE.MatchString(r) {
			return "", &ident.InvalidInputError{Field: "reviewer", Value: r, Reason: "not an email address"}
		}
	}
	for _, cc := range o.CC {
		if !emailRE.MatchString(cc) {
			return "", &ident.InvalidInputError{Field: "cc", Value: cc, Reason: "not an email address"}
		}
	}

	var tokens []string
	if o.Topic != "" {
		tokens = append(tokens, "topic="+url.QueryEscape(o.Topic))
	}
	if o.WIP || o.Draft {
		tokens = append(tokens, "wip")
	}
	if o.Ready {
		tokens = append(tokens, "ready")
	}
	if o.Private {
		tokens = append(tokens, "private")
	}
	for _, r := range o.Reviewers {
		tokens = append(tokens, "r="+r)
	}
	for _, cc := range o.CC {
		tokens = append(tokens, "cc="+cc)
	}
	for _, tag := range o.Hashtags {
		tokens = append(tokens, "hashtag="+url.QueryEscape(tag))
	}

	ref := "refs/for/" + branch
	if len(tokens) > 0 {
		ref += "%" + strings.Join(tokens, ",")
	}
	return ref, nil
}
