// Package build derives a CI build state from a change's message
// timeline. The derivation is a pure function: same messages, same
// answer.
package build

import (
	"regexp"
	"sort"
	"strings"

	"ger/internal/model"
)

// State is the derived build state of a change.
type State string

const (
	Pending  State = "pending"
	Running  State = "running"
	Success  State = "success"
	Failure  State = "failure"
	NotFound State = "not_found"
)

var (
	buildStartedRE = regexp.MustCompile(`^Build\s+Started\b`)
	verifiedRE     = regexp.MustCompile(`Patch Set \d+:\s*Verified\s*([+-]?)(\d+)`)
)

// Derive computes the build state from the full message timeline.
// Autogenerated messages must NOT be filtered out before calling:
// CI systems post both the start markers and the verification votes
// with autogenerated tags.
//
// Verifications are only considered when they are strictly later than
// the latest Build Started message, and, when that message carries a
// revision number, only when they belong to the same revision. This
// keeps votes for superseded patchsets from being misread as the
// outcome of a newer build.
func Derive(messages []model.MessageInfo, notFound bool) State {
	if notFound {
		return NotFound
	}

	type start struct {
		index int
		msg   model.MessageInfo
	}
	var starts []start
	for i, m := range messages {
		if buildStartedRE.MatchString(m.Message) {
			starts = append(starts, start{index: i, msg: m})
		}
	}
	if len(starts) == 0 {
		return Pending
	}
	sort.SliceStable(starts, func(i, j int) bool {
		if starts[i].msg.Date != starts[j].msg.Date {
			return starts[i].msg.Date < starts[j].msg.Date
		}
		return starts[i].index < starts[j].index
	})
	latest := starts[len(starts)-1].msg

	for _, m := range messages {
		if !(m.Date > latest.Date) {
			continue
		}
		if latest.RevisionNumber != 0 && m.RevisionNumber != latest.RevisionNumber {
			continue
		}
		sub := verifiedRE.FindStringSubmatch(m.Message)
		if sub == nil {
			continue
		}
		if sub[1] == "-" {
			return Failure
		}
		return Success
	}
	return Running
}

// autogeneratedPrefix tags mark messages posted by the server or by
// bots; only the "user" suffix is shown in user-facing timelines.
const autogeneratedPrefix = "autogenerated:"

// FilterMessages drops autogenerated messages other than
// autogenerated:user. Build-status derivation bypasses this filter.
func FilterMessages(messages []model.MessageInfo) []model.MessageInfo {
	filtered := make([]model.MessageInfo, 0, len(messages))
	for _, m := range messages {
		if strings.HasPrefix(m.Tag, autogeneratedPrefix) && m.Tag != autogeneratedPrefix+"user" {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
