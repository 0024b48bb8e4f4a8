package model

// ChangeDetail is the presentation record for a single change: the
// snapshot plus its user-visible message timeline and, when computed,
// a derived build state.
type ChangeDetail struct {
	Change     *ChangeInfo   `json:"change"`
	Messages   []MessageInfo `json:"messages,omitempty"`
	BuildState string        `json:"build_state,omitempty"`
}

// ActionResult is the outcome of a simple mutating command.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReviewerReport is the per-reviewer outcome of a command that
// operates on several reviewers; Status is success, partial_failure
// or error.
type ReviewerReport struct {
	Status  string           `json:"status"`
	Results []ReviewerResult `json:"results"`
}

// BuildStatusResult is the single-field record printed by the
// build-status command.
type BuildStatusResult struct {
	State string `json:"state"`
}
