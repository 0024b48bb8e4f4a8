package model

// AccountInfo is a Gerrit account as it appears in change owners,
// message authors, label votes and group member lists.
type AccountInfo struct {
	AccountID int    `json:"_account_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
}

// ChangeInfo is the Gerrit change record. Snapshots returned by the
// server are treated as immutable; unknown fields are ignored for
// forward compatibility.
type ChangeInfo struct {
	ID              string                  `json:"id,omitempty"`
	Project         string                  `json:"project,omitempty"`
	Branch          string                  `json:"branch,omitempty"`
	Topic           string                  `json:"topic,omitempty"`
	ChangeID        string                  `json:"change_id,omitempty"`
	Subject         string                  `json:"subject,omitempty"`
	Status          string                  `json:"status,omitempty"` // NEW, MERGED, ABANDONED, DRAFT
	Created         string                  `json:"created,omitempty"`
	Updated         string                  `json:"updated,omitempty"`
	Insertions      int                     `json:"insertions,omitempty"`
	Deletions       int                     `json:"deletions,omitempty"`
	Number          int                     `json:"_number,omitempty"`
	Owner           *AccountInfo            `json:"owner,omitempty"`
	Labels          map[string]LabelInfo    `json:"labels,omitempty"`
	CurrentRevision string                  `json:"current_revision,omitempty"`
	Revisions       map[string]RevisionInfo `json:"revisions,omitempty"`
	Messages        []MessageInfo           `json:"messages,omitempty"`
	WorkInProgress  bool                    `json:"work_in_progress,omitempty"`
	Submittable     bool                    `json:"submittable,omitempty"`
}

// LabelInfo describes the state of one review label on a change.
type LabelInfo struct {
	Optional    bool              `json:"optional,omitempty"`
	Blocking    bool              `json:"blocking,omitempty"`
	Approved    *AccountInfo      `json:"approved,omitempty"`
	Rejected    *AccountInfo      `json:"rejected,omitempty"`
	Recommended *AccountInfo      `json:"recommended,omitempty"`
	Disliked    *AccountInfo      `json:"disliked,omitempty"`
	Value       int               `json:"value,omitempty"`
	All         []ApprovalInfo    `json:"all,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
}

// ApprovalInfo is one account's vote on a label.
type ApprovalInfo struct {
	AccountInfo
	Value int    `json:"value,omitempty"`
	Date  string `json:"date,omitempty"`
}

// RevisionInfo describes one patchset of a change.
type RevisionInfo struct {
	Number int         `json:"_number,omitempty"`
	Ref    string      `json:"ref,omitempty"`
	Commit *CommitInfo `json:"commit,omitempty"`
}

// CommitInfo carries the commit metadata of a revision.
type CommitInfo struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// MessageInfo is one entry in a change's message timeline. Messages
// whose Tag begins with "autogenerated:" are hidden from user-facing
// views but kept for build-status derivation.
type MessageInfo struct {
	ID             string       `json:"id,omitempty"`
	Author         *AccountInfo `json:"author,omitempty"`
	Date           string       `json:"date,omitempty"`
	Message        string       `json:"message,omitempty"`
	Tag            string       `json:"tag,omitempty"`
	RevisionNumber int          `json:"_revision_number,omitempty"`
}

// ProjectInfo describes a project. Name is filled in client-side from
// the map key of the projects endpoint.
type ProjectInfo struct {
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
}

// GroupInfo describes a group. Name is filled in client-side when the
// server returns groups keyed by name.
type GroupInfo struct {
	Name        string        `json:"name,omitempty"`
	ID          string        `json:"id,omitempty"`
	GroupID     int           `json:"group_id,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
	Owner       string        `json:"owner,omitempty"`
	Members     []AccountInfo `json:"members,omitempty"`
}

// FileInfo describes one file of a revision. Path is filled in
// client-side from the map key of the files endpoint.
type FileInfo struct {
	Path          string `json:"path,omitempty"`
	Status        string `json:"status,omitempty"`
	Binary        bool   `json:"binary,omitempty"`
	LinesInserted int    `json:"lines_inserted,omitempty"`
	LinesDeleted  int    `json:"lines_deleted,omitempty"`
	SizeDelta     int64  `json:"size_delta,omitempty"`
	Size          int64  `json:"size,omitempty"`
}

// DiffContent is one hunk of a file diff: lines common to both sides
// (AB), or present only on side A or B.
type DiffContent struct {
	A  []string `json:"a,omitempty"`
	B  []string `json:"b,omitempty"`
	AB []string `json:"ab,omitempty"`
}

// DiffInfo is the diff of one file between two revisions.
type DiffInfo struct {
	ChangeType string        `json:"change_type,omitempty"`
	Content    []DiffContent `json:"content,omitempty"`
	Binary     bool          `json:"binary,omitempty"`
}

// CommentInput is a draft inline comment attached to a review.
type CommentInput struct {
	Line       int    `json:"line,omitempty"`
	Message    string `json:"message,omitempty"`
	Unresolved *bool  `json:"unresolved,omitempty"`
}

// ReviewInput is the body of a set-review call.
type ReviewInput struct {
	Message  string                    `json:"message,omitempty"`
	Labels   map[string]int            `json:"labels,omitempty"`
	Comments map[string][]CommentInput `json:"comments,omitempty"`
}

// ReviewerInput is the body of an add-reviewer call.
type ReviewerInput struct {
	Reviewer string `json:"reviewer"`
	State    string `json:"state,omitempty"`
	Notify   string `json:"notify,omitempty"`
}

// ReviewerResult reports the outcome of one reviewer addition or
// removal when a command operates on several reviewers at once.
type ReviewerResult struct {
	Reviewer string `json:"reviewer"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}
