package gerrit

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"ger/internal/ident"
	"ger/internal/model"
)

// Change fetches one change with its current revision and commit.
func (c *Client) Change(ctx context.Context, id ident.Identifier) (*model.ChangeInfo, error) {
	q := url.Values{"o": []string{"CURRENT_REVISION", "CURRENT_COMMIT"}}
	var info model.ChangeInfo
	if err := c.call(ctx, http.MethodGet, "/changes/"+url.PathEscape(id.Value), q, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ChangeWithMessages fetches a change with its full message timeline,
// autogenerated messages included.
func (c *Client) ChangeWithMessages(ctx context.Context, id ident.Identifier) (*model.ChangeInfo, error) {
	q := url.Values{"o": []string{"MESSAGES", "DETAILED_ACCOUNTS"}}
	var info model.ChangeInfo
	if err := c.call(ctx, http.MethodGet, "/changes/"+url.PathEscape(id.Value), q, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// QueryChanges runs a change query. An empty query defaults to
// "is:open".
func (c *Client) QueryChanges(ctx context.Context, query string) ([]model.ChangeInfo, error) {
	if strings.TrimSpace(query) == "" {
		query = "is:open"
	}
	q := url.Values{
		"q": []string{query},
		"o": []string{"LABELS", "DETAILED_LABELS", "DETAILED_ACCOUNTS", "SUBMITTABLE"},
	}
	var changes []model.ChangeInfo
	if err := c.call(ctx, http.MethodGet, "/changes/", q, nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// Projects lists projects, optionally filtered by a prefix pattern.
// The server returns a map keyed by name; the result is sorted.
func (c *Client) Projects(ctx context.Context, pattern string) ([]model.ProjectInfo, error) {
	q := url.Values{}
	if pattern != "" {
		q.Set("p", pattern)
	}
	byName := map[string]model.ProjectInfo{}
	if err := c.call(ctx, http.MethodGet, "/projects/", q, nil, &byName); err != nil {
		return nil, err
	}
	projects := make([]model.ProjectInfo, 0, len(byName))
	for name, p := range byName {
		p.Name = name
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// Groups lists the groups visible to the caller, sorted by name
// case-insensitively.
func (c *Client) Groups(ctx context.Context) ([]model.GroupInfo, error) {
	byName := map[string]model.GroupInfo{}
	if err := c.call(ctx, http.MethodGet, "/groups/", nil, nil, &byName); err != nil {
		return nil, err
	}
	groups := make([]model.GroupInfo, 0, len(byName))
	for name, g := range byName {
		g.Name = name
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
	return groups, nil
}

// Group fetches the detail record of one group, including members.
func (c *Client) Group(ctx context.Context, name string) (*model.GroupInfo, error) {
	var g model.GroupInfo
	if err := c.call(ctx, http.MethodGet, "/groups/"+url.PathEscape(name)+"/detail", nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GroupMembers lists the members of a group, sorted by username
// case-insensitively.
func (c *Client) GroupMembers(ctx context.Context, name string) ([]model.AccountInfo, error) {
	var members []model.AccountInfo
	if err := c.call(ctx, http.MethodGet, "/groups/"+url.PathEscape(name)+"/members/", nil, nil, &members); err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool {
		return strings.ToLower(members[i].Username) < strings.ToLower(members[j].Username)
	})
	return members, nil
}

// SetReview posts a review (message, label votes, inline comments) on
// the current revision of a change.
func (c *Client) SetReview(ctx context.Context, id ident.Identifier, review model.ReviewInput) error {
	path := "/changes/" + url.PathEscape(id.Value) + "/revisions/current/review"
	return c.call(ctx, http.MethodPost, path, nil, review, nil)
}

type messageBody struct {
	Message string `json:"message,omitempty"`
}

// Abandon abandons a change with an optional message.
func (c *Client) Abandon(ctx context.Context, id ident.Identifier, message string) error {
	return c.changeAction(ctx, id, "abandon", messageBody{Message: message})
}

// Restore restores an abandoned change with an optional message.
func (c *Client) Restore(ctx context.Context, id ident.Identifier, message string) error {
	return c.changeAction(ctx, id, "restore", messageBody{Message: message})
}

// Rebase rebases a change, optionally onto an explicit base revision.
func (c *Client) Rebase(ctx context.Context, id ident.Identifier, base string) error {
	body := struct {
		Base string `json:"base,omitempty"`
	}{Base: base}
	return c.changeAction(ctx, id, "rebase", body)
}

// Submit submits a change.
func (c *Client) Submit(ctx context.Context, id ident.Identifier) error {
	return c.changeAction(ctx, id, "submit", struct{}{})
}

func (c *Client) changeAction(ctx context.Context, id ident.Identifier, action string, body any) error {
	path := "/changes/" + url.PathEscape(id.Value) + "/" + action
	return c.call(ctx, http.MethodPost, path, nil, body, nil)
}

// TestConnection checks that the credentials work. It is the single
// place where a REST failure is downgraded to false.
func (c *Client) TestConnection(ctx context.Context) bool {
	var self model.AccountInfo
	return c.call(ctx, http.MethodGet, "/accounts/self", nil, nil, &self) == nil
}

// Files lists the files of a revision, sorted by path. The server
// returns a map keyed by path.
func (c *Client) Files(ctx context.Context, id ident.Identifier, rev string) ([]model.FileInfo, error) {
	path := "/changes/" + url.PathEscape(id.Value) + "/revisions/" + url.PathEscape(rev) + "/files"
	byPath := map[string]model.FileInfo{}
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &byPath); err != nil {
		return nil, err
	}
	files := make([]model.FileInfo, 0, len(byPath))
	for p, f := range byPath {
		f.Path = p
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Diff fetches the diff of one file in a revision, optionally against
// an explicit base patchset.
func (c *Client) Diff(ctx context.Context, id ident.Identifier, rev, file, base string) (*model.DiffInfo, error) {
	path := "/changes/" + url.PathEscape(id.Value) + "/revisions/" + url.PathEscape(rev) +
		"/files/" + url.PathEscape(file) + "/diff"
	q := url.Values{}
	if base != "" {
		q.Set("base", base)
	}
	var diff model.DiffInfo
	if err := c.call(ctx, http.MethodGet, path, q, nil, &diff); err != nil {
		return nil, err
	}
	return &diff, nil
}

// FileContent fetches the content of one file in a revision. The
// endpoint returns base64 plain text, not JSON.
func (c *Client) FileContent(ctx context.Context, id ident.Identifier, rev, file string) ([]byte, error) {
	path := "/changes/" + url.PathEscape(id.Value) + "/revisions/" + url.PathEscape(rev) +
		"/files/" + url.PathEscape(file) + "/content"
	return c.callText(ctx, path, nil)
}

// Patch fetches the full patch of a revision as base64 plain text.
func (c *Client) Patch(ctx context.Context, id ident.Identifier, rev string) ([]byte, error) {
	path := "/changes/" + url.PathEscape(id.Value) + "/revisions/" + url.PathEscape(rev) + "/patch"
	return c.callText(ctx, path, nil)
}

// AddReviewer adds a reviewer (or CC) to a change.
func (c *Client) AddReviewer(ctx context.Context, id ident.Identifier, reviewer model.ReviewerInput) error {
	path := "/changes/" + url.PathEscape(id.Value) + "/reviewers"
	return c.call(ctx, http.MethodPost, path, nil, reviewer, nil)
}

// RemoveReviewer removes one reviewer from a change.
func (c *Client) RemoveReviewer(ctx context.Context, id ident.Identifier, reviewer, notify string) error {
	path := "/changes/" + url.PathEscape(id.Value) + "/reviewers/" + url.PathEscape(reviewer) + "/delete"
	body := struct {
		Notify string `json:"notify,omitempty"`
	}{Notify: notify}
	return c.call(ctx, http.MethodPost, path, nil, body, nil)
}

// Topic fetches the topic of a change. Callers decide whether a 404
// means "no topic set".
func (c *Client) Topic(ctx context.Context, id ident.Identifier) (string, error) {
	var topic string
	err := c.call(ctx, http.MethodGet, "/changes/"+url.PathEscape(id.Value)+"/topic", nil, nil, &topic)
	return topic, err
}

// SetTopic sets the topic of a change.
func (c *Client) SetTopic(ctx context.Context, id ident.Identifier, topic string) error {
	body := struct {
		Topic string `json:"topic"`
	}{Topic: topic}
	return c.call(ctx, http.MethodPut, "/changes/"+url.PathEscape(id.Value)+"/topic", nil, body, nil)
}

// DeleteTopic removes the topic of a change.
func (c *Client) DeleteTopic(ctx context.Context, id ident.Identifier) error {
	return c.call(ctx, http.MethodDelete, "/changes/"+url.PathEscape(id.Value)+"/topic", nil, nil, nil)
}
