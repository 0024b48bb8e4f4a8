package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ger/internal/config"
	"ger/internal/gerrit"
	"ger/internal/ident"
	"ger/internal/render"
)

func testApp(t *testing.T, handler http.Handler) (*App, *strings.Builder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var out strings.Builder
	app := NewApp(render.JSON, &out, &strings.Builder{})
	app.cfg = &config.Config{Host: srv.URL, Username: "alice", Password: "pw"}
	app.client = gerrit.New(app.cfg)
	return app, &out
}

func TestExtractLabelArgs(t *testing.T) {
	labels, rest := extractLabelArgs([]string{"12345", "--label", "Code-Review", "2", "--message", "hi", "--label", "Verified", "1"})
	wantLabels := []string{"Code-Review", "2", "Verified", "1"}
	if len(labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", labels, wantLabels)
	}
	for i := range wantLabels {
		if labels[i] != wantLabels[i] {
			t.Fatalf("labels = %v, want %v", labels, wantLabels)
		}
	}
	wantRest := []string{"12345", "--message", "hi"}
	if len(rest) != len(wantRest) {
		t.Fatalf("rest = %v, want %v", rest, wantRest)
	}
}

func TestBuildLabels(t *testing.T) {
	labels, err := buildLabels("2", "-1", []string{"Custom-Label", "1"})
	if err != nil {
		t.Fatalf("buildLabels: %v", err)
	}
	if labels["Code-Review"] != 2 || labels["Verified"] != -1 || labels["Custom-Label"] != 1 {
		t.Errorf("labels = %v", labels)
	}

	var invalid *ident.InvalidInputError
	if _, err := buildLabels("", "", []string{"Code-Review"}); !errors.As(err, &invalid) {
		t.Errorf("odd label count: err = %v, want InvalidInputError", err)
	}
	if _, err := buildLabels("two", "", nil); !errors.As(err, &invalid) {
		t.Errorf("non-integer vote: err = %v, want InvalidInputError", err)
	}
}

func TestNormalizeNotify(t *testing.T) {
	for in, want := range map[string]string{
		"":                "",
		"none":            "NONE",
		"Owner":           "OWNER",
		"OWNER_REVIEWERS": "OWNER_REVIEWERS",
		"all":             "ALL",
	} {
		got, err := normalizeNotify(in)
		if err != nil || got != want {
			t.Errorf("normalizeNotify(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	var invalid *ident.InvalidInputError
	if _, err := normalizeNotify("everyone"); !errors.As(err, &invalid) {
		t.Errorf("normalizeNotify(everyone): err = %v, want InvalidInputError", err)
	}
}

func TestRemoveReviewerPartialFailure(t *testing.T) {
	app, out := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bob") {
			http.Error(w, "bob is not a reviewer", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	err := app.RemoveReviewer(context.Background(), []string{"12345", "alice@x.io", "bob@x.io"})
	if err != nil {
		t.Fatalf("RemoveReviewer: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, `"status": "partial_failure"`) {
		t.Errorf("report missing partial_failure status:\n%s", got)
	}
	if !strings.Contains(got, `"reviewer": "alice@x.io"`) || !strings.Contains(got, `"reviewer": "bob@x.io"`) {
		t.Errorf("report missing per-reviewer results:\n%s", got)
	}
}

func TestBuildStatusNotFound(t *testing.T) {
	app, out := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found: 99999", http.StatusNotFound)
	}))

	// A 404 is a valid answer, not an error.
	if err := app.BuildStatus(context.Background(), []string{"99999"}); err != nil {
		t.Fatalf("BuildStatus: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != `{"state":"not_found"}` {
		t.Errorf("output = %q", got)
	}
}

func TestBuildStatusDerivesFromMessages(t *testing.T) {
	body := `)]}'
{
  "_number": 12345,
  "messages": [
    {"date": "2024-03-01 11:00:00.000000000", "message": "Build Started https://ci/7", "_revision_number": 2},
    {"date": "2024-03-01 11:15:00.000000000", "message": "Patch Set 2: Verified+1", "_revision_number": 2}
  ]
}`
	app, out := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	if err := app.BuildStatus(context.Background(), []string{"12345"}); err != nil {
		t.Fatalf("BuildStatus: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != `{"state":"success"}` {
		t.Errorf("output = %q", got)
	}
}

func TestGroupsUsage(t *testing.T) {
	app, _ := testApp(t, http.NotFoundHandler())
	err := app.Groups(context.Background(), []string{"frobnicate"})
	if !IsUsageError(err) {
		t.Errorf("Groups(frobnicate): err = %v, want usage error", err)
	}
	err = app.Groups(context.Background(), []string{"show"})
	if !IsUsageError(err) {
		t.Errorf("Groups(show): err = %v, want usage error", err)
	}
}
