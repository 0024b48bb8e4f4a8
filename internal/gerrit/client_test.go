package gerrit

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ger/internal/config"
	"ger/internal/ident"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&config.Config{Host: srv.URL, Username: "alice", Password: "pw"})
}

func TestStripXSSI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{")]}'\n{\"a\":1}", "{\"a\":1}"},
		{")]}'{\"a\":1}", "{\"a\":1}"},
		{"{\"a\":1}", "{\"a\":1}"},
		{")]}'", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(stripXSSI([]byte(tt.in))); got != tt.want {
			t.Errorf("stripXSSI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCallFraming(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "pw" {
			t.Errorf("missing or wrong basic auth: %q %q", user, pass)
		}
		switch r.URL.Path {
		case "/a/guarded":
			w.Write([]byte(")]}'\n{\"name\":\"x\"}"))
		case "/a/bare":
			w.Write([]byte("{\"name\":\"x\"}"))
		case "/a/empty":
			w.Write([]byte("  \n"))
		case "/a/garbage":
			w.Write([]byte(")]}'\nnot json"))
		default:
			http.NotFound(w, r)
		}
	}))

	var got struct {
		Name string `json:"name"`
	}
	for _, path := range []string{"/guarded", "/bare"} {
		got.Name = ""
		if err := c.call(context.Background(), http.MethodGet, path, nil, nil, &got); err != nil {
			t.Fatalf("call(%s): %v", path, err)
		}
		if got.Name != "x" {
			t.Errorf("call(%s): name = %q, want x", path, got.Name)
		}
	}

	got.Name = "unchanged"
	if err := c.call(context.Background(), http.MethodGet, "/empty", nil, nil, &got); err != nil {
		t.Fatalf("call(/empty): %v", err)
	}
	if got.Name != "unchanged" {
		t.Error("empty body must leave the target untouched")
	}

	err := c.call(context.Background(), http.MethodGet, "/garbage", nil, nil, &got)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid JSON response" {
		t.Errorf("call(/garbage): err = %v, want invalid JSON response", err)
	}
}

func TestCallErrorStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "change not found", http.StatusNotFound)
	}))

	err := c.call(context.Background(), http.MethodGet, "/changes/999", nil, nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}
	if !NotFound(err) {
		t.Error("NotFound(err) = false, want true")
	}
}

func TestCallText(t *testing.T) {
	content := "line one\nline two\n"
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Gerrit wraps base64 bodies across lines.
		enc := base64.StdEncoding.EncodeToString([]byte(content))
		w.Write([]byte(enc[:10] + "\n" + enc[10:] + "\n"))
	}))

	got, err := c.callText(context.Background(), "/patch", nil)
	if err != nil {
		t.Fatalf("callText: %v", err)
	}
	if string(got) != content {
		t.Errorf("callText = %q, want %q", got, content)
	}
}

func TestProjectsSorted(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a/projects/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(")]}'\n{\"zeta\":{\"id\":\"zeta\"},\"alpha\":{\"id\":\"alpha\"},\"mid\":{\"id\":\"mid\"}}"))
	}))

	projects, err := c.Projects(context.Background(), "")
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	var names []string
	for _, p := range projects {
		names = append(names, p.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("project order = %v, want %v", names, want)
		}
	}
}

func TestQueryChangesDefaultsToOpen(t *testing.T) {
	var gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(")]}'\n[]"))
	}))

	if _, err := c.QueryChanges(context.Background(), "  "); err != nil {
		t.Fatalf("QueryChanges: %v", err)
	}
	if gotQuery != "is:open" {
		t.Errorf("q = %q, want is:open", gotQuery)
	}
}

func TestTopicNotFoundMapping(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	}))

	id, _ := ident.NormalizeChangeID("12345")
	_, err := c.Topic(context.Background(), id)
	if !NotFound(err) {
		t.Errorf("Topic err = %v, want a 404 APIError", err)
	}
}

func TestTestConnection(t *testing.T) {
	ok := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(")]}'\n{\"_account_id\":7,\"username\":\"alice\"}"))
	}))
	if !ok.TestConnection(context.Background()) {
		t.Error("TestConnection = false, want true")
	}

	bad := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	if bad.TestConnection(context.Background()) {
		t.Error("TestConnection = true, want false")
	}
}
