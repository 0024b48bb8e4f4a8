package ident

import (
	"strings"
	"testing"
)

func TestNormalizeChangeID(t *testing.T) {
	hex40 := strings.Repeat("0123456789", 4)
	tests := []struct {
		in   string
		kind Kind
		want string
		ok   bool
	}{
		{"12345", Number, "12345", true},
		{"  12345  ", Number, "12345", true},
		{"0", Number, "0", true},
		{"I" + hex40, ChangeID, "I" + hex40, true},
		{"\tI" + hex40 + "\n", ChangeID, "I" + hex40, true},
		{"", 0, "", false},
		{"12a45", 0, "", false},
		{"-12345", 0, "", false},
		{"I" + hex40[:39], 0, "", false},          // too short
		{"I" + hex40 + "0", 0, "", false},         // too long
		{"i" + hex40, 0, "", false},               // lowercase prefix
		{"I" + strings.ToUpper(hex40[:39]) + "G", 0, "", false}, // non-hex
	}
	for _, tt := range tests {
		id, err := NormalizeChangeID(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("NormalizeChangeID(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if !tt.ok {
			var inv *InvalidInputError
			if !asInvalid(err, &inv) {
				t.Errorf("NormalizeChangeID(%q) error type = %T, want *InvalidInputError", tt.in, err)
			}
			continue
		}
		if id.Kind != tt.kind || id.Value != tt.want {
			t.Errorf("NormalizeChangeID(%q) = {%v %q}, want {%v %q}", tt.in, id.Kind, id.Value, tt.kind, tt.want)
		}
	}
}

func asInvalid(err error, target **InvalidInputError) bool {
	v, ok := err.(*InvalidInputError)
	if ok {
		*target = v
	}
	return ok
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"gerrit.example.com", "https://gerrit.example.com", true},
		{"https://gerrit.example.com", "https://gerrit.example.com", true},
		{"https://gerrit.example.com/", "https://gerrit.example.com", true},
		{"http://gerrit.example.com//", "http://gerrit.example.com", true},
		{"https://gerrit.example.com/r", "https://gerrit.example.com/r", true},
		{"", "", false},
		{"   ", "", false},
		{"https://", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeHost(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("NormalizeHost(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("NormalizeHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.ok && strings.HasSuffix(got, "/") {
			t.Errorf("NormalizeHost(%q) = %q has trailing slash", tt.in, got)
		}
	}
}

func TestIsFetchRefspec(t *testing.T) {
	valid := []string{"refs/changes/45/12345/3", "refs/changes/01/1/1"}
	invalid := []string{
		"refs/changes/45/12345",
		"refs/changes/45/12345/3/extra",
		"refs/heads/main",
		"refs/changes/45/12345/3; rm -rf /",
		"refs/changes/xx/12345/3",
		"",
	}
	for _, s := range valid {
		if !IsFetchRefspec(s) {
			t.Errorf("IsFetchRefspec(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsFetchRefspec(s) {
			t.Errorf("IsFetchRefspec(%q) = true, want false", s)
		}
	}
}

func TestIsRemoteName(t *testing.T) {
	for _, s := range []string{"origin", "up-stream", "my_remote.2"} {
		if !IsRemoteName(s) {
			t.Errorf("IsRemoteName(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "ori gin", "origin;ls", "rem/ote", "$(date)"} {
		if IsRemoteName(s) {
			t.Errorf("IsRemoteName(%q) = true, want false", s)
		}
	}
}

func TestChangeIDFromMessage(t *testing.T) {
	hex40 := strings.Repeat("abcdef0123", 4)
	msg := "feat: add retries\n\nLonger body.\n\nChange-Id: I" + hex40 + "\n"
	id, err := ChangeIDFromMessage(msg)
	if err != nil {
		t.Fatalf("ChangeIDFromMessage: %v", err)
	}
	if id.Value != "I"+hex40 {
		t.Errorf("got %q, want %q", id.Value, "I"+hex40)
	}

	if _, err := ChangeIDFromMessage("feat: no trailer here\n"); err == nil {
		t.Fatal("expected error for message without Change-Id trailer")
	} else if got := err.Error(); got != "No Change-ID found in HEAD commit" {
		t.Errorf("error = %q", got)
	}
}
