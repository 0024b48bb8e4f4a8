package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("GERRIT_HOST", "gerrit.example.com")
	t.Setenv("GERRIT_USERNAME", "alice")
	t.Setenv("GERRIT_PASSWORD", "s3cret")

	c, ok := fromEnv()
	if !ok {
		t.Fatal("fromEnv: expected credentials")
	}
	c, err := normalize(c)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if c.Host != "https://gerrit.example.com" {
		t.Errorf("host = %q", c.Host)
	}

	// Any empty variable disqualifies the environment source.
	t.Setenv("GERRIT_PASSWORD", "")
	if _, ok := fromEnv(); ok {
		t.Error("fromEnv: expected rejection with empty GERRIT_PASSWORD")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if _, err := loadFile(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: err = %v, want ErrNotFound", err)
	}

	write := func(s string) {
		if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	write(`{"host":"gerrit.example.com/","username":"alice","password":"pw","aiTool":"claude"}`)
	c, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if c.Host != "https://gerrit.example.com" || c.Username != "alice" || c.AITool != "claude" {
		t.Errorf("loadFile = %+v", c)
	}
	if !c.AutoDetect() {
		t.Error("AutoDetect should default to true")
	}

	var invalid *InvalidError

	write(`{"host":"gerrit.example.com","username":"alice"}`)
	if _, err := loadFile(path); !errors.As(err, &invalid) {
		t.Errorf("missing password: err = %v, want InvalidError", err)
	}

	write(`not json`)
	if _, err := loadFile(path); !errors.As(err, &invalid) {
		t.Errorf("malformed file: err = %v, want InvalidError", err)
	}
}
