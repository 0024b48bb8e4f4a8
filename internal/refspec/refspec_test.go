package refspec

import (
	"errors"
	"regexp"
	"testing"

	"ger/internal/ident"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		opts   Options
		want   string
	}{
		{
			name:   "no options",
			branch: "main",
			want:   "refs/for/main",
		},
		{
			name:   "full option set in fixed order",
			branch: "main",
			opts: Options{
				Topic:     "auth-refactor",
				WIP:       true,
				Reviewers: []string{"alice@x.io"},
				CC:        []string{"m@x.io"},
				Hashtags:  []string{"security"},
			},
			want: "refs/for/main%topic=auth-refactor,wip,r=alice@x.io,cc=m@x.io,hashtag=security",
		},
		{
			name:   "wip and draft collapse to one token",
			branch: "main",
			opts:   Options{WIP: true, Draft: true},
			want:   "refs/for/main%wip",
		},
		{
			name:   "draft alone still emits wip",
			branch: "release-2.1",
			opts:   Options{Draft: true},
			want:   "refs/for/release-2.1%wip",
		},
		{
			name:   "ready and private",
			branch: "main",
			opts:   Options{Ready: true, Private: true},
			want:   "refs/for/main%ready,private",
		},
		{
			name:   "topic is url encoded",
			branch: "main",
			opts:   Options{Topic: "fix bug"},
			want:   "refs/for/main%topic=fix+bug",
		},
		{
			name:   "multiple reviewers keep order",
			branch: "main",
			opts:   Options{Reviewers: []string{"a@x.io", "b@y.io"}},
			want:   "refs/for/main%r=a@x.io,r=b@y.io",
		},
	}

	shape := regexp.MustCompile(`^refs/for/[^%]+(%[^,]+(,[^,]+)*)?$`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.branch, tt.opts)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got != tt.want {
				t.Errorf("Build = %q, want %q", got, tt.want)
			}
			if !shape.MatchString(got) {
				t.Errorf("Build = %q does not match the refspec shape", got)
			}
		})
	}
}

func TestBuildValidation(t *testing.T) {
	var inv *ident.InvalidInputError

	_, err := Build("", Options{})
	if !errors.As(err, &inv) {
		t.Errorf("empty branch: err = %v, want InvalidInputError", err)
	}

	_, err = Build("main", Options{Reviewers: []string{"not-an-email"}})
	if !errors.As(err, &inv) {
		t.Fatalf("bad reviewer: err = %v, want InvalidInputError", err)
	}
	if inv.Field != "reviewer" || inv.Value != "not-an-email" {
		t.Errorf("error names %q=%q, want reviewer=not-an-email", inv.Field, inv.Value)
	}

	_, err = Build("main", Options{CC: []string{"a b@x.io"}})
	if !errors.As(err, &inv) || inv.Field != "cc" {
		t.Errorf("bad cc: err = %v, want cc InvalidInputError", err)
	}
}
