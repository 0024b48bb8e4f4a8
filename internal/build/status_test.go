package build

import (
	"testing"

	"ger/internal/model"
)

func msg(date, text string, rev int) model.MessageInfo {
	return model.MessageInfo{Date: date, Message: text, RevisionNumber: rev}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		messages []model.MessageInfo
		notFound bool
		want     State
	}{
		{
			name:     "not found wins",
			messages: []model.MessageInfo{msg("2024-03-01 11:00:00.000000000", "Build Started", 1)},
			notFound: true,
			want:     NotFound,
		},
		{
			name:     "no messages",
			messages: nil,
			want:     Pending,
		},
		{
			name: "no build started",
			messages: []model.MessageInfo{
				msg("2024-03-01 10:00:00.000000000", "Uploaded patch set 1.", 1),
				msg("2024-03-01 10:05:00.000000000", "Patch Set 1: Code-Review+1", 1),
			},
			want: Pending,
		},
		{
			name: "started, no verification yet",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started https://ci.example.com/7", 2),
			},
			want: Running,
		},
		{
			name: "success on same patchset",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started https://ci.example.com/7", 2),
				msg("2024-03-01 11:15:00.000000000", "Patch Set 2: Verified+1\n\nBuild Successful", 2),
			},
			want: Success,
		},
		{
			name: "failure on same patchset",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started https://ci.example.com/8", 2),
				msg("2024-03-01 11:23:00.000000000", "Patch Set 2: Verified-1\n\nBuild Failed", 2),
			},
			want: Failure,
		},
		{
			// A verification for an older patchset that arrives after the
			// latest start must not be taken as that build's outcome.
			name: "superseded patchset verification ignored",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:12:00.000000000", "Build Started https://ci.example.com/1", 2),
				msg("2024-03-01 11:23:00.000000000", "Patch Set 2: Verified-1\n\nBuild Failed", 2),
				msg("2024-03-01 13:57:00.000000000", "Build Started https://ci.example.com/2", 3),
				msg("2024-03-01 14:02:00.000000000", "Build Started https://ci.example.com/3", 4),
				msg("2024-03-01 14:03:00.000000000", "Patch Set 3: Verified-1\n\nBuild Failed", 3),
			},
			want: Running,
		},
		{
			name: "verification at exactly the start time is not after it",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started", 2),
				msg("2024-03-01 11:00:00.000000000", "Patch Set 2: Verified+1", 2),
			},
			want: Running,
		},
		{
			name: "unsigned verified value counts as positive",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started", 2),
				msg("2024-03-01 11:01:00.000000000", "Patch Set 2: Verified 1", 2),
			},
			want: Success,
		},
		{
			name: "free-form verify text does not match",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started", 2),
				msg("2024-03-01 11:01:00.000000000", "please verify this gets +1 soon", 2),
			},
			want: Running,
		},
		{
			name: "start without revision number accepts any verification",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build  Started", 0),
				msg("2024-03-01 11:05:00.000000000", "Patch Set 5: Verified+2", 5),
			},
			want: Success,
		},
		{
			name: "first verification after the start decides",
			messages: []model.MessageInfo{
				msg("2024-03-01 11:00:00.000000000", "Build Started", 2),
				msg("2024-03-01 11:05:00.000000000", "Patch Set 2: Verified-1", 2),
				msg("2024-03-01 11:30:00.000000000", "Patch Set 2: Verified+1", 2),
			},
			want: Failure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.messages, tt.notFound)
			if got != tt.want {
				t.Errorf("Derive = %v, want %v", got, tt.want)
			}
			// Pure function: repeated invocation agrees.
			if again := Derive(tt.messages, tt.notFound); again != got {
				t.Errorf("Derive not deterministic: %v then %v", got, again)
			}
		})
	}
}

func TestFilterMessages(t *testing.T) {
	in := []model.MessageInfo{
		{Message: "keep: no tag"},
		{Message: "drop: CI", Tag: "autogenerated:ci"},
		{Message: "keep: user", Tag: "autogenerated:user"},
		{Message: "drop: gerrit", Tag: "autogenerated:gerrit:merged"},
		{Message: "keep: other tag", Tag: "mailbot"},
	}
	out := FilterMessages(in)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(out), out)
	}
	for _, m := range out {
		if m.Message[:4] != "keep" {
			t.Errorf("unexpected message kept: %+v", m)
		}
	}
}
