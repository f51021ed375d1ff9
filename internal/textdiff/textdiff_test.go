package textdiff

import (
	"reflect"
	"testing"

	"github.com/satyamtg/git-ai/internal/lineset"
)

func TestHunks(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
		want    []lineset.Hunk
	}{
		{
			name:    "identical",
			oldText: "a\nb\n",
			newText: "a\nb\n",
			want:    nil,
		},
		{
			name:    "all_new",
			oldText: "",
			newText: "x\ny\nz\n",
			want:    []lineset.Hunk{{OldStart: 0, OldLines: 0, NewStart: 1, NewLines: 3}},
		},
		{
			name:    "all_deleted",
			oldText: "x\ny\n",
			newText: "",
			want:    []lineset.Hunk{{OldStart: 1, OldLines: 2, NewStart: 0, NewLines: 0}},
		},
		{
			name:    "replace_middle",
			oldText: "a\nb\nc\n",
			newText: "a\nB\nc\n",
			want:    []lineset.Hunk{{OldStart: 2, OldLines: 1, NewStart: 2, NewLines: 1}},
		},
		{
			name:    "insert_middle",
			oldText: "a\nb\n",
			newText: "a\nx\ny\nb\n",
			want:    []lineset.Hunk{{OldStart: 1, OldLines: 0, NewStart: 2, NewLines: 2}},
		},
		{
			name:    "append_at_end",
			oldText: "a\nb\n",
			newText: "a\nb\nc\n",
			want:    []lineset.Hunk{{OldStart: 2, OldLines: 0, NewStart: 3, NewLines: 1}},
		},
		{
			name:    "delete_head",
			oldText: "a\nb\nc\n",
			newText: "b\nc\n",
			want:    []lineset.Hunk{{OldStart: 1, OldLines: 1, NewStart: 0, NewLines: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hunks(tt.oldText, tt.newText)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hunks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAddedLines(t *testing.T) {
	got := AddedLines("a\nb\nc\n", "a\nX\nY\nc\nd\n")
	if got.String() != "2-3,5" {
		t.Errorf("AddedLines = %q, want \"2-3,5\"", got)
	}
	if !AddedLines("same\n", "same\n").IsEmpty() {
		t.Error("AddedLines on identical blobs should be empty")
	}
}

func TestReprojectThroughComputedDiff(t *testing.T) {
	// Attribution on lines 1-3 of the old blob; an edit inserts a line at the
	// top and rewrites old line 3.
	oldText := "one\ntwo\nthree\n"
	newText := "zero\none\ntwo\nTHREE\n"
	r := lineset.FromRange(1, 3)
	got := r.Reproject(Hunks(oldText, newText))
	if got.String() != "2-3" {
		t.Errorf("reprojected = %q, want \"2-3\"", got)
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
	}
	for _, tt := range tests {
		if got := LineCount(tt.text); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
