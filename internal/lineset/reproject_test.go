package lineset

import "testing"

func TestReproject(t *testing.T) {
	tests := []struct {
		name  string
		set   string
		hunks []Hunk
		want  string
	}{
		{
			name: "identity_diff",
			set:  "1-3,7",
			want: "1-3,7",
		},
		{
			name: "insertion_above_shifts_down",
			set:  "5-7",
			// Two lines inserted after line 2.
			hunks: []Hunk{{OldStart: 2, OldLines: 0, NewStart: 3, NewLines: 2}},
			want:  "7-9",
		},
		{
			name: "insertion_below_no_shift",
			set:  "1-3",
			hunks: []Hunk{
				{OldStart: 10, OldLines: 0, NewStart: 11, NewLines: 4},
			},
			want: "1-3",
		},
		{
			name: "insertion_at_boundary_preserves_existing",
			set:  "3",
			// Insertion after line 3: line 3 itself stays put.
			hunks: []Hunk{{OldStart: 3, OldLines: 0, NewStart: 4, NewLines: 1}},
			want:  "3",
		},
		{
			name: "deletion_drops_covered_lines",
			set:  "1-5",
			// Lines 2-3 deleted.
			hunks: []Hunk{{OldStart: 2, OldLines: 2, NewStart: 1, NewLines: 0}},
			want:  "1-3",
		},
		{
			name: "rewrite_removes_old_lines",
			set:  "1-5",
			// Lines 2-4 replaced by one new line; added line is not in R.
			hunks: []Hunk{{OldStart: 2, OldLines: 3, NewStart: 2, NewLines: 1}},
			want:  "1,3",
		},
		{
			name: "multiple_hunks_cumulative_delta",
			set:  "1,5,10",
			hunks: []Hunk{
				{OldStart: 2, OldLines: 0, NewStart: 3, NewLines: 2}, // +2 after line 2
				{OldStart: 7, OldLines: 2, NewStart: 9, NewLines: 0}, // -2 at lines 7-8
			},
			want: "1,7,10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.set)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.set, err)
			}
			got := s.Reproject(tt.hunks)
			want, err := Parse(tt.want)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.want, err)
			}
			if !got.Equal(want) {
				t.Errorf("Reproject(%q) = %q, want %q", tt.set, got, want)
			}
		})
	}
}

func TestAddedRemovedLines(t *testing.T) {
	hunks := []Hunk{
		{OldStart: 2, OldLines: 2, NewStart: 2, NewLines: 3},
		{OldStart: 9, OldLines: 0, NewStart: 10, NewLines: 1},
	}
	if got := AddedLines(hunks).String(); got != "2-4,10" {
		t.Errorf("AddedLines = %q", got)
	}
	if got := RemovedLines(hunks).String(); got != "2-3" {
		t.Errorf("RemovedLines = %q", got)
	}
}
