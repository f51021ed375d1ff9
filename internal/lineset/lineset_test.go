package lineset

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "5", want: []int{5}},
		{name: "range", input: "5-7", want: []int{5, 6, 7}},
		{name: "mixed", input: "5,7-8,12", want: []int{5, 7, 8, 12}},
		{name: "single_line_range", input: "3-3", want: []int{3}},
		{name: "invalid_number", input: "abc", wantErr: true},
		{name: "inverted_range", input: "5-3", wantErr: true},
		{name: "zero_line", input: "0", wantErr: true},
		{name: "descending_tokens", input: "7,5", wantErr: true},
		{name: "overlapping_tokens", input: "1-5,3-8", wantErr: true},
		{name: "whitespace_rejected", input: "5, 7", wantErr: true},
		{name: "trailing_comma", input: "5,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Lines(), tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got.Lines(), tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		lines []int
		want  string
	}{
		{name: "empty", lines: nil, want: ""},
		{name: "single", lines: []int{5}, want: "5"},
		{name: "range", lines: []int{5, 6, 7}, want: "5-7"},
		{name: "mixed", lines: []int{5, 7, 8, 12}, want: "5,7-8,12"},
		{name: "all_separate", lines: []int{1, 3, 5}, want: "1,3,5"},
		{name: "two_ranges", lines: []int{1, 2, 3, 7, 8, 9}, want: "1-3,7-9"},
		{name: "unsorted_input", lines: []int{9, 1, 3, 2, 8, 7}, want: "1-3,7-9"},
		{name: "duplicates", lines: []int{4, 4, 5}, want: "4-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.lines...)
			if got := s.String(); got != tt.want {
				t.Errorf("New(%v).String() = %q, want %q", tt.lines, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"5", "5-7", "5,7-8,12", "1,3,5", "1-3,7-9"}
	for _, in := range inputs {
		s, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if got := s.String(); got != in {
			t.Errorf("round-trip failed: Parse(%q).String() = %q", in, got)
		}
	}
}

// naive applies the same operation over expanded int sets, the reference
// semantics the range representation must agree with.
func naive(op string, a, b []int) []int {
	inB := map[int]bool{}
	for _, n := range b {
		inB[n] = true
	}
	var out []int
	switch op {
	case "union":
		seen := map[int]bool{}
		for _, n := range append(append([]int(nil), a...), b...) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	case "subtract":
		for _, n := range a {
			if !inB[n] {
				out = append(out, n)
			}
		}
	case "intersect":
		for _, n := range a {
			if inB[n] {
				out = append(out, n)
			}
		}
	}
	return out
}

func TestSetOpsAgainstNaive(t *testing.T) {
	cases := []struct {
		name string
		a, b []int
	}{
		{name: "disjoint", a: []int{1, 2, 3}, b: []int{7, 8}},
		{name: "overlap", a: []int{1, 2, 3, 4, 5}, b: []int{3, 4, 5, 6}},
		{name: "contained", a: []int{1, 10}, b: []int{1, 2, 3, 9, 10, 11}},
		{name: "identical", a: []int{4, 5, 6}, b: []int{4, 5, 6}},
		{name: "empty_a", a: nil, b: []int{1}},
		{name: "empty_b", a: []int{1}, b: nil},
		{name: "split_middle", a: []int{1, 2, 3, 4, 5, 6, 7}, b: []int{4}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			sa, sb := New(tt.a...), New(tt.b...)
			for _, op := range []string{"union", "subtract", "intersect"} {
				var got Set
				switch op {
				case "union":
					got = sa.Union(sb)
				case "subtract":
					got = sa.Subtract(sb)
				case "intersect":
					got = sa.Intersect(sb)
				}
				want := New(naive(op, tt.a, tt.b)...)
				if !got.Equal(want) {
					t.Errorf("%s(%v, %v) = %q, want %q", op, tt.a, tt.b, got, want)
				}
				// Outputs must always be in normal form: re-normalizing from
				// expanded lines must be a no-op.
				if !got.Equal(New(got.Lines()...)) {
					t.Errorf("%s result %q not in normal form", op, got)
				}
			}
		})
	}
}

func TestShift(t *testing.T) {
	s := New(3, 4, 5, 10)
	if got := s.Shift(2).String(); got != "5-7,12" {
		t.Errorf("Shift(+2) = %q", got)
	}
	if got := s.Shift(-2).String(); got != "1-3,8" {
		t.Errorf("Shift(-2) = %q", got)
	}
	// Lines shifted off the top of the file drop out.
	if got := s.Shift(-4).String(); got != "1,6" {
		t.Errorf("Shift(-4) = %q", got)
	}
}

func TestContains(t *testing.T) {
	s := New(1, 2, 3, 7, 8, 9)
	for _, n := range []int{1, 3, 7, 9} {
		if !s.Contains(n) {
			t.Errorf("Contains(%d) = false", n)
		}
	}
	for _, n := range []int{0, 4, 6, 10} {
		if s.Contains(n) {
			t.Errorf("Contains(%d) = true", n)
		}
	}
}
