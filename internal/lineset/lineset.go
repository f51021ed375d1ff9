package lineset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Range is an inclusive span of 1-based line numbers.
type Range struct {
	Start int
	End   int
}

// Len returns the number of lines covered by the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Contains returns true if the line number falls inside the range.
func (r Range) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// Set is a set of 1-based line numbers held in normal form: ranges sorted
// by start, disjoint, with adjacent ranges fused. The zero value is the
// empty set. It serializes to compact notation like "5,7-8,12".
type Set struct {
	ranges []Range
}

// New builds a Set from individual line numbers.
func New(lines ...int) Set {
	sorted := append([]int(nil), lines...)
	sort.Ints(sorted)
	var rs []Range
	for _, n := range sorted {
		if n <= 0 {
			continue
		}
		if len(rs) > 0 && n <= rs[len(rs)-1].End+1 {
			if n > rs[len(rs)-1].End {
				rs[len(rs)-1].End = n
			}
			continue
		}
		rs = append(rs, Range{Start: n, End: n})
	}
	return Set{ranges: rs}
}

// FromRange builds a Set covering the contiguous span [start, end].
func FromRange(start, end int) Set {
	if start <= 0 || end < start {
		return Set{}
	}
	return Set{ranges: []Range{{Start: start, End: end}}}
}

// FromRanges builds a normal-form Set from arbitrary ranges.
func FromRanges(ranges ...Range) Set {
	var s Set
	for _, r := range ranges {
		s = s.Union(FromRange(r.Start, r.End))
	}
	return s
}

// Parse reads compact notation like "5", "5-7", or "5,7-8,12".
// Tokens must be ascending and non-overlapping; no whitespace is allowed
// inside the spec. An empty string is the empty set.
func Parse(s string) (Set, error) {
	if s == "" {
		return Set{}, nil
	}
	var rs []Range
	prevEnd := 0
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			return Set{}, fmt.Errorf("empty token in range spec %q", s)
		}
		var start, end int
		if idx := strings.Index(tok, "-"); idx >= 0 {
			var err error
			start, err = strconv.Atoi(tok[:idx])
			if err != nil {
				return Set{}, fmt.Errorf("invalid range start %q: %w", tok[:idx], err)
			}
			end, err = strconv.Atoi(tok[idx+1:])
			if err != nil {
				return Set{}, fmt.Errorf("invalid range end %q: %w", tok[idx+1:], err)
			}
			if end < start {
				return Set{}, fmt.Errorf("invalid range %d-%d", start, end)
			}
		} else {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return Set{}, fmt.Errorf("invalid line number %q: %w", tok, err)
			}
			start, end = n, n
		}
		if start <= 0 {
			return Set{}, fmt.Errorf("line numbers are 1-based, got %d", start)
		}
		if start <= prevEnd {
			return Set{}, fmt.Errorf("tokens out of order or overlapping at %q", tok)
		}
		rs = append(rs, Range{Start: start, End: end})
		prevEnd = end
	}
	// Input tokens may be strictly ascending yet adjacent; fuse into normal form.
	return Set{ranges: fuse(rs)}, nil
}

// String returns the compact notation: "5,7-8,12". Empty set is "".
func (s Set) String() string {
	if len(s.ranges) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.ranges))
	for _, r := range s.ranges {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
	}
	return strings.Join(parts, ",")
}

// IsEmpty returns true if the set contains no lines.
func (s Set) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Len returns the number of lines in the set.
func (s Set) Len() int {
	n := 0
	for _, r := range s.ranges {
		n += r.Len()
	}
	return n
}

// Ranges returns the normal-form ranges.
func (s Set) Ranges() []Range {
	return s.ranges
}

// Lines expands the set to sorted individual line numbers.
func (s Set) Lines() []int {
	var lines []int
	for _, r := range s.ranges {
		for n := r.Start; n <= r.End; n++ {
			lines = append(lines, n)
		}
	}
	return lines
}

// Min returns the smallest line number, or 0 if empty.
func (s Set) Min() int {
	if len(s.ranges) == 0 {
		return 0
	}
	return s.ranges[0].Start
}

// Max returns the largest line number, or 0 if empty.
func (s Set) Max() int {
	if len(s.ranges) == 0 {
		return 0
	}
	return s.ranges[len(s.ranges)-1].End
}

// Contains returns true if the given line number is in the set.
func (s Set) Contains(line int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End >= line
	})
	return i < len(s.ranges) && s.ranges[i].Contains(line)
}

// Union returns the set of lines in s or t.
func (s Set) Union(t Set) Set {
	merged := make([]Range, 0, len(s.ranges)+len(t.ranges))
	merged = append(merged, s.ranges...)
	merged = append(merged, t.ranges...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Start < merged[j].Start
	})
	return Set{ranges: fuse(merged)}
}

// Subtract returns the set of lines in s but not in t.
func (s Set) Subtract(t Set) Set {
	var out []Range
	for _, r := range s.ranges {
		segs := []Range{r}
		for _, cut := range t.ranges {
			var next []Range
			for _, seg := range segs {
				if cut.End < seg.Start || cut.Start > seg.End {
					next = append(next, seg)
					continue
				}
				if cut.Start > seg.Start {
					next = append(next, Range{Start: seg.Start, End: cut.Start - 1})
				}
				if cut.End < seg.End {
					next = append(next, Range{Start: cut.End + 1, End: seg.End})
				}
			}
			segs = next
		}
		out = append(out, segs...)
	}
	return Set{ranges: fuse(out)}
}

// Intersect returns the set of lines in both s and t.
func (s Set) Intersect(t Set) Set {
	var out []Range
	i, j := 0, 0
	for i < len(s.ranges) && j < len(t.ranges) {
		a, b := s.ranges[i], t.ranges[j]
		start := a.Start
		if b.Start > start {
			start = b.Start
		}
		end := a.End
		if b.End < end {
			end = b.End
		}
		if start <= end {
			out = append(out, Range{Start: start, End: end})
		}
		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return Set{ranges: fuse(out)}
}

// Shift moves every line by delta. Lines shifted to zero or below drop out.
func (s Set) Shift(delta int) Set {
	var out []Range
	for _, r := range s.ranges {
		start, end := r.Start+delta, r.End+delta
		if end <= 0 {
			continue
		}
		if start <= 0 {
			start = 1
		}
		out = append(out, Range{Start: start, End: end})
	}
	return Set{ranges: fuse(out)}
}

// Equal reports whether two sets contain the same lines.
func (s Set) Equal(t Set) bool {
	if len(s.ranges) != len(t.ranges) {
		return false
	}
	for i := range s.ranges {
		if s.ranges[i] != t.ranges[i] {
			return false
		}
	}
	return true
}

// fuse sorts nothing: input must already be ordered by start. It drops empty
// ranges and merges overlapping or adjacent neighbors.
func fuse(rs []Range) []Range {
	var out []Range
	for _, r := range rs {
		if r.Start <= 0 || r.End < r.Start {
			continue
		}
		if len(out) > 0 && r.Start <= out[len(out)-1].End+1 {
			if r.End > out[len(out)-1].End {
				out[len(out)-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
