package lineset

// Hunk describes one span of a line-level diff between two blob states.
// OldStart/OldLines address the pre-image, NewStart/NewLines the post-image.
// An insertion has OldLines == 0; a deletion has NewLines == 0.
type Hunk struct {
	OldStart int `json:"old_start"`
	OldLines int `json:"old_lines"`
	NewStart int `json:"new_start"`
	NewLines int `json:"new_lines"`
}

// Delta returns the net line-count change introduced by the hunk.
func (h Hunk) Delta() int {
	return h.NewLines - h.OldLines
}

// Reproject transports the set from the pre-image numbering to the
// post-image numbering of the given diff. Hunks must be ordered by OldStart.
//
//   - A line outside every hunk's old span moves by the cumulative delta of
//     the hunks before it.
//   - A line inside a hunk's old span is removed: that old line no longer
//     exists in the post-image.
//   - Lines a hunk adds are never introduced into the result; they belong to
//     whoever authored the hunk.
func (s Set) Reproject(hunks []Hunk) Set {
	if len(hunks) == 0 {
		return s
	}
	var out []int
	for _, line := range s.Lines() {
		delta := 0
		dead := false
		for _, h := range hunks {
			if h.OldLines > 0 && line >= h.OldStart && line <= h.OldStart+h.OldLines-1 {
				dead = true
				break
			}
			// For a pure insertion, OldStart is the line the new content is
			// inserted after; lines at OldStart+1 and beyond shift down.
			if h.OldLines == 0 {
				if line > h.OldStart {
					delta += h.NewLines
				}
				continue
			}
			if line > h.OldStart+h.OldLines-1 {
				delta += h.Delta()
			}
		}
		if !dead {
			out = append(out, line+delta)
		}
	}
	return New(out...)
}

// AddedLines returns the post-image line numbers that the diff introduces or
// rewrites: every line covered by a hunk's new span.
func AddedLines(hunks []Hunk) Set {
	var s Set
	for _, h := range hunks {
		if h.NewLines == 0 {
			continue
		}
		s = s.Union(FromRange(h.NewStart, h.NewStart+h.NewLines-1))
	}
	return s
}

// RemovedLines returns the pre-image line numbers that the diff deletes or
// rewrites: every line covered by a hunk's old span.
func RemovedLines(hunks []Hunk) Set {
	var s Set
	for _, h := range hunks {
		if h.OldLines == 0 {
			continue
		}
		s = s.Union(FromRange(h.OldStart, h.OldStart+h.OldLines-1))
	}
	return s
}
