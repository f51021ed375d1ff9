// Package textdiff computes line-level diff hunks between two blob states.
// Hunks use the unified-diff convention: an insertion's OldStart names the
// pre-image line the new content follows (0 for insertion at the top).
package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/satyamtg/git-ai/internal/lineset"
)

// Hunks diffs oldText against newText and returns ordered hunks.
// Identical inputs produce no hunks.
func Hunks(oldText, newText string) []lineset.Hunk {
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var hunks []lineset.Hunk
	oldLine, newLine := 0, 0 // last consumed line on each side

	var pending *lineset.Hunk
	flush := func() {
		if pending != nil {
			hunks = append(hunks, *pending)
			pending = nil
		}
	}
	ensure := func() *lineset.Hunk {
		if pending == nil {
			pending = &lineset.Hunk{OldStart: oldLine + 1, NewStart: newLine + 1}
		}
		return pending
	}

	for _, d := range diffs {
		n := countLines(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLine += n
			newLine += n
		case diffmatchpatch.DiffDelete:
			h := ensure()
			h.OldLines += n
			oldLine += n
		case diffmatchpatch.DiffInsert:
			h := ensure()
			h.NewLines += n
			newLine += n
		}
	}
	flush()

	// Normalize pure insertions and deletions to the unified-diff anchor
	// convention: a zero-length side names the line it follows.
	for i := range hunks {
		if hunks[i].OldLines == 0 {
			hunks[i].OldStart--
		}
		if hunks[i].NewLines == 0 {
			hunks[i].NewStart--
		}
	}
	return hunks
}

// AddedLines returns the new-side lines that the diff between oldText and
// newText introduces or rewrites.
func AddedLines(oldText, newText string) lineset.Set {
	return lineset.AddedLines(Hunks(oldText, newText))
}

// LineCount counts the lines of a blob. A trailing newline does not open a
// final empty line; a non-empty blob without one still counts its last line.
func LineCount(text string) int {
	return countLines(text)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
