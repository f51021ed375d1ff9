package hook

import (
	"bufio"
	"io"
	"strings"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/rewrite"
)

// HandlePostRewrite consumes git's post-rewrite hook: one "old new" pair per
// stdin line, with the operation name ("amend" or "rebase") as argument. It
// builds the commit mapping and re-emits authorship notes.
func HandlePostRewrite(c *Context, operation string, r io.Reader) error {
	if c == nil {
		return nil
	}

	var pairs []rewrite.Pair
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		pairs = append(pairs, rewrite.Pair{Old: fields[0], New: fields[1]})
	}
	if len(pairs) == 0 {
		return nil
	}

	engine := rewrite.NewEngine(c.Repo, c.Notes, func(format string, args ...any) {
		c.Log.Debugf(format, args...)
	})

	// git fires post-commit before post-rewrite on an amend, so the
	// replacement commit may already carry a note holding the freshly folded
	// work. Transport the original's log explicitly and merge that note on
	// top (its entries are later, so they win), instead of relying on the
	// batch path whose idempotence check would skip the commit entirely.
	if operation == "amend" && len(pairs) == 1 {
		transported, err := engine.TransportEdit(pairs[0].Old, pairs[0].New)
		if err != nil {
			c.Log.Errorf("post-rewrite: amend transport: %v", err)
			return nil
		}
		if transported == nil {
			return nil
		}
		if data, ok, err := c.Notes.Get(notes.Authorship, pairs[0].New); err == nil && ok {
			if folded, err := authorship.Parse(data); err == nil {
				// The folded note's counters already accumulate over
				// history; its records replace rather than add.
				for _, f := range folded.Attestations {
					for _, e := range f.Entries {
						transported.Append(f.Path, e.Hash, e.Lines)
					}
				}
				for hash, rec := range folded.Metadata.Prompts {
					transported.Metadata.Prompts[hash] = rec.Clone()
				}
			}
		}
		transported.Compact()
		transported.RecountAccepted()
		if transported.IsEmpty() {
			return nil
		}
		data, err := transported.Emit()
		if err != nil {
			c.Log.Errorf("post-rewrite: amend emit: %v", err)
			return nil
		}
		if err := c.Notes.Put(notes.Authorship, pairs[0].New, data); err != nil {
			c.Log.Errorf("post-rewrite: amend note write: %v", err)
		}
		return nil
	}

	mapping, err := rewrite.BuildMapping(pairs, nil, operation == "amend")
	if err != nil {
		c.Log.Errorf("post-rewrite: %v", err)
		return nil
	}
	if err := engine.Apply(mapping); err != nil {
		c.Log.Errorf("post-rewrite: %v", err)
		return nil
	}
	c.Log.Infof("post-rewrite: processed %d pair(s) for %s", len(pairs), operation)
	return nil
}
