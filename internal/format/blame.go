package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/satyamtg/git-ai/internal/authorship"
)

// BlameLine is one rendered line of git-ai blame output.
type BlameLine struct {
	Number int
	Text   string
	Hash   string // session hash, "" for human lines
	Record *authorship.PromptRecord
}

// RenderBlame renders per-line attribution for a file. AI lines carry the
// agent tool, model, and short session hash; human lines stay plain.
func RenderBlame(lines []BlameLine, verbose bool) string {
	width := TermWidth()
	var b strings.Builder
	for _, l := range lines {
		label := strings.Repeat(" ", 24)
		if l.Hash != "" {
			tool := "ai"
			if l.Record != nil {
				tool = l.Record.AgentID.Tool
			}
			label = fmt.Sprintf("%s%-16s%s %s%.7s%s", Cyan, tool, Reset, Dim, l.Hash, Reset)
		}
		text := l.Text
		if max := width - 32; max > 10 && len(text) > max {
			text = text[:max-1] + "…"
		}
		fmt.Fprintf(&b, "%s %s%4d%s %s\n", label, Dim, l.Number, Reset, text)
		if verbose && l.Hash != "" && l.Record != nil {
			fmt.Fprintf(&b, "%s%24s model=%s accepted=%d overridden=%d%s\n",
				Dim, "", l.Record.AgentID.Model, l.Record.AcceptedLines, l.Record.OverridenLines, Reset)
		}
	}
	return b.String()
}

// Summary renders the per-session totals of one authorship log.
func Summary(log *authorship.Log) string {
	if len(log.Metadata.Prompts) == 0 {
		return Dim + "no AI attribution" + Reset + "\n"
	}
	hashes := make([]string, 0, len(log.Metadata.Prompts))
	for hash := range log.Metadata.Prompts {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var b strings.Builder
	for _, hash := range hashes {
		rec := log.Metadata.Prompts[hash]
		fmt.Fprintf(&b, "%s%s%s %s (%s): +%d -%d accepted %d overridden %d\n",
			Bold, hash[:7], Reset, rec.AgentID.Tool, rec.AgentID.Model,
			rec.TotalAdditions, rec.TotalDeletions, rec.AcceptedLines, rec.OverridenLines)
	}
	return b.String()
}
