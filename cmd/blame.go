package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/format"
	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/project"
	"github.com/satyamtg/git-ai/internal/promptdb"
	"github.com/satyamtg/git-ai/internal/textdiff"
)

// RunBlame renders per-line AI attribution for a file at HEAD.
func RunBlame(args []string) {
	fs := flag.NewFlagSet("blame", flag.ExitOnError)
	lineSpec := fs.String("L", "", "Line number or range (42 or 10,20)")
	verbose := fs.Bool("v", false, "Show model and counters per attributed line")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: git-ai blame [-L <line>[,<line>]] [-v] <file>")
	}
	fs.Parse(args)

	file := fs.Arg(0)
	if file == "" {
		fs.Usage()
		os.Exit(1)
	}

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)
	rel := project.RelPath(file, root)

	log, anchorSHA, err := latestLogForPath(root, rel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	headBlob, err := git.ShowFile(root, "HEAD", rel)
	if err != nil || headBlob == "" {
		fmt.Fprintf(os.Stderr, "Error: %s not found at HEAD\n", rel)
		os.Exit(1)
	}

	// The snapshot is anchored on the commit it was written for; transport
	// it onto the HEAD blob before rendering.
	perLine := map[int]string{}
	records := map[string]*authorship.PromptRecord{}
	if log != nil {
		anchorBlob, _ := git.ShowFile(root, anchorSHA, rel)
		hunks := textdiff.Hunks(anchorBlob, headBlob)
		for hash, owned := range log.EffectiveLines(rel) {
			for _, n := range owned.Reproject(hunks).Lines() {
				perLine[n] = hash
			}
			records[hash] = log.Metadata.Prompts[hash]
		}
		hydrateFromPromptDB(paths.PromptDB, records)
	}

	start, end := 1, textdiff.LineCount(headBlob)
	if *lineSpec != "" {
		if s, e, err := parseLineSpec(*lineSpec); err == nil {
			start, end = s, e
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	lines := strings.Split(strings.TrimSuffix(headBlob, "\n"), "\n")
	var out []format.BlameLine
	for n := start; n <= end && n <= len(lines); n++ {
		hash := perLine[n]
		out = append(out, format.BlameLine{
			Number: n,
			Text:   lines[n-1],
			Hash:   hash,
			Record: records[hash],
		})
	}
	fmt.Print(format.RenderBlame(out, *verbose))
}

// latestLogForPath finds the newest commit whose authorship note mentions
// the path; its snapshot is the authoritative attribution state.
func latestLogForPath(root, rel string) (*authorship.Log, string, error) {
	store := notes.NewStore(root)

	cmd := exec.Command("git", "log", "--format=%H", "--", rel)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, "", fmt.Errorf("git log -- %s: %w", rel, err)
	}
	for _, sha := range strings.Fields(string(out)) {
		data, ok, err := store.Get(notes.Authorship, sha)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			continue
		}
		log, err := authorship.Parse(data)
		if err != nil {
			return nil, "", err
		}
		if log.File(rel) != nil {
			return log, sha, nil
		}
	}
	return nil, "", nil
}

// hydrateFromPromptDB fills in transcripts stripped from notes when the
// local prompt database still has them.
func hydrateFromPromptDB(dbPath string, records map[string]*authorship.PromptRecord) {
	db, err := promptdb.Open(dbPath)
	if err != nil {
		return
	}
	defer db.Close()
	for hash, rec := range records {
		if rec == nil || len(rec.Messages) > 0 {
			continue
		}
		if full, err := db.Get(hash); err == nil && full != nil {
			rec.Messages = full.Messages
		}
	}
}

func parseLineSpec(spec string) (int, int, error) {
	parts := strings.SplitN(spec, ",", 2)
	var start, end int
	if _, err := fmt.Sscanf(parts[0], "%d", &start); err != nil {
		return 0, 0, fmt.Errorf("invalid line spec %q", spec)
	}
	end = start
	if len(parts) == 2 {
		if _, err := fmt.Sscanf(parts[1], "%d", &end); err != nil {
			return 0, 0, fmt.Errorf("invalid line spec %q", spec)
		}
	}
	if start <= 0 || end < start {
		return 0, 0, fmt.Errorf("invalid line spec %q", spec)
	}
	return start, end, nil
}
