package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/format"
	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/project"
)

// RunShow prints the authorship note attached to a commit.
func RunShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	raw := fs.Bool("raw", false, "Print the note verbatim instead of a summary")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: git-ai show [--raw] [<commit>]")
	}
	fs.Parse(args)

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	rev := fs.Arg(0)
	if rev == "" {
		rev = "HEAD"
	}
	sha, err := git.RevParse(root, rev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	data, ok, err := notes.NewStore(root).Get(notes.Authorship, sha)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "No authorship note for %s\n", sha)
		os.Exit(1)
	}

	if *raw {
		os.Stdout.Write(data)
		return
	}

	log, err := authorship.Parse(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("%scommit %s%s\n", format.Bold, sha, format.Reset)
	for _, f := range log.Attestations {
		fmt.Println(f.Path)
		for _, e := range f.Entries {
			fmt.Printf("  %s %s\n", e.Hash, e.Lines)
		}
	}
	fmt.Print(format.Summary(log))
}
