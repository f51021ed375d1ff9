package format

import (
	"os"

	"golang.org/x/term"
)

// ANSI escape codes used across the CLI output.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"
	Red   = "\033[31m"
	Green = "\033[32m"
	Cyan  = "\033[36m"
)

// TermWidth returns the terminal width, defaulting to 100 when stdout is not
// a terminal.
func TermWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 100
	}
	return w
}
