package util

import (
	"os"

	"golang.org/x/term"
)

// InTerminal determines whether we're running in a terminal or not.
func InTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
