package output

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultTerminalWidth is used when the width cannot be detected
const DefaultTerminalWidth = 80

// TerminalWidth returns configured when positive, otherwise the width of f
// if it is a terminal, then $COLUMNS, then DefaultTerminalWidth
func TerminalWidth(configured int, f *os.File) int {
	size := func() (int, bool) {
		if f == nil {
			return 0, false
		}
		w, _, err := term.GetSize(int(f.Fd()))
		return w, err == nil
	}
	return detectWidth(configured, size, os.Getenv)
}

func detectWidth(configured int, size func() (int, bool), getenv func(string) string) int {
	if configured > 0 {
		return configured
	}
	if w, ok := size(); ok && w > 0 {
		return w
	}
	if cols, err := strconv.Atoi(strings.TrimSpace(getenv("COLUMNS"))); err == nil && cols > 0 {
		return cols
	}
	return DefaultTerminalWidth
}

// ColorsSupported reports whether f is a terminal and the environment does
// not ask for plain output (NO_COLOR, CLICOLOR=0)
func ColorsSupported(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}
	return !termenv.EnvNoColor()
}
