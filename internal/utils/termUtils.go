package utils

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// DetectTerminalWidth tries to get the terminal width, falling back to a default if necessary.
func DetectTerminalWidth(fallback int) int {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) {
		w, _, err := term.GetSize(int(fd))
		if err == nil && w >= 80 {
			return w
		}
	}
	return fallback
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// MaxNameLen calculates the max length for the "Name" column given terminal width and other column widths.
func MaxNameLen(termWidth, idCol, valueCol, borders int) int {
	maxNameLen := termWidth - (idCol + valueCol + borders)
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	return maxNameLen
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
