package utils

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// SpinnerUtil shows progress for long-running CLI commands. It stays silent
// when stderr is not a terminal.
type SpinnerUtil struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinnerService creates a new spinner service
func NewSpinnerService() *SpinnerUtil {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	return &SpinnerUtil{
		s:       s,
		enabled: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// Start begins the spinner with the given message
func (s *SpinnerUtil) Start(message string) {
	if !s.enabled {
		return
	}
	s.s.Suffix = " " + message
	s.s.Start()
}

// Update replaces the message of a running spinner.
func (s *SpinnerUtil) Update(message string) {
	if !s.enabled {
		return
	}
	s.s.Lock()
	s.s.Suffix = " " + message
	s.s.Unlock()
}

// Stop stops the spinner
func (s *SpinnerUtil) Stop() {
	if s.enabled {
		s.s.Stop()
	}
}

// Success stops the spinner and displays a success message
func (s *SpinnerUtil) Success(message string) {
	s.finish("✓ " + message + "\n")
}

// Error stops the spinner and displays an error message
func (s *SpinnerUtil) Error(message string) {
	s.finish("✗ " + message + "\n")
}

func (s *SpinnerUtil) finish(final string) {
	if !s.enabled {
		os.Stderr.WriteString(final)
		return
	}
	s.s.FinalMSG = final
	s.s.Stop()
}
