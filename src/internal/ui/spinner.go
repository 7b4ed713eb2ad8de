package ui

import (
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps briandowns/spinner with the status line colors
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner showing message. It draws on the error
// stream so stdout stays clean for piped output such as `rtvm list`.
func NewSpinner(message string) *Spinner {
	outMu.Lock()
	w := stderr
	outMu.Unlock()

	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+message),
		spinner.WithWriter(w),
	)
	return &Spinner{spinner: s}
}

// Start starts the spinner
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner without printing anything
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Success stops the spinner and prints a success line
func (s *Spinner) Success(message string) {
	s.spinner.Stop()
	levelSuccess.print("%s", message)
}

// Error stops the spinner and prints an error line
func (s *Spinner) Error(message string) {
	s.spinner.Stop()
	levelError.print("%s", message)
}

// WithSpinner runs fn while a spinner is shown and stops it silently on
// completion. Callers report the outcome themselves.
func WithSpinner(message string, fn func() error) error {
	s := NewSpinner(message)
	s.Start()
	defer s.Stop()
	return fn()
}
