// Package ui provides colored console output, spinners, progress bars and
// debug logging for the rtvm commands.
package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// level selects the symbol, color and stream of a status line
type level struct {
	symbol string
	color  *color.Color
	stderr bool
}

var (
	levelSuccess = level{"✓", color.New(color.FgGreen, color.Bold), false}
	levelError   = level{"✗", color.New(color.FgRed, color.Bold), true}
	levelWarning = level{"⚠", color.New(color.FgYellow, color.Bold), true}
	levelInfo    = level{"→", color.New(color.FgCyan), false}

	highlightColor = color.New(color.FgCyan, color.Bold)
	versionColor   = color.New(color.FgMagenta, color.Bold)
	headerColor    = color.New(color.Bold)

	outMu  sync.Mutex
	stdout io.Writer = color.Output
	stderr io.Writer = color.Error
)

// SetOutput redirects status output. A nil writer restores the default
// stream. Returns a function that restores the previous writers.
func SetOutput(out, errOut io.Writer) (restore func()) {
	outMu.Lock()
	defer outMu.Unlock()

	prevOut, prevErr := stdout, stderr
	if out == nil {
		out = color.Output
	}
	if errOut == nil {
		errOut = color.Error
	}
	stdout, stderr = out, errOut
	logger.SetOutput(errOut)

	return func() {
		outMu.Lock()
		stdout, stderr = prevOut, prevErr
		logger.SetOutput(prevErr)
		outMu.Unlock()
	}
}

func (l level) print(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	outMu.Lock()
	defer outMu.Unlock()
	w := stdout
	if l.stderr {
		w = stderr
	}
	_, _ = l.color.Fprintf(w, "%s %s\n", l.symbol, message)
}

// Success prints a green status line with a checkmark
func Success(format string, args ...interface{}) {
	levelSuccess.print(format, args...)
}

// Error prints a red status line to stderr
func Error(format string, args ...interface{}) {
	levelError.print(format, args...)
}

// Warning prints a yellow status line to stderr
func Warning(format string, args ...interface{}) {
	levelWarning.print(format, args...)
}

// Info prints a cyan status line with an arrow
func Info(format string, args ...interface{}) {
	levelInfo.print(format, args...)
}

// Println prints an uncolored line to stdout.
// Used for output meant to be consumed by scripts (current, list).
func Println(format string, args ...interface{}) {
	Printf(format+"\n", args...)
}

// Printf prints uncolored text to stdout without a trailing newline
func Printf(format string, args ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	_, _ = fmt.Fprintf(stdout, format, args...)
}

// Header prints a bold line
func Header(format string, args ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	_, _ = headerColor.Fprintln(stdout, fmt.Sprintf(format, args...))
}

// Highlight returns text in the emphasis color
func Highlight(text string) string {
	return highlightColor.Sprint(text)
}

// HighlightVersion returns a version string in the version color
func HighlightVersion(version string) string {
	return versionColor.Sprint(version)
}
