package ui

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var (
	verboseMode atomic.Bool
	debugSymbol = "•"

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "rtvm",
		Level:  log.InfoLevel,
	})
)

// SetVerbose turns debug output on or off
func SetVerbose(verbose bool) {
	verboseMode.Store(verbose)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// IsVerbose reports whether debug output is enabled
func IsVerbose() bool {
	return verboseMode.Load()
}

// CheckVerboseEnv enables verbose mode when RTVM_VERBOSE is "1" or "true"
func CheckVerboseEnv() {
	value := strings.TrimSpace(os.Getenv("RTVM_VERBOSE"))
	if value == "1" || strings.EqualFold(value, "true") {
		SetVerbose(true)
	}
}

// Debug prints a diagnostic message when verbose mode is on.
// Safe for concurrent use by install workers.
func Debug(format string, args ...interface{}) {
	if !IsVerbose() {
		return
	}
	logger.Debugf(debugSymbol+" "+format, args...)
}
