// Package path provides utilities for PATH environment variable manipulation
package path

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rtvm/rtvm/src/internal/constants"
)

// entries returns the cleaned, non-empty directories on PATH in order
func entries() []string {
	var dirs []string
	for _, p := range filepath.SplitList(os.Getenv("PATH")) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		dirs = append(dirs, filepath.Clean(p))
	}
	return dirs
}

// sameDir compares two directories the way the host filesystem does
func sameDir(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if runtime.GOOS == constants.OSWindows {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// IsInPath checks if a directory is in the system PATH
func IsInPath(dir string) bool {
	return Position(dir) >= 0
}

// Position returns the index of dir on PATH, or -1 when it is absent
func Position(dir string) int {
	for i, p := range entries() {
		if sameDir(p, dir) {
			return i
		}
	}
	return -1
}

// Shadowing returns executables named name that appear on PATH ahead of dir.
// These win lookup over anything placed in dir.
func Shadowing(name, dir string) []string {
	names := []string{name}
	if runtime.GOOS == constants.OSWindows && filepath.Ext(name) == "" {
		names = []string{name + constants.ExtExe, name + ".cmd"}
	}

	var found []string
	for _, p := range entries() {
		if sameDir(p, dir) {
			break
		}
		for _, n := range names {
			candidate := filepath.Join(p, n)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}
	}
	return found
}

// confirm prints a [Y/n] prompt and reports whether the user accepted
func confirm(assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("\nProceed? [Y/n]: ")

	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))

	return response == "" || response == constants.ResponseY || response == constants.ResponseYes
}
