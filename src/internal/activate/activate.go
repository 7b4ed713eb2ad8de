// Package activate switches which installed version is on the search path.
//
// Two strategies exist. The symlink strategy (POSIX default) points
// <storage-root>/current at <version>/bin and keeps one symlink per binary in
// the link directory. The copy strategy (Windows default) copies the runtime
// executable into the link directory and records the version in a marker file
// at <storage-root>/current.
package activate

import (
	"errors"
	"fmt"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/runtime"
)

// Activator changes and reports the active version
type Activator interface {
	// Activate makes version the active one, replacing any previous activation
	Activate(version string) error
	// Deactivate clears the active state if version is the active one
	Deactivate(version string) error
	// Current returns the active version; ok is false when none is set
	Current() (version string, ok bool, err error)
}

// NotInstalledError is returned when activating a version with no directory
type NotInstalledError struct {
	Version string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("version %s is not installed", e.Version)
}

// IsNotInstalled checks if an error reports a missing version
func IsNotInstalled(err error) bool {
	var target *NotInstalledError
	return errors.As(err, &target)
}

// New returns the activator for mode: auto, symlink or copy
func New(layout runtime.Layout, mode string) (Activator, error) {
	switch mode {
	case constants.ActivationAuto, "":
		if layout.Platform.IsWindows() {
			return NewCopyActivator(layout), nil
		}
		return NewSymlinkActivator(layout), nil
	case constants.ActivationSymlink:
		return NewSymlinkActivator(layout), nil
	case constants.ActivationCopy:
		return NewCopyActivator(layout), nil
	default:
		return nil, fmt.Errorf("unknown activation mode: %s", mode)
	}
}

func requireInstalled(layout runtime.Layout, version string) error {
	installed, err := layout.IsInstalled(version)
	if err != nil {
		return err
	}
	if !installed {
		return &NotInstalledError{Version: version}
	}
	return nil
}
