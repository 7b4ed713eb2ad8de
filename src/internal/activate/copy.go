package activate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/ui"
)

// CopyActivator activates versions by copying the runtime executable into
// the link directory and recording the version in a marker file
type CopyActivator struct {
	Layout runtime.Layout

	// EnsurePath, when set, is called with the link directory after each
	// activation so it can be added to the user's PATH
	EnsurePath func(dir string) error
}

// NewCopyActivator creates a copy activator for layout
func NewCopyActivator(layout runtime.Layout) *CopyActivator {
	return &CopyActivator{Layout: layout}
}

func (a *CopyActivator) linkedExecutable() string {
	return filepath.Join(a.Layout.LinkDir, a.Layout.Runtime.Executable(a.Layout.Platform))
}

// Activate copies version's executable over the linked one, then records it
func (a *CopyActivator) Activate(version string) error {
	if err := requireInstalled(a.Layout, version); err != nil {
		return err
	}

	if err := os.MkdirAll(a.Layout.LinkDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", a.Layout.LinkDir, err)
	}

	src := a.Layout.ExecutablePath(version)
	dst := a.linkedExecutable()
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	ui.Debug("Copied %s -> %s", src, dst)

	if err := writeFileAtomic(a.Layout.CurrentPath(), []byte(version)); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Layout.CurrentPath(), err)
	}

	if a.EnsurePath != nil {
		if err := a.EnsurePath(a.Layout.LinkDir); err != nil {
			return fmt.Errorf("failed to add %s to PATH: %w", a.Layout.LinkDir, err)
		}
	}
	return nil
}

// Deactivate removes the copied executable and marker when version is active
func (a *CopyActivator) Deactivate(version string) error {
	current, ok, err := a.Current()
	if err != nil {
		return err
	}
	if !ok || current != version {
		return nil
	}

	if err := os.Remove(a.linkedExecutable()); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(a.Layout.CurrentPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	ui.Debug("Cleared active version %s", version)
	return nil
}

// Current reads the marker file
func (a *CopyActivator) Current() (string, bool, error) {
	data, err := os.ReadFile(a.Layout.CurrentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", false, nil
	}
	return version, true, nil
}
