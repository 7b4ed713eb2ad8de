package activate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/ui"
)

// SymlinkActivator activates versions through a current symlink plus a
// per-binary link farm
type SymlinkActivator struct {
	Layout runtime.Layout
}

// NewSymlinkActivator creates a symlink activator for layout
func NewSymlinkActivator(layout runtime.Layout) *SymlinkActivator {
	return &SymlinkActivator{Layout: layout}
}

// Activate tears down the previous activation, then links version in
func (a *SymlinkActivator) Activate(version string) error {
	if err := requireInstalled(a.Layout, version); err != nil {
		return err
	}

	if err := a.teardown(); err != nil {
		return fmt.Errorf("failed to clear previous activation: %w", err)
	}

	binDir := a.Layout.BinDir(version)
	if err := os.Symlink(binDir, a.Layout.CurrentPath()); err != nil {
		return fmt.Errorf("failed to link %s: %w", a.Layout.CurrentPath(), err)
	}
	ui.Debug("Linked %s -> %s", a.Layout.CurrentPath(), binDir)

	if err := os.MkdirAll(a.Layout.LinkDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", a.Layout.LinkDir, err)
	}

	names, err := findExecutables(binDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", binDir, err)
	}

	for _, name := range names {
		if err := a.link(filepath.Join(binDir, name), filepath.Join(a.Layout.LinkDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (a *SymlinkActivator) link(target, link string) error {
	info, err := os.Lstat(link)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		// Only links into the storage root are ours to replace
		if !a.ownsLink(link) {
			ui.Warning("Skipping %s: a symlink owned by something else is in the way", link)
			return nil
		}
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("failed to replace %s: %w", link, err)
		}
	case err == nil:
		ui.Warning("Skipping %s: a file that is not a symlink is in the way", link)
		return nil
	case !os.IsNotExist(err):
		return err
	}

	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("failed to link %s: %w", link, err)
	}
	ui.Debug("Linked %s -> %s", link, target)
	return nil
}

// ownsLink reports whether the symlink at link points into the storage root
func (a *SymlinkActivator) ownsLink(link string) bool {
	target, err := os.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	return isWithin(filepath.Clean(target), a.Layout.Root)
}

// Deactivate removes the links and current entry when version is active
func (a *SymlinkActivator) Deactivate(version string) error {
	current, ok, err := a.Current()
	if err != nil {
		return err
	}
	if !ok || current != version {
		return nil
	}
	return a.teardown()
}

// Current reads the version out of the current symlink's target
func (a *SymlinkActivator) Current() (string, bool, error) {
	target, err := a.currentTarget()
	if err != nil || target == "" {
		return "", false, err
	}

	rel, err := filepath.Rel(a.Layout.Root, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false, fmt.Errorf("%s points outside %s: %s", a.Layout.CurrentPath(), a.Layout.Root, target)
	}
	version := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return version, true, nil
}

// currentTarget returns the absolute target of current, or "" when unset
func (a *SymlinkActivator) currentTarget() (string, error) {
	path := a.Layout.CurrentPath()
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", fmt.Errorf("%s is not a symlink; was it written by the copy activation mode?", path)
	}

	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// teardown removes every link-dir symlink pointing into the current target,
// then current itself. The link directory is scanned rather than the target,
// which may already be gone.
func (a *SymlinkActivator) teardown() error {
	target, err := a.currentTarget()
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	// Links point at files under the version directory, which is the
	// parent of the bin directory current targets
	versionDir := target
	if a.Layout.Runtime.BinDir(a.Layout.Platform) != "" {
		versionDir = filepath.Dir(target)
	}

	if err := removeLinksInto(a.Layout.LinkDir, versionDir); err != nil {
		return err
	}

	if err := os.Remove(a.Layout.CurrentPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	ui.Debug("Removed %s", a.Layout.CurrentPath())
	return nil
}

func removeLinksInto(linkDir, dir string) error {
	entries, err := os.ReadDir(linkDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var errs []error
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		link := filepath.Join(linkDir, entry.Name())
		target, err := os.Readlink(link)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(linkDir, target)
		}
		if !isWithin(filepath.Clean(target), dir) {
			continue
		}
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		ui.Debug("Removed %s", link)
	}
	return errors.Join(errs...)
}
