package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rtvm/rtvm/src/internal/config"
	"github.com/rtvm/rtvm/src/internal/platform"
)

// ScratchPrefix marks in-progress install directories in the storage root
const ScratchPrefix = ".install-"

// Layout locates a runtime's files on disk.
//
//	<Root>/<version>/...    one directory per installed version
//	<Root>/current          active-version symlink or marker file
//	<LinkDir>/<binary>      per-binary links or copies
type Layout struct {
	Root     string
	LinkDir  string
	Runtime  Runtime
	Platform platform.Platform
}

// NewLayout returns the layout for rt on p under the configured rtvm paths
func NewLayout(rt Runtime, p platform.Platform) Layout {
	paths := config.DefaultPaths()
	return Layout{
		Root:     config.RuntimeRoot(rt.Name()),
		LinkDir:  paths.LinkDir,
		Runtime:  rt,
		Platform: p,
	}
}

// VersionDir returns the directory a version is installed into
func (l Layout) VersionDir(version string) string {
	return filepath.Join(l.Root, version)
}

// BinDir returns the executables directory of an installed version
func (l Layout) BinDir(version string) string {
	dir := l.VersionDir(version)
	if sub := l.Runtime.BinDir(l.Platform); sub != "" {
		dir = filepath.Join(dir, sub)
	}
	return dir
}

// ExecutablePath returns the primary executable of an installed version
func (l Layout) ExecutablePath(version string) string {
	return filepath.Join(l.BinDir(version), l.Runtime.Executable(l.Platform))
}

// CurrentPath returns the active-version entry
func (l Layout) CurrentPath() string {
	return filepath.Join(l.Root, config.CurrentEntryName)
}

// IsInstalled reports whether the version directory exists
func (l Layout) IsInstalled(version string) (bool, error) {
	info, err := os.Stat(l.VersionDir(version))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// EnsureRoot creates the storage root
func (l Layout) EnsureRoot() error {
	if err := os.MkdirAll(l.Root, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", l.Root, err)
	}
	return nil
}

// ListInstalled returns installed version names in ascending semver order.
// The active entry, scratch directories and stray files are skipped.
func (l Layout) ListInstalled() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	type named struct {
		name string
		v    *semver.Version
	}
	var found []named
	for _, entry := range entries {
		name := entry.Name()
		if name == config.CurrentEntryName || strings.HasPrefix(name, ScratchPrefix) {
			continue
		}
		if !entry.IsDir() {
			continue
		}
		v, err := semver.StrictNewVersion(name)
		if err != nil {
			continue
		}
		found = append(found, named{name: name, v: v})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].v.LessThan(found[j].v)
	})

	versions := make([]string, len(found))
	for i, n := range found {
		versions[i] = n.name
	}
	return versions, nil
}
