// Package config manages rtvm configuration including paths and settings
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rtvm/rtvm/src/internal/constants"
)

// AppName is the product directory name under the user data root
const AppName = "rtvm"

// CurrentEntryName is the active-version link (POSIX) or marker (Windows)
// inside a runtime's storage root
const CurrentEntryName = "current"

// ConfigFileName is the settings file name (without extension)
const ConfigFileName = "config"

// Paths holds all important rtvm directory paths
type Paths struct {
	Root    string // Product root (<data-root>/rtvm)
	LinkDir string // Directory expected on PATH holding per-binary links or copies
	Config  string // Config directory (<user-config-dir>/rtvm)
}

var (
	defaultPaths *Paths
	pathsOnce    sync.Once
)

// DefaultPaths returns the default rtvm paths.
// This function is thread-safe and guarantees single initialization.
func DefaultPaths() *Paths {
	pathsOnce.Do(func() {
		defaultPaths = initPaths(Current())
	})
	return defaultPaths
}

// initPaths initializes the paths from settings, filling in platform defaults
func initPaths(s *Settings) *Paths {
	root := s.Root
	if root == "" {
		root = filepath.Join(dataDir(), AppName)
	}

	linkDir := s.LinkDir
	if linkDir == "" {
		linkDir = defaultLinkDir(root)
	}

	return &Paths{
		Root:    root,
		LinkDir: linkDir,
		Config:  ConfigDir(),
	}
}

// dataDir returns the per-user data directory for the current platform
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		home = "."
	}

	switch runtime.GOOS {
	case constants.OSWindows:
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData
		}
		return filepath.Join(home, "AppData", "Roaming")
	case constants.OSDarwin:
		return filepath.Join(home, "Library", "Application Support")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return xdg
		}
		return filepath.Join(home, ".local", "share")
	}
}

// defaultLinkDir returns ~/.local/bin on POSIX and <root>/bin on Windows
func defaultLinkDir(root string) string {
	if runtime.GOOS == constants.OSWindows {
		return filepath.Join(root, "bin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(root, "bin")
	}
	return filepath.Join(home, ".local", "bin")
}

// ConfigDir returns the rtvm config directory. RTVM_CONFIG_DIR overrides it.
func ConfigDir() string {
	if dir := os.Getenv("RTVM_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(base, AppName)
}

// RuntimeRoot returns the storage root for a runtime (<root>/<runtime>)
func RuntimeRoot(runtimeName string) string {
	return filepath.Join(DefaultPaths().Root, runtimeName)
}

// RuntimeVersionPath returns the path to a specific runtime version
func RuntimeVersionPath(runtimeName, version string) string {
	return filepath.Join(RuntimeRoot(runtimeName), version)
}

// EnsureDirectories creates the product root and link directory
func EnsureDirectories() error {
	paths := DefaultPaths()
	for _, dir := range []string{paths.Root, paths.LinkDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ResetPathsCache resets the cached paths and settings, forcing
// reinitialization on next access. This is primarily useful for testing.
func ResetPathsCache() {
	ResetSettingsCache()
	pathsOnce = sync.Once{}
	defaultPaths = nil
}
