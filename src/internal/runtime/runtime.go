// Package runtime defines the runtime descriptor interface, the registry of
// known runtimes and the on-disk layout of installed versions
package runtime

import (
	"errors"

	"github.com/rtvm/rtvm/src/internal/platform"
)

// ErrUnsupportedPlatform is returned when no artifact exists for the host
// operating system or architecture
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Runtime describes a managed runtime: how its release artifacts are named
// and where its executables live inside an installed version.
type Runtime interface {
	// Name returns the name of the runtime (e.g., "node")
	Name() string

	// DisplayName returns a human-readable name (e.g., "Node.js")
	DisplayName() string

	// ReleaseURL returns the mirror directory holding a version's artifacts
	ReleaseURL(mirror, version string) string

	// ArtifactName returns the archive file name for a version on a platform
	ArtifactName(version string, p platform.Platform, format string) (string, error)

	// BinDir returns the executables directory relative to a version root.
	// An empty string means the version root itself.
	BinDir(p platform.Platform) string

	// Executable returns the primary executable file name on a platform
	Executable(p platform.Platform) string
}
