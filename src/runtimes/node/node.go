// Package node implements the Node.js runtime descriptor for rtvm
package node

import (
	"fmt"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/runtime"
)

// Name is the runtime's registry key and storage directory name
const Name = "node"

// Runtime describes Node.js release artifacts and install layout
type Runtime struct{}

// New creates a Node.js runtime descriptor
func New() *Runtime {
	return &Runtime{}
}

// Name returns the runtime name
func (r *Runtime) Name() string {
	return Name
}

// DisplayName returns the human-readable name
func (r *Runtime) DisplayName() string {
	return "Node.js"
}

// ReleaseURL returns <mirror>/v<version>
func (r *Runtime) ReleaseURL(mirror, version string) string {
	return fmt.Sprintf("%s/v%s", mirror, version)
}

// ArtifactName returns node-v<version>-<os>-<arch>.<format>
func (r *Runtime) ArtifactName(version string, p platform.Platform, format string) (string, error) {
	if !p.Supported() {
		return "", fmt.Errorf("%w: %s", runtime.ErrUnsupportedPlatform, p)
	}

	switch format {
	case constants.ArchiveTarXz, constants.ArchiveTarGz:
		if p.IsWindows() {
			return "", fmt.Errorf("archive format %s is not published for %s", format, p)
		}
	case constants.ArchiveZip, constants.ArchiveSevenZip:
		if !p.IsWindows() {
			return "", fmt.Errorf("archive format %s is not published for %s", format, p)
		}
	default:
		return "", fmt.Errorf("unknown archive format: %s", format)
	}

	return fmt.Sprintf("%s.%s", TopLevelDir(version, p), format), nil
}

// TopLevelDir returns the directory name release archives unpack into
func TopLevelDir(version string, p platform.Platform) string {
	return fmt.Sprintf("node-v%s-%s-%s", version, p.OSLabel(), p.ArchLabel())
}

// BinDir returns "bin" on POSIX; Windows archives keep node.exe at the root
func (r *Runtime) BinDir(p platform.Platform) string {
	if p.IsWindows() {
		return ""
	}
	return "bin"
}

// Executable returns node or node.exe
func (r *Runtime) Executable(p platform.Platform) string {
	if p.IsWindows() {
		return "node" + constants.ExtExe
	}
	return "node"
}

// init registers the Node.js runtime on package load
func init() {
	if err := runtime.Register(New()); err != nil {
		panic(fmt.Sprintf("failed to register Node.js runtime: %v", err))
	}
}
