// Package platform maps Go's GOOS/GOARCH onto the labels used by the upstream
// distribution mirror and decides which releases a platform can run.
package platform

import (
	"fmt"
	goruntime "runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/rtvm/rtvm/src/internal/constants"
)

// OS labels used in artifact names.
const (
	OSLabelWindows = "win"
	OSLabelDarwin  = "darwin"
	OSLabelLinux   = "linux"
	LabelUnknown   = "unknown"
)

// Arch labels used in artifact names.
const (
	ArchLabelX86   = "x86"
	ArchLabelX64   = "x64"
	ArchLabelARM64 = "arm64"
)

// X86Cutoff is the first release upstream stopped publishing 32-bit
// macOS/Linux builds for.
var X86Cutoff = semver.MustParse("10.0.0")

// Platform identifies a target operating system and architecture.
type Platform struct {
	GOOS   string
	GOARCH string
}

// Current returns the platform rtvm was built for.
func Current() Platform {
	return Platform{GOOS: goruntime.GOOS, GOARCH: goruntime.GOARCH}
}

// New returns a Platform for an explicit GOOS/GOARCH pair.
func New(goos, goarch string) Platform {
	return Platform{GOOS: goos, GOARCH: goarch}
}

// OSLabel returns the mirror's name for the operating system.
func (p Platform) OSLabel() string {
	switch p.GOOS {
	case constants.OSWindows:
		return OSLabelWindows
	case constants.OSDarwin:
		return OSLabelDarwin
	case constants.OSLinux:
		return OSLabelLinux
	default:
		return LabelUnknown
	}
}

// ArchLabel returns the mirror's name for the CPU architecture.
func (p Platform) ArchLabel() string {
	switch p.GOARCH {
	case constants.Arch386:
		return ArchLabelX86
	case constants.ArchAMD64:
		return ArchLabelX64
	case constants.ArchARM64:
		return ArchLabelARM64
	default:
		return LabelUnknown
	}
}

// Supported reports whether artifacts can be named for this platform.
func (p Platform) Supported() bool {
	return p.OSLabel() != LabelUnknown && p.ArchLabel() != LabelUnknown
}

// IsWindows reports whether the platform is Windows.
func (p Platform) IsWindows() bool {
	return p.GOOS == constants.OSWindows
}

// IsX86POSIX reports whether the platform is a 32-bit x86 non-Windows target.
func (p Platform) IsX86POSIX() bool {
	return p.GOARCH == constants.Arch386 && !p.IsWindows()
}

// Eligible reports whether a release can run on this platform.
func (p Platform) Eligible(v *semver.Version) bool {
	if p.IsX86POSIX() && !v.LessThan(X86Cutoff) {
		return false
	}
	return true
}

// DefaultArchiveFormat returns the archive format downloaded by default.
func (p Platform) DefaultArchiveFormat() string {
	if p.IsWindows() {
		return constants.ArchiveSevenZip
	}
	return constants.ArchiveTarXz
}

// String returns the platform key in GOOS-GOARCH form.
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.GOOS, p.GOARCH)
}
