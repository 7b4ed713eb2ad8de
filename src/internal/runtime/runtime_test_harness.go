package runtime

import (
	"strings"
	"testing"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/platform"
)

// RuntimeTestHarness runs a suite of contract tests against a Runtime implementation
// This ensures all runtimes name artifacts and executables consistently
type RuntimeTestHarness struct {
	Runtime Runtime
	T       *testing.T

	// Expected values for validation
	ExpectedName        string
	ExpectedDisplayName string
	SampleVersion       string // A valid version string for this runtime (e.g., "18.16.0")
}

// RunAllTests executes the complete test suite
func (h *RuntimeTestHarness) RunAllTests() {
	h.T.Run("Name", func(t *testing.T) { h.TestName(t) })
	h.T.Run("DisplayName", func(t *testing.T) { h.TestDisplayName(t) })
	h.T.Run("ReleaseURL", func(t *testing.T) { h.TestReleaseURL(t) })
	h.T.Run("ArtifactName", func(t *testing.T) { h.TestArtifactName(t) })
	h.T.Run("UnsupportedPlatform", func(t *testing.T) { h.TestUnsupportedPlatform(t) })
	h.T.Run("Executable", func(t *testing.T) { h.TestExecutable(t) })
}

// TestName verifies the runtime returns the expected name
func (h *RuntimeTestHarness) TestName(t *testing.T) {
	name := h.Runtime.Name()

	if name == "" {
		t.Error("Name() returned empty string")
	}

	if name != h.ExpectedName {
		t.Errorf("Name() = %q, want %q", name, h.ExpectedName)
	}

	// Name should be lowercase (convention)
	if name != strings.ToLower(name) {
		t.Errorf("Name() = %q should be lowercase", name)
	}
}

// TestDisplayName verifies the runtime returns a human-readable name
func (h *RuntimeTestHarness) TestDisplayName(t *testing.T) {
	displayName := h.Runtime.DisplayName()

	if displayName == "" {
		t.Error("DisplayName() returned empty string")
	}

	if displayName != h.ExpectedDisplayName {
		t.Errorf("DisplayName() = %q, want %q", displayName, h.ExpectedDisplayName)
	}
}

// TestReleaseURL verifies release URLs are rooted at the mirror
func (h *RuntimeTestHarness) TestReleaseURL(t *testing.T) {
	if h.SampleVersion == "" {
		t.Skip("No sample version provided")
	}

	mirror := "https://mirror.example.com/dist"
	url := h.Runtime.ReleaseURL(mirror, h.SampleVersion)

	if !strings.HasPrefix(url, mirror+"/") {
		t.Errorf("ReleaseURL() = %q is not under mirror %q", url, mirror)
	}
	if !strings.Contains(url, h.SampleVersion) {
		t.Errorf("ReleaseURL() = %q does not contain version %q", url, h.SampleVersion)
	}
}

// TestArtifactName verifies artifact names carry the version and platform labels
func (h *RuntimeTestHarness) TestArtifactName(t *testing.T) {
	if h.SampleVersion == "" {
		t.Skip("No sample version provided")
	}

	platforms := []platform.Platform{
		platform.New(constants.OSLinux, constants.ArchAMD64),
		platform.New(constants.OSDarwin, constants.ArchARM64),
		platform.New(constants.OSWindows, constants.ArchAMD64),
	}

	for _, p := range platforms {
		t.Run(p.String(), func(t *testing.T) {
			format := p.DefaultArchiveFormat()
			name, err := h.Runtime.ArtifactName(h.SampleVersion, p, format)
			if err != nil {
				t.Fatalf("ArtifactName() error = %v", err)
			}
			for _, part := range []string{h.SampleVersion, p.OSLabel(), p.ArchLabel()} {
				if !strings.Contains(name, part) {
					t.Errorf("ArtifactName() = %q does not contain %q", name, part)
				}
			}
			if !strings.HasSuffix(name, "."+format) {
				t.Errorf("ArtifactName() = %q does not end with .%s", name, format)
			}
		})
	}
}

// TestUnsupportedPlatform verifies unknown OS/arch labels are rejected
func (h *RuntimeTestHarness) TestUnsupportedPlatform(t *testing.T) {
	version := h.SampleVersion
	if version == "" {
		version = "1.0.0"
	}

	p := platform.New("plan9", "mips")
	if _, err := h.Runtime.ArtifactName(version, p, constants.ArchiveTarXz); err == nil {
		t.Error("ArtifactName() on an unknown platform should return an error")
	}
}

// TestExecutable verifies the Windows executable carries the .exe suffix
func (h *RuntimeTestHarness) TestExecutable(t *testing.T) {
	windows := platform.New(constants.OSWindows, constants.ArchAMD64)
	linux := platform.New(constants.OSLinux, constants.ArchAMD64)

	if exe := h.Runtime.Executable(windows); !strings.HasSuffix(exe, constants.ExtExe) {
		t.Errorf("Executable(windows) = %q should end with %s", exe, constants.ExtExe)
	}
	if exe := h.Runtime.Executable(linux); strings.HasSuffix(exe, constants.ExtExe) {
		t.Errorf("Executable(linux) = %q should not end with %s", exe, constants.ExtExe)
	}
}
