package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rtvm/rtvm/src/internal/activate"
	"github.com/rtvm/rtvm/src/internal/config"
	"github.com/rtvm/rtvm/src/internal/download"
	"github.com/rtvm/rtvm/src/internal/index"
	"github.com/rtvm/rtvm/src/internal/install"
	"github.com/rtvm/rtvm/src/internal/path"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/ui"
)

// managedRuntime is the runtime every command operates on
const managedRuntime = "node"

// hostPlatform selects the release artifacts and eligibility rules
var hostPlatform = platform.Current

// errReported signals a failure whose details were already printed
var errReported = errors.New("command failed")

// environment bundles what commands need, built from the current settings
type environment struct {
	settings  *config.Settings
	runtime   runtime.Runtime
	layout    runtime.Layout
	activator activate.Activator
}

func newEnvironment() (*environment, error) {
	rt, err := runtime.Get(managedRuntime)
	if err != nil {
		return nil, err
	}

	settings := config.Current()
	layout := runtime.NewLayout(rt, hostPlatform())

	activator, err := activate.New(layout, settings.Activation)
	if err != nil {
		return nil, err
	}
	if c, ok := activator.(*activate.CopyActivator); ok {
		c.EnsurePath = func(dir string) error {
			return path.AddToPath(dir, false)
		}
	}

	ui.Debug("Storage root: %s", layout.Root)
	ui.Debug("Link directory: %s", layout.LinkDir)
	ui.Debug("Platform: %s", layout.Platform)

	return &environment{
		settings:  settings,
		runtime:   rt,
		layout:    layout,
		activator: activator,
	}, nil
}

func (e *environment) source() index.Source {
	return index.NewSource(e.settings.Mirror, e.settings.HTTPTimeout)
}

func (e *environment) installer(reporter install.Reporter) *install.Installer {
	return &install.Installer{
		Layout:          e.layout,
		Downloader:      download.New(e.settings.HTTPTimeout),
		Reporter:        reporter,
		Jobs:            e.settings.Jobs,
		Mirror:          e.settings.Mirror,
		ArchiveFormat:   e.settings.ArchiveFormat,
		VerifyChecksums: e.settings.VerifyChecksums,
	}
}

// installedVersions lists installed versions and fails when there are none
func (e *environment) installedVersions() ([]string, error) {
	versions, err := e.layout.ListInstalled()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.layout.Root, err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no %s versions installed", e.runtime.DisplayName())
	}
	return versions, nil
}

// activeVersion returns the active version, or "" when none is set or the
// state cannot be read
func (e *environment) activeVersion() string {
	version, ok, err := e.activator.Current()
	if err != nil {
		ui.Debug("Could not read active version: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return version
}

// checkPath warns when the link directory is missing from PATH or when
// another installation would be found first
func (e *environment) checkPath() {
	dir := e.layout.LinkDir
	if !path.IsInPath(dir) {
		ui.Warning("%s is not in your PATH", dir)
		ui.Info("Run 'rtvm init' to add it")
		return
	}
	exe := e.runtime.Executable(e.layout.Platform)
	if shadows := path.Shadowing(exe, dir); len(shadows) > 0 {
		ui.Warning("%s is shadowed on PATH by: %s", exe, strings.Join(shadows, ", "))
	}
}

// printError prints err, one line per joined error
func printError(err error) {
	if errors.Is(err, errReported) {
		return
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			printError(e)
		}
		return
	}
	ui.Error("%v", err)
}
