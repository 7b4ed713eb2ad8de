package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/index"
	"github.com/rtvm/rtvm/src/internal/install"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/resolve"
	"github.com/rtvm/rtvm/src/internal/ui"
)

func TestRunInstall_ResolvesRangesAndExact(t *testing.T) {
	c := newCLI(t)
	for _, v := range []string{"16.0.0", "16.1.0", "18.0.0"} {
		c.publish(v, "")
	}

	c.install("^16", "v18.0.0")

	for v, want := range map[string]bool{"16.0.0": false, "16.1.0": true, "18.0.0": true} {
		if got := c.installed(v); got != want {
			t.Errorf("installed(%s) = %v, want %v", v, got, want)
		}
	}

	// Installing does not activate anything by default
	if v, ok := c.active(); ok {
		t.Errorf("unexpected active version %s", v)
	}
}

func TestRunInstall_InvalidSpecifierTouchesNothing(t *testing.T) {
	c := newCLI(t)
	c.publish("16.0.0", "")

	err := runInstall(context.Background(), []string{"^16", "not-a-version"})
	if !resolve.IsSpecifierError(err) {
		t.Fatalf("expected SpecifierError, got %v", err)
	}
	if hits := c.mirror.TotalHits(); hits != 0 {
		t.Errorf("mirror received %d requests, want 0", hits)
	}
	if c.installed("16.0.0") {
		t.Error("nothing should be installed")
	}
}

func TestRunInstall_UnresolvableInstallsNothing(t *testing.T) {
	c := newCLI(t)
	c.publish("16.0.0", "")
	c.publish("16.1.0", "")

	err := runInstall(context.Background(), []string{"^16", "20.0.0", "^21"})
	if !resolve.IsNoMatch(err) {
		t.Fatalf("expected NoMatchError, got %v", err)
	}

	var unwrapped interface{ Unwrap() []error }
	if !errors.As(err, &unwrapped) || len(unwrapped.Unwrap()) != 2 {
		t.Errorf("expected both unresolvable specifiers reported, got %v", err)
	}
	if hits := c.mirror.ArtifactHits(); hits != 0 {
		t.Errorf("artifact requests = %d, want 0", hits)
	}
	if c.installed("16.1.0") {
		t.Error("no version should be installed when any specifier is unresolvable")
	}
}

func TestRunInstall_CatalogFailure(t *testing.T) {
	c := newCLI(t)
	c.mirror.Fail("/index.json", http.StatusServiceUnavailable)

	err := runInstall(context.Background(), []string{"18.0.0"})
	if !index.IsNetworkError(err) {
		t.Fatalf("expected network CatalogError, got %v", err)
	}
}

func TestRunInstall_OneFailureKeepsSiblings(t *testing.T) {
	c := newCLI(t)
	for _, v := range []string{"16.0.0", "17.0.0", "18.0.0"} {
		c.publish(v, "")
	}
	c.mirror.Fail(c.artifactPath("17.0.0"), http.StatusNotFound)

	err := runInstall(context.Background(), []string{"16.0.0", "17.0.0", "18.0.0"})
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}

	for v, want := range map[string]bool{"16.0.0": true, "17.0.0": false, "18.0.0": true} {
		if got := c.installed(v); got != want {
			t.Errorf("installed(%s) = %v, want %v", v, got, want)
		}
	}
}

func TestRunInstall_AlreadyInstalledIsNoop(t *testing.T) {
	c := newCLI(t)
	c.publish("18.0.0", "")

	c.install("18.0.0")
	before := c.mirror.ArtifactHits()

	if err := runInstall(context.Background(), []string{"18.0.0"}); err != nil {
		t.Fatalf("second install error = %v", err)
	}
	if after := c.mirror.ArtifactHits(); after != before {
		t.Errorf("artifact requests went from %d to %d on a no-op install", before, after)
	}
}

func TestRunInstall_UseFlag(t *testing.T) {
	c := newCLI(t)
	c.publish("16.0.0", "")
	c.publish("18.0.0", "")

	installUseFlag = true
	t.Cleanup(func() { installUseFlag = false })

	c.install("16.0.0", "18.0.0")

	v, ok := c.active()
	if !ok || v != "18.0.0" {
		t.Errorf("active = %q (%v), want 18.0.0", v, ok)
	}
}

func TestRunInstall_NoVerifyFlag(t *testing.T) {
	c := newCLI(t)
	c.publish("18.0.0", "")
	c.mirror.Fail("/v18.0.0/SHASUMS256.txt", http.StatusNotFound)

	if err := runInstall(context.Background(), []string{"18.0.0"}); !errors.Is(err, errReported) {
		t.Fatalf("expected verification failure, got %v", err)
	}

	installNoVerifyFlag = true
	t.Cleanup(func() { installNoVerifyFlag = false })

	c.install("18.0.0")
	if !c.installed("18.0.0") {
		t.Error("18.0.0 should be installed without verification")
	}
}

func TestRunInstall_WarnsAboutIneligibleRangeMatches(t *testing.T) {
	c := newCLI(t)
	c.usePlatform(platform.New(constants.OSLinux, constants.Arch386))
	for _, v := range []string{"8.17.0", "9.11.2", "10.0.0", "12.0.0"} {
		c.publish(v, "")
	}

	var stderr bytes.Buffer
	restore := ui.SetOutput(nil, &stderr)
	defer restore()

	c.install(">=8")

	if !c.installed("9.11.2") {
		t.Error("highest eligible version 9.11.2 should be installed")
	}
	for _, v := range []string{"10.0.0", "12.0.0"} {
		if c.installed(v) {
			t.Errorf("%s is not published for 32-bit Linux and must not be installed", v)
		}
	}

	warnings := stderr.String()
	if n := strings.Count(warnings, ">=8:"); n != 1 {
		t.Errorf("want one warning line for >=8, got %d:\n%s", n, warnings)
	}
	if !strings.Contains(warnings, "10.0.0, 12.0.0") {
		t.Errorf("warning should list the excluded versions:\n%s", warnings)
	}
}

func TestBarReporter_TracksDownloadedBytes(t *testing.T) {
	r := newBarReporter(2)

	r.Started("18.0.0")
	r.Started("20.0.0")
	r.Progress("18.0.0", 1024, 2048)
	r.Progress("20.0.0", 512, 0)

	if got, want := r.description(), "Downloading 1.5 KiB / 2.0 KiB"; got != want {
		t.Errorf("description() = %q, want %q", got, want)
	}

	r.Finished(install.Result{Version: "18.0.0", Status: install.Installed})
	if got, want := r.description(), "Downloading 512 B"; got != want {
		t.Errorf("after 18.0.0 finished, description() = %q, want %q", got, want)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:                "0 B",
		1023:             "1023 B",
		1024:             "1.0 KiB",
		25 * 1024 * 1024: "25.0 MiB",
		3 << 30:          "3.0 GiB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
