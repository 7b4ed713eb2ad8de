// Package install downloads and unpacks resolved versions into the storage
// root, running one unit of work per version on a bounded worker pool.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rtvm/rtvm/src/internal/download"
	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/ui"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one install unit
type Status int

const (
	// AlreadyInstalled means the version directory existed; nothing was fetched
	AlreadyInstalled Status = iota
	// Installed means the version was downloaded and moved into place
	Installed
	// Failed means the unit stopped early; Err says where
	Failed
)

func (s Status) String() string {
	switch s {
	case AlreadyInstalled:
		return "already installed"
	case Installed:
		return "installed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports what happened to one version
type Result struct {
	Version string
	Status  Status
	Path    string
	Err     error
}

// Stage names the step an install unit failed in
type Stage string

// Install unit stages.
const (
	StagePrepare  Stage = "prepare"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageRename   Stage = "rename"
)

// UnitError is a failure local to one version; sibling units are unaffected
type UnitError struct {
	Version string
	Stage   Stage
	Err     error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Version, e.Stage, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Fetcher transfers release artifacts; *download.Downloader implements it
type Fetcher interface {
	File(ctx context.Context, url, destPath string, progress download.ProgressFunc) error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Reporter observes install units. Calls arrive from worker goroutines.
type Reporter interface {
	Started(version string)
	Progress(version string, current, total int64)
	Finished(result Result)
}

// NopReporter discards all events
type NopReporter struct{}

func (NopReporter) Started(string)                {}
func (NopReporter) Progress(string, int64, int64) {}
func (NopReporter) Finished(Result)               {}

// DefaultJobs is used when Installer.Jobs is not positive
const DefaultJobs = 4

// Installer installs versions of the runtime described by Layout
type Installer struct {
	Layout     runtime.Layout
	Downloader Fetcher
	Reporter   Reporter

	// Jobs bounds how many units run at once
	Jobs int
	// Mirror is the distribution base URL, without a trailing slash
	Mirror string
	// ArchiveFormat overrides the platform default when set
	ArchiveFormat string
	// VerifyChecksums checks downloads against the release's SHASUMS256.txt
	VerifyChecksums bool
}

// InstallAll installs every version concurrently and waits for all units.
// Results are returned in input order; duplicate inputs share one unit.
func (in *Installer) InstallAll(ctx context.Context, versions []string) []Result {
	results := make([]Result, len(versions))

	first := make(map[string]int, len(versions))
	jobs := in.Jobs
	if jobs < 1 {
		jobs = DefaultJobs
	}

	var g errgroup.Group
	g.SetLimit(jobs)

	for i, v := range versions {
		if _, dup := first[v]; dup {
			continue
		}
		first[v] = i

		g.Go(func() error {
			results[i] = in.installOne(ctx, v)
			in.reporter().Finished(results[i])
			// Unit errors travel in results; the group never sees one
			return nil
		})
	}
	_ = g.Wait()

	for i, v := range versions {
		if j := first[v]; j != i {
			results[i] = results[j]
		}
	}
	return results
}

// Install installs a single version
func (in *Installer) Install(ctx context.Context, version string) Result {
	return in.InstallAll(ctx, []string{version})[0]
}

func (in *Installer) reporter() Reporter {
	if in.Reporter == nil {
		return NopReporter{}
	}
	return in.Reporter
}

func (in *Installer) installOne(ctx context.Context, version string) Result {
	layout := in.Layout
	target := layout.VersionDir(version)

	fail := func(stage Stage, err error) Result {
		ui.Debug("Install %s failed at %s: %v", version, stage, err)
		return Result{
			Version: version,
			Status:  Failed,
			Path:    target,
			Err:     &UnitError{Version: version, Stage: stage, Err: err},
		}
	}

	installed, err := layout.IsInstalled(version)
	if err != nil {
		return fail(StagePrepare, err)
	}
	if installed {
		ui.Debug("%s is already installed at %s", version, target)
		return Result{Version: version, Status: AlreadyInstalled, Path: target}
	}

	format := in.ArchiveFormat
	if format == "" {
		format = layout.Platform.DefaultArchiveFormat()
	}
	artifact, err := layout.Runtime.ArtifactName(version, layout.Platform, format)
	if err != nil {
		return fail(StagePrepare, err)
	}

	if err := layout.EnsureRoot(); err != nil {
		return fail(StagePrepare, err)
	}

	// Scratch lives in the storage root so the final rename stays on one filesystem
	scratch, err := os.MkdirTemp(layout.Root, runtime.ScratchPrefix+version+"-*")
	if err != nil {
		return fail(StagePrepare, err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	in.reporter().Started(version)

	release := layout.Runtime.ReleaseURL(in.Mirror, version)
	archive := filepath.Join(scratch, artifact)
	err = in.Downloader.File(ctx, release+"/"+artifact, archive, func(current, total int64) {
		in.reporter().Progress(version, current, total)
	})
	if err != nil {
		return fail(StageDownload, err)
	}

	if in.VerifyChecksums {
		if err := in.verify(ctx, release, artifact, archive); err != nil {
			return fail(StageVerify, err)
		}
	}

	extractDir := filepath.Join(scratch, "extract")
	if err := download.Extract(archive, extractDir); err != nil {
		return fail(StageExtract, err)
	}
	top, err := download.SingleTopLevelDir(extractDir)
	if err != nil {
		return fail(StageExtract, err)
	}

	if err := os.Rename(top, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			err = fmt.Errorf("%s appeared while installing: %w", target, err)
		}
		return fail(StageRename, err)
	}

	ui.Debug("Installed %s into %s", version, target)
	return Result{Version: version, Status: Installed, Path: target}
}

func (in *Installer) verify(ctx context.Context, release, artifact, archive string) error {
	sums, err := in.Downloader.Fetch(ctx, release+"/"+download.ChecksumFileName)
	if err != nil {
		return err
	}
	expected, err := download.LookupChecksum(sums, artifact)
	if err != nil {
		return err
	}
	ui.Debug("Expected SHA256 for %s: %s", artifact, expected)
	return download.VerifyFile(archive, expected)
}

// Failures returns the failed results
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Status == Failed {
			failed = append(failed, r)
		}
	}
	return failed
}
