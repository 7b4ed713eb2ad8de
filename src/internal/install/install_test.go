package install

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	goruntime "runtime"
	"sync"
	"testing"
	"time"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/download"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/testutil"
	"github.com/rtvm/rtvm/src/runtimes/node"
)

var linuxX64 = platform.New(constants.OSLinux, constants.ArchAMD64)

// publish adds a linux-x64 tar.xz release of version to the mirror
func publish(m *testutil.Mirror, version string) {
	m.AddRelease(version, "")
	m.Publish(version,
		"node-v"+version+"-linux-x64.tar.xz",
		node.TopLevelDir(version, linuxX64),
		testutil.NodeFiles(version))
}

func newInstaller(t *testing.T, m *testutil.Mirror) *Installer {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("release fixtures contain symlinks")
	}
	return &Installer{
		Layout: runtime.Layout{
			Root:     filepath.Join(t.TempDir(), "node"),
			LinkDir:  filepath.Join(t.TempDir(), "bin"),
			Runtime:  node.New(),
			Platform: linuxX64,
		},
		Downloader:      download.New(5 * time.Second),
		Jobs:            2,
		Mirror:          m.URL,
		VerifyChecksums: true,
	}
}

// recorder is a Reporter that remembers every event
type recorder struct {
	mu       sync.Mutex
	started  []string
	progress map[string]int64
	finished []Result
}

func (r *recorder) Started(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, v)
}

func (r *recorder) Progress(v string, current, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil {
		r.progress = make(map[string]int64)
	}
	r.progress[v] = current
}

func (r *recorder) Finished(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, res)
}

func TestInstallAll(t *testing.T) {
	m := testutil.NewMirror(t)
	publish(m, "16.1.0")
	publish(m, "18.0.0")

	in := newInstaller(t, m)
	rec := &recorder{}
	in.Reporter = rec

	results := in.InstallAll(context.Background(), []string{"18.0.0", "16.1.0"})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	for i, want := range []string{"18.0.0", "16.1.0"} {
		r := results[i]
		if r.Version != want {
			t.Errorf("results[%d].Version = %s, want %s (input order)", i, r.Version, want)
		}
		if r.Status != Installed {
			t.Errorf("%s: Status = %s, err = %v", want, r.Status, r.Err)
		}
		if r.Path != in.Layout.VersionDir(want) {
			t.Errorf("%s: Path = %s", want, r.Path)
		}
		if _, err := os.Stat(filepath.Join(r.Path, "bin", "node")); err != nil {
			t.Errorf("%s: bin/node missing: %v", want, err)
		}
	}

	installed, err := in.Layout.ListInstalled()
	if err != nil {
		t.Fatal(err)
	}
	if len(installed) != 2 {
		t.Errorf("ListInstalled() = %v; scratch directories must not remain", installed)
	}

	entries, err := os.ReadDir(in.Layout.Root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("storage root has %d entries, want only the 2 version dirs", len(entries))
	}

	if len(rec.started) != 2 || len(rec.finished) != 2 {
		t.Errorf("reporter saw %d starts and %d finishes, want 2 each", len(rec.started), len(rec.finished))
	}
	if rec.progress["18.0.0"] == 0 {
		t.Error("no download progress reported")
	}
}

func TestInstallAll_AlreadyInstalledSkipsNetwork(t *testing.T) {
	m := testutil.NewMirror(t)
	publish(m, "18.0.0")
	in := newInstaller(t, m)

	if r := in.Install(context.Background(), "18.0.0"); r.Status != Installed {
		t.Fatalf("first install: %s (%v)", r.Status, r.Err)
	}
	hits := m.TotalHits()

	r := in.Install(context.Background(), "18.0.0")
	if r.Status != AlreadyInstalled {
		t.Errorf("second install Status = %s, want already installed", r.Status)
	}
	if r.Err != nil {
		t.Errorf("second install Err = %v", r.Err)
	}
	if m.TotalHits() != hits {
		t.Errorf("second install made %d requests, want none", m.TotalHits()-hits)
	}
}

func TestInstallAll_OneFailureDoesNotAbortSiblings(t *testing.T) {
	m := testutil.NewMirror(t)
	publish(m, "16.0.0")
	publish(m, "18.0.0")
	publish(m, "20.0.0")
	m.Fail("/v18.0.0/node-v18.0.0-linux-x64.tar.xz", http.StatusInternalServerError)

	in := newInstaller(t, m)
	results := in.InstallAll(context.Background(), []string{"16.0.0", "18.0.0", "20.0.0"})

	if results[0].Status != Installed || results[2].Status != Installed {
		t.Errorf("siblings should install: %s, %s", results[0].Status, results[2].Status)
	}
	if results[1].Status != Failed {
		t.Fatalf("18.0.0 Status = %s, want failed", results[1].Status)
	}

	var unitErr *UnitError
	if !errors.As(results[1].Err, &unitErr) {
		t.Fatalf("Err = %T, want *UnitError", results[1].Err)
	}
	if unitErr.Stage != StageDownload || unitErr.Version != "18.0.0" {
		t.Errorf("UnitError = %+v", unitErr)
	}

	if ok, _ := in.Layout.IsInstalled("18.0.0"); ok {
		t.Error("failed unit must not leave a version directory")
	}
	if failed := Failures(results); len(failed) != 1 {
		t.Errorf("Failures() = %d, want 1", len(failed))
	}
}

func TestInstallAll_ChecksumMismatch(t *testing.T) {
	m := testutil.NewMirror(t)
	publish(m, "18.0.0")

	archive := filepath.Join(m.Dir, "v18.0.0", "node-v18.0.0-linux-x64.tar.xz")
	f, err := os.OpenFile(archive, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("tampered")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in := newInstaller(t, m)
	r := in.Install(context.Background(), "18.0.0")

	var mismatch *download.ErrChecksumMismatch
	if r.Status != Failed || !errors.As(r.Err, &mismatch) {
		t.Fatalf("Install() = %s, %v; want checksum mismatch", r.Status, r.Err)
	}
	var unitErr *UnitError
	if errors.As(r.Err, &unitErr) && unitErr.Stage != StageVerify {
		t.Errorf("Stage = %s, want verify", unitErr.Stage)
	}
	if ok, _ := in.Layout.IsInstalled("18.0.0"); ok {
		t.Error("a corrupt download must not be installed")
	}
}

func TestInstallAll_SkipVerification(t *testing.T) {
	m := testutil.NewMirror(t)
	m.AddRelease("18.0.0", "")
	m.Publish("18.0.0", "node-v18.0.0-linux-x64.tar.xz",
		node.TopLevelDir("18.0.0", linuxX64), testutil.NodeFiles("18.0.0"))
	m.Fail("/v18.0.0/SHASUMS256.txt", http.StatusNotFound)

	in := newInstaller(t, m)
	in.VerifyChecksums = false

	if r := in.Install(context.Background(), "18.0.0"); r.Status != Installed {
		t.Fatalf("Install() = %s, %v", r.Status, r.Err)
	}
	if m.Hits("/v18.0.0/SHASUMS256.txt") != 0 {
		t.Error("checksum list fetched with verification disabled")
	}
}

func TestInstallAll_UnsupportedPlatform(t *testing.T) {
	m := testutil.NewMirror(t)
	in := newInstaller(t, m)
	in.Layout.Platform = platform.New("plan9", constants.ArchAMD64)

	r := in.Install(context.Background(), "18.0.0")
	if r.Status != Failed {
		t.Fatalf("Status = %s, want failed", r.Status)
	}
	if !errors.Is(r.Err, runtime.ErrUnsupportedPlatform) {
		t.Errorf("Err = %v, want ErrUnsupportedPlatform", r.Err)
	}
	if m.TotalHits() != 0 {
		t.Errorf("made %d requests before rejecting the platform", m.TotalHits())
	}
}

func TestInstallAll_ArchiveFormatOverride(t *testing.T) {
	m := testutil.NewMirror(t)
	m.AddRelease("18.0.0", "")
	m.Publish("18.0.0", "node-v18.0.0-linux-x64.tar.gz",
		node.TopLevelDir("18.0.0", linuxX64), testutil.NodeFiles("18.0.0"))

	in := newInstaller(t, m)
	in.ArchiveFormat = constants.ArchiveTarGz

	if r := in.Install(context.Background(), "18.0.0"); r.Status != Installed {
		t.Fatalf("Install() = %s, %v", r.Status, r.Err)
	}
}

func TestInstallAll_Duplicates(t *testing.T) {
	m := testutil.NewMirror(t)
	publish(m, "18.0.0")
	in := newInstaller(t, m)

	results := in.InstallAll(context.Background(), []string{"18.0.0", "18.0.0"})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d", len(results))
	}
	for i, r := range results {
		if r.Status != Installed {
			t.Errorf("results[%d] = %s, %v", i, r.Status, r.Err)
		}
	}
	if hits := m.Hits("/v18.0.0/node-v18.0.0-linux-x64.tar.xz"); hits != 1 {
		t.Errorf("archive downloaded %d times, want 1", hits)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{AlreadyInstalled, "already installed"},
		{Installed, "installed"},
		{Failed, "failed"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
