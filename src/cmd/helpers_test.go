package cmd

import (
	"context"
	"os"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/rtvm/rtvm/src/internal/config"
	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/testutil"
	"github.com/rtvm/rtvm/src/runtimes/node"
)

// cli is an isolated rtvm installation backed by a fake mirror
type cli struct {
	t       *testing.T
	mirror  *testutil.Mirror
	root     string
	linkDir  string
	platform platform.Platform
}

// newCLI points every rtvm path and the mirror setting at temp locations
func newCLI(t *testing.T) *cli {
	t.Helper()
	if goruntime.GOOS == constants.OSWindows {
		t.Skip("release fixtures contain symlinks")
	}
	if !platform.Current().Supported() {
		t.Skipf("no release artifacts for %s", platform.Current())
	}

	dir := t.TempDir()
	m := testutil.NewMirror(t)
	c := &cli{
		t:        t,
		mirror:   m,
		root:     filepath.Join(dir, "data"),
		linkDir:  filepath.Join(dir, "links"),
		platform: platform.Current(),
	}

	t.Setenv("RTVM_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("RTVM_ROOT", c.root)
	t.Setenv("RTVM_LINK_DIR", c.linkDir)
	t.Setenv("RTVM_MIRROR", m.URL)
	t.Setenv("RTVM_ACTIVATION", "")
	t.Setenv("RTVM_ARCHIVE_FORMAT", "")
	config.ResetPathsCache()
	t.Cleanup(config.ResetPathsCache)

	return c
}

// usePlatform makes the commands act as if running on p
func (c *cli) usePlatform(p platform.Platform) {
	c.platform = p
	hostPlatform = func() platform.Platform { return p }
	c.t.Cleanup(func() { hostPlatform = platform.Current })
}

// publish lists version in the catalog and uploads a release for the host
func (c *cli) publish(version, lts string) {
	c.t.Helper()
	p := c.platform

	c.mirror.AddRelease(version, lts)
	artifact, err := node.New().ArtifactName(version, p, constants.ArchiveTarXz)
	if err != nil {
		c.t.Fatalf("ArtifactName() error = %v", err)
	}
	c.mirror.Publish(version, artifact, node.TopLevelDir(version, p), testutil.NodeFiles(version))
}

// artifactPath returns the mirror URL path of version's release archive
func (c *cli) artifactPath(version string) string {
	c.t.Helper()
	artifact, err := node.New().ArtifactName(version, c.platform, constants.ArchiveTarXz)
	if err != nil {
		c.t.Fatalf("ArtifactName() error = %v", err)
	}
	return "/v" + version + "/" + artifact
}

func (c *cli) versionDir(version string) string {
	return filepath.Join(c.root, "node", version)
}

func (c *cli) installed(version string) bool {
	info, err := os.Stat(c.versionDir(version))
	return err == nil && info.IsDir()
}

// install runs the install command and fails the test on error
func (c *cli) install(specs ...string) {
	c.t.Helper()
	if err := runInstall(context.Background(), specs); err != nil {
		c.t.Fatalf("runInstall(%v) error = %v", specs, err)
	}
}

// active returns the active version as seen by a fresh environment
func (c *cli) active() (string, bool) {
	c.t.Helper()
	env, err := newEnvironment()
	if err != nil {
		c.t.Fatalf("newEnvironment() error = %v", err)
	}
	version, ok, err := env.activator.Current()
	if err != nil {
		c.t.Fatalf("Current() error = %v", err)
	}
	return version, ok
}
