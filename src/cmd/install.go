package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rtvm/rtvm/src/internal/index"
	"github.com/rtvm/rtvm/src/internal/install"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/resolve"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var (
	installUseFlag      bool
	installJobsFlag     int
	installNoVerifyFlag bool
)

var installCmd = &cobra.Command{
	Use:   "install <version>...",
	Short: "Install one or more Node.js versions",
	Long: `Install Node.js versions from the distribution mirror.

Each argument is an exact version or a range. Ranges install the newest
matching release. Versions are downloaded and unpacked concurrently; a
failure in one does not stop the others.

Examples:
  rtvm install 18.16.0
  rtvm install ^20 ~18.17 16.20.2
  rtvm install --use ">=20 <21"`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("at least one version is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVar(&installUseFlag, "use", false, "Activate the newest requested version after installing")
	installCmd.Flags().IntVarP(&installJobsFlag, "jobs", "j", 0, "Number of versions to install at once (default from settings)")
	installCmd.Flags().BoolVar(&installNoVerifyFlag, "no-verify", false, "Skip SHA-256 verification of downloads")
}

func runInstall(ctx context.Context, specs []string) error {
	// Reject malformed input before touching the network
	for _, s := range specs {
		if _, err := resolve.ParseSpecifier(s); err != nil {
			return err
		}
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}

	catalog, err := fetchCatalog(ctx, env.source())
	if err != nil {
		return err
	}

	result, err := resolve.New(env.layout.Platform).Resolve(specs, catalog)
	if err != nil {
		return err
	}

	skipped := reportExcluded(result.Excluded)

	if len(result.Versions) == 0 {
		ui.Error("Nothing to install")
		return errReported
	}

	ui.Debug("Resolved %v to %v", specs, result.Versions)

	reporter := newBarReporter(len(result.Versions))
	installer := env.installer(reporter)
	if installJobsFlag > 0 {
		installer.Jobs = installJobsFlag
	}
	if installNoVerifyFlag {
		installer.VerifyChecksums = false
	}

	results := installer.InstallAll(ctx, result.Versions)
	reporter.bar.Finish()
	failed := showInstallSummary(env, results)

	if installUseFlag && failed == 0 {
		newest := result.Versions[len(result.Versions)-1]
		if err := env.activator.Activate(newest); err != nil {
			return err
		}
		ui.Success("Now using %s %s", env.runtime.DisplayName(), ui.HighlightVersion(newest))
	}

	if failed > 0 || skipped > 0 {
		return errReported
	}
	return nil
}

// reportExcluded warns about every version left out for the platform and
// returns how many exact specifiers were skipped because of it
func reportExcluded(excluded []resolve.EligibilityError) int {
	skipped := 0
	var order []string
	passedOver := make(map[string][]string)
	var host platform.Platform

	for _, ex := range excluded {
		if ex.Skipped {
			skipped++
			ui.Warning("Skipping %s: %v", ex.Specifier, ex)
			continue
		}
		if _, ok := passedOver[ex.Specifier]; !ok {
			order = append(order, ex.Specifier)
		}
		passedOver[ex.Specifier] = append(passedOver[ex.Specifier], ex.Version)
		host = ex.Platform
	}

	for _, spec := range order {
		versions := passedOver[spec]
		ui.Warning("%s: excluded %s, not published for %s (32-bit builds stop before %s)",
			spec, strings.Join(versions, ", "), host, platform.X86Cutoff)
	}
	return skipped
}

// fetchCatalog reads the version index behind a spinner
func fetchCatalog(ctx context.Context, source index.Source) ([]index.CatalogEntry, error) {
	var catalog []index.CatalogEntry
	err := ui.WithSpinner("Fetching version index...", func() error {
		var err error
		catalog, err = source.Catalog(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	ui.Debug("Catalog has %d entries", len(catalog))
	return catalog, nil
}

// showInstallSummary prints one line per version and returns the failure count
func showInstallSummary(env *environment, results []install.Result) int {
	name := env.runtime.DisplayName()
	failed := 0

	for _, r := range results {
		switch r.Status {
		case install.Installed:
			ui.Success("Installed %s %s", name, ui.HighlightVersion(r.Version))
		case install.AlreadyInstalled:
			ui.Info("%s %s is already installed", name, ui.HighlightVersion(r.Version))
		case install.Failed:
			failed++
			ui.Error("Failed to install %s %s: %v", name, r.Version, r.Err)
		}
	}

	if failed > 0 {
		ui.Error("%d of %d version(s) failed to install", failed, len(results))
	}
	return failed
}

// barReporter advances a progress bar as install units finish and shows
// the bytes downloaded across the units still running
type barReporter struct {
	mu         sync.Mutex
	bar        *ui.ProgressBar
	downloaded map[string]int64
	sizes      map[string]int64
}

func newBarReporter(total int) *barReporter {
	return &barReporter{
		bar:        ui.NewProgressBar(total, "Installing"),
		downloaded: make(map[string]int64),
		sizes:      make(map[string]int64),
	}
}

func (r *barReporter) Started(version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar.Describe("Installing " + version)
}

func (r *barReporter) Progress(version string, current, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaded[version] = current
	if total > 0 {
		r.sizes[version] = total
	}
	r.bar.Describe(r.description())
}

func (r *barReporter) Finished(result install.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.downloaded, result.Version)
	delete(r.sizes, result.Version)
	r.bar.Increment()
	ui.Debug("%s finished: %s", result.Version, result.Status)
}

// description summarizes in-flight downloads; callers hold mu
func (r *barReporter) description() string {
	var current, total int64
	for v, n := range r.downloaded {
		current += n
		total += r.sizes[v]
	}
	if total == 0 {
		return fmt.Sprintf("Downloading %s", formatBytes(current))
	}
	return fmt.Sprintf("Downloading %s / %s", formatBytes(current), formatBytes(total))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
