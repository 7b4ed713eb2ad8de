package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rtvm/rtvm/src/internal/index"
	"github.com/rtvm/rtvm/src/internal/resolve"
	"github.com/rtvm/rtvm/src/internal/tui"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var (
	listRemoteLTSFlag    bool
	listRemoteFilterFlag string
	listRemoteLimitFlag  int
)

var listRemoteCmd = &cobra.Command{
	Use:   "list-remote",
	Short: "List versions available on the mirror",
	Long: `Display Node.js versions published on the distribution mirror, newest first.
Installed versions are marked with a ✓.

The filter is a version range (for example ^20) or, when it does not parse
as one, a plain substring of the version.

Examples:
  rtvm list-remote
  rtvm list-remote --lts
  rtvm list-remote --filter ^18 --limit 0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListRemote(cmd.Context(), listRemoteOptions{
			ltsOnly: listRemoteLTSFlag,
			filter:  listRemoteFilterFlag,
			limit:   listRemoteLimitFlag,
		})
	},
}

func init() {
	listRemoteCmd.Flags().BoolVar(&listRemoteLTSFlag, "lts", false, "Only show long-term-support releases")
	listRemoteCmd.Flags().StringVarP(&listRemoteFilterFlag, "filter", "f", "", "Only show versions matching a range or substring")
	listRemoteCmd.Flags().IntVarP(&listRemoteLimitFlag, "limit", "l", 20, "Maximum number of versions to show (0 for all)")
	rootCmd.AddCommand(listRemoteCmd)
}

type listRemoteOptions struct {
	ltsOnly bool
	filter  string
	limit   int
}

func runListRemote(ctx context.Context, opts listRemoteOptions) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	catalog, err := fetchCatalog(ctx, env.source())
	if err != nil {
		return err
	}

	entries := selectRemote(catalog, opts)
	if len(entries) == 0 {
		ui.Warning("No versions match")
		return nil
	}

	installed, err := env.layout.ListInstalled()
	if err != nil {
		ui.Warning("Could not check installed versions: %v", err)
	}
	installedSet := make(map[string]bool, len(installed))
	for _, v := range installed {
		installedSet[v] = true
	}
	active := env.activeVersion()

	table := tui.NewTable("", "Version", "LTS", "Released")
	table.SetTitle(env.runtime.DisplayName())

	for _, e := range entries {
		version := e.String()
		marker := ""
		if installedSet[version] {
			marker = tui.GetCheckMark()
		}
		lts := ""
		if e.IsLTS() {
			lts = *e.LTS
		}
		if version == active {
			table.AddActiveRow(marker, version, lts, e.Date)
		} else {
			table.AddRow(marker, version, lts, e.Date)
		}
	}

	if latest, ok := index.LatestLTS(catalog); ok {
		table.SetFooter(fmt.Sprintf("Latest LTS: %s (%s)", latest.String(), *latest.LTS))
	}
	fmt.Println(table.Render())
	return nil
}

// selectRemote filters and orders catalog entries for display
func selectRemote(catalog []index.CatalogEntry, opts listRemoteOptions) []index.CatalogEntry {
	entries := catalog
	if opts.ltsOnly {
		entries = index.FilterLTS(entries)
	}

	if opts.filter != "" {
		var matches func(index.CatalogEntry) bool
		if spec, err := resolve.ParseSpecifier(opts.filter); err == nil && !spec.IsExact() {
			matches = func(e index.CatalogEntry) bool { return spec.Range.Check(e.Version) }
		} else {
			needle := strings.TrimPrefix(opts.filter, "v")
			matches = func(e index.CatalogEntry) bool { return strings.Contains(e.String(), needle) }
		}

		filtered := make([]index.CatalogEntry, 0, len(entries))
		for _, e := range entries {
			if matches(e) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	} else {
		entries = append([]index.CatalogEntry(nil), entries...)
	}

	index.SortDescending(entries)
	if opts.limit > 0 && len(entries) > opts.limit {
		entries = entries[:opts.limit]
	}
	return entries
}
