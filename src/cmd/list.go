package cmd

import (
	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed versions",
	Long: `List installed Node.js versions, oldest first. The active version is marked.

Examples:
  rtvm list
  rtvm ls`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList() error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	versions, err := env.installedVersions()
	if err != nil {
		return err
	}

	active := env.activeVersion()
	for _, v := range versions {
		iv := runtime.InstalledVersion{
			Version: v,
			Path:    env.layout.VersionDir(v),
			Active:  v == active,
		}
		if iv.Active {
			ui.Printf("%s\n", ui.Highlight(iv.String()))
		} else {
			ui.Printf("%s\n", iv.String())
		}
	}
	return nil
}
