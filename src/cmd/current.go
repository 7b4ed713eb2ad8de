package cmd

import (
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var currentPathFlag bool

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active version",
	Long: `Show the active Node.js version.

Examples:
  rtvm current
  rtvm current --path    # Print the active version's directory`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCurrent(currentPathFlag)
	},
}

func init() {
	currentCmd.Flags().BoolVar(&currentPathFlag, "path", false, "Print the install directory instead of the version")
	rootCmd.AddCommand(currentCmd)
}

func runCurrent(showPath bool) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	version, ok, err := env.activator.Current()
	if err != nil {
		return err
	}
	if !ok {
		ui.Info("No %s version is active", env.runtime.DisplayName())
		ui.Info("Activate one with: rtvm use <version>")
		return nil
	}

	if showPath {
		ui.Println("%s", env.layout.VersionDir(version))
		return nil
	}
	ui.Println("%s", version)
	return nil
}
