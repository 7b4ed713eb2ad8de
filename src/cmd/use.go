package cmd

import (
	"fmt"

	"github.com/rtvm/rtvm/src/internal/resolve"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <version>",
	Short: "Switch the active Node.js version",
	Long: `Make an installed Node.js version the one found on PATH.

The argument is an exact version or a range; a range selects the newest
installed version that satisfies it. Nothing is downloaded.

Examples:
  rtvm use 18.16.0
  rtvm use ^20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUse(args[0])
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}

func runUse(spec string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	installed, err := env.installedVersions()
	if err != nil {
		return err
	}

	version, err := resolve.ResolveInstalled(spec, installed)
	if err != nil {
		if resolve.IsNoMatch(err) {
			ui.Info("Install it with: rtvm install %s", spec)
			return fmt.Errorf("%s %s is not installed", env.runtime.DisplayName(), spec)
		}
		return err
	}

	if active := env.activeVersion(); active == version {
		ui.Info("Already using %s %s", env.runtime.DisplayName(), ui.HighlightVersion(version))
		return nil
	}

	ui.Debug("Activating %s (from %q)", version, spec)
	if err := env.activator.Activate(version); err != nil {
		return err
	}

	ui.Success("Now using %s %s", env.runtime.DisplayName(), ui.HighlightVersion(version))
	env.checkPath()
	return nil
}
