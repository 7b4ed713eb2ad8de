package cmd

import (
	"fmt"

	"github.com/rtvm/rtvm/src/internal/remove"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <version>...",
	Aliases: []string{"uninstall", "rm"},
	Short:   "Remove installed Node.js versions",
	Long: `Delete installed Node.js versions.

Only exact versions are accepted. Removing the active version deactivates
it first, so no link is left pointing at a deleted directory.

Examples:
  rtvm remove 16.20.2
  rtvm rm 16.20.2 18.16.0`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("at least one version is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(args)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(specs []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	remover := remove.New(env.layout, env.activator)

	var results []remove.Result
	err = ui.WithSpinner("Removing...", func() error {
		var err error
		results, err = remover.RemoveAll(specs)
		return err
	})
	if err != nil {
		return err
	}

	name := env.runtime.DisplayName()
	problems := 0
	for _, r := range results {
		switch r.Status {
		case remove.Removed:
			if r.WasActive {
				ui.Success("Removed %s %s (was active; no version is active now)", name, ui.HighlightVersion(r.Version))
			} else {
				ui.Success("Removed %s %s", name, ui.HighlightVersion(r.Version))
			}
		case remove.NotInstalled:
			problems++
			ui.Error("%s %s is not installed", name, r.Version)
		case remove.Failed:
			problems++
			ui.Error("Failed to remove %s %s: %v", name, r.Version, r.Err)
		}
	}

	if problems > 0 {
		return errReported
	}
	return nil
}
