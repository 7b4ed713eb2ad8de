package cmd

import (
	"github.com/rtvm/rtvm/src/internal/config"
	"github.com/rtvm/rtvm/src/internal/path"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var initYesFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize rtvm (setup directories and PATH)",
	Long: `Initialize rtvm by creating its directories and configuring your PATH.

This command:
  - Creates the storage and link directories
  - Adds the link directory to your PATH (with your permission)

Run this command after installing rtvm for the first time.

Example:
  rtvm init
  rtvm init --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(initYesFlag)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initYesFlag, "yes", "y", false, "Modify PATH without prompting")
	rootCmd.AddCommand(initCmd)
}

func runInit(assumeYes bool) error {
	ui.Header("Initializing rtvm...")

	env, err := newEnvironment()
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner("Creating directories...")
	spinner.Start()

	if err := config.EnsureDirectories(); err != nil {
		spinner.Error("Failed to create directories")
		return err
	}
	if err := env.layout.EnsureRoot(); err != nil {
		spinner.Error("Failed to create directories")
		return err
	}

	spinner.Success("Directories created")

	dir := env.layout.LinkDir
	if err := path.AddToPath(dir, assumeYes); err != nil {
		ui.Info("You can manually add %s to your PATH", dir)
		return err
	}

	ui.Success("rtvm initialized successfully!")
	ui.Info("\nNext steps:")
	ui.Info("  1. Restart your terminal if PATH was changed")
	ui.Info("  2. Run: rtvm install <version>")
	ui.Info("  3. Run: rtvm use <version>")
	return nil
}
