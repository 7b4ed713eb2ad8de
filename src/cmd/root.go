// Package cmd implements the CLI commands for rtvm
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rtvm/rtvm/src/internal/config"
	"github.com/rtvm/rtvm/src/internal/tui"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "rtvm",
	Short:         "Runtime Version Manager",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.CheckVerboseEnv()
		if verbose || config.Current().Verbose {
			ui.SetVerbose(true)
		}
		if err := config.SettingsError(); err != nil {
			ui.Warning("Ignoring settings: %v", err)
		}
	},
}

func Execute() {
	// Check for --version or -v flag before Cobra parses
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-v" {
			versionCmd.Run(versionCmd, []string{})
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	// Hide the completion command until we implement it
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output for debugging")

	rootCmd.SetUsageFunc(customUsage)
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Println(cmd.Long)
			fmt.Println()
			fmt.Print(cmd.UsageString())
			return
		}
		_ = customUsage(cmd)
	})
}

func customUsage(cmd *cobra.Command) error {
	if cmd != rootCmd {
		fmt.Printf("Usage:\n  %s\n", cmd.UseLine())
		if cmd.HasAvailableLocalFlags() {
			fmt.Printf("\nFlags:\n%s", cmd.LocalFlags().FlagUsages())
		}
		return nil
	}

	const tableWidth = 80

	headerTable := tui.NewTable("")
	headerTable.SetTitle(cmd.Short)
	headerTable.HideHeader()
	headerTable.SetMinWidth(tableWidth)
	headerTable.AddRow("rtvm installs Node.js releases side by side and switches between them")
	headerTable.AddRow("by pointing a single link directory at the active version.")

	fmt.Println(headerTable.Render())
	fmt.Println()

	table := tui.NewTable("Command", "Aliases", "Description")
	table.SetTitle("Available Commands")
	table.SetMinWidth(tableWidth)
	table.SetFooter("Run 'rtvm <command> --help' for the flags of a command.")

	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "completion" || c.Name() == "help" {
			continue
		}
		table.AddRow(c.Name(), strings.Join(c.Aliases, ", "), c.Short)
	}

	fmt.Println(table.Render())

	return nil
}
