package cmd

import (
	"os"

	"liv8/ghlm/cmd/commands/audit"
	"liv8/ghlm/cmd/commands/auth"
	cfgcmd "liv8/ghlm/cmd/commands/config"
	"liv8/ghlm/cmd/commands/location"
	plancmd "liv8/ghlm/cmd/commands/plan"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ghlm",
		Short: "A CLI tool for running CRM operations against GoHighLevel locations",
		Long: `ghlm connects GoHighLevel sub-accounts over OAuth and executes
reviewed action plans against them: contacts, tags, messaging,
opportunities and more, with a local audit trail of every call.

Quick start:
  ghlm auth connect <locationId>   # Exchange an authorization code
  ghlm plan validate plan.json     # Check a plan without running it
  ghlm plan run plan.json          # Execute a plan
  ghlm location pipelines          # Browse pipelines for the default location`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(plancmd.NewCommand())
	cmd.AddCommand(location.NewCommand())
	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
