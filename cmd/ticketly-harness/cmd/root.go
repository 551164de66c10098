package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ticketly/system-tests/internal/common"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	var timestamps bool
	cmd := &cobra.Command{
		Use:   "ticketly-harness",
		Short: "ticketly-harness exercises a ticketing deployment end to end.",
		Long: `ticketly-harness runs integration scenarios against a live ticketing
deployment: connectivity checks, data seeding and cleanup, full lifecycle
verification across the command and query sides, and seat-contention load
tests. Configuration is taken from TICKETLY_* environment variables.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if timestamps {
				common.ConfigureLogging()
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&timestamps, "timestamps", false,
		"log with timestamps, useful when measuring propagation lag")

	cmd.AddCommand(
		connectivityCmd(),
		browseCmd(),
		seedCmd(),
		cleanupCmd(),
		verifyCmd(),
		loadtestCmd(),
	)

	return cmd
}

func Execute() {
	if err := RootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
