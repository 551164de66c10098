package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ticketly/system-tests/internal/harness"
	"github.com/ticketly/system-tests/internal/seed"
)

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup [record-file]",
		Short: "Deletes everything a previous seed run created.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := harness.New()
			if err != nil {
				return err
			}
			path := app.Config.SeedOutputPath
			if len(args) == 1 {
				path = args[0]
			}
			record, err := seed.ReadRecord(path)
			if err != nil {
				return err
			}
			failed, err := seed.NewCleaner(app.Command, app.User).Run(cmd.Context(), record)
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.Errorf("%d entities could not be deleted", failed)
			}
			return nil
		},
	}
}
