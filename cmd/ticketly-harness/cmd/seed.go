package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketly/system-tests/internal/harness"
	"github.com/ticketly/system-tests/internal/seed"
)

func seedCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seeds the deployment with a fresh organization and approved events.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := harness.New()
			if err != nil {
				return err
			}
			if count <= 0 {
				count = app.Config.SeedEventCount
			}
			seeder := seed.NewSeeder(app.Command, app.User, app.Admin,
				seed.NewBuilder(time.Now().UnixNano()))
			_, err = seeder.Run(cmd.Context(), seed.Options{
				Count:      count,
				ImagesDir:  app.Config.ImagesDir,
				OutputPath: app.Config.SeedOutputPath,
			})
			return err
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "number of events to create (default from configuration)")
	return cmd
}
