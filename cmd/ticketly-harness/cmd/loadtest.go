package cmd

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ticketly/system-tests/internal/harness"
	"github.com/ticketly/system-tests/internal/loadtest"
)

func loadtestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loadtest <spec-file>",
		Short: "Runs a seat-contention load scenario described by a YAML spec.",
		Long: `loadtest reads a scenario spec naming the target event, session and seats,
and either a deterministic race (N actors per seat, exactly one may win) or a
staged randomized stress ramp. The run fails when the scenario's arbitration
or error-rate expectations are not met.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := harness.New()
			if err != nil {
				return err
			}
			spec, err := loadtest.LoadSpec(args[0])
			if err != nil {
				return err
			}
			classifier, err := spec.Classifier()
			if err != nil {
				return err
			}
			newCache := app.UserTokenCacheFactory()

			switch {
			case spec.Race != nil:
				race := loadtest.NewRace(app.Orders, spec.Target, *spec.Race, classifier, newCache)
				report, err := race.Run(cmd.Context())
				if err != nil {
					return err
				}
				log.Infof("race finished: %s", report.Overall)
				return report.Evaluate()
			case spec.Stress != nil:
				stress := loadtest.NewStress(app.Orders, spec.Target, *spec.Stress, classifier, newCache)
				report, err := stress.Run(cmd.Context())
				if err != nil {
					return err
				}
				log.Infof("stress finished at peak of %d actors: %s", report.PeakActor, report.Tally)
				return report.Evaluate(*spec.Stress)
			default:
				return errors.New("spec names no scenario")
			}
		},
	}
}
