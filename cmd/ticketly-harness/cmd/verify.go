package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketly/system-tests/internal/harness"
	"github.com/ticketly/system-tests/internal/poll"
	"github.com/ticketly/system-tests/internal/seed"
	"github.com/ticketly/system-tests/internal/verify"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

func verifyCmd() *cobra.Command {
	var (
		eventDeleteActor string
		orgDeleteActor   string
		imagePath        string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Runs the full event lifecycle across the command and query sides.",
		Long: `verify creates an organization and event, watches the approval propagate
into the query-side projection, places an order against a locked seat, closes
the session and tears everything down again, asserting the state of every
datastore at each step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := harness.New()
			if err != nil {
				return err
			}

			// Organization and category ids are bound during the run; the
			// builder only supplies the event shape.
			payload := seed.NewBuilder(time.Now().UnixNano()).Event(0, "", ticketly.Category{})

			protocol := verify.NewProtocol(
				app.Command, app.Query, app.Orders,
				app.EventDB, app.OrderDB, app.Docs, app.Locks,
				app.User, app.Admin,
				verify.Options{
					Poll: poll.Options{
						Timeout:  app.Config.PollTimeout,
						Interval: app.Config.PollInterval,
					},
					SettleDelay:             app.Config.SettleDelay,
					EventDeleteActor:        verify.Actor(eventDeleteActor),
					OrganizationDeleteActor: verify.Actor(orgDeleteActor),
					EventPayload:            payload,
					ImagePath:               imagePath,
				},
			)
			return protocol.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&eventDeleteActor, "event-delete-actor", "", "identity used to delete the event: user or admin (default admin)")
	cmd.Flags().StringVar(&orgDeleteActor, "org-delete-actor", "", "identity used to delete the organization: user or admin (default user)")
	cmd.Flags().StringVar(&imagePath, "image", "", "optional cover image to attach to the created event")
	return cmd
}
