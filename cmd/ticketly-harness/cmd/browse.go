package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ticketly/system-tests/internal/harness"
	"github.com/ticketly/system-tests/internal/verify"
)

func browseCmd() *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Walks the query side like a ticket buyer, down to pre-order validation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := harness.New()
			if err != nil {
				return err
			}
			return verify.NewBrowse(app.Query, app.User).Run(cmd.Context(), eventID)
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "event to browse (default: first trending event)")
	return cmd
}
