package cmd

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ticketly/system-tests/internal/common"
	"github.com/ticketly/system-tests/internal/harness"
	"github.com/ticketly/system-tests/internal/probes"
)

func connectivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connectivity",
		Short: "Checks that every service and datastore the harness touches is reachable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := harness.New()
			if err != nil {
				return err
			}
			return runConnectivity(cmd.Context(), app)
		},
	}
}

// runConnectivity exercises each dependency with the cheapest call that
// proves the connection and the credentials work. Every failure is reported;
// the command fails if any check failed.
func runConnectivity(ctx context.Context, app *harness.App) error {
	failures := 0
	check := func(name string, err error) {
		if err != nil {
			log.WithError(err).Errorf("FAIL %s", name)
			failures++
			return
		}
		log.Infof("OK   %s", name)
	}

	userToken, err := app.User.Token(ctx)
	check("keycloak (user grant)", err)
	_, adminErr := app.Admin.Token(ctx)
	check("keycloak (admin grant)", adminErr)

	if err == nil {
		_, err := app.Command.ListCategories(ctx, userToken)
		check("command service (list categories)", err)

		_, err = app.Query.TrendingEvents(ctx, userToken, 1)
		check("query service (trending events)", err)
	} else {
		log.Warn("skipping service checks, no user token")
	}

	// datastore checks share one bounded deadline so an unreachable store
	// cannot stall the command indefinitely
	storeCtx, cancel := common.ContextWithDefaultTimeout()
	defer cancel()
	_, err = app.EventDB.Query(storeCtx, "SELECT 1")
	check("event database", err)
	_, err = app.OrderDB.Query(storeCtx, "SELECT 1")
	check("order database", err)

	_, err = app.Docs.Find(storeCtx, "event-seating", "events", bson.M{"_id": "connectivity-check"})
	check("projection store", err)

	_, err = app.Locks.KeyExists(storeCtx, probes.SeatLockKey("connectivity-check"))
	check("lock store", err)

	if failures > 0 {
		return errors.Errorf("%d connectivity check(s) failed", failures)
	}
	log.Info("all connectivity checks passed")
	return nil
}
