package seed

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

// Cleaner deletes everything a previous seeding run recorded. Deletions are
// best effort: a missing event must not stop the rest of the teardown.
type Cleaner struct {
	command *ticketly.CommandClient
	user    *auth.TokenCache
}

func NewCleaner(command *ticketly.CommandClient, user *auth.TokenCache) *Cleaner {
	return &Cleaner{command: command, user: user}
}

// Run deletes the recorded events and then the organization. It returns the
// number of entities that could not be deleted.
func (c *Cleaner) Run(ctx context.Context, record *Record) (int, error) {
	token, err := c.user.Token(ctx)
	if err != nil {
		return 0, err
	}

	failed := 0
	log.Infof("deleting %d seeded events", len(record.Events))
	for _, event := range record.Events {
		log.Infof("deleting event %q (%s)", event.Title, event.ID)
		if err := c.command.DeleteEvent(ctx, token, event.ID); err != nil {
			log.WithError(err).Errorf("failed to delete event %s", event.ID)
			failed++
		}
	}

	if record.OrganizationID != "" {
		log.Infof("deleting organization %s", record.OrganizationID)
		if err := c.command.DeleteOrganization(ctx, token, record.OrganizationID); err != nil {
			log.WithError(err).Errorf("failed to delete organization %s", record.OrganizationID)
			failed++
		}
	}

	log.Info("cleanup completed")
	return failed, nil
}
