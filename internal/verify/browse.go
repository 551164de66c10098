package verify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

// Browse walks the read side the way a ticket buyer would: trending list,
// search, event details, sessions, seating map, then the internal seat and
// pre-order validations, finishing with the analytics endpoints. It only
// proves retrievability; the lifecycle protocol owns correctness.
type Browse struct {
	query *ticketly.QueryClient
	user  *auth.TokenCache
}

func NewBrowse(query *ticketly.QueryClient, user *auth.TokenCache) *Browse {
	return &Browse{query: query, user: user}
}

// Run browses from the trending list down to pre-order validation. EventID is
// optional; when empty the first trending event is used.
func (b *Browse) Run(ctx context.Context, eventID string) error {
	token, err := b.user.Token(ctx)
	if err != nil {
		return err
	}

	trending, err := b.query.TrendingEvents(ctx, token, 10)
	if err != nil {
		return err
	}
	log.Infof("trending: %d events", len(trending))
	if eventID == "" {
		if len(trending) == 0 {
			return assertionf("no trending events and no event id given")
		}
		eventID = trending[0].ID
	}

	event, err := b.query.EventBasicInfo(ctx, token, eventID)
	if err != nil {
		return err
	}
	log.Infof("event %s: %q (%s)", event.ID, event.Title, event.Status)

	if event.Title != "" {
		page, err := b.query.SearchEvents(ctx, token, event.Title, 0, 10)
		if err != nil {
			return err
		}
		log.Infof("search %q: %d results", event.Title, page.TotalElements)
	}

	sessions, err := b.query.EventSessions(ctx, token, eventID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return assertionf("event %s has no sessions to browse", eventID)
	}
	sessionID := sessions[0].ID

	if _, err := b.query.SessionBasicInfo(ctx, token, sessionID); err != nil {
		return err
	}
	seatingMap, err := b.query.SeatingMap(ctx, token, sessionID)
	if err != nil {
		return err
	}

	var seatIDs []string
	for _, seat := range seatingMap.Seats() {
		if seat.Status == ticketly.SeatAvailable {
			seatIDs = append(seatIDs, seat.ID)
		}
		if len(seatIDs) == 3 {
			break
		}
	}
	if len(seatIDs) == 0 {
		return assertionf("session %s has no AVAILABLE seats to validate", sessionID)
	}

	request := ticketly.SeatValidationRequest{
		EventID:   eventID,
		SessionID: sessionID,
		SeatIDs:   seatIDs,
	}
	if err := b.query.ValidateSeats(ctx, token, request); err != nil {
		return err
	}
	if err := b.query.ValidatePreOrder(ctx, token, request); err != nil {
		return err
	}
	log.Infof("validated %d seats for pre-order", len(seatIDs))

	if _, err := b.query.EventAnalytics(ctx, token, eventID); err != nil {
		return err
	}
	if _, err := b.query.EventSessionAnalytics(ctx, token, eventID); err != nil {
		return err
	}
	if _, err := b.query.SessionAnalytics(ctx, token, eventID, sessionID); err != nil {
		return err
	}
	log.Info("browse journey completed")
	return nil
}
