// Package verify implements the end-to-end CQRS consistency proof: a
// strictly ordered, single-actor sequence of commands and cross-store
// assertions. Any failed assertion aborts the remaining sequence; the run is
// an all-or-nothing proof of write-path to read-path propagation.
package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ticketly/system-tests/internal/poll"
	"github.com/ticketly/system-tests/internal/probes"
	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

const (
	projectionDatabase   = "event-seating"
	projectionCollection = "events"
)

// AssertionError reports an invariant that did not hold. Unlike
// poll.ErrTimeout it signals a logic problem rather than propagation lag.
type AssertionError struct {
	msg string
}

func (e *AssertionError) Error() string { return e.msg }

func assertionf(format string, args ...interface{}) error {
	return &AssertionError{msg: fmt.Sprintf(format, args...)}
}

// Actor selects which credential performs a teardown command. The platform's
// authorization rules for deletion differ between deployments, so the choice
// is configuration, not a constant.
type Actor string

const (
	ActorUser  Actor = "user"
	ActorAdmin Actor = "admin"
)

type Options struct {
	Poll poll.Options
	// SettleDelay is the grace period applied after setting a session
	// ON_SALE before the seating map is read.
	SettleDelay time.Duration
	// EventDeleteActor and OrganizationDeleteActor choose the credential for
	// the two teardown commands.
	EventDeleteActor        Actor
	OrganizationDeleteActor Actor
	// EventPayload is the create-event request; organization and category ids
	// are bound during the run.
	EventPayload *ticketly.EventPayload
	// ImagePath optionally attaches a cover image to the create-event upload.
	ImagePath        string
	OrganizationName string
}

func (o Options) withDefaults() Options {
	if o.EventDeleteActor == "" {
		o.EventDeleteActor = ActorAdmin
	}
	if o.OrganizationDeleteActor == "" {
		o.OrganizationDeleteActor = ActorUser
	}
	if o.OrganizationName == "" {
		o.OrganizationName = "Ticketly Verification Organization"
	}
	return o
}

// Protocol wires the clients and probes the lifecycle run needs. All state
// produced during a run is created, mutated and deleted within that run.
type Protocol struct {
	command *ticketly.CommandClient
	query   *ticketly.QueryClient
	orders  *ticketly.OrderClient

	eventDB probes.Relational
	orderDB probes.Relational
	docs    probes.Document
	locks   probes.KeyValue

	user  *auth.TokenCache
	admin *auth.TokenCache

	opts Options
}

func NewProtocol(
	command *ticketly.CommandClient,
	query *ticketly.QueryClient,
	orders *ticketly.OrderClient,
	eventDB, orderDB probes.Relational,
	docs probes.Document,
	locks probes.KeyValue,
	user, admin *auth.TokenCache,
	opts Options,
) *Protocol {
	return &Protocol{
		command: command,
		query:   query,
		orders:  orders,
		eventDB: eventDB,
		orderDB: orderDB,
		docs:    docs,
		locks:   locks,
		user:    user,
		admin:   admin,
		opts:    opts.withDefaults(),
	}
}

// run-scoped identifiers, populated as steps complete
type runState struct {
	userToken      string
	organizationID string
	categoryID     string
	categoryName   string
	eventID        string
	sessionID      string
	seatID         string
	orderID        string
}

// Run executes the full lifecycle. The first error aborts the sequence.
func (p *Protocol) Run(ctx context.Context) error {
	log.Info("--- starting full lifecycle verification ---")
	state := &runState{}

	steps := []struct {
		name string
		fn   func(context.Context, *runState) error
	}{
		{"authenticate", p.authenticate},
		{"create organization", p.createOrganization},
		{"select category", p.selectCategory},
		{"create event (PENDING)", p.createEvent},
		{"verify projection absent", p.verifyProjectionAbsent},
		{"approve event", p.approveEvent},
		{"verify projection present", p.verifyProjectionPresent},
		{"discover session", p.discoverSession},
		{"set session ON_SALE", p.setSessionOnSale},
		{"select seat", p.selectSeat},
		{"place order", p.placeOrder},
		{"close session", p.closeSession},
		{"delete event", p.deleteEvent},
		{"delete organization", p.deleteOrganization},
	}

	for i, step := range steps {
		log.Infof("step %d/%d: %s", i+1, len(steps), step.name)
		if err := step.fn(ctx, state); err != nil {
			return errors.WithMessagef(err, "lifecycle aborted at step %q", step.name)
		}
		log.Infof("step %d/%d complete", i+1, len(steps))
	}

	log.Info("--- full lifecycle verification completed successfully ---")
	return nil
}

func (p *Protocol) authenticate(ctx context.Context, state *runState) error {
	token, err := p.user.Token(ctx)
	if err != nil {
		return err
	}
	state.userToken = token
	return nil
}

func (p *Protocol) createOrganization(ctx context.Context, state *runState) error {
	organization, err := p.command.CreateOrganization(ctx, state.userToken, p.opts.OrganizationName)
	if err != nil {
		return err
	}
	if organization.ID == "" {
		return assertionf("create organization returned an empty id")
	}
	state.organizationID = organization.ID

	rows, err := p.eventDB.Query(ctx, "SELECT id FROM organizations WHERE id = $1", organization.ID)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return assertionf("expected 1 organization row for %s, found %d", organization.ID, len(rows))
	}
	return nil
}

func (p *Protocol) selectCategory(ctx context.Context, state *runState) error {
	categories, err := p.command.ListCategories(ctx, state.userToken)
	if err != nil {
		return err
	}
	subCategory, ok := ticketly.FirstLeafSubCategory(categories)
	if !ok {
		return assertionf("no sub-categories exist; cannot create an event")
	}
	state.categoryID = subCategory.ID
	state.categoryName = subCategory.Name
	return nil
}

func (p *Protocol) createEvent(ctx context.Context, state *runState) error {
	payload := p.opts.EventPayload
	if payload == nil {
		return assertionf("no event payload configured")
	}
	payload.Apply(ticketly.Overrides{
		OrganizationID: state.organizationID,
		CategoryID:     state.categoryID,
		CategoryName:   state.categoryName,
	})

	event, err := p.command.CreateEvent(ctx, state.userToken, payload, p.opts.ImagePath)
	if err != nil {
		return err
	}
	if event.ID == "" {
		return assertionf("create event returned an empty id")
	}
	state.eventID = event.ID

	return p.assertEventStatus(ctx, state.eventID, ticketly.EventPending)
}

func (p *Protocol) assertEventStatus(ctx context.Context, eventID, want string) error {
	rows, err := p.eventDB.Query(ctx, "SELECT status FROM events WHERE id = $1", eventID)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return assertionf("expected 1 event row for %s, found %d", eventID, len(rows))
	}
	status, _ := rows[0]["status"].(string)
	if status != want {
		return assertionf("event %s status is %q, want %q", eventID, status, want)
	}
	return nil
}

// verifyProjectionAbsent is a deliberate negative assertion with no polling:
// a PENDING event must not have reached the read side yet, proving the
// projection lag is real and observable.
func (p *Protocol) verifyProjectionAbsent(ctx context.Context, state *runState) error {
	documents, err := p.docs.Find(ctx, projectionDatabase, projectionCollection, bson.M{"_id": state.eventID})
	if err != nil {
		return err
	}
	if len(documents) != 0 {
		return assertionf("PENDING event %s already present in projection (%d documents)", state.eventID, len(documents))
	}
	return nil
}

func (p *Protocol) approveEvent(ctx context.Context, state *runState) error {
	// approval crosses a privilege boundary: it requires the admin credential
	adminToken, err := p.admin.Token(ctx)
	if err != nil {
		return err
	}
	if err := p.command.ApproveEvent(ctx, adminToken, state.eventID); err != nil {
		return err
	}
	return p.assertEventStatus(ctx, state.eventID, ticketly.EventApproved)
}

func (p *Protocol) verifyProjectionPresent(ctx context.Context, state *runState) error {
	return poll.Until(ctx, func(ctx context.Context) (bool, error) {
		documents, err := p.docs.Find(ctx, projectionDatabase, projectionCollection, bson.M{"_id": state.eventID})
		if err != nil {
			return false, err
		}
		if len(documents) > 1 {
			return false, assertionf("projection contains %d documents for event %s, want exactly 1", len(documents), state.eventID)
		}
		return len(documents) == 1, nil
	}, p.opts.Poll)
}

func (p *Protocol) discoverSession(ctx context.Context, state *runState) error {
	if _, err := p.query.EventBasicInfo(ctx, state.userToken, state.eventID); err != nil {
		return err
	}
	sessions, err := p.query.EventSessions(ctx, state.userToken, state.eventID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return assertionf("event %s has no sessions on the query side", state.eventID)
	}
	state.sessionID = sessions[0].ID
	return nil
}

func (p *Protocol) setSessionOnSale(ctx context.Context, state *runState) error {
	if err := p.command.SetSessionStatus(ctx, state.userToken, state.sessionID, ticketly.SessionOnSale); err != nil {
		return err
	}
	// propagation grace period before the first seating-map read
	if p.opts.SettleDelay > 0 {
		select {
		case <-time.After(p.opts.SettleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Protocol) selectSeat(ctx context.Context, state *runState) error {
	seatingMap, err := p.query.SeatingMap(ctx, state.userToken, state.sessionID)
	if err != nil {
		return err
	}
	seat, ok := seatingMap.FirstAvailableSeat()
	if !ok {
		return assertionf("session %s has no AVAILABLE seat", state.sessionID)
	}
	state.seatID = seat.ID
	return nil
}

func (p *Protocol) placeOrder(ctx context.Context, state *runState) error {
	order, err := p.orders.PlaceOrder(ctx, state.userToken, ticketly.OrderRequest{
		EventID:        state.eventID,
		SessionID:      state.sessionID,
		SeatIDs:        []string{state.seatID},
		OrganizationID: state.organizationID,
	})
	if err != nil {
		return err
	}
	if order.OrderID == "" {
		return assertionf("order placement returned an empty order_id")
	}
	state.orderID = order.OrderID

	rows, err := p.orderDB.Query(ctx, "SELECT status FROM orders WHERE order_id = $1", order.OrderID)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return assertionf("expected 1 order row for %s, found %d", order.OrderID, len(rows))
	}
	if status, _ := rows[0]["status"].(string); status != "pending" {
		return assertionf("order %s status is %q, want %q", order.OrderID, status, "pending")
	}

	locked, err := p.locks.KeyExists(ctx, probes.SeatLockKey(state.seatID))
	if err != nil {
		return err
	}
	if !locked {
		return assertionf("lock key %s absent while order %s is pending", probes.SeatLockKey(state.seatID), order.OrderID)
	}

	return poll.Until(ctx, func(ctx context.Context) (bool, error) {
		status, err := p.projectedSeatStatus(ctx, state.eventID, state.seatID)
		if err != nil {
			return false, err
		}
		return status == ticketly.SeatLocked, nil
	}, p.opts.Poll)
}

func (p *Protocol) closeSession(ctx context.Context, state *runState) error {
	if err := p.command.SetSessionStatus(ctx, state.userToken, state.sessionID, ticketly.SessionClosed); err != nil {
		return err
	}

	rows, err := p.eventDB.Query(ctx, "SELECT status FROM event_sessions WHERE id = $1", state.sessionID)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return assertionf("expected 1 session row for %s, found %d", state.sessionID, len(rows))
	}
	if status, _ := rows[0]["status"].(string); status != ticketly.SessionClosed {
		return assertionf("session %s status is %q, want %q", state.sessionID, status, ticketly.SessionClosed)
	}

	return poll.Until(ctx, func(ctx context.Context) (bool, error) {
		status, err := p.projectedSessionStatus(ctx, state.eventID)
		if err != nil {
			return false, err
		}
		return status == ticketly.SessionClosed, nil
	}, p.opts.Poll)
}

func (p *Protocol) deleteEvent(ctx context.Context, state *runState) error {
	token, err := p.tokenFor(ctx, p.opts.EventDeleteActor, state)
	if err != nil {
		return err
	}
	if err := p.command.DeleteEvent(ctx, token, state.eventID); err != nil {
		return err
	}

	rows, err := p.eventDB.Query(ctx, "SELECT id FROM events WHERE id = $1", state.eventID)
	if err != nil {
		return err
	}
	if len(rows) != 0 {
		return assertionf("event %s still present in relational store after delete", state.eventID)
	}

	return poll.Until(ctx, func(ctx context.Context) (bool, error) {
		documents, err := p.docs.Find(ctx, projectionDatabase, projectionCollection, bson.M{"_id": state.eventID})
		if err != nil {
			return false, err
		}
		return len(documents) == 0, nil
	}, p.opts.Poll)
}

func (p *Protocol) deleteOrganization(ctx context.Context, state *runState) error {
	token, err := p.tokenFor(ctx, p.opts.OrganizationDeleteActor, state)
	if err != nil {
		return err
	}
	if err := p.command.DeleteOrganization(ctx, token, state.organizationID); err != nil {
		return err
	}

	rows, err := p.eventDB.Query(ctx, "SELECT id FROM organizations WHERE id = $1", state.organizationID)
	if err != nil {
		return err
	}
	if len(rows) != 0 {
		return assertionf("organization %s still present in relational store after delete", state.organizationID)
	}
	return nil
}

func (p *Protocol) tokenFor(ctx context.Context, actor Actor, state *runState) (string, error) {
	if actor == ActorAdmin {
		return p.admin.Token(ctx)
	}
	return p.user.Token(ctx)
}

// projectedSeatStatus digs a seat's status out of the event projection
// document: sessions[0].layoutData.layout.blocks[].rows[].seats[].
func (p *Protocol) projectedSeatStatus(ctx context.Context, eventID, seatID string) (string, error) {
	document, err := p.projectionDocument(ctx, eventID)
	if err != nil || document == nil {
		return "", err
	}
	session, ok := firstSession(document)
	if !ok {
		return "", nil
	}
	layoutData, _ := session["layoutData"].(bson.M)
	layout, _ := layoutData["layout"].(bson.M)
	blocks, _ := layout["blocks"].(bson.A)
	for _, rawBlock := range blocks {
		block, _ := rawBlock.(bson.M)
		rows, _ := block["rows"].(bson.A)
		for _, rawRow := range rows {
			row, _ := rawRow.(bson.M)
			seats, _ := row["seats"].(bson.A)
			for _, rawSeat := range seats {
				seat, _ := rawSeat.(bson.M)
				if id, _ := seat["_id"].(string); id == seatID {
					status, _ := seat["status"].(string)
					return status, nil
				}
			}
		}
	}
	return "", nil
}

func (p *Protocol) projectedSessionStatus(ctx context.Context, eventID string) (string, error) {
	document, err := p.projectionDocument(ctx, eventID)
	if err != nil || document == nil {
		return "", err
	}
	session, ok := firstSession(document)
	if !ok {
		return "", nil
	}
	status, _ := session["status"].(string)
	return status, nil
}

func (p *Protocol) projectionDocument(ctx context.Context, eventID string) (bson.M, error) {
	documents, err := p.docs.Find(ctx, projectionDatabase, projectionCollection, bson.M{"_id": eventID})
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, nil
	}
	return documents[0], nil
}

func firstSession(document bson.M) (bson.M, bool) {
	sessions, _ := document["sessions"].(bson.A)
	if len(sessions) == 0 {
		return nil, false
	}
	session, ok := sessions[0].(bson.M)
	return session, ok
}
