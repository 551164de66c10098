// Package loadtest drives many concurrent virtual actors against the
// order-placement endpoint and classifies the outcome distribution. The
// harness only observes arbitration; correctness of the seat lock itself is
// the platform's job.
package loadtest

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

// TokenCacheFactory builds one credential cache per actor. Caches are actor
// private; nothing is shared between actors except the remote seat.
type TokenCacheFactory func() *auth.TokenCache

// Race runs the deterministic contention scenario: all actors attempt, in
// lock-step rounds, to book the same seat, one round per seat in the pool.
type Race struct {
	orders     *ticketly.OrderClient
	target     Target
	actors     int
	classifier Classifier
	newCache   TokenCacheFactory
}

func NewRace(orders *ticketly.OrderClient, target Target, spec RaceSpec, classifier Classifier, newCache TokenCacheFactory) *Race {
	return &Race{
		orders:     orders,
		target:     target,
		actors:     spec.Actors,
		classifier: classifier,
		newCache:   newCache,
	}
}

// SeatResult is the outcome distribution of one contested round.
type SeatResult struct {
	SeatID string
	Tally  Tally
}

type RaceReport struct {
	Actors  int
	Seats   []SeatResult
	Overall Tally
}

// Run executes one round per seat. Within a round every actor blocks on a
// shared start gate so attempts land as close to simultaneously as the
// runtime allows.
func (r *Race) Run(ctx context.Context) (*RaceReport, error) {
	report := &RaceReport{Actors: r.actors}

	// acquire per-actor credentials up front so token latency is out of band
	caches := make([]*auth.TokenCache, r.actors)
	for i := range caches {
		caches[i] = r.newCache()
		if _, err := caches[i].Token(ctx); err != nil {
			return nil, errors.WithMessagef(err, "actor %d failed to authenticate", i)
		}
	}

	overall := &Counters{}
	for round, seatID := range r.target.SeatIDs {
		log.Infof("round %d/%d: %d actors racing for seat %s", round+1, len(r.target.SeatIDs), r.actors, seatID)

		counters := &Counters{}
		start := make(chan struct{})
		wg := &sync.WaitGroup{}
		for i := 0; i < r.actors; i++ {
			wg.Add(1)
			go func(actor int) {
				defer wg.Done()
				token, err := caches[actor].Token(ctx)
				if err != nil {
					counters.Add(ClassOther)
					overall.Add(ClassOther)
					return
				}
				<-start
				outcome, err := r.orders.TryPlaceOrder(ctx, token, ticketly.OrderRequest{
					EventID:        r.target.EventID,
					SessionID:      r.target.SessionID,
					SeatIDs:        []string{seatID},
					OrganizationID: r.target.OrganizationID,
				})
				class := ClassOther
				if err == nil {
					class = r.classifier.Classify(outcome.Status)
				}
				counters.Add(class)
				overall.Add(class)
			}(i)
		}
		close(start)
		wg.Wait()

		tally := counters.Snapshot()
		log.Infof("round %d/%d seat %s: %s", round+1, len(r.target.SeatIDs), seatID, tally)
		report.Seats = append(report.Seats, SeatResult{SeatID: seatID, Tally: tally})

		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	report.Overall = overall.Snapshot()
	log.Infof("race complete: %s", report.Overall)
	return report, nil
}

// Evaluate checks the arbitration invariants: exactly one winner per seat,
// every other attempt rejected with a conflict-class status, and no server
// errors.
func (r *RaceReport) Evaluate() error {
	for _, seat := range r.Seats {
		if seat.Tally.Success != 1 {
			return errors.Errorf("seat %s: expected exactly 1 successful booking, got %d", seat.SeatID, seat.Tally.Success)
		}
		if rejections := seat.Tally.Rejections(); rejections != int64(r.Actors-1) {
			return errors.Errorf("seat %s: expected %d rejections, got %d", seat.SeatID, r.Actors-1, rejections)
		}
		if seat.Tally.ServerError > 0 {
			return errors.Errorf("seat %s: %d server errors", seat.SeatID, seat.Tally.ServerError)
		}
	}
	if want := int64(len(r.Seats)); r.Overall.Success != want {
		return errors.Errorf("expected %d total successes, got %d", want, r.Overall.Success)
	}
	if want := int64(r.Actors * len(r.Seats)); r.Overall.Total() != want {
		return errors.Errorf("expected %d total requests, got %d", want, r.Overall.Total())
	}
	return nil
}
