package loadtest

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

const summaryInterval = 5 * time.Second

// Stress runs the randomized contention scenario: a staged ramp of actors,
// each repeatedly booking a random seat from the pool until stopped.
type Stress struct {
	orders     *ticketly.OrderClient
	target     Target
	spec       StressSpec
	classifier Classifier
	newCache   TokenCacheFactory
}

func NewStress(orders *ticketly.OrderClient, target Target, spec StressSpec, classifier Classifier, newCache TokenCacheFactory) *Stress {
	return &Stress{
		orders:     orders,
		target:     target,
		spec:       spec,
		classifier: classifier,
		newCache:   newCache,
	}
}

type StressReport struct {
	Tally     Tally
	PeakActor int
}

// Run walks the configured stages: within each stage the actor pool is
// resized once per second toward the stage target, linearly, the way a
// ramping-VU executor does. Actors run until individually cancelled.
func (s *Stress) Run(ctx context.Context) (*StressReport, error) {
	counters := &Counters{}
	pool := newActorPool(s, counters)
	defer pool.stopAll()

	group, groupCtx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	group.Go(func() error {
		defer close(done)
		current := 0
		for _, stage := range s.spec.Stages {
			if err := s.runStage(groupCtx, pool, current, stage); err != nil {
				return err
			}
			current = stage.Target
		}
		return nil
	})

	// periodic summary, printed until the stage walker finishes
	group.Go(func() error {
		ticker := time.NewTicker(summaryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.Infof("stress progress: actors=%d %s", pool.size(), counters.Snapshot())
			case <-done:
				return nil
			case <-groupCtx.Done():
				return nil
			}
		}
	})

	err := group.Wait()
	pool.stopAll()

	report := &StressReport{Tally: counters.Snapshot(), PeakActor: pool.peak}
	log.Infof("stress complete: peak_actors=%d %s", report.PeakActor, report.Tally)
	if err != nil {
		return report, err
	}
	return report, nil
}

func (s *Stress) runStage(ctx context.Context, pool *actorPool, from int, stage Stage) error {
	duration := stage.Duration.Std()
	if duration <= 0 {
		pool.resize(ctx, stage.Target)
		return nil
	}

	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			elapsed := now.Sub(start)
			if elapsed >= duration {
				pool.resize(ctx, stage.Target)
				return nil
			}
			want := from + int(float64(stage.Target-from)*float64(elapsed)/float64(duration))
			pool.resize(ctx, want)
		}
	}
}

// Evaluate applies the scenario thresholds to the final tally.
func (r *StressReport) Evaluate(spec StressSpec) error {
	threshold := spec.ExpectedRateThreshold
	if threshold <= 0 {
		threshold = 0.95
	}
	errorCap := spec.ServerErrorCap
	if errorCap <= 0 {
		errorCap = 10
	}

	if fraction := r.Tally.ExpectedFraction(); fraction < threshold {
		return errors.Errorf("expected-response rate %.3f below threshold %.3f (%s)", fraction, threshold, r.Tally)
	}
	if r.Tally.ServerError > errorCap {
		return errors.Errorf("%d server errors exceed cap %d", r.Tally.ServerError, errorCap)
	}
	return nil
}

// actorPool grows and shrinks the set of running actors. Each actor owns its
// token cache and RNG; the only shared state is the atomic counter set.
type actorPool struct {
	stress   *Stress
	counters *Counters

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
	peak    int
}

func newActorPool(stress *Stress, counters *Counters) *actorPool {
	return &actorPool{stress: stress, counters: counters}
}

func (p *actorPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cancels)
}

func (p *actorPool) resize(ctx context.Context, want int) {
	if want < 0 {
		want = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.cancels) < want {
		actorCtx, cancel := context.WithCancel(ctx)
		p.cancels = append(p.cancels, cancel)
		p.wg.Add(1)
		id := len(p.cancels)
		go p.runActor(actorCtx, id)
	}
	for len(p.cancels) > want {
		last := len(p.cancels) - 1
		p.cancels[last]()
		p.cancels = p.cancels[:last]
	}
	if len(p.cancels) > p.peak {
		p.peak = len(p.cancels)
	}
}

func (p *actorPool) stopAll() {
	p.mu.Lock()
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *actorPool) runActor(ctx context.Context, id int) {
	defer p.wg.Done()

	cache := p.stress.newCache()
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	seats := p.stress.target.SeatIDs
	think := p.stress.spec.ThinkTime.Std()

	for {
		if ctx.Err() != nil {
			return
		}
		token, err := cache.Token(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.counters.Add(ClassOther)
			// don't hammer the identity provider from a broken actor
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		seatID := seats[rng.Intn(len(seats))]
		outcome, err := p.stress.orders.TryPlaceOrder(ctx, token, ticketly.OrderRequest{
			EventID:        p.stress.target.EventID,
			SessionID:      p.stress.target.SessionID,
			SeatIDs:        []string{seatID},
			OrganizationID: p.stress.target.OrganizationID,
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.counters.Add(ClassOther)
		} else {
			p.counters.Add(p.stress.classifier.Classify(outcome.Status))
		}

		if think > 0 {
			select {
			case <-time.After(think):
			case <-ctx.Done():
				return
			}
		}
	}
}
