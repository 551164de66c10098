package loadtest

import (
	"fmt"
	"sync/atomic"
)

// Class buckets an order-attempt outcome. Rejections caused by seat
// contention are expected business outcomes, not harness failures; only
// server errors count as defects.
type Class int

const (
	// ClassSuccess is a granted booking (200/201).
	ClassSuccess Class = iota
	// ClassExpected is a contention rejection the scenario anticipates (400).
	ClassExpected
	// ClassConflict is an alternative conflict encoding (409/423), also
	// acceptable as a rejection.
	ClassConflict
	// ClassServerError is any 5xx: a defect in the system under test.
	ClassServerError
	// ClassOther is everything else, including transport failures.
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassExpected:
		return "expected"
	case ClassConflict:
		return "conflict"
	case ClassServerError:
		return "server_error"
	default:
		return "other"
	}
}

// Classifier maps HTTP status codes to outcome classes. The exact codes a
// deployment emits for "seat taken" vary, so the table is configuration.
type Classifier map[int]Class

func DefaultClassifier() Classifier {
	return Classifier{
		200: ClassSuccess,
		201: ClassSuccess,
		400: ClassExpected,
		409: ClassConflict,
		423: ClassConflict,
	}
}

func (c Classifier) Classify(status int) Class {
	if class, ok := c[status]; ok {
		return class
	}
	if status >= 500 {
		return ClassServerError
	}
	return ClassOther
}

// Counters aggregates outcomes across actors with atomic increments only; no
// locks sit on the hot path.
type Counters struct {
	success     atomic.Int64
	expected    atomic.Int64
	conflict    atomic.Int64
	serverError atomic.Int64
	other       atomic.Int64
}

func (c *Counters) Add(class Class) {
	switch class {
	case ClassSuccess:
		c.success.Add(1)
	case ClassExpected:
		c.expected.Add(1)
	case ClassConflict:
		c.conflict.Add(1)
	case ClassServerError:
		c.serverError.Add(1)
	default:
		c.other.Add(1)
	}
}

// Tally is an immutable snapshot of the counters.
type Tally struct {
	Success     int64
	Expected    int64
	Conflict    int64
	ServerError int64
	Other       int64
}

func (c *Counters) Snapshot() Tally {
	return Tally{
		Success:     c.success.Load(),
		Expected:    c.expected.Load(),
		Conflict:    c.conflict.Load(),
		ServerError: c.serverError.Load(),
		Other:       c.other.Load(),
	}
}

func (t Tally) Total() int64 {
	return t.Success + t.Expected + t.Conflict + t.ServerError + t.Other
}

// Rejections counts the acceptable non-success outcomes under contention.
func (t Tally) Rejections() int64 {
	return t.Expected + t.Conflict
}

// ExpectedFraction is the share of responses the scenario anticipates:
// granted bookings plus contention rejections.
func (t Tally) ExpectedFraction() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Success+t.Expected+t.Conflict) / float64(total)
}

func (t Tally) String() string {
	return fmt.Sprintf("success=%d expected=%d conflict=%d server_error=%d other=%d total=%d",
		t.Success, t.Expected, t.Conflict, t.ServerError, t.Other, t.Total())
}
