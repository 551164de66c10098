package loadtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Defaults(t *testing.T) {
	classifier := DefaultClassifier()
	assert.Equal(t, ClassSuccess, classifier.Classify(201))
	assert.Equal(t, ClassExpected, classifier.Classify(400))
	assert.Equal(t, ClassConflict, classifier.Classify(409))
	assert.Equal(t, ClassConflict, classifier.Classify(423))
	// unmapped 5xx always count as server errors
	assert.Equal(t, ClassServerError, classifier.Classify(503))
	assert.Equal(t, ClassOther, classifier.Classify(418))
}

func TestCounters(t *testing.T) {
	counters := &Counters{}
	counters.Add(ClassSuccess)
	counters.Add(ClassExpected)
	counters.Add(ClassExpected)
	counters.Add(ClassConflict)
	counters.Add(ClassServerError)
	counters.Add(ClassOther)

	tally := counters.Snapshot()
	assert.Equal(t, int64(1), tally.Success)
	assert.Equal(t, int64(2), tally.Expected)
	assert.Equal(t, int64(1), tally.Conflict)
	assert.Equal(t, int64(6), tally.Total())
	assert.Equal(t, int64(3), tally.Rejections())
	assert.InDelta(t, 4.0/6.0, tally.ExpectedFraction(), 1e-9)
}

func TestTally_ExpectedFractionEmpty(t *testing.T) {
	assert.Zero(t, Tally{}.ExpectedFraction())
}
