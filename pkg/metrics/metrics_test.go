package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTimerObserveDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.Duration(), time.Duration(0))

	timer.ObserveDuration(CommitDuration)
}

func TestCommitsTotalByResult(t *testing.T) {
	before := testutil.ToFloat64(CommitsTotal.WithLabelValues("committed"))

	CommitsTotal.WithLabelValues("committed").Inc()

	after := testutil.ToFloat64(CommitsTotal.WithLabelValues("committed"))
	assert.Equal(t, before+1, after)
}

func TestProofVerifyTotalDistinguishesOutcomes(t *testing.T) {
	ProofVerifyTotal.WithLabelValues("fd-holds", "valid").Inc()
	ProofVerifyTotal.WithLabelValues("fd-holds", "invalid").Inc()

	valid := testutil.ToFloat64(ProofVerifyTotal.WithLabelValues("fd-holds", "valid"))
	invalid := testutil.ToFloat64(ProofVerifyTotal.WithLabelValues("fd-holds", "invalid"))
	assert.GreaterOrEqual(t, valid, float64(1))
	assert.GreaterOrEqual(t, invalid, float64(1))
}
