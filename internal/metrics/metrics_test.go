package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bft-labs/overdrive/internal/override"
)

func TestObserver(t *testing.T) {
	accepted := testutil.ToFloat64(PacketsTotal.WithLabelValues("accepted"))
	short := testutil.ToFloat64(PacketsTotal.WithLabelValues("short"))
	stale := testutil.ToFloat64(StepsTotal.WithLabelValues("stale"))
	toFresh := testutil.ToFloat64(ModeTransitionsTotal.WithLabelValues("fresh"))

	var o Observer
	o.OnPacket(true)
	o.OnPacket(false)
	o.OnPacket(false)
	o.OnStep(override.ModeStale)
	o.OnModeChange(override.ModeDisabled, override.ModeFresh)

	assert.Equal(t, accepted+1, testutil.ToFloat64(PacketsTotal.WithLabelValues("accepted")))
	assert.Equal(t, short+2, testutil.ToFloat64(PacketsTotal.WithLabelValues("short")))
	assert.Equal(t, stale+1, testutil.ToFloat64(StepsTotal.WithLabelValues("stale")))
	assert.Equal(t, toFresh+1, testutil.ToFloat64(ModeTransitionsTotal.WithLabelValues("fresh")))
}
