package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHelpersBeforeInitAreNoops(t *testing.T) {
	if TicksTotal != nil {
		t.Skip("metrics already initialized by another test")
	}
	Tick("positions")
	TickFailed("positions", "data")
	Overtakes(2)
	ObserveFetch("position", time.Second)
	SetDrivers(20)
}

func TestInitIsIdempotentAndCounts(t *testing.T) {
	Init()
	first := TicksTotal
	Init()
	if TicksTotal != first {
		t.Fatal("Init registered metrics twice")
	}

	before := testutil.ToFloat64(TicksTotal.WithLabelValues("positions"))
	Tick("positions")
	if got := testutil.ToFloat64(TicksTotal.WithLabelValues("positions")); got != before+1 {
		t.Errorf("ticks = %v, want %v", got, before+1)
	}

	beforeOvertakes := testutil.ToFloat64(OvertakesTotal)
	Overtakes(3)
	Overtakes(0)
	if got := testutil.ToFloat64(OvertakesTotal); got != beforeOvertakes+3 {
		t.Errorf("overtakes = %v, want %v", got, beforeOvertakes+3)
	}

	SetDrivers(20)
	if got := testutil.ToFloat64(DriversGauge); got != 20 {
		t.Errorf("drivers = %v, want 20", got)
	}
}
