package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridmind/agentsim"
	"github.com/pthm-cable/gridmind/engine"
	"github.com/pthm-cable/gridmind/sim"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeGapStats(t *testing.T) {
	if got := ComputeGapStats(nil); got != (GapStats{}) {
		t.Errorf("empty sample: %+v", got)
	}

	got := ComputeGapStats([]float64{0.5, 0.1, 0.3, 0.1})
	if !almostEqual(got.Mean, 0.25) {
		t.Errorf("mean %v, want 0.25", got.Mean)
	}
	if got.P10 != 0.1 {
		t.Errorf("p10 %v, want 0.1", got.P10)
	}
	if got.P90 != 0.5 {
		t.Errorf("p90 %v, want 0.5", got.P90)
	}

	// Input order must not matter.
	again := ComputeGapStats([]float64{0.1, 0.1, 0.3, 0.5})
	if got != again {
		t.Errorf("order-dependent stats: %+v vs %+v", got, again)
	}
}

func motorEvent(step int, status engine.OutcomeStatus) sim.StepEvent {
	due := float64(step) * 0.1
	return sim.StepEvent{
		Step:    step,
		Agent:   "a",
		Due:     due,
		NextDue: due + 0.1,
		Outcome: &engine.MotorOutcome{Key: "up", Status: status},
		State:   agentsim.StatePending,
	}
}

func TestCollectorWindows(t *testing.T) {
	var steps []StepRecord
	var windows []WindowStats
	c := NewCollector(3,
		func(r StepRecord) { steps = append(steps, r) },
		func(w WindowStats) { windows = append(windows, w) },
	)

	c.Observe(motorEvent(1, engine.OutcomeMoved))
	c.Observe(motorEvent(2, engine.OutcomeBlocked))
	ev := motorEvent(3, engine.OutcomeMoved)
	ev.Production = "walk-up"
	ev.Stimulus = engine.SymbolMap{}
	c.Observe(ev)
	c.Observe(motorEvent(4, engine.OutcomeOutOfBounds))

	if len(steps) != 4 {
		t.Fatalf("recorded %d step rows, want 4", len(steps))
	}
	if steps[2].Production != "walk-up" || !steps[2].Perceived {
		t.Errorf("step row %+v", steps[2])
	}
	if steps[1].Outcome != "blocked" {
		t.Errorf("step row outcome %q, want blocked", steps[1].Outcome)
	}

	if len(windows) != 1 {
		t.Fatalf("flushed %d windows, want 1", len(windows))
	}
	w := windows[0]
	if w.WindowStart != 0 || w.WindowEnd != 3 || w.Steps != 3 {
		t.Errorf("window bounds %+v", w)
	}
	if w.Moved != 2 || w.Blocked != 1 || w.Productions != 1 || w.Perceptions != 1 {
		t.Errorf("window counters %+v", w)
	}
	if !almostEqual(w.DueGapMean, 0.1) {
		t.Errorf("due gap mean %v, want 0.1", w.DueGapMean)
	}

	// The final partial window only goes out on an explicit flush.
	c.Flush(4)
	if len(windows) != 2 {
		t.Fatalf("flushed %d windows after Flush, want 2", len(windows))
	}
	w = windows[1]
	if w.WindowStart != 3 || w.WindowEnd != 4 || w.Steps != 1 || w.OutOfBounds != 1 {
		t.Errorf("final window %+v", w)
	}

	// Nothing pending: Flush is a no-op.
	c.Flush(4)
	if len(windows) != 2 {
		t.Errorf("empty flush emitted a window")
	}
}

func TestCollectorCountsTimeouts(t *testing.T) {
	var windows []WindowStats
	c := NewCollector(10, nil, func(w WindowStats) { windows = append(windows, w) })

	c.Observe(sim.StepEvent{Step: 1, Agent: "a", TimedOut: true, State: agentsim.StateBlocked})
	c.Flush(1)

	if len(windows) != 1 || windows[0].Timeouts != 1 {
		t.Fatalf("windows %+v, want one with a timeout", windows)
	}
}
