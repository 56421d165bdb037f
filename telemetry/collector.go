package telemetry

import (
	"github.com/pthm-cable/gridmind/engine"
	"github.com/pthm-cable/gridmind/sim"
)

// Collector accumulates scheduler events within fixed-size step windows
// and produces WindowStats. It subscribes to the simulation's event
// stream and runs synchronously inside the loop.
type Collector struct {
	windowSteps int
	windowStart int

	steps       int
	perceptions int
	productions int
	moved       int
	blocked     int
	outOfBounds int
	unknown     int
	timeouts    int

	dueGaps   []float64
	modelTime float64

	onWindow func(WindowStats)
	onStep   func(StepRecord)
}

// NewCollector creates a collector flushing every windowSteps steps.
// onStep and onWindow may be nil.
func NewCollector(windowSteps int, onStep func(StepRecord), onWindow func(WindowStats)) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps: windowSteps,
		onStep:      onStep,
		onWindow:    onWindow,
	}
}

// Observe implements sim.Listener.
func (c *Collector) Observe(ev sim.StepEvent) {
	c.steps++
	c.modelTime = ev.Due
	c.dueGaps = append(c.dueGaps, ev.NextDue-ev.Due)

	if ev.Stimulus != nil {
		c.perceptions++
	}
	if ev.Production != "" {
		c.productions++
	}
	if ev.TimedOut {
		c.timeouts++
	}
	var outcome string
	if ev.Outcome != nil {
		outcome = string(ev.Outcome.Status)
		switch ev.Outcome.Status {
		case engine.OutcomeMoved:
			c.moved++
		case engine.OutcomeBlocked:
			c.blocked++
		case engine.OutcomeOutOfBounds:
			c.outOfBounds++
		case engine.OutcomeUnknownCommand:
			c.unknown++
		}
	}

	if c.onStep != nil {
		c.onStep(StepRecord{
			Step:       ev.Step,
			Agent:      ev.Agent,
			Due:        ev.Due,
			NextDue:    ev.NextDue,
			Production: ev.Production,
			Perceived:  ev.Stimulus != nil,
			Outcome:    outcome,
			TimedOut:   ev.TimedOut,
			State:      ev.State.String(),
		})
	}

	if ev.Step-c.windowStart >= c.windowSteps {
		c.flush(ev.Step)
	}
}

// Flush forces the current window out, typically at end of run.
func (c *Collector) Flush(currentStep int) {
	if c.steps > 0 {
		c.flush(currentStep)
	}
}

func (c *Collector) flush(currentStep int) {
	gaps := ComputeGapStats(c.dueGaps)
	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   currentStep,
		ModelTime:   c.modelTime,
		Steps:       c.steps,
		Perceptions: c.perceptions,
		Productions: c.productions,
		Moved:       c.moved,
		Blocked:     c.blocked,
		OutOfBounds: c.outOfBounds,
		Unknown:     c.unknown,
		Timeouts:    c.timeouts,
		DueGapMean:  gaps.Mean,
		DueGapP10:   gaps.P10,
		DueGapP50:   gaps.P50,
		DueGapP90:   gaps.P90,
	}

	c.windowStart = currentStep
	c.steps = 0
	c.perceptions = 0
	c.productions = 0
	c.moved = 0
	c.blocked = 0
	c.outOfBounds = 0
	c.unknown = 0
	c.timeouts = 0
	c.dueGaps = c.dueGaps[:0]

	if c.onWindow != nil {
		c.onWindow(stats)
	}
}
