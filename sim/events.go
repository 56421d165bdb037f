package sim

import (
	"github.com/pthm-cable/gridmind/agentsim"
	"github.com/pthm-cable/gridmind/components"
	"github.com/pthm-cable/gridmind/engine"
)

// CellChange records one grid mutation caused by a step, for display by
// the stepper front end.
type CellChange struct {
	From, To components.Position
	Label    string
}

// StepEvent describes one completed scheduler iteration. Emitted
// synchronously to subscribed listeners after each agent step.
type StepEvent struct {
	Step       int                  // global step counter, starting at 1
	Agent      string               // agent name
	Due        float64              // model time the agent was selected at
	NextDue    float64              // engine-reported next due time
	Production string               // fired production, if any
	Stimulus   engine.SymbolMap     // resulting view, if perception was requested
	Outcome    *engine.MotorOutcome // motor result, if a command was issued
	GridDiff   *CellChange          // world mutation, if the move succeeded
	State      agentsim.State       // agent state after the step
	TimedOut   bool                 // step abandoned by the per-step timeout
}

// Listener receives step events. Listeners run synchronously inside the
// scheduler loop and must not block.
type Listener interface {
	Observe(StepEvent)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(StepEvent)

// Observe calls f.
func (f ListenerFunc) Observe(ev StepEvent) { f(ev) }
