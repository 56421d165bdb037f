// Package agentsim holds the per-agent construct shared by the
// scheduler and the mediator: identity, grid entity, model clock,
// engine handle, and the most recent symbolic view.
package agentsim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridmind/engine"
)

// State is an agent's scheduler lifecycle state.
type State uint8

const (
	StatePending  State = iota // waiting for its turn
	StateStepping              // executing one engine cycle
	StateBlocked               // no further action this run
	StateDone                  // simulation-level termination
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStepping:
		return "stepping"
	case StateBlocked:
		return "blocked"
	case StateDone:
		return "done"
	}
	return "invalid"
}

// Clock is an agent's architecture-internal time. Monotonically
// non-decreasing over a run. Equal clocks are ordered by registration
// sequence in the schedule, not here.
type Clock struct {
	Time float64 // model seconds
}

// Agent is one cognitive-agent simulation participating in the shared
// environment. Created at setup, mutated throughout the run.
type Agent struct {
	Name   string
	Entity ecs.Entity // body on the grid
	Radius int        // line-of-sight radius

	Engine engine.Engine
	Clock  Clock
	State  State
	Seq    int // registration order; schedule tie-break key

	// VisualStimuli is the most recently computed symbolic view,
	// overwritten on every perception request.
	VisualStimuli engine.SymbolMap
}
