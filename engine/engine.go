// Package engine defines the stepping contract between the scheduler
// and a cognitive-architecture engine, plus the symbolic types that
// cross that boundary. The engine itself is an opaque collaborator: it
// advances one discrete reasoning step at a time and reports when its
// next step is due.
package engine

import (
	"context"

	"github.com/pthm-cable/gridmind/components"
)

// Symbol is a perceptual token describing one visible cell.
type Symbol string

// Reserved symbols. Occupant labels are used directly for non-empty cells.
const (
	SymbolEmpty    Symbol = "empty"
	SymbolOccluded Symbol = "occluded"
	SymbolSelf     Symbol = "self"
)

// SymbolMap is a symbolic view of the world: visible cell coordinate to
// token. Recomputed on every perception request, never persisted beyond
// the owning agent's stimulus slot.
type SymbolMap map[components.Position]Symbol

// Equal reports whether two symbol maps describe the same view.
func (m SymbolMap) Equal(o SymbolMap) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Key is a discrete motor command symbol.
type Key string

// MotorCommand asks the mediator to move the issuing agent.
type MotorCommand struct {
	Key Key
}

// OutcomeStatus classifies how a motor command resolved.
type OutcomeStatus string

const (
	OutcomeMoved          OutcomeStatus = "moved"
	OutcomeBlocked        OutcomeStatus = "blocked"
	OutcomeOutOfBounds    OutcomeStatus = "out-of-bounds"
	OutcomeUnknownCommand OutcomeStatus = "unknown-command"
)

// MotorOutcome is the symbolic result of a motor command, reported back
// to the engine so it can reason about blocked movement.
type MotorOutcome struct {
	Key    Key
	Status OutcomeStatus
}

// StepResult is what one engine step produces: the model time at which
// the next step is due, at most one perception request, at most one
// motor command, and the name of the fired production if any.
type StepResult struct {
	NextDue    float64
	Perception bool
	Motor      *MotorCommand
	Production string
	Terminal   bool
}

// Engine is the cognitive-engine stepping interface consumed by the
// scheduler. Implementations must be safe for single-threaded use; the
// scheduler guarantees Step, InjectPerception and InjectMotorResult are
// never called concurrently.
type Engine interface {
	// Step advances the engine by one reasoning cycle. The context
	// carries the scheduler's per-step deadline; long-running external
	// calls should honor it.
	Step(ctx context.Context) (StepResult, error)

	// InjectPerception delivers a resolved symbolic view into the
	// engine's perceptual buffer.
	InjectPerception(SymbolMap)

	// InjectMotorResult delivers the outcome of the engine's last
	// motor command.
	InjectMotorResult(MotorOutcome)
}
