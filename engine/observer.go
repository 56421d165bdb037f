package engine

// GoalState is a read-only snapshot of an engine's goal buffer,
// slot name to value.
type GoalState map[string]string

// Observer receives typed change notifications from an engine. Adapters
// (LLM bridges, robot controllers, loggers) register handlers; handlers
// run synchronously inside the step boundary, so they may issue further
// motor commands or perception requests through the mediator contract
// but never touch the grid directly.
type Observer interface {
	ProductionFired(name string)
	GoalChanged(goal GoalState)
}

// Hooks is an embeddable notification fan-out for engine implementations.
type Hooks struct {
	observers []Observer
}

// Attach registers an observer. Not safe to call during a step.
func (h *Hooks) Attach(o Observer) {
	h.observers = append(h.observers, o)
}

func (h *Hooks) fireProduction(name string) {
	for _, o := range h.observers {
		o.ProductionFired(name)
	}
}

func (h *Hooks) changeGoal(goal GoalState) {
	for _, o := range h.observers {
		o.GoalChanged(goal)
	}
}
