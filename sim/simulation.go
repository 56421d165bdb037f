// Package sim drives the global simulation loop: earliest-due-time
// agent selection, real-time pacing, single-step debugger control, and
// the per-step event stream.
package sim

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/gridmind/agentsim"
	"github.com/pthm-cable/gridmind/engine"
	"github.com/pthm-cable/gridmind/mediator"
	"github.com/pthm-cable/gridmind/world"
)

// Mode selects how the loop is paced.
type Mode uint8

const (
	// ModeContinuous runs freely, throttled only by the clock's speed factor.
	ModeContinuous Mode = iota
	// ModeSingleStep suspends the whole loop after each agent step until
	// Advance is called by the external stepper front end.
	ModeSingleStep
)

// ParseMode parses a mode name from configuration.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "continuous", "":
		return ModeContinuous, nil
	case "single-step":
		return ModeSingleStep, nil
	}
	return 0, fmt.Errorf("unknown execution mode %q", name)
}

// InvariantError signals a broken core scheduling guarantee. Fatal:
// the run aborts immediately with a full state dump.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "scheduler invariant violated: " + e.Reason
}

// Options configures a simulation run.
type Options struct {
	Mode        Mode
	StepTimeout time.Duration // 0 = no per-step timeout
	MaxSteps    int           // 0 = unlimited
	Logger      *slog.Logger  // nil = slog default
}

// Simulation owns the agent set and the selection loop. A single
// logical thread of control drives it; at any instant at most one agent
// is stepping, which is what makes lock-free grid mutation safe.
type Simulation struct {
	grid  *world.Grid
	mid   *mediator.Middleman
	clock *Clock

	agents  []*agentsim.Agent
	byName  map[string]*agentsim.Agent
	pending scheduleHeap

	mode        Mode
	stepTimeout time.Duration
	maxSteps    int

	listeners  []Listener
	advance    chan struct{}
	jumpToFire atomic.Bool

	stepCount int
	lastDue   float64
	stepping  *agentsim.Agent
	lastEvent StepEvent

	log *slog.Logger
}

// New creates a simulation over the given grid and mediator.
func New(grid *world.Grid, mid *mediator.Middleman, clock *Clock, opts Options) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulation{
		grid:        grid,
		mid:         mid,
		clock:       clock,
		byName:      make(map[string]*agentsim.Agent),
		mode:        opts.Mode,
		stepTimeout: opts.StepTimeout,
		maxSteps:    opts.MaxSteps,
		advance:     make(chan struct{}, 1),
		log:         logger,
	}
}

// Register adds an agent to the schedule. Registration order is the
// tie-break key for equal due times, so it must be deterministic across
// replays.
func (s *Simulation) Register(a *agentsim.Agent) error {
	if _, exists := s.byName[a.Name]; exists {
		return fmt.Errorf("register: agent %q already exists", a.Name)
	}
	if math.IsNaN(a.Clock.Time) || a.Clock.Time < 0 {
		return fmt.Errorf("register %q: invalid initial time %v", a.Name, a.Clock.Time)
	}
	a.Seq = len(s.agents)
	a.State = agentsim.StatePending
	s.agents = append(s.agents, a)
	s.byName[a.Name] = a
	heap.Push(&s.pending, &scheduleEntry{agent: a, due: a.Clock.Time})
	return nil
}

// Agents returns the registered agents in registration order.
func (s *Simulation) Agents() []*agentsim.Agent {
	return s.agents
}

// Subscribe attaches a step-event listener. Listeners run synchronously
// inside the loop, preserving the single-active-agent invariant.
func (s *Simulation) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() int {
	return s.stepCount
}

// Advance releases one iteration in single-step mode. Safe to call from
// another goroutine (the debugger front end); signals are coalesced.
func (s *Simulation) Advance() {
	select {
	case s.advance <- struct{}{}:
	default:
	}
}

// AdvanceToProduction releases the loop until the next step that fires
// a production, then suspends again. Like Advance, safe to call from
// the debugger front end's goroutine.
func (s *Simulation) AdvanceToProduction() {
	s.jumpToFire.Store(true)
	s.Advance()
}

// Run executes the loop until every agent is blocked, a stop condition
// fires, or the context is cancelled between steps. Termination is
// reported, not treated as an error; only invariant violations return
// a non-nil error, after a full state dump.
func (s *Simulation) Run(ctx context.Context) error {
	s.clock.Reset()
	for {
		if ctx.Err() != nil {
			s.log.Info("simulation stopped by host", "steps", s.stepCount)
			return nil
		}

		done, err := s.StepOne(ctx)
		if err != nil {
			s.dump()
			return err
		}
		if done {
			s.log.Info("simulation halted",
				"steps", s.stepCount,
				"model_time", s.lastDue,
			)
			return nil
		}

		if s.mode == ModeSingleStep {
			if stop := s.waitAdvance(ctx); stop {
				s.log.Info("simulation stopped by host", "steps", s.stepCount)
				return nil
			}
		}
	}
}

// StepOne executes one scheduler iteration: select, pace, step, mediate,
// reschedule. Returns done=true when the run has halted.
func (s *Simulation) StepOne(ctx context.Context) (bool, error) {
	if s.maxSteps > 0 && s.stepCount >= s.maxSteps {
		s.finish()
		return true, nil
	}
	if s.pending.Len() == 0 {
		// Every agent is blocked or done.
		return true, nil
	}

	entry := heap.Pop(&s.pending).(*scheduleEntry)
	a := entry.agent

	if s.stepping != nil {
		return true, &InvariantError{Reason: fmt.Sprintf(
			"agent %q selected while %q is stepping", a.Name, s.stepping.Name)}
	}
	if a.State != agentsim.StatePending {
		return true, &InvariantError{Reason: fmt.Sprintf(
			"agent %q selected in state %s", a.Name, a.State)}
	}
	if entry.due < s.lastDue {
		return true, &InvariantError{Reason: fmt.Sprintf(
			"due time regressed: %v after %v", entry.due, s.lastDue)}
	}

	// Real-time pacing is the only suspension point in continuous mode.
	if s.mode == ModeContinuous {
		if err := s.clock.WaitUntil(ctx, entry.due); err != nil {
			// Cancelled mid-pace: restore the entry and let the caller
			// observe the cancellation as a host stop, not a halt.
			heap.Push(&s.pending, entry)
			return false, nil
		}
	}

	a.State = agentsim.StateStepping
	s.stepping = a

	res, timedOut, err := s.invokeStep(ctx, a)
	if err != nil {
		if ctx.Err() != nil {
			a.State = agentsim.StatePending
			s.stepping = nil
			heap.Push(&s.pending, entry)
			return false, nil
		}
		// Engine-level failure is agent-level behavior, not a broken
		// core guarantee: block the agent and continue the run.
		s.log.Warn("engine step failed", "agent", a.Name, "error", err)
		timedOut = false
		res = engine.StepResult{NextDue: a.Clock.Time, Terminal: true}
	}

	ev := StepEvent{
		Step:       s.stepCount + 1,
		Agent:      a.Name,
		Due:        entry.due,
		Production: res.Production,
		TimedOut:   timedOut,
	}

	if timedOut {
		// Abandon the step's outputs entirely; the agent is out of the
		// run but the run itself continues.
		a.State = agentsim.StateBlocked
		ev.NextDue = a.Clock.Time
		ev.State = a.State
		s.stepping = nil
		s.stepCount++
		s.lastDue = entry.due
		s.lastEvent = ev
		s.emit(ev)
		s.log.Warn("engine step timed out", "agent", a.Name, "timeout", s.stepTimeout)
		return false, nil
	}

	if math.IsNaN(res.NextDue) || res.NextDue < a.Clock.Time {
		return true, &InvariantError{Reason: fmt.Sprintf(
			"agent %q reported due time %v before its clock %v", a.Name, res.NextDue, a.Clock.Time)}
	}

	if res.Perception {
		stimulus, err := s.mid.AgentStimulus(a)
		if err != nil {
			return true, &InvariantError{Reason: err.Error()}
		}
		a.Engine.InjectPerception(stimulus)
		ev.Stimulus = stimulus
	}

	if res.Motor != nil {
		before, _ := s.grid.PositionOf(a.Entity)
		outcome, err := s.mid.MotorInput(a, res.Motor.Key)
		if err != nil {
			return true, &InvariantError{Reason: err.Error()}
		}
		a.Engine.InjectMotorResult(outcome)
		ev.Outcome = &outcome
		if outcome.Status == engine.OutcomeMoved {
			after, _ := s.grid.PositionOf(a.Entity)
			ev.GridDiff = &CellChange{From: before, To: after, Label: a.Name}
		}
	}

	a.Clock.Time = res.NextDue
	if res.Terminal {
		a.State = agentsim.StateBlocked
	} else {
		a.State = agentsim.StatePending
		heap.Push(&s.pending, &scheduleEntry{agent: a, due: res.NextDue})
	}

	ev.NextDue = res.NextDue
	ev.State = a.State
	s.stepping = nil
	s.stepCount++
	s.lastDue = entry.due
	s.lastEvent = ev
	s.emit(ev)
	return false, nil
}

// invokeStep runs one engine cycle, enforcing the per-step timeout.
// The engine call is offloaded so a stalled external collaborator
// cannot wedge the loop, but the scheduler always waits for either a
// definitive result or the deadline before moving on.
func (s *Simulation) invokeStep(ctx context.Context, a *agentsim.Agent) (engine.StepResult, bool, error) {
	if s.stepTimeout <= 0 {
		res, err := a.Engine.Step(ctx)
		return res, false, err
	}

	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	type stepOut struct {
		res engine.StepResult
		err error
	}
	out := make(chan stepOut, 1)
	go func() {
		res, err := a.Engine.Step(stepCtx)
		out <- stepOut{res, err}
	}()

	select {
	case o := <-out:
		return o.res, false, o.err
	case <-stepCtx.Done():
		if ctx.Err() != nil {
			return engine.StepResult{}, false, ctx.Err()
		}
		return engine.StepResult{}, true, nil
	}
}

// waitAdvance suspends the loop in single-step mode. Returns true when
// the host cancelled instead of advancing.
func (s *Simulation) waitAdvance(ctx context.Context) bool {
	if s.jumpToFire.Load() {
		// A jump supersedes any queued single-step release; drain it so
		// it cannot free an extra step once the jump target suspends.
		select {
		case <-s.advance:
		default:
		}
		if s.lastEvent.Production == "" {
			return false // keep running until a production fires
		}
		s.jumpToFire.Store(false)
	}
	select {
	case <-ctx.Done():
		return true
	case <-s.advance:
		return false
	}
}

// finish marks every remaining agent done when a global stop condition
// fires.
func (s *Simulation) finish() {
	for _, a := range s.agents {
		if a.State == agentsim.StatePending {
			a.State = agentsim.StateDone
		}
	}
	s.pending = s.pending[:0]
}

func (s *Simulation) emit(ev StepEvent) {
	for _, l := range s.listeners {
		l.Observe(ev)
	}
}

// dump logs full scheduler state for diagnosis of a fatal invariant
// violation.
func (s *Simulation) dump() {
	s.log.Error("scheduler state dump", "steps", s.stepCount, "last_due", s.lastDue)
	for _, a := range s.agents {
		pos, _ := s.grid.PositionOf(a.Entity)
		s.log.Error("agent state",
			"agent", a.Name,
			"seq", a.Seq,
			"state", a.State.String(),
			"clock", a.Clock.Time,
			"row", pos.Row,
			"col", pos.Col,
		)
	}
	if err := s.grid.CheckConsistency(); err != nil {
		s.log.Error("grid inconsistency", "error", err)
	}
}
