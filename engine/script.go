package engine

import (
	"context"
	"maps"
)

// ScriptStep is one pre-planned reasoning cycle of a ScriptedEngine.
type ScriptStep struct {
	Duration   float64   // model seconds consumed by this cycle
	Perception bool      // request a fresh stimulus
	Motor      Key       // motor command to issue; empty = none
	Production string    // production reported as fired
	Goal       GoalState // goal buffer replacement; nil = unchanged
}

// ScriptedEngine replays a fixed step sequence. It is the deterministic
// engine variant used by tests and demo scenarios: given identical
// world state it always produces identical outputs.
type ScriptedEngine struct {
	Hooks

	steps []ScriptStep
	idx   int
	now   float64

	goal        GoalState
	stimulus    SymbolMap
	lastOutcome *MotorOutcome
}

// NewScripted creates a scripted engine starting at model time zero.
func NewScripted(steps []ScriptStep) *ScriptedEngine {
	return &ScriptedEngine{steps: steps, goal: GoalState{}}
}

// Step replays the next scripted cycle. After the script is exhausted
// the engine reports terminal.
func (s *ScriptedEngine) Step(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}
	if s.idx >= len(s.steps) {
		return StepResult{NextDue: s.now, Terminal: true}, nil
	}

	step := s.steps[s.idx]
	s.idx++
	s.now += step.Duration

	if step.Goal != nil {
		s.goal = maps.Clone(step.Goal)
		s.changeGoal(s.goal)
	}
	if step.Production != "" {
		s.fireProduction(step.Production)
	}

	res := StepResult{
		NextDue:    s.now,
		Perception: step.Perception,
		Production: step.Production,
	}
	if step.Motor != "" {
		res.Motor = &MotorCommand{Key: step.Motor}
	}
	return res, nil
}

// InjectPerception stores the resolved stimulus.
func (s *ScriptedEngine) InjectPerception(m SymbolMap) {
	s.stimulus = m
}

// InjectMotorResult stores the outcome of the last motor command.
func (s *ScriptedEngine) InjectMotorResult(o MotorOutcome) {
	s.lastOutcome = &o
}

// Stimulus returns the most recently injected perception.
func (s *ScriptedEngine) Stimulus() SymbolMap {
	return s.stimulus
}

// LastOutcome returns the outcome of the last motor command, or nil.
func (s *ScriptedEngine) LastOutcome() *MotorOutcome {
	return s.lastOutcome
}

// Goal returns the current goal buffer. Adapters may read it but the
// returned map must not be mutated.
func (s *ScriptedEngine) Goal() GoalState {
	return s.goal
}
