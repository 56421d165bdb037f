package engine

import (
	"context"
	"math/rand"
)

// RandomWalkEngine is a native engine variant that perceives every
// cycle and issues a uniformly random motor command. Its step cadence
// is jittered to exercise agent-determined clock rates.
type RandomWalkEngine struct {
	Hooks

	rng      *rand.Rand
	keys     []Key
	baseStep float64
	jitter   float64
	now      float64

	stimulus    SymbolMap
	lastOutcome *MotorOutcome
}

// NewRandomWalk creates a random walker choosing among the given motor
// keys, consuming baseStep +/- jitter model seconds per cycle.
func NewRandomWalk(rng *rand.Rand, keys []Key, baseStep, jitter float64) *RandomWalkEngine {
	return &RandomWalkEngine{
		rng:      rng,
		keys:     keys,
		baseStep: baseStep,
		jitter:   jitter,
	}
}

// Step perceives and moves in a random direction.
func (r *RandomWalkEngine) Step(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}

	dur := r.baseStep
	if r.jitter > 0 {
		dur += (r.rng.Float64()*2 - 1) * r.jitter
		if dur <= 0 {
			dur = r.baseStep
		}
	}
	r.now += dur

	key := r.keys[r.rng.Intn(len(r.keys))]
	r.fireProduction("walk-" + string(key))

	return StepResult{
		NextDue:    r.now,
		Perception: true,
		Motor:      &MotorCommand{Key: key},
		Production: "walk-" + string(key),
	}, nil
}

// InjectPerception stores the resolved stimulus.
func (r *RandomWalkEngine) InjectPerception(m SymbolMap) {
	r.stimulus = m
}

// InjectMotorResult stores the outcome of the last motor command.
func (r *RandomWalkEngine) InjectMotorResult(o MotorOutcome) {
	r.lastOutcome = &o
}
