package engine

import (
	"context"
	"math/rand"

	"github.com/pthm-cable/gridmind/components"
)

// SeekerEngine is a native engine variant that navigates toward the
// nearest visible cell carrying the target token. It plans a 4-connected
// path over its own perceived map only; occluded and occupied cells are
// treated as impassable, so a stale or blocked plan is simply replanned
// on the next cycle. With no target in view it wanders.
type SeekerEngine struct {
	Hooks

	rng      *rand.Rand
	target   Symbol
	baseStep float64
	now      float64

	stimulus    SymbolMap
	lastOutcome *MotorOutcome
}

// NewSeeker creates a seeker homing on cells labelled with target,
// consuming baseStep model seconds per cycle.
func NewSeeker(rng *rand.Rand, target Symbol, baseStep float64) *SeekerEngine {
	return &SeekerEngine{rng: rng, target: target, baseStep: baseStep}
}

var seekerKeys = map[cellID]Key{
	{-1, 0}: "up",
	{1, 0}:  "down",
	{0, -1}: "left",
	{0, 1}:  "right",
}

// Step perceives, then moves along the planned path toward the target.
func (s *SeekerEngine) Step(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}
	s.now += s.baseStep

	key, production := s.chooseMove()
	if production != "" {
		s.fireProduction(production)
	}

	res := StepResult{
		NextDue:    s.now,
		Perception: true,
		Production: production,
	}
	if key != "" {
		res.Motor = &MotorCommand{Key: key}
	}
	return res, nil
}

// chooseMove plans against the last injected stimulus. The first cycle
// has no stimulus yet and only perceives.
func (s *SeekerEngine) chooseMove() (Key, string) {
	if s.stimulus == nil {
		return "", "attend"
	}

	self, goal, found := s.locate()
	if !found {
		return s.wander(), "wander"
	}

	passable := func(c cellID) bool {
		sym, ok := s.stimulus[components.Position{Row: c.row, Col: c.col}]
		return ok && (sym == SymbolEmpty || sym == s.target)
	}
	path := findPath(self, goal, passable)
	if len(path) == 0 {
		return s.wander(), "wander"
	}

	step := cellID{path[0].row - self.row, path[0].col - self.col}
	key, ok := seekerKeys[step]
	if !ok {
		return s.wander(), "wander"
	}
	return key, "seek-" + string(key)
}

// locate finds the seeker's own cell and the nearest target cell in the
// stimulus. Iteration order over the map is randomized by the runtime,
// so equally near targets are broken by coordinate order to keep runs
// reproducible per seed.
func (s *SeekerEngine) locate() (self, goal cellID, found bool) {
	haveSelf := false
	best := 0
	for pos, sym := range s.stimulus {
		if sym == SymbolSelf {
			self = cellID{pos.Row, pos.Col}
			haveSelf = true
		}
	}
	if !haveSelf {
		return cellID{}, cellID{}, false
	}
	for pos, sym := range s.stimulus {
		if sym != s.target {
			continue
		}
		c := cellID{pos.Row, pos.Col}
		d := int(manhattan(self, c))
		if !found || d < best || (d == best && less(c, goal)) {
			goal = c
			best = d
			found = true
		}
	}
	return self, goal, found
}

func less(a, b cellID) bool {
	if a.row != b.row {
		return a.row < b.row
	}
	return a.col < b.col
}

func (s *SeekerEngine) wander() Key {
	keys := []Key{"up", "down", "left", "right"}
	return keys[s.rng.Intn(len(keys))]
}

// InjectPerception stores the resolved stimulus.
func (s *SeekerEngine) InjectPerception(m SymbolMap) {
	s.stimulus = m
}

// InjectMotorResult stores the outcome of the last motor command.
func (s *SeekerEngine) InjectMotorResult(o MotorOutcome) {
	s.lastOutcome = &o
}
