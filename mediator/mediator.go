// Package mediator translates between agent-local symbolic I/O and the
// grid's primitive operations. It owns perception encoding and motor
// decoding; movement failures become symbolic outcomes the engine can
// reason about, never errors crossing into the scheduler.
package mediator

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/gridmind/agentsim"
	"github.com/pthm-cable/gridmind/components"
	"github.com/pthm-cable/gridmind/engine"
	"github.com/pthm-cable/gridmind/world"
)

// Middleman mediates all agent access to the shared grid. Side effects
// are confined to the grid and the invoking agent's own stimulus slot.
type Middleman struct {
	grid   *world.Grid
	keymap map[engine.Key]world.Delta
}

// New creates a mediator over the given grid with a motor keymap.
func New(grid *world.Grid, keymap map[engine.Key]world.Delta) *Middleman {
	return &Middleman{grid: grid, keymap: keymap}
}

// DefaultKeymap maps the four canonical direction symbols to unit
// deltas in row/col space (up decreases the row).
func DefaultKeymap() map[engine.Key]world.Delta {
	return map[engine.Key]world.Delta{
		"up":    {DRow: -1, DCol: 0},
		"down":  {DRow: 1, DCol: 0},
		"left":  {DRow: 0, DCol: -1},
		"right": {DRow: 0, DCol: 1},
	}
}

// Directions maps direction names to deltas, for config-driven keymaps.
var Directions = map[string]world.Delta{
	"up":    {DRow: -1, DCol: 0},
	"down":  {DRow: 1, DCol: 0},
	"left":  {DRow: 0, DCol: -1},
	"right": {DRow: 0, DCol: 1},
}

// KeymapFromConfig builds a keymap from key symbol to direction name.
func KeymapFromConfig(bindings map[string]string) (map[engine.Key]world.Delta, error) {
	if len(bindings) == 0 {
		return DefaultKeymap(), nil
	}
	keymap := make(map[engine.Key]world.Delta, len(bindings))
	for key, dir := range bindings {
		delta, ok := Directions[dir]
		if !ok {
			return nil, fmt.Errorf("keymap: key %q bound to unknown direction %q", key, dir)
		}
		keymap[engine.Key(key)] = delta
	}
	return keymap, nil
}

// AgentStimulus resolves the agent's current view: line of sight from
// its position, each visible cell encoded as a symbolic token. The
// result is stored as the agent's VisualStimuli and returned for
// injection into its perceptual buffer. Calling twice without an
// intervening world mutation yields an identical map.
func (m *Middleman) AgentStimulus(a *agentsim.Agent) (engine.SymbolMap, error) {
	origin, ok := m.grid.PositionOf(a.Entity)
	if !ok {
		return nil, fmt.Errorf("stimulus for %q: agent not on grid", a.Name)
	}

	visible, err := world.VisibleCells(m.grid, origin, a.Radius)
	if err != nil {
		return nil, fmt.Errorf("stimulus for %q: %w", a.Name, err)
	}
	region, err := m.grid.Neighborhood(origin, a.Radius)
	if err != nil {
		return nil, fmt.Errorf("stimulus for %q: %w", a.Name, err)
	}

	stimuli := make(engine.SymbolMap)
	for row := region.MinRow; row <= region.MaxRow; row++ {
		for col := region.MinCol; col <= region.MaxCol; col++ {
			cell := components.Position{Row: row, Col: col}
			if !visible[cell] {
				stimuli[cell] = engine.SymbolOccluded
				continue
			}
			stimuli[cell] = m.encode(cell, a)
		}
	}

	a.VisualStimuli = stimuli
	return stimuli, nil
}

// encode converts one visible cell's contents into a symbolic token.
func (m *Middleman) encode(cell components.Position, a *agentsim.Agent) engine.Symbol {
	view, err := m.grid.At(cell)
	if err != nil {
		return engine.SymbolEmpty
	}
	if view.Solid != nil {
		if view.Solid.Entity == a.Entity {
			return engine.SymbolSelf
		}
		return engine.Symbol(view.Solid.Body.Label)
	}
	if len(view.Markers) > 0 {
		return engine.Symbol(view.Markers[0].Body.Label)
	}
	return engine.SymbolEmpty
}

// MotorInput decodes a motor key symbol and applies it to the grid as
// an atomic occupancy transfer. Movement failures are returned as
// outcome tokens; the error is non-nil only for broken-contract cases
// (agent not on grid) that the scheduler treats as fatal.
func (m *Middleman) MotorInput(a *agentsim.Agent, key engine.Key) (engine.MotorOutcome, error) {
	delta, ok := m.keymap[key]
	if !ok {
		return engine.MotorOutcome{Key: key, Status: engine.OutcomeUnknownCommand}, nil
	}

	err := m.grid.Move(a.Entity, delta)
	switch {
	case err == nil:
		return engine.MotorOutcome{Key: key, Status: engine.OutcomeMoved}, nil
	case errors.Is(err, world.ErrOccupied):
		return engine.MotorOutcome{Key: key, Status: engine.OutcomeBlocked}, nil
	case errors.Is(err, world.ErrOutOfBounds):
		return engine.MotorOutcome{Key: key, Status: engine.OutcomeOutOfBounds}, nil
	default:
		return engine.MotorOutcome{}, fmt.Errorf("motor input for %q: %w", a.Name, err)
	}
}
