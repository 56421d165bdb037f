// Package world owns the shared occupancy grid and its primitive mutations.
//
// The grid is the only state shared across agents. All mutation happens
// from inside the active agent's mediator call, so no locking is needed
// as long as the scheduler keeps a single agent stepping at a time.
package world

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridmind/components"
)

// Sentinel errors for grid operations. Callers match with errors.Is.
var (
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrOccupied    = errors.New("cell occupied by solid entity")
)

// Delta is a relative cell offset.
type Delta struct {
	DRow, DCol int
}

// Occupant pairs an entity with its body for query results.
type Occupant struct {
	Entity ecs.Entity
	Body   components.Body
}

// CellView is the contents of a single cell: at most one solid occupant
// plus any number of passive markers.
type CellView struct {
	Solid   *Occupant
	Markers []Occupant
}

// Grid is the shared 2D occupancy grid. Entity data lives in an ark ECS
// world; the grid keeps a per-cell solid index that is always consistent
// with the Position components.
type Grid struct {
	rows, cols int

	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Body]

	posMap  *ecs.Map1[components.Position]
	bodyMap *ecs.Map1[components.Body]

	solids   []ecs.Entity   // one slot per cell, valid when occupied[i]
	occupied []bool         // cell has a solid occupant
	markers  [][]ecs.Entity // passive markers per cell

	nextID uint32
}

// NewGrid creates an empty rows x cols grid.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}

	w := ecs.NewWorld()
	return &Grid{
		rows:     rows,
		cols:     cols,
		world:    w,
		mapper:   ecs.NewMap2[components.Position, components.Body](w),
		posMap:   ecs.NewMap1[components.Position](w),
		bodyMap:  ecs.NewMap1[components.Body](w),
		solids:   make([]ecs.Entity, rows*cols),
		occupied: make([]bool, rows*cols),
		markers:  make([][]ecs.Entity, rows*cols),
		nextID:   1,
	}, nil
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether the cell lies inside the grid.
func (g *Grid) InBounds(cell components.Position) bool {
	return cell.Row >= 0 && cell.Row < g.rows && cell.Col >= 0 && cell.Col < g.cols
}

func (g *Grid) index(cell components.Position) int {
	return cell.Row*g.cols + cell.Col
}

// Place registers a new occupant at the given cell.
// Solid occupants fail with ErrOccupied if the cell already holds one.
func (g *Grid) Place(kind components.Kind, label string, cell components.Position) (ecs.Entity, error) {
	if !g.InBounds(cell) {
		return ecs.Entity{}, fmt.Errorf("place %q at (%d,%d): %w", label, cell.Row, cell.Col, ErrOutOfBounds)
	}
	idx := g.index(cell)
	if kind.Solid() && g.occupied[idx] {
		return ecs.Entity{}, fmt.Errorf("place %q at (%d,%d): %w", label, cell.Row, cell.Col, ErrOccupied)
	}

	pos := cell
	body := components.Body{ID: g.nextID, Kind: kind, Label: label}
	g.nextID++

	e := g.mapper.NewEntity(&pos, &body)
	if kind.Solid() {
		g.solids[idx] = e
		g.occupied[idx] = true
	} else {
		g.markers[idx] = append(g.markers[idx], e)
	}
	return e, nil
}

// Move shifts a solid occupant by delta. The check-then-act is atomic:
// on any failure the grid is left untouched.
func (g *Grid) Move(e ecs.Entity, delta Delta) error {
	pos := g.posMap.Get(e)
	body := g.bodyMap.Get(e)
	if pos == nil || body == nil {
		return fmt.Errorf("move: entity not on grid")
	}
	target := components.Position{Row: pos.Row + delta.DRow, Col: pos.Col + delta.DCol}
	if !g.InBounds(target) {
		return fmt.Errorf("move %q to (%d,%d): %w", body.Label, target.Row, target.Col, ErrOutOfBounds)
	}
	tIdx := g.index(target)
	if body.Kind.Solid() && g.occupied[tIdx] {
		return fmt.Errorf("move %q to (%d,%d): %w", body.Label, target.Row, target.Col, ErrOccupied)
	}

	sIdx := g.index(*pos)
	if body.Kind.Solid() {
		g.occupied[sIdx] = false
		g.solids[sIdx] = ecs.Entity{}
		g.solids[tIdx] = e
		g.occupied[tIdx] = true
	} else {
		g.markers[sIdx] = removeEntity(g.markers[sIdx], e)
		g.markers[tIdx] = append(g.markers[tIdx], e)
	}
	*pos = target
	return nil
}

// Remove deletes an occupant from the grid entirely.
func (g *Grid) Remove(e ecs.Entity) {
	pos := g.posMap.Get(e)
	body := g.bodyMap.Get(e)
	if pos == nil || body == nil {
		return
	}
	idx := g.index(*pos)
	if body.Kind.Solid() {
		if g.occupied[idx] && g.solids[idx] == e {
			g.occupied[idx] = false
			g.solids[idx] = ecs.Entity{}
		}
	} else {
		g.markers[idx] = removeEntity(g.markers[idx], e)
	}
	g.mapper.Remove(e)
}

// At returns the contents of a cell. Valid empty cells return an empty
// view; only invalid coordinates fail.
func (g *Grid) At(cell components.Position) (CellView, error) {
	if !g.InBounds(cell) {
		return CellView{}, fmt.Errorf("query (%d,%d): %w", cell.Row, cell.Col, ErrOutOfBounds)
	}
	idx := g.index(cell)
	var view CellView
	if g.occupied[idx] {
		e := g.solids[idx]
		view.Solid = &Occupant{Entity: e, Body: *g.bodyMap.Get(e)}
	}
	for _, e := range g.markers[idx] {
		view.Markers = append(view.Markers, Occupant{Entity: e, Body: *g.bodyMap.Get(e)})
	}
	return view, nil
}

// PositionOf returns the recorded position of an occupant.
func (g *Grid) PositionOf(e ecs.Entity) (components.Position, bool) {
	pos := g.posMap.Get(e)
	if pos == nil {
		return components.Position{}, false
	}
	return *pos, true
}

// Region is a rectangular window of grid contents, clipped to bounds.
type Region struct {
	MinRow, MinCol int
	MaxRow, MaxCol int // inclusive
}

// Neighborhood returns the square (2*radius+1) region around origin,
// clipped to grid bounds.
func (g *Grid) Neighborhood(origin components.Position, radius int) (Region, error) {
	if !g.InBounds(origin) {
		return Region{}, fmt.Errorf("neighborhood of (%d,%d): %w", origin.Row, origin.Col, ErrOutOfBounds)
	}
	if radius < 0 {
		radius = 0
	}
	return Region{
		MinRow: maxInt(0, origin.Row-radius),
		MinCol: maxInt(0, origin.Col-radius),
		MaxRow: minInt(g.rows-1, origin.Row+radius),
		MaxCol: minInt(g.cols-1, origin.Col+radius),
	}, nil
}

// Opaque reports whether the cell blocks line of sight.
func (g *Grid) Opaque(cell components.Position) bool {
	if !g.InBounds(cell) {
		return false
	}
	idx := g.index(cell)
	if !g.occupied[idx] {
		return false
	}
	body := g.bodyMap.Get(g.solids[idx])
	return body != nil && body.Kind.Opaque()
}

// CheckConsistency verifies that the solid index and the Position
// components agree. Returns the first mismatch found, or nil.
func (g *Grid) CheckConsistency() error {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			cell := components.Position{Row: row, Col: col}
			idx := g.index(cell)
			if !g.occupied[idx] {
				continue
			}
			pos := g.posMap.Get(g.solids[idx])
			if pos == nil {
				return fmt.Errorf("cell (%d,%d): indexed entity has no position", row, col)
			}
			if *pos != cell {
				return fmt.Errorf("cell (%d,%d): indexed entity records position (%d,%d)", row, col, pos.Row, pos.Col)
			}
		}
	}
	return nil
}

func removeEntity(list []ecs.Entity, e ecs.Entity) []ecs.Entity {
	for i, x := range list {
		if x == e {
			list[i] = list[len(list)-1]
			return list[:len(list)-1]
		}
	}
	return list
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
