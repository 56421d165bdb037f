package world

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridmind/components"
)

// ApplyLayout places walls and resource markers from an ASCII layout.
// Each string is one row; '#' is a wall, '*' a resource marker, any
// other rune an empty cell. Rows shorter than the grid are padded with
// empty cells; extra rows or columns fail.
func ApplyLayout(g *Grid, layout []string) error {
	if len(layout) > g.Rows() {
		return fmt.Errorf("layout has %d rows, grid has %d", len(layout), g.Rows())
	}
	for row, line := range layout {
		if len(line) > g.Cols() {
			return fmt.Errorf("layout row %d has %d columns, grid has %d", row, len(line), g.Cols())
		}
		for col, ch := range line {
			cell := components.Position{Row: row, Col: col}
			switch ch {
			case '#':
				if _, err := g.Place(components.KindWall, "wall", cell); err != nil {
					return err
				}
			case '*':
				if _, err := g.Place(components.KindResource, "resource", cell); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// PlaceRandom places one solid agent body per label at distinct random
// free cells. Fails fast if the grid cannot hold all of them.
func PlaceRandom(g *Grid, labels []string, rng *rand.Rand) (map[string]ecs.Entity, error) {
	var free []components.Position
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			cell := components.Position{Row: row, Col: col}
			view, err := g.At(cell)
			if err != nil {
				return nil, err
			}
			if view.Solid == nil {
				free = append(free, cell)
			}
		}
	}
	if len(labels) > len(free) {
		return nil, fmt.Errorf("not enough space: %d agents for %d free cells", len(labels), len(free))
	}

	rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	placed := make(map[string]ecs.Entity, len(labels))
	for i, label := range labels {
		e, err := g.Place(components.KindAgent, label, free[i])
		if err != nil {
			return nil, err
		}
		placed[label] = e
	}
	return placed, nil
}
