// Line-of-sight preview tool: renders a configured world layout as
// ASCII with the visibility set from a chosen vantage cell.
//
// Usage: go run ./cmd/lospreview -config config.yaml -row 2 -col 2 -radius 3
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pthm-cable/gridmind/components"
	"github.com/pthm-cable/gridmind/config"
	"github.com/pthm-cable/gridmind/world"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty = embedded defaults)")
	row := flag.Int("row", 0, "vantage cell row")
	col := flag.Int("col", 0, "vantage cell column")
	radius := flag.Int("radius", 3, "line-of-sight radius")
	flag.Parse()

	if err := run(*configPath, *row, *col, *radius); err != nil {
		fmt.Fprintln(os.Stderr, "lospreview:", err)
		os.Exit(1)
	}
}

func run(configPath string, row, col, radius int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	g, err := world.NewGrid(cfg.World.Rows, cfg.World.Cols)
	if err != nil {
		return err
	}
	if err := world.ApplyLayout(g, cfg.World.Layout); err != nil {
		return err
	}

	origin := components.Position{Row: row, Col: col}
	visible, err := world.VisibleCells(g, origin, radius)
	if err != nil {
		return err
	}

	for r := 0; r < g.Rows(); r++ {
		line := make([]byte, g.Cols())
		for c := 0; c < g.Cols(); c++ {
			line[c] = glyph(g, components.Position{Row: r, Col: c}, origin, radius, visible)
		}
		fmt.Println(string(line))
	}
	fmt.Printf("\nvantage (%d,%d) radius %d: %d visible cells\n", row, col, radius, len(visible))
	return nil
}

// glyph picks the display character for one cell: '@' vantage, '#'
// wall, '*' marker, 'A' other solid, 'o' visible empty, '~' occluded
// within the window, '.' outside the window.
func glyph(g *world.Grid, cell, origin components.Position, radius int, visible map[components.Position]bool) byte {
	if cell == origin {
		return '@'
	}

	view, err := g.At(cell)
	if err != nil {
		return '?'
	}
	base := byte('.')
	switch {
	case view.Solid != nil && view.Solid.Body.Kind == components.KindWall:
		base = '#'
	case view.Solid != nil:
		base = 'A'
	case len(view.Markers) > 0:
		base = '*'
	}

	inWindow := abs(cell.Row-origin.Row) <= radius && abs(cell.Col-origin.Col) <= radius
	if !inWindow {
		return base
	}
	if !visible[cell] {
		return '~'
	}
	if base == '.' {
		return 'o'
	}
	return base
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
