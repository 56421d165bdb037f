package world

import "github.com/pthm-cable/gridmind/components"

// VisibleCells computes the line-of-sight-limited subset of the square
// neighborhood around origin. The origin cell is always visible. A cell
// holding an opaque occupant is itself visible, but cells strictly
// farther along the same ray are not.
//
// Rays are sampled at exact rational points so the result is
// deterministic and symmetric under grid reflection and 180-degree
// rotation. Where a ray passes exactly between two cells, it is
// occluded only if both cells are opaque.
func VisibleCells(g *Grid, origin components.Position, radius int) (map[components.Position]bool, error) {
	region, err := g.Neighborhood(origin, radius)
	if err != nil {
		return nil, err
	}

	visible := make(map[components.Position]bool)
	for row := region.MinRow; row <= region.MaxRow; row++ {
		for col := region.MinCol; col <= region.MaxCol; col++ {
			target := components.Position{Row: row, Col: col}
			if rayClear(g, origin, target) {
				visible[target] = true
			}
		}
	}
	return visible, nil
}

// rayClear reports whether no opaque cell lies strictly between origin
// and target on the straight line connecting their centers.
func rayClear(g *Grid, origin, target components.Position) bool {
	dr := target.Row - origin.Row
	dc := target.Col - origin.Col
	n := maxInt(absInt(dr), absInt(dc))

	// Same cell or adjacent: nothing in between.
	for i := 1; i < n; i++ {
		rows := nearestCells(origin.Row*n+dr*i, n)
		cols := nearestCells(origin.Col*n+dc*i, n)

		blocked := true
		for _, r := range rows {
			for _, c := range cols {
				if !g.Opaque(components.Position{Row: r, Col: c}) {
					blocked = false
				}
			}
		}
		if blocked {
			return false
		}
	}
	return true
}

// nearestCells returns the integer cell index (or indices, on an exact
// half tie) closest to the rational coordinate num/den. den > 0.
func nearestCells(num, den int) []int {
	q := num / den
	r := num % den
	if r < 0 {
		q--
		r += den
	}
	switch {
	case 2*r < den:
		return []int{q}
	case 2*r > den:
		return []int{q + 1}
	default:
		return []int{q, q + 1}
	}
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
