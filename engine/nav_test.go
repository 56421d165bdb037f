package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pthm-cable/gridmind/components"
)

func openMap(blocked ...cellID) func(cellID) bool {
	deny := make(map[cellID]bool, len(blocked))
	for _, c := range blocked {
		deny[c] = true
	}
	return func(c cellID) bool {
		return c.row >= 0 && c.row < 5 && c.col >= 0 && c.col < 5 && !deny[c]
	}
}

func TestFindPathStraight(t *testing.T) {
	path := findPath(cellID{2, 0}, cellID{2, 3}, openMap())
	if len(path) != 3 {
		t.Fatalf("path %v, want 3 steps", path)
	}
	if path[2] != (cellID{2, 3}) {
		t.Errorf("path ends at %v", path[2])
	}
}

func TestFindPathAroundWall(t *testing.T) {
	// Vertical wall through column 2 with a gap at row 4.
	path := findPath(cellID{2, 0}, cellID{2, 4}, openMap(
		cellID{0, 2}, cellID{1, 2}, cellID{2, 2}, cellID{3, 2},
	))
	if path == nil {
		t.Fatal("no path found around wall")
	}
	// Detour through row 4: 4 steps down/up plus 4 across.
	if len(path) != 8 {
		t.Errorf("path length %d, want 8: %v", len(path), path)
	}
	for _, c := range path {
		if c.col == 2 && c.row != 4 {
			t.Errorf("path crosses the wall at %v", c)
		}
	}
}

func TestFindPathUnreachable(t *testing.T) {
	// Target sealed off completely.
	path := findPath(cellID{0, 0}, cellID{4, 4}, openMap(
		cellID{3, 3}, cellID{3, 4}, cellID{4, 3},
	))
	if path != nil {
		t.Errorf("found path into sealed region: %v", path)
	}
}

func TestFindPathGoalNeedNotBePassable(t *testing.T) {
	// The goal cell holds the sought occupant, so the passability
	// predicate denies it; the path must still reach it.
	goal := cellID{2, 2}
	path := findPath(cellID{0, 0}, goal, openMap(goal))
	if len(path) == 0 || path[len(path)-1] != goal {
		t.Errorf("path %v does not reach the occupied goal", path)
	}
}

func seekerStim(rows, cols int, self components.Position, symbols map[components.Position]Symbol) SymbolMap {
	m := make(SymbolMap)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m[components.Position{Row: r, Col: c}] = SymbolEmpty
		}
	}
	for p, s := range symbols {
		m[p] = s
	}
	m[self] = SymbolSelf
	return m
}

func TestSeekerHomesOnTarget(t *testing.T) {
	e := NewSeeker(rand.New(rand.NewSource(1)), "resource", 0.05)

	// First cycle only perceives.
	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Motor != nil || !res.Perception {
		t.Fatalf("first cycle %+v, want perception only", res)
	}

	e.InjectPerception(seekerStim(5, 5, components.Position{Row: 2, Col: 2}, map[components.Position]Symbol{
		{Row: 2, Col: 4}: "resource",
	}))
	res, err = e.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Motor == nil || res.Motor.Key != "right" {
		t.Errorf("move %+v, want right toward target", res.Motor)
	}
	if res.Production != "seek-right" {
		t.Errorf("production %q", res.Production)
	}
}

func TestSeekerRoutesAroundWall(t *testing.T) {
	e := NewSeeker(rand.New(rand.NewSource(1)), "resource", 0.05)
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}

	// Wall directly between the seeker and the target.
	e.InjectPerception(seekerStim(5, 5, components.Position{Row: 2, Col: 2}, map[components.Position]Symbol{
		{Row: 2, Col: 3}: "wall",
		{Row: 2, Col: 4}: "resource",
	}))
	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Motor == nil || (res.Motor.Key != "up" && res.Motor.Key != "down") {
		t.Errorf("move %+v, want a detour around the wall", res.Motor)
	}
}

func TestSeekerWandersWithoutTarget(t *testing.T) {
	e := NewSeeker(rand.New(rand.NewSource(1)), "resource", 0.05)
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}

	e.InjectPerception(seekerStim(3, 3, components.Position{Row: 1, Col: 1}, nil))
	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Motor == nil {
		t.Fatal("wandering seeker issued no move")
	}
	if res.Production != "wander" {
		t.Errorf("production %q, want wander", res.Production)
	}
}
