// Package components defines ECS components for entities on the grid.
package components

// Kind classifies an occupant of a grid cell.
type Kind uint8

const (
	KindAgent    Kind = iota // cognitive agent, solid
	KindWall                 // static obstacle, solid, blocks line of sight
	KindResource             // passive marker, not solid
)

// String returns the symbolic token used for this kind in perception output.
func (k Kind) String() string {
	switch k {
	case KindAgent:
		return "agent"
	case KindWall:
		return "wall"
	case KindResource:
		return "resource"
	}
	return "unknown"
}

// Solid reports whether occupants of this kind exclude other solids
// from their cell.
func (k Kind) Solid() bool {
	return k != KindResource
}

// Opaque reports whether occupants of this kind block line of sight.
// Only walls occlude; agents and resources can be seen through.
func (k Kind) Opaque() bool {
	return k == KindWall
}

// Position is an entity's cell on the grid.
type Position struct {
	Row, Col int
}

// Body identifies an occupant: a stable numeric ID, its kind, and the
// label reported to perceiving agents.
type Body struct {
	ID    uint32
	Kind  Kind
	Label string
}
