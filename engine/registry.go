package engine

import (
	"fmt"
	"math/rand"
	"sort"
)

// Factory builds an engine for a logical agent type.
type Factory func(seed int64) Engine

var factories = map[string]Factory{}

// Register adds a factory under a logical type name. Panics on
// duplicate registration; call from init or program setup only.
func Register(name string, f Factory) {
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("engine: type %q already registered", name))
	}
	factories[name] = f
}

// New instantiates an engine for the given logical type name.
func New(name string, seed int64) (Engine, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown agent type %q (registered: %v)", name, Types())
	}
	return f(seed), nil
}

// Types lists registered type names in sorted order.
func Types() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("random-walk", func(seed int64) Engine {
		rng := rand.New(rand.NewSource(seed))
		keys := []Key{"up", "down", "left", "right"}
		return NewRandomWalk(rng, keys, 0.05, 0.02)
	})
	Register("seeker", func(seed int64) Engine {
		rng := rand.New(rand.NewSource(seed))
		return NewSeeker(rng, "resource", 0.05)
	})
}
