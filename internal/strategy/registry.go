package strategy

import (
	"fmt"
	"strings"

	"github.com/thearst3rd/chess-tournament/internal/engine"
)

// Registry builds strategies by name. Lookup matches case-insensitive
// prefixes in roster order, so "sui" resolves to suicide-king.
type Registry struct {
	catalog map[string]engine.Spec
	seed    int64
	builds  int64
}

// NewRegistry wires the engine catalog and the base seed for random
// strategies. Seed 0 keeps the sources time-based; any other value
// hands each built strategy a distinct derived seed.
func NewRegistry(catalog map[string]engine.Spec, seed int64) *Registry {
	return &Registry{catalog: catalog, seed: seed}
}

// Names returns the roster in lookup order.
func (r *Registry) Names() []string {
	return []string{
		"random",
		"min-responses",
		"suicide-king",
		"stockfish",
		"gnuchess",
		"worstfish",
		"light-squares",
		"dark-squares",
		"equalizer",
		"swarm",
		"huddle",
		"book",
	}
}

// Resolve expands a possibly partial name to its roster entry.
func (r *Registry) Resolve(name string) (string, error) {
	token := strings.ToLower(strings.TrimSpace(name))
	if token == "" {
		return "", fmt.Errorf("strategy name is empty")
	}
	for _, n := range r.Names() {
		if strings.HasPrefix(n, token) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown strategy: %s", name)
}

// Build returns a fresh instance of the named strategy.
func (r *Registry) Build(name string) (Strategy, error) {
	resolved, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case "random":
		return NewRandom(r.nextSeed()), nil
	case "min-responses":
		return NewMinResponses(), nil
	case "suicide-king":
		return NewSuicideKing(), nil
	case "stockfish", "gnuchess":
		spec, err := engine.GetSpec(r.catalog, resolved)
		if err != nil {
			return nil, err
		}
		return NewEngine(spec)
	case "worstfish":
		spec, err := engine.GetSpec(r.catalog, "stockfish")
		if err != nil {
			return nil, err
		}
		return NewWorstfish(spec)
	case "light-squares":
		return NewLightSquares(), nil
	case "dark-squares":
		return NewDarkSquares(), nil
	case "equalizer":
		return NewEqualizer(), nil
	case "swarm":
		return NewSwarm(), nil
	case "huddle":
		return NewHuddle(), nil
	case "book":
		return NewBook(NewRandom(r.nextSeed()))
	}
	return nil, fmt.Errorf("unknown strategy: %s", name)
}

func (r *Registry) nextSeed() int64 {
	if r.seed == 0 {
		return 0
	}
	r.builds++
	return r.seed + r.builds - 1
}
