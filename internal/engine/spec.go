package engine

import (
	"fmt"
	"strings"
)

// Option is one UCI option applied during the handshake, in order.
type Option struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Spec describes how to spawn and drive one engine binary.
type Spec struct {
	Name           string   `yaml:"name"`
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	Options        []Option `yaml:"options"`
	Depth          int      `yaml:"depth"`
	MoveTimeMillis int      `yaml:"movetime"`
	NodeCap        int      `yaml:"nodes"`
	MultiPV        int      `yaml:"multipv"`
}

func (s Spec) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("engine spec requires a name")
	case strings.TrimSpace(s.Command) == "":
		return fmt.Errorf("engine %s requires a command", s.Name)
	case s.MultiPV < 0:
		return fmt.Errorf("engine %s multipv must be >= 0: %d", s.Name, s.MultiPV)
	}
	for i, opt := range s.Options {
		if strings.TrimSpace(opt.Name) == "" {
			return fmt.Errorf("engine %s option at index %d has no name", s.Name, i)
		}
	}
	return s.Limits().Validate()
}

// Limits returns the default search limits for this engine.
func (s Spec) Limits() Limits {
	return Limits{
		Depth:          s.Depth,
		MoveTimeMillis: s.MoveTimeMillis,
		NodeCap:        s.NodeCap,
	}
}

func (s Spec) clone() Spec {
	dup := s
	dup.Args = append([]string(nil), s.Args...)
	dup.Options = append([]Option(nil), s.Options...)
	return dup
}

// DefaultSpecs returns the built-in engine catalog. A user catalog file
// may override or extend these entries.
func DefaultSpecs() map[string]Spec {
	return map[string]Spec{
		"stockfish": {
			Name:    "stockfish",
			Command: "stockfish",
			Depth:   18,
		},
		"gnuchess": {
			Name:    "gnuchess",
			Command: "gnuchessu",
			Depth:   10,
			Options: []Option{{Name: "Hash", Value: "1024"}},
		},
	}
}

// GetSpec looks up a named entry in the given catalog, falling back to the
// built-in defaults when catalog is nil.
func GetSpec(catalog map[string]Spec, name string) (Spec, error) {
	if catalog == nil {
		catalog = DefaultSpecs()
	}
	s, ok := catalog[name]
	if !ok {
		return Spec{}, fmt.Errorf("unknown engine: %s", name)
	}
	return s.clone(), nil
}
