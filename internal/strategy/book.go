package strategy

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	chesslib "github.com/corentings/chess/v2"
	yaml "gopkg.in/yaml.v3"
)

//go:embed openings.yaml
var openingFiles embed.FS

type bookLine struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
	Moves  string `yaml:"moves"`

	tokens []string
}

type bookFile struct {
	Lines []bookLine `yaml:"lines"`
}

// Book follows its opening lines while the game history matches one,
// then hands over to the fallback strategy. It carries no state of its
// own: every choice is a pure function of the history.
type Book struct {
	lines    []bookLine
	fallback Strategy
}

func NewBook(fallback Strategy) (*Book, error) {
	raw, err := fs.ReadFile(openingFiles, "openings.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded openings: %w", err)
	}
	var file bookFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse embedded openings: %w", err)
	}
	for i := range file.Lines {
		file.Lines[i].tokens = strings.Fields(file.Lines[i].Moves)
		if len(file.Lines[i].tokens) == 0 {
			return nil, fmt.Errorf("opening line %q has no moves", file.Lines[i].Name)
		}
	}
	return &Book{lines: file.Lines, fallback: fallback}, nil
}

func (s *Book) Name() string { return "book" }

// Close tears down an engine-backed fallback, if any.
func (s *Book) Close() error {
	if eb, ok := s.fallback.(EngineBacked); ok {
		return eb.Close()
	}
	return nil
}

func (s *Book) SelectMove(ctx context.Context, pos *chesslib.Position, log *MoveLog) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}
	// book lines only apply to games from the standard start
	if base := log.BaseFEN(); base != "" && base != startposFEN {
		return s.fallback.SelectMove(ctx, pos, log)
	}

	if token := s.nextFromBook(log.UCIMoves()); token != "" {
		for i := range moves {
			if moves[i].String() == token {
				return &moves[i], nil
			}
		}
	}
	return s.fallback.SelectMove(ctx, pos, log)
}

// nextFromBook aggregates the follow-up weights of every line the
// history still matches and returns the heaviest continuation.
func (s *Book) nextFromBook(history []string) string {
	weights := make(map[string]int)
	for _, line := range s.lines {
		if len(history) >= len(line.tokens) {
			continue
		}
		if !prefixMatches(line.tokens, history) {
			continue
		}
		weights[line.tokens[len(history)]] += line.Weight
	}
	if len(weights) == 0 {
		return ""
	}

	type weightedMove struct {
		move   string
		weight int
	}
	ranked := make([]weightedMove, 0, len(weights))
	for mv, w := range weights {
		ranked = append(ranked, weightedMove{move: mv, weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight == ranked[j].weight {
			return ranked[i].move < ranked[j].move
		}
		return ranked[i].weight > ranked[j].weight
	})
	return ranked[0].move
}

func prefixMatches(line, history []string) bool {
	for i, mv := range history {
		if !strings.EqualFold(line[i], mv) {
			return false
		}
	}
	return true
}
