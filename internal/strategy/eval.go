package strategy

import (
	"context"
	"math"

	chesslib "github.com/corentings/chess/v2"
)

// scoreFunc rates the position reached after a candidate move, from the
// mover's point of view. Higher is better.
type scoreFunc func(mover chesslib.Color, after *chesslib.Position) float64

// evalStrategy scores the resulting position of every legal move and
// plays the highest-scoring one. Ties keep the earliest candidate in
// generation order, so a given position always yields the same move.
type evalStrategy struct {
	name  string
	score scoreFunc
}

func (s *evalStrategy) Name() string { return s.name }

func (s *evalStrategy) SelectMove(_ context.Context, pos *chesslib.Position, _ *MoveLog) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}
	mover := pos.Turn()
	bestIdx := -1
	bestScore := math.Inf(-1)
	for i := range moves {
		after := pos.Update(&moves[i])
		if after == nil {
			continue
		}
		if sc := s.score(mover, after); sc > bestScore {
			bestScore = sc
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, ErrNoLegalMove
	}
	return &moves[bestIdx], nil
}

// NewMinResponses prefers moves that leave the opponent the fewest
// replies.
func NewMinResponses() Strategy {
	return &evalStrategy{name: "min-responses", score: func(_ chesslib.Color, after *chesslib.Position) float64 {
		return -float64(len(after.ValidMoves()))
	}}
}

// NewSuicideKing walks the kings toward each other.
func NewSuicideKing() Strategy {
	return &evalStrategy{name: "suicide-king", score: func(_ chesslib.Color, after *chesslib.Position) float64 {
		white, okW := kingSquare(after, chesslib.White)
		black, okB := kingSquare(after, chesslib.Black)
		if !okW || !okB {
			return 0
		}
		return -float64(chebyshev(white, black))
	}}
}

// NewLightSquares maximizes the mover's piece count on light squares.
func NewLightSquares() Strategy { return newSquareColor("light-squares", true) }

// NewDarkSquares maximizes the mover's piece count on dark squares.
func NewDarkSquares() Strategy { return newSquareColor("dark-squares", false) }

func newSquareColor(name string, light bool) Strategy {
	return &evalStrategy{name: name, score: func(mover chesslib.Color, after *chesslib.Position) float64 {
		count := 0
		for sq, piece := range after.Board().SquareMap() {
			if piece.Color() == mover && isLightSquare(sq) == light {
				count++
			}
		}
		return float64(count)
	}}
}

// NewSwarm crowds the mover's pieces around the enemy king.
func NewSwarm() Strategy {
	return &evalStrategy{name: "swarm", score: func(mover chesslib.Color, after *chesslib.Position) float64 {
		target, ok := kingSquare(after, mover.Other())
		if !ok {
			return 0
		}
		return -float64(totalDistance(after, mover, target))
	}}
}

// NewHuddle keeps the mover's pieces close to their own king.
func NewHuddle() Strategy {
	return &evalStrategy{name: "huddle", score: func(mover chesslib.Color, after *chesslib.Position) float64 {
		target, ok := kingSquare(after, mover)
		if !ok {
			return 0
		}
		return -float64(totalDistance(after, mover, target))
	}}
}

func kingSquare(pos *chesslib.Position, color chesslib.Color) (chesslib.Square, bool) {
	for sq, piece := range pos.Board().SquareMap() {
		if piece.Color() == color && piece.Type() == chesslib.King {
			return sq, true
		}
	}
	return 0, false
}

func totalDistance(pos *chesslib.Position, color chesslib.Color, target chesslib.Square) int {
	total := 0
	for sq, piece := range pos.Board().SquareMap() {
		if piece.Color() == color {
			total += chebyshev(sq, target)
		}
	}
	return total
}

func chebyshev(a, b chesslib.Square) int {
	df := int(a.File()) - int(b.File())
	if df < 0 {
		df = -df
	}
	dr := int(a.Rank()) - int(b.Rank())
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// isLightSquare reports whether sq is a light square. a1 is dark.
func isLightSquare(sq chesslib.Square) bool {
	return (int(sq.File())+int(sq.Rank()))%2 == 1
}
