package strategy

import (
	"context"
	"fmt"
	"math"

	chesslib "github.com/corentings/chess/v2"
)

// Equalizer moves the piece that has moved the least to the square that
// has been visited the least. It keeps 64-slot moved/visited counters
// per color; a slot holding -1 means no piece of that color currently
// tracks through the square. Castling also counts the rook move, and
// captures clear the victim's moved slot.
type Equalizer struct {
	whiteMoved   [64]int
	whiteVisited [64]int
	blackMoved   [64]int
	blackVisited [64]int

	consumed int // log entries already folded into the counters
}

func NewEqualizer() *Equalizer {
	e := &Equalizer{}
	e.Reset()
	return e
}

func (e *Equalizer) Name() string { return "equalizer" }

// Reset restores the starting-position counters: white pieces on the
// first two ranks, black pieces on the last two, one visit each.
func (e *Equalizer) Reset() {
	for i := 0; i < 64; i++ {
		e.whiteMoved[i] = -1
		e.whiteVisited[i] = 0
		e.blackMoved[i] = -1
		e.blackVisited[i] = 0
	}
	for i := 0; i < 16; i++ {
		e.whiteMoved[i] = 0
		e.whiteVisited[i] = 1
		e.blackMoved[i+48] = 0
		e.blackVisited[i+48] = 1
	}
	e.consumed = 0
}

func (e *Equalizer) SelectMove(_ context.Context, pos *chesslib.Position, log *MoveLog) (*chesslib.Move, error) {
	if err := e.catchUp(log); err != nil {
		return nil, err
	}
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}

	moved, visited := e.countersFor(pos.Turn())
	bestIdx := -1
	leastMoved := math.MaxInt
	leastVisited := math.MaxInt
	for i := range moves {
		mc := moved[moves[i].S1()]
		vc := visited[moves[i].S2()]
		if mc < leastMoved {
			leastMoved, leastVisited, bestIdx = mc, vc, i
		} else if mc == leastMoved && vc < leastVisited {
			leastVisited, bestIdx = vc, i
		}
	}
	return &moves[bestIdx], nil
}

// Advance folds one played move into the counters; pos is the position
// the move was played from.
func (e *Equalizer) Advance(pos *chesslib.Position, move *chesslib.Move) error {
	e.fold(pos, move)
	e.consumed++
	return nil
}

// catchUp folds any log entries beyond what Advance already consumed,
// so callers that never call Advance still see exact counters.
func (e *Equalizer) catchUp(log *MoveLog) error {
	if log.Len() < e.consumed {
		return fmt.Errorf("move log shrank below consumed state: %d < %d", log.Len(), e.consumed)
	}
	for i := e.consumed; i < log.Len(); i++ {
		e.fold(log.PositionBefore(i), log.Move(i))
	}
	e.consumed = log.Len()
	return nil
}

func (e *Equalizer) fold(pos *chesslib.Position, move *chesslib.Move) {
	mover := pos.Turn()
	moved, visited := e.countersFor(mover)
	theirMoved, _ := e.countersFor(mover.Other())

	from := int(move.S1())
	to := int(move.S2())

	// Castling moves the rook as well.
	if move.HasTag(chesslib.KingSideCastle) || move.HasTag(chesslib.QueenSideCastle) {
		rank := move.S2().Rank()
		var rookFrom, rookTo int
		if move.HasTag(chesslib.KingSideCastle) {
			rookFrom = int(chesslib.NewSquare(chesslib.FileH, rank))
			rookTo = int(chesslib.NewSquare(chesslib.FileF, rank))
		} else {
			rookFrom = int(chesslib.NewSquare(chesslib.FileA, rank))
			rookTo = int(chesslib.NewSquare(chesslib.FileD, rank))
		}
		moved[rookTo] = moved[rookFrom] + 1
		moved[rookFrom] = -1
		visited[rookTo]++
	}

	// Any capture clears the victim's slot; harmless when the target
	// square is empty.
	theirMoved[to] = -1
	if move.HasTag(chesslib.EnPassant) {
		file := move.S2().File()
		rank := move.S2().Rank()
		var pawnSq chesslib.Square
		if mover == chesslib.White {
			pawnSq = chesslib.NewSquare(file, rank-1)
		} else {
			pawnSq = chesslib.NewSquare(file, rank+1)
		}
		theirMoved[int(pawnSq)] = -1
	}

	moved[to] = moved[from] + 1
	moved[from] = -1
	visited[to]++
}

func (e *Equalizer) countersFor(c chesslib.Color) (moved, visited *[64]int) {
	if c == chesslib.White {
		return &e.whiteMoved, &e.whiteVisited
	}
	return &e.blackMoved, &e.blackVisited
}
