package strategy

import (
	"context"
	"errors"

	chesslib "github.com/corentings/chess/v2"
)

// ErrNoLegalMove is returned when a strategy is asked to move in a
// position that has no legal moves.
var ErrNoLegalMove = errors.New("no legal move in position")

// Strategy picks one legal move for the side to move. Implementations
// must never return a move that is not legal in pos.
type Strategy interface {
	Name() string
	SelectMove(ctx context.Context, pos *chesslib.Position, log *MoveLog) (*chesslib.Move, error)
}

// EngineBacked strategies own one or more engine processes that must be
// torn down when the strategy is discarded.
type EngineBacked interface {
	Strategy
	Close() error
}

// Stateful strategies track the played moves beyond what the position
// encodes. Advance folds exactly one move into the state; pos is the
// position the move was played from. SelectMove implementations catch
// up from the log on their own, so callers that always pass a complete
// log never need to call Advance.
type Stateful interface {
	Strategy
	Reset()
	Advance(pos *chesslib.Position, move *chesslib.Move) error
}

// SearchHints carries per-search limits handed down from a UCI go
// command. Zero fields mean "no preference".
type SearchHints struct {
	Depth          int
	MoveTimeMillis int
	NodeCap        int
}

// Tunable strategies accept search hints before the next SelectMove.
type Tunable interface {
	ApplyHints(hints SearchHints)
}
