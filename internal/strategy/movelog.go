package strategy

import (
	chesslib "github.com/corentings/chess/v2"
)

// MoveLog is a read-only view of the moves played so far and the
// positions they were played from. Entry i holds the i-th move and the
// position before it.
type MoveLog struct {
	moves     []*chesslib.Move
	positions []*chesslib.Position
}

// LogFromGame snapshots the game's move history.
func LogFromGame(g *chesslib.Game) *MoveLog {
	return &MoveLog{moves: g.Moves(), positions: g.Positions()}
}

func (l *MoveLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.moves)
}

func (l *MoveLog) Move(i int) *chesslib.Move {
	return l.moves[i]
}

// PositionBefore returns the position move i was played from.
func (l *MoveLog) PositionBefore(i int) *chesslib.Position {
	return l.positions[i]
}

// BaseFEN returns the FEN of the position the log starts from, or the
// empty string when the log is empty (callers treat that as startpos).
func (l *MoveLog) BaseFEN() string {
	if l == nil || len(l.positions) == 0 {
		return ""
	}
	return l.positions[0].String()
}

// UCIMoves returns the logged moves as UCI tokens.
func (l *MoveLog) UCIMoves() []string {
	if l.Len() == 0 {
		return nil
	}
	out := make([]string, len(l.moves))
	for i, mv := range l.moves {
		out[i] = mv.String()
	}
	return out
}
