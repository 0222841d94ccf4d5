package domain

import "time"

// Side identifies the player to move, or the player a failure is charged to.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

func (s Side) Opponent() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// Termination classifies how a game ended.
type Termination string

const (
	TerminationCheckmate Termination = "checkmate"
	TerminationStalemate Termination = "stalemate"
	TerminationDraw      Termination = "draw"
	TerminationPlyCap    Termination = "ply-cap"
	TerminationAborted   Termination = "aborted"
)

// GameRecord is the durable summary of one finished or aborted game.
type GameRecord struct {
	ID          string
	White       string
	Black       string
	Result      string
	Termination Termination
	Method      string
	MovesUCI    []string
	MovesSAN    []string
	FinalFEN    string
	PlyCount    int
	StartedAt   time.Time
	EndedAt     time.Time
	Duration    time.Duration

	// Populated only when Termination == TerminationAborted.
	FailedSide Side
	FailedPly  int
	FailReason string
}

// PlyEvent is one half-move as observed live while a game runs.
type PlyEvent struct {
	GameID  string
	Ply     int
	Side    Side
	MoveUCI string
	MoveSAN string
	FEN     string
	At      time.Time
}
