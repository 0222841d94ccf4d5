package transcript

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	chesslib "github.com/corentings/chess/v2"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

// Console prints a running game as a numbered move list, one half-move
// per line, with the raw UCI token alongside the SAN. It is safe for use
// from multiple goroutines; lines never interleave.
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	showBoard bool
}

// NewConsole writes the transcript to w. With showBoard set, the board
// is drawn after every ply.
func NewConsole(w io.Writer, showBoard bool) *Console {
	return &Console{w: w, showBoard: showBoard}
}

func (c *Console) OnPly(_ context.Context, ev domain.PlyEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	moveNo := (ev.Ply + 1) / 2
	if ev.Side == domain.SideWhite {
		fmt.Fprintf(c.w, "%3d. %-10s (%s)\n", moveNo, ev.MoveSAN, ev.MoveUCI)
	} else {
		fmt.Fprintf(c.w, "%3d. ... %-6s (%s)\n", moveNo, ev.MoveSAN, ev.MoveUCI)
	}
	if c.showBoard {
		if board, err := drawFEN(ev.FEN); err == nil {
			fmt.Fprintln(c.w, board)
		}
	}
	return nil
}

func (c *Console) OnResult(_ context.Context, rec *domain.GameRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec.Termination == domain.TerminationAborted {
		fmt.Fprintf(c.w, "\n%s aborted at ply %d (%s): %s\n",
			rec.Result, rec.FailedPly, rec.FailedSide, rec.FailReason)
		return nil
	}
	fmt.Fprintf(c.w, "\n%s  %s after %d plies in %s\n",
		rec.Result, rec.Termination, rec.PlyCount, rec.Duration.Round(time.Millisecond))
	return nil
}

func drawFEN(fen string) (string, error) {
	opt, err := chesslib.FEN(fen)
	if err != nil {
		return "", err
	}
	return chesslib.NewGame(opt).Position().Board().Draw(), nil
}
