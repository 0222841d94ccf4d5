package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chesslib "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thearst3rd/chess-tournament/internal/domain"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/internal/strategy"
)

// ErrIllegalMove reports a strategy handing back a move that is not legal
// in the current position. The game aborts charged to that strategy; a
// substitute move is never played on its behalf.
var ErrIllegalMove = errors.New("strategy returned illegal move")

// DefaultPlyCap bounds runaway games between strategies that never make
// progress (two huddles can shuffle forever).
const DefaultPlyCap = 512

// Sink observes a running game ply by ply. Sink errors are logged and the
// game continues; a sink must not assume it saw every event.
type Sink interface {
	OnPly(ctx context.Context, ev domain.PlyEvent) error
	OnResult(ctx context.Context, rec *domain.GameRecord) error
}

type Config struct {
	// PlyCap is the maximum number of half-moves before the game is cut
	// off undecided. Zero means DefaultPlyCap.
	PlyCap int
	// Delay pauses after each ply so spectators can follow along.
	Delay time.Duration
}

// Arena runs games between two strategies from the standard initial
// position and reports them to its sinks.
type Arena struct {
	cfg   Config
	sinks []Sink
}

func New(cfg Config, sinks ...Sink) *Arena {
	if cfg.PlyCap <= 0 {
		cfg.PlyCap = DefaultPlyCap
	}
	return &Arena{cfg: cfg, sinks: sinks}
}

// Play runs a single game. The returned record is always non-nil: strategy
// failures end the game as aborted with the failing side and ply recorded,
// not as an error. The error return is reserved for cancellation of ctx,
// in which case the partial record accompanies it.
func (a *Arena) Play(ctx context.Context, white, black strategy.Strategy) (*domain.GameRecord, error) {
	game := chesslib.NewGame()
	rec := &domain.GameRecord{
		ID:        uuid.NewString(),
		White:     white.Name(),
		Black:     black.Name(),
		StartedAt: time.Now(),
	}
	for _, s := range []strategy.Strategy{white, black} {
		if st, ok := s.(strategy.Stateful); ok {
			st.Reset()
		}
	}
	obslog.L().Info("game started",
		zap.String("game_id", rec.ID),
		zap.String("white", rec.White),
		zap.String("black", rec.Black),
		zap.Int("ply_cap", a.cfg.PlyCap))

	for game.Outcome() == chesslib.NoOutcome {
		if err := ctx.Err(); err != nil {
			a.abort(ctx, rec, game, sideToMove(game), len(rec.MovesUCI)+1, err)
			return rec, err
		}
		ply := len(rec.MovesUCI) + 1
		if ply > a.cfg.PlyCap {
			a.finish(ctx, rec, game, domain.TerminationPlyCap, "ply cap reached")
			return rec, nil
		}

		side := sideToMove(game)
		strat := white
		if side == domain.SideBlack {
			strat = black
		}

		pos := game.Position()
		mv, err := strat.SelectMove(ctx, pos, strategy.LogFromGame(game))
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				a.abort(ctx, rec, game, side, ply, cerr)
				return rec, cerr
			}
			a.abort(ctx, rec, game, side, ply, err)
			return rec, nil
		}
		if mv == nil || !isLegal(pos, mv) {
			a.abort(ctx, rec, game, side, ply, fmt.Errorf("%w: %q", ErrIllegalMove, moveToken(mv)))
			return rec, nil
		}

		san := chesslib.AlgebraicNotation{}.Encode(pos, mv)
		uci := mv.String()
		if err := game.Move(mv, nil); err != nil {
			a.abort(ctx, rec, game, side, ply, fmt.Errorf("%w: %v", ErrIllegalMove, err))
			return rec, nil
		}
		rec.MovesUCI = append(rec.MovesUCI, uci)
		rec.MovesSAN = append(rec.MovesSAN, san)

		a.emitPly(ctx, domain.PlyEvent{
			GameID:  rec.ID,
			Ply:     ply,
			Side:    side,
			MoveUCI: uci,
			MoveSAN: san,
			FEN:     game.FEN(),
			At:      time.Now(),
		})

		if a.cfg.Delay > 0 && game.Outcome() == chesslib.NoOutcome {
			select {
			case <-ctx.Done():
			case <-time.After(a.cfg.Delay):
			}
		}
	}

	a.finish(ctx, rec, game, terminationFor(game), strings.ToLower(game.Method().String()))
	return rec, nil
}

func (a *Arena) abort(ctx context.Context, rec *domain.GameRecord, game *chesslib.Game, side domain.Side, ply int, cause error) {
	rec.FailedSide = side
	rec.FailedPly = ply
	rec.FailReason = cause.Error()
	obslog.L().Warn("game aborted",
		zap.String("game_id", rec.ID),
		zap.String("side", string(side)),
		zap.Int("ply", ply),
		zap.Error(cause))
	a.finish(ctx, rec, game, domain.TerminationAborted, "aborted")
}

func (a *Arena) finish(ctx context.Context, rec *domain.GameRecord, game *chesslib.Game, term domain.Termination, method string) {
	rec.Result = game.Outcome().String()
	rec.Termination = term
	rec.Method = method
	rec.FinalFEN = game.FEN()
	rec.PlyCount = len(rec.MovesUCI)
	rec.EndedAt = time.Now()
	rec.Duration = rec.EndedAt.Sub(rec.StartedAt)
	obslog.L().Info("game finished",
		zap.String("game_id", rec.ID),
		zap.String("result", rec.Result),
		zap.String("termination", string(rec.Termination)),
		zap.Int("plies", rec.PlyCount),
		zap.Duration("duration", rec.Duration))
	for _, s := range a.sinks {
		if err := s.OnResult(ctx, rec); err != nil {
			obslog.L().Warn("result sink failed",
				zap.String("game_id", rec.ID),
				zap.String("sink", fmt.Sprintf("%T", s)),
				zap.Error(err))
		}
	}
}

func (a *Arena) emitPly(ctx context.Context, ev domain.PlyEvent) {
	for _, s := range a.sinks {
		if err := s.OnPly(ctx, ev); err != nil {
			obslog.L().Warn("ply sink failed",
				zap.String("game_id", ev.GameID),
				zap.Int("ply", ev.Ply),
				zap.String("sink", fmt.Sprintf("%T", s)),
				zap.Error(err))
		}
	}
}

func sideToMove(g *chesslib.Game) domain.Side {
	if g.Position().Turn() == chesslib.White {
		return domain.SideWhite
	}
	return domain.SideBlack
}

func terminationFor(g *chesslib.Game) domain.Termination {
	switch g.Method() {
	case chesslib.Checkmate:
		return domain.TerminationCheckmate
	case chesslib.Stalemate:
		return domain.TerminationStalemate
	default:
		return domain.TerminationDraw
	}
}

func isLegal(pos *chesslib.Position, mv *chesslib.Move) bool {
	token := mv.String()
	valid := pos.ValidMoves()
	for i := range valid {
		if valid[i].String() == token {
			return true
		}
	}
	return false
}

func moveToken(mv *chesslib.Move) string {
	if mv == nil {
		return "<nil>"
	}
	return mv.String()
}
