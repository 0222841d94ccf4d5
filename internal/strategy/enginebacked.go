package strategy

import (
	"context"
	"fmt"
	"sync"

	chesslib "github.com/corentings/chess/v2"

	"github.com/thearst3rd/chess-tournament/internal/engine"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
)

const startposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// searcher is the slice of engine.Client the strategies use; tests
// substitute a stub.
type searcher interface {
	BestMove(ctx context.Context, fen string, moves []string, limits engine.Limits) (string, error)
	Analyse(ctx context.Context, fen string, moves []string, limits engine.Limits, multipv int) (engine.SearchResponse, error)
	NewGame(ctx context.Context) error
	Close() error
}

// Engine delegates move selection to an external UCI engine. The child
// process starts lazily on the first search.
type Engine struct {
	name   string
	cli    searcher
	limits engine.Limits

	mu    sync.Mutex
	hints SearchHints
}

func NewEngine(spec engine.Spec) (*Engine, error) {
	cli, err := engine.NewClient(spec, obslog.L())
	if err != nil {
		return nil, err
	}
	return &Engine{name: spec.Name, cli: cli, limits: spec.Limits()}, nil
}

func (s *Engine) Name() string { return s.name }

// ApplyHints overrides the configured limits for subsequent searches.
func (s *Engine) ApplyHints(hints SearchHints) {
	s.mu.Lock()
	s.hints = hints
	s.mu.Unlock()
}

func (s *Engine) NewGame(ctx context.Context) error { return s.cli.NewGame(ctx) }

func (s *Engine) Close() error { return s.cli.Close() }

func (s *Engine) SelectMove(ctx context.Context, pos *chesslib.Position, log *MoveLog) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}

	fen, history := positionWire(pos, log)
	token, err := s.cli.BestMove(ctx, fen, history, s.effectiveLimits())
	if err != nil {
		return nil, err
	}
	return moveFromToken(moves, token)
}

func (s *Engine) effectiveLimits() engine.Limits {
	s.mu.Lock()
	hints := s.hints
	s.mu.Unlock()

	l := s.limits
	if hints.Depth > 0 {
		l.Depth = hints.Depth
	}
	if hints.MoveTimeMillis > 0 {
		l.MoveTimeMillis = hints.MoveTimeMillis
	}
	if hints.NodeCap > 0 {
		l.NodeCap = hints.NodeCap
	}
	return l
}

const (
	worstfishDepth = 10
	mateScore      = 1000000
)

// Worstfish asks a strong engine for ranked candidates and plays the
// lowest-ranked one. When the ranking comes back too thin to trust it
// scores every legal move's resulting position separately instead.
type Worstfish struct {
	cli   searcher
	depth int
}

func NewWorstfish(spec engine.Spec) (*Worstfish, error) {
	cli, err := engine.NewClient(spec, obslog.L())
	if err != nil {
		return nil, err
	}
	return &Worstfish{cli: cli, depth: worstfishDepth}, nil
}

func (s *Worstfish) Name() string { return "worstfish" }

func (s *Worstfish) NewGame(ctx context.Context) error { return s.cli.NewGame(ctx) }

func (s *Worstfish) Close() error { return s.cli.Close() }

func (s *Worstfish) SelectMove(ctx context.Context, pos *chesslib.Position, log *MoveLog) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}
	if len(moves) == 1 {
		return &moves[0], nil
	}

	fen, history := positionWire(pos, log)
	resp, err := s.cli.Analyse(ctx, fen, history, engine.Limits{Depth: s.depth}, len(moves))
	if err != nil {
		return nil, err
	}
	if token := worstCandidate(resp.Candidates); token != "" {
		return moveFromToken(moves, token)
	}
	return s.worstByProbe(ctx, pos, moves)
}

// worstCandidate returns the lowest-scoring candidate, or "" when the
// engine reported fewer than two lines.
func worstCandidate(cands []engine.Candidate) string {
	if len(cands) < 2 {
		return ""
	}
	worst := ""
	worstScore := 0
	for i, c := range cands {
		sc := clampScore(c.EvalCP, c.MateIn)
		if i == 0 || sc < worstScore {
			worstScore = sc
			worst = c.Move
		}
	}
	return worst
}

// worstByProbe scores each resulting position on its own. The engine
// reports those from the opponent's point of view, so the highest score
// marks the worst move for the mover.
func (s *Worstfish) worstByProbe(ctx context.Context, pos *chesslib.Position, moves []chesslib.Move) (*chesslib.Move, error) {
	bestIdx := -1
	bestScore := 0
	for i := range moves {
		after := pos.Update(&moves[i])
		if after == nil {
			continue
		}

		var sc int
		resp, err := s.cli.Analyse(ctx, after.String(), nil, engine.Limits{Depth: s.depth}, 1)
		if err != nil {
			return nil, err
		}
		switch {
		case len(resp.Candidates) > 0:
			sc = clampScore(resp.Candidates[0].EvalCP, resp.Candidates[0].MateIn)
		case after.Status() == chesslib.Checkmate:
			// mating the opponent is the best outcome for the mover,
			// so it ranks last here
			sc = -mateScore
		default:
			sc = 0
		}

		if bestIdx == -1 || sc > bestScore {
			bestScore = sc
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, ErrNoLegalMove
	}
	return &moves[bestIdx], nil
}

// clampScore folds a mate distance into the centipawn scale: mating in
// n is worth mateScore-n, getting mated in n is worth -mateScore-n, so
// nearer mates stay ordered above farther ones.
func clampScore(evalCP, mateIn int) int {
	if mateIn > 0 {
		return mateScore - mateIn
	}
	if mateIn < 0 {
		return -mateScore - mateIn
	}
	return evalCP
}

// positionWire renders the search position as a base FEN plus move
// history, preferring the move-sequence form so engines keep repetition
// context. An empty FEN means the starting position.
func positionWire(pos *chesslib.Position, log *MoveLog) (string, []string) {
	if log.Len() > 0 {
		fen := log.BaseFEN()
		if fen == startposFEN {
			fen = ""
		}
		return fen, log.UCIMoves()
	}
	fen := pos.String()
	if fen == startposFEN {
		fen = ""
	}
	return fen, nil
}

func moveFromToken(moves []chesslib.Move, token string) (*chesslib.Move, error) {
	for i := range moves {
		if moves[i].String() == token {
			return &moves[i], nil
		}
	}
	return nil, fmt.Errorf("engine move %q is not legal here", token)
}
