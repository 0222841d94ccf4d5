package uciadapter

import (
	"errors"
	"fmt"
	"strings"

	chesslib "github.com/corentings/chess/v2"

	"github.com/thearst3rd/chess-tournament/internal/strategy"
)

// ErrReplayDivergence reports a position command whose move list cannot
// be played out from its base position. The adapter resets to idle when
// it sees one.
var ErrReplayDivergence = errors.New("position replay diverged")

// replayCursor records how much instructed history has been folded into
// the wrapped strategy's state. An empty baseFEN means the standard
// initial position.
type replayCursor struct {
	baseFEN string
	moves   []string
}

// reconcile brings the local game and the wrapped strategy in line with
// an instructed position. A command that merely extends the known
// history replays the new suffix only; any other sequence resets the
// strategy state and replays everything from the base. Both paths leave
// a stateful strategy exactly where playing the same moves live would.
func (a *Adapter) reconcile(baseFEN string, moves []string) error {
	if baseFEN == a.cursor.baseFEN && hasPrefix(moves, a.cursor.moves) {
		return a.extend(moves[len(a.cursor.moves):])
	}

	game, err := gameFrom(baseFEN)
	if err != nil {
		return err
	}
	if st, ok := a.strat.(strategy.Stateful); ok {
		st.Reset()
	}
	a.game = game
	a.cursor = replayCursor{baseFEN: baseFEN}
	return a.extend(moves)
}

func (a *Adapter) extend(suffix []string) error {
	st, _ := a.strat.(strategy.Stateful)
	for _, token := range suffix {
		ply := len(a.cursor.moves) + 1
		pos := a.game.Position()
		mv, err := legalMove(pos, token)
		if err != nil {
			return fmt.Errorf("%w: ply %d: %v", ErrReplayDivergence, ply, err)
		}
		if err := a.game.Move(mv, nil); err != nil {
			return fmt.Errorf("%w: ply %d: %v", ErrReplayDivergence, ply, err)
		}
		if st != nil {
			if err := st.Advance(pos, mv); err != nil {
				return fmt.Errorf("%w: ply %d: %v", ErrReplayDivergence, ply, err)
			}
		}
		a.cursor.moves = append(a.cursor.moves, token)
	}
	return nil
}

func hasPrefix(list, prefix []string) bool {
	if len(prefix) > len(list) {
		return false
	}
	for i, m := range prefix {
		if list[i] != m {
			return false
		}
	}
	return true
}

func gameFrom(baseFEN string) (*chesslib.Game, error) {
	if baseFEN == "" {
		return chesslib.NewGame(), nil
	}
	opt, err := chesslib.FEN(baseFEN)
	if err != nil {
		return nil, fmt.Errorf("bad fen %q: %v", baseFEN, err)
	}
	return chesslib.NewGame(opt), nil
}

func legalMove(pos *chesslib.Position, token string) (*chesslib.Move, error) {
	valid := pos.ValidMoves()
	for i := range valid {
		if valid[i].String() == token {
			return &valid[i], nil
		}
	}
	return nil, fmt.Errorf("move %q is not legal", token)
}

// parsePosition splits "position [startpos|fen <fields>] [moves ...]".
// The returned base is "" for startpos.
func parsePosition(fields []string) (string, []string, error) {
	if len(fields) < 2 {
		return "", nil, fmt.Errorf("position: missing startpos or fen")
	}
	rest := fields[1:]
	var baseFEN string
	switch rest[0] {
	case "startpos":
		rest = rest[1:]
	case "fen":
		rest = rest[1:]
		var fenParts []string
		for len(rest) > 0 && rest[0] != "moves" {
			fenParts = append(fenParts, rest[0])
			rest = rest[1:]
		}
		if len(fenParts) == 0 {
			return "", nil, fmt.Errorf("position: empty fen")
		}
		baseFEN = strings.Join(fenParts, " ")
	default:
		return "", nil, fmt.Errorf("position: expected startpos or fen, got %q", rest[0])
	}

	if len(rest) == 0 {
		return baseFEN, nil, nil
	}
	if rest[0] != "moves" {
		return "", nil, fmt.Errorf("position: expected moves, got %q", rest[0])
	}
	return baseFEN, rest[1:], nil
}
