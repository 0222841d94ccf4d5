package uciadapter

import (
	"fmt"
	"strconv"

	chesslib "github.com/corentings/chess/v2"

	"github.com/thearst3rd/chess-tournament/internal/strategy"
)

// parseGo extracts search hints from a go command. Unknown or malformed
// tokens never fail the search: the first problem is returned so the
// caller can report it, and whatever parsed cleanly still applies.
//
// Clock arguments become a per-move budget when no explicit movetime is
// given. searchmoves tokens are validated against the position and
// consumed; restricting selection is left to the strategy, which picks
// the move either way.
func parseGo(fields []string, pos *chesslib.Position) (strategy.SearchHints, error) {
	var (
		hints     strategy.SearchHints
		wtime     int
		btime     int
		movestogo int
		firstErr  error
	)
	note := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	i := 1
	for i < len(fields) {
		token := fields[i]
		switch token {
		case "infinite", "ponder":
			i++
		case "searchmoves":
			i++
			legal := legalTokenSet(pos)
			for i < len(fields) && legal[fields[i]] {
				i++
			}
		case "depth", "movetime", "nodes", "mate", "wtime", "btime", "winc", "binc", "movestogo":
			if i+1 >= len(fields) {
				note(fmt.Errorf("go: %s needs a value", token))
				i++
				break
			}
			n, err := strconv.Atoi(fields[i+1])
			if err != nil {
				note(fmt.Errorf("go: bad %s value %q", token, fields[i+1]))
				i += 2
				break
			}
			switch token {
			case "depth":
				hints.Depth = n
			case "movetime":
				hints.MoveTimeMillis = n
			case "nodes":
				hints.NodeCap = n
			case "wtime":
				wtime = n
			case "btime":
				btime = n
			case "movestogo":
				movestogo = n
			}
			// winc, binc and mate parse but carry no hint.
			i += 2
		default:
			note(fmt.Errorf("go: unknown token %q", token))
			i++
		}
	}

	if hints.MoveTimeMillis == 0 {
		remaining := wtime
		if pos.Turn() == chesslib.Black {
			remaining = btime
		}
		if remaining > 0 {
			togo := movestogo
			if togo <= 0 {
				togo = 30
			}
			hints.MoveTimeMillis = remaining / togo
		}
	}
	return hints, firstErr
}

func legalTokenSet(pos *chesslib.Position) map[string]bool {
	valid := pos.ValidMoves()
	set := make(map[string]bool, len(valid))
	for i := range valid {
		set[valid[i].String()] = true
	}
	return set
}
