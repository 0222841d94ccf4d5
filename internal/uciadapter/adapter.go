// Package uciadapter exposes a strategy as a UCI engine. It speaks the
// protocol over an io.Reader/io.Writer pair, stdio in the real binary,
// and keeps the wrapped strategy's state reconciled with the position
// commands a GUI sends.
package uciadapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	chesslib "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/internal/strategy"
)

const (
	engineName   = "chess-tournament"
	engineAuthor = "thearst3rd"

	newGameTimeout = 5 * time.Second
)

// search tracks one in-flight go command.
type search struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Adapter runs the UCI command loop. A single goroutine reads commands;
// each go command selects its move on a worker goroutine so stop, quit
// and isready stay responsive while an engine-backed strategy thinks.
type Adapter struct {
	in       io.Reader
	out      io.Writer
	registry *strategy.Registry

	wmu sync.Mutex // serializes protocol output

	strat  strategy.Strategy
	game   *chesslib.Game
	cursor replayCursor

	cur *search
}

// New wraps the named strategy; an empty name selects random, the head
// of the roster.
func New(in io.Reader, out io.Writer, registry *strategy.Registry, strategyName string) (*Adapter, error) {
	if strategyName == "" {
		strategyName = "random"
	}
	strat, err := registry.Build(strategyName)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		in:       in,
		out:      out,
		registry: registry,
		strat:    strat,
		game:     chesslib.NewGame(),
	}, nil
}

// Run processes commands until quit, EOF, or ctx cancellation. The
// wrapped strategy's engine processes are torn down before it returns.
func (a *Adapter) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit":
			a.stopSearch()
			a.awaitSearch()
			a.closeStrategy()
			return nil
		case "stop":
			a.stopSearch()
			continue
		case "isready":
			a.reply("readyok")
			continue
		}

		// Everything else waits out an outstanding search. GUIs only
		// interleave stop and isready with a running one.
		a.awaitSearch()

		switch fields[0] {
		case "uci":
			a.handleUCI()
		case "debug":
			// accepted, nothing to toggle
		case "setoption":
			a.handleSetOption(fields)
		case "ucinewgame":
			a.handleNewGame(ctx)
		case "position":
			a.handlePosition(fields)
		case "go":
			a.handleGo(ctx, fields)
		case "d":
			a.handleDump()
		default:
			a.reply("info string unknown command: %s", fields[0])
		}
	}

	a.stopSearch()
	a.awaitSearch()
	a.closeStrategy()
	return scanner.Err()
}

func (a *Adapter) reply(format string, args ...any) {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *Adapter) handleUCI() {
	a.reply("id name %s", engineName)
	a.reply("id author %s", engineAuthor)
	a.reply("")
	var b strings.Builder
	fmt.Fprintf(&b, "option name Strategy type combo default %s", a.strat.Name())
	for _, name := range a.registry.Names() {
		fmt.Fprintf(&b, " var %s", name)
	}
	a.reply("%s", b.String())
	a.reply("uciok")
}

func (a *Adapter) handleSetOption(fields []string) {
	name, value, ok := parseSetOption(fields)
	if !ok {
		a.reply("info string malformed setoption")
		return
	}
	if !strings.EqualFold(name, "Strategy") {
		a.reply("info string unknown option %q", name)
		return
	}
	next, err := a.registry.Build(value)
	if err != nil {
		a.reply("info string %v", err)
		return
	}
	a.closeStrategy()
	a.strat = next
	a.resetToIdle()
	obslog.L().Info("strategy selected", zap.String("strategy", next.Name()))
}

// parseSetOption splits "setoption name <id> value <x>"; both the id
// and the value may span several tokens.
func parseSetOption(fields []string) (name, value string, ok bool) {
	var nameParts, valueParts []string
	section := ""
	for _, f := range fields[1:] {
		switch f {
		case "name":
			section = "name"
		case "value":
			section = "value"
		default:
			switch section {
			case "name":
				nameParts = append(nameParts, f)
			case "value":
				valueParts = append(valueParts, f)
			}
		}
	}
	if len(nameParts) == 0 || len(valueParts) == 0 {
		return "", "", false
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), true
}

func (a *Adapter) handleNewGame(ctx context.Context) {
	a.resetToIdle()
	if ng, ok := a.strat.(interface {
		NewGame(context.Context) error
	}); ok {
		nctx, cancel := context.WithTimeout(ctx, newGameTimeout)
		defer cancel()
		if err := ng.NewGame(nctx); err != nil {
			a.reply("info string ucinewgame: %v", err)
		}
	}
}

func (a *Adapter) handlePosition(fields []string) {
	baseFEN, moves, err := parsePosition(fields)
	if err != nil {
		a.reply("info string %v", err)
		return
	}
	if err := a.reconcile(baseFEN, moves); err != nil {
		a.reply("info string %v", err)
		a.resetToIdle()
	}
}

func (a *Adapter) handleGo(ctx context.Context, fields []string) {
	if a.game.Outcome() != chesslib.NoOutcome {
		a.reply("bestmove (none)")
		return
	}

	pos := a.game.Position()
	hints, err := parseGo(fields, pos)
	if err != nil {
		a.reply("info string %v", err)
	}
	if tun, ok := a.strat.(strategy.Tunable); ok {
		tun.ApplyHints(hints)
	}

	log := strategy.LogFromGame(a.game)
	sctx, cancel := context.WithCancel(ctx)
	s := &search{cancel: cancel, done: make(chan struct{})}
	a.cur = s
	go func() {
		defer close(s.done)
		defer cancel()
		mv, err := a.strat.SelectMove(sctx, pos, log)
		if err != nil {
			a.reply("info string move selection failed: %v", err)
			a.reply("bestmove (none)")
			return
		}
		if err := a.playOwnMove(pos, mv); err != nil {
			a.reply("info string %v", err)
			a.reply("bestmove (none)")
			return
		}
		a.reply("bestmove %s", mv.String())
	}()
}

// playOwnMove folds the adapter's chosen move into the local game and
// cursor, so the next position command sees it as played history even
// though the GUI has not echoed it back yet.
func (a *Adapter) playOwnMove(pos *chesslib.Position, mv *chesslib.Move) error {
	if mv == nil {
		return fmt.Errorf("strategy returned no move")
	}
	if err := a.game.Move(mv, nil); err != nil {
		return fmt.Errorf("strategy move %s rejected: %v", mv, err)
	}
	a.cursor.moves = append(a.cursor.moves, mv.String())
	if st, ok := a.strat.(strategy.Stateful); ok {
		if err := st.Advance(pos, mv); err != nil {
			return err
		}
	}
	return nil
}

// handleDump prints the board, FEN and strategy name. Not part of the
// standard but stockfish answers d, and it is handy when driving the
// engine by hand.
func (a *Adapter) handleDump() {
	a.reply("%s", a.game.Position().Board().Draw())
	a.reply("%s", a.game.FEN())
	a.reply("%s", a.strat.Name())
}

func (a *Adapter) resetToIdle() {
	a.game = chesslib.NewGame()
	a.cursor = replayCursor{}
	if st, ok := a.strat.(strategy.Stateful); ok {
		st.Reset()
	}
}

func (a *Adapter) stopSearch() {
	if a.cur != nil {
		a.cur.cancel()
	}
}

func (a *Adapter) awaitSearch() {
	if a.cur == nil {
		return
	}
	<-a.cur.done
	a.cur = nil
}

func (a *Adapter) closeStrategy() {
	if eb, ok := a.strat.(strategy.EngineBacked); ok {
		if err := eb.Close(); err != nil {
			obslog.L().Warn("strategy close failed",
				zap.String("strategy", a.strat.Name()),
				zap.Error(err))
		}
	}
}
