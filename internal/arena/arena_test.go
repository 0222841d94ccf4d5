package arena

import (
	"context"
	"errors"
	"fmt"
	"testing"

	chesslib "github.com/corentings/chess/v2"

	"github.com/thearst3rd/chess-tournament/internal/domain"
	"github.com/thearst3rd/chess-tournament/internal/strategy"
)

// scripted plays a fixed sequence of UCI moves and fails once it runs out.
type scripted struct {
	name  string
	moves []string
	next  int
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) SelectMove(_ context.Context, pos *chesslib.Position, _ *strategy.MoveLog) (*chesslib.Move, error) {
	if s.next >= len(s.moves) {
		return nil, fmt.Errorf("script exhausted after %d moves", s.next)
	}
	token := s.moves[s.next]
	s.next++
	valid := pos.ValidMoves()
	for i := range valid {
		if valid[i].String() == token {
			return &valid[i], nil
		}
	}
	return nil, fmt.Errorf("scripted move %s not legal here", token)
}

type recordSink struct {
	plies   []domain.PlyEvent
	results []*domain.GameRecord
}

func (r *recordSink) OnPly(_ context.Context, ev domain.PlyEvent) error {
	r.plies = append(r.plies, ev)
	return nil
}

func (r *recordSink) OnResult(_ context.Context, rec *domain.GameRecord) error {
	r.results = append(r.results, rec)
	return nil
}

type failingSink struct{}

func (failingSink) OnPly(context.Context, domain.PlyEvent) error { return errors.New("sink down") }

func (failingSink) OnResult(context.Context, *domain.GameRecord) error {
	return errors.New("sink down")
}

func TestPlayFoolsMate(t *testing.T) {
	sink := &recordSink{}
	a := New(Config{}, sink)

	white := &scripted{name: "white", moves: []string{"f2f3", "g2g4"}}
	black := &scripted{name: "black", moves: []string{"e7e5", "d8h4"}}

	rec, err := a.Play(context.Background(), white, black)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected a game id")
	}
	if rec.Result != "0-1" {
		t.Fatalf("result = %q, want 0-1", rec.Result)
	}
	if rec.Termination != domain.TerminationCheckmate {
		t.Fatalf("termination = %q, want checkmate", rec.Termination)
	}
	if rec.PlyCount != 4 || len(rec.MovesUCI) != 4 {
		t.Fatalf("plies = %d (%v), want 4", rec.PlyCount, rec.MovesUCI)
	}
	if rec.MovesSAN[3] != "Qh4#" {
		t.Fatalf("final SAN = %q, want Qh4#", rec.MovesSAN[3])
	}
	if len(sink.plies) != 4 {
		t.Fatalf("sink saw %d plies, want 4", len(sink.plies))
	}
	for i, ev := range sink.plies {
		if ev.Ply != i+1 {
			t.Fatalf("ply %d out of order: %+v", i, ev)
		}
		if ev.GameID != rec.ID {
			t.Fatalf("ply event game id %q != %q", ev.GameID, rec.ID)
		}
	}
	if sink.plies[0].Side != domain.SideWhite || sink.plies[1].Side != domain.SideBlack {
		t.Fatalf("ply sides wrong: %v %v", sink.plies[0].Side, sink.plies[1].Side)
	}
	if len(sink.results) != 1 || sink.results[0] != rec {
		t.Fatalf("sink results = %v", sink.results)
	}
}

func TestPlayPlyCap(t *testing.T) {
	a := New(Config{PlyCap: 5})

	white := &scripted{name: "w", moves: []string{"g1f3", "f3g1", "g1f3"}}
	black := &scripted{name: "b", moves: []string{"b8c6", "c6b8"}}

	rec, err := a.Play(context.Background(), white, black)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if rec.Termination != domain.TerminationPlyCap {
		t.Fatalf("termination = %q, want ply-cap", rec.Termination)
	}
	if rec.Result != "*" {
		t.Fatalf("result = %q, want *", rec.Result)
	}
	if rec.PlyCount != 5 {
		t.Fatalf("plies = %d, want 5", rec.PlyCount)
	}
}

func TestPlayAbortOnStrategyError(t *testing.T) {
	sink := &recordSink{}
	a := New(Config{}, sink)

	// White's script runs dry on its second turn, ply 3.
	white := &scripted{name: "w", moves: []string{"e2e4"}}
	black := &scripted{name: "b", moves: []string{"e7e5", "b8c6"}}

	rec, err := a.Play(context.Background(), white, black)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if rec.Termination != domain.TerminationAborted {
		t.Fatalf("termination = %q, want aborted", rec.Termination)
	}
	if rec.FailedSide != domain.SideWhite || rec.FailedPly != 3 {
		t.Fatalf("failure charged to %s at ply %d, want white at 3", rec.FailedSide, rec.FailedPly)
	}
	if rec.FailReason == "" {
		t.Fatalf("expected a failure reason")
	}
	if rec.PlyCount != 2 {
		t.Fatalf("plies = %d, want 2", rec.PlyCount)
	}
	if len(sink.results) != 1 {
		t.Fatalf("aborted game still reports a result, got %d", len(sink.results))
	}
}

// staleMover plays a legal move on its first turn and then returns that
// same move again, which is illegal in every later position.
type staleMover struct {
	held *chesslib.Move
}

func (s *staleMover) Name() string { return "stale" }

func (s *staleMover) SelectMove(_ context.Context, pos *chesslib.Position, _ *strategy.MoveLog) (*chesslib.Move, error) {
	if s.held != nil {
		return s.held, nil
	}
	valid := pos.ValidMoves()
	s.held = &valid[0]
	return s.held, nil
}

func TestPlayAbortOnIllegalMove(t *testing.T) {
	a := New(Config{})

	white := &staleMover{}
	black := &scripted{name: "b", moves: []string{"e7e5", "e5e4"}}

	rec, err := a.Play(context.Background(), white, black)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if rec.Termination != domain.TerminationAborted {
		t.Fatalf("termination = %q, want aborted", rec.Termination)
	}
	if rec.FailedSide != domain.SideWhite || rec.FailedPly != 3 {
		t.Fatalf("failure charged to %s at ply %d, want white at 3", rec.FailedSide, rec.FailedPly)
	}
}

func TestPlaySinkFailureIsNotFatal(t *testing.T) {
	good := &recordSink{}
	a := New(Config{}, failingSink{}, good)

	white := &scripted{name: "w", moves: []string{"f2f3", "g2g4"}}
	black := &scripted{name: "b", moves: []string{"e7e5", "d8h4"}}

	rec, err := a.Play(context.Background(), white, black)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if rec.Termination != domain.TerminationCheckmate {
		t.Fatalf("termination = %q, want checkmate", rec.Termination)
	}
	if len(good.plies) != 4 || len(good.results) != 1 {
		t.Fatalf("later sink starved: %d plies, %d results", len(good.plies), len(good.results))
	}
}

func TestPlayCancelledContext(t *testing.T) {
	a := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := a.Play(ctx, &scripted{name: "w"}, &scripted{name: "b"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if rec == nil || rec.Termination != domain.TerminationAborted {
		t.Fatalf("expected aborted record, got %+v", rec)
	}
}

// resetCounter wraps a scripted strategy and counts Reset calls.
type resetCounter struct {
	scripted
	resets int
}

func (r *resetCounter) Reset() { r.resets++ }

func (r *resetCounter) Advance(*chesslib.Position, *chesslib.Move) error { return nil }

func TestPlayResetsStatefulStrategies(t *testing.T) {
	a := New(Config{})

	white := &resetCounter{scripted: scripted{name: "w", moves: []string{"f2f3", "g2g4"}}}
	black := &scripted{name: "b", moves: []string{"e7e5", "d8h4"}}

	if _, err := a.Play(context.Background(), white, black); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if white.resets != 1 {
		t.Fatalf("stateful white reset %d times, want 1", white.resets)
	}
}
