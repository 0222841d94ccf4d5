package strategy

import (
	"context"
	"testing"
)

func TestEqualizerInitialCounters(t *testing.T) {
	e := NewEqualizer()
	for i := 0; i < 16; i++ {
		if e.whiteMoved[i] != 0 || e.whiteVisited[i] != 1 {
			t.Fatalf("white slot %d = moved %d visited %d", i, e.whiteMoved[i], e.whiteVisited[i])
		}
		if e.blackMoved[i+48] != 0 || e.blackVisited[i+48] != 1 {
			t.Fatalf("black slot %d = moved %d visited %d", i+48, e.blackMoved[i+48], e.blackVisited[i+48])
		}
	}
	for i := 16; i < 48; i++ {
		if e.whiteMoved[i] != -1 || e.whiteVisited[i] != 0 {
			t.Fatalf("empty white slot %d = moved %d visited %d", i, e.whiteMoved[i], e.whiteVisited[i])
		}
		if e.blackMoved[i] != -1 || e.blackVisited[i] != 0 {
			t.Fatalf("empty black slot %d = moved %d visited %d", i, e.blackMoved[i], e.blackVisited[i])
		}
	}
}

func TestEqualizerCountsCastlingRook(t *testing.T) {
	g := playedGame(t, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1")

	e := NewEqualizer()
	moves := g.Moves()
	positions := g.Positions()
	for i, mv := range moves {
		if err := e.Advance(positions[i], mv); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	const (
		e1 = 4
		f1 = 5
		g1 = 6
		h1 = 7
	)
	if e.whiteMoved[g1] != 1 {
		t.Fatalf("king slot g1 moved = %d, want 1", e.whiteMoved[g1])
	}
	if e.whiteMoved[e1] != -1 {
		t.Fatalf("vacated e1 moved = %d, want -1", e.whiteMoved[e1])
	}
	if e.whiteMoved[f1] != 1 {
		t.Fatalf("rook slot f1 moved = %d, want 1", e.whiteMoved[f1])
	}
	if e.whiteMoved[h1] != -1 {
		t.Fatalf("vacated h1 moved = %d, want -1", e.whiteMoved[h1])
	}
	// f1 was visited by the bishop at setup and again by the rook,
	// g1 by the knight at setup and again by the king
	if e.whiteVisited[f1] != 2 {
		t.Fatalf("f1 visited = %d, want 2", e.whiteVisited[f1])
	}
	if e.whiteVisited[g1] != 2 {
		t.Fatalf("g1 visited = %d, want 2", e.whiteVisited[g1])
	}
}

func TestEqualizerClearsEnPassantVictim(t *testing.T) {
	g := playedGame(t, "e2e4", "a7a6", "e4e5", "d7d5", "e5d6")

	e := NewEqualizer()
	moves := g.Moves()
	positions := g.Positions()
	for i, mv := range moves {
		if err := e.Advance(positions[i], mv); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	const (
		d5 = 35
		d6 = 43
		d7 = 51
	)
	if e.blackMoved[d5] != -1 {
		t.Fatalf("captured pawn slot d5 moved = %d, want -1", e.blackMoved[d5])
	}
	if e.blackMoved[d7] != -1 {
		t.Fatalf("vacated d7 moved = %d, want -1", e.blackMoved[d7])
	}
	if e.whiteMoved[d6] != 3 {
		t.Fatalf("capturing pawn slot d6 moved = %d, want 3", e.whiteMoved[d6])
	}
	if e.whiteVisited[d6] != 1 {
		t.Fatalf("d6 visited = %d, want 1", e.whiteVisited[d6])
	}
}

// Folding through Advance one move at a time and catching up from a
// full log must land on identical counters and the identical choice.
func TestEqualizerReplayEquivalence(t *testing.T) {
	script := []string{
		"e2e4", "a7a6", "e4e5", "d7d5", "e5d6", "c7d6",
		"g1f3", "b8c6", "f1e2", "g8f6", "e1g1", "c8g4",
	}
	g := playedGame(t, script...)

	byAdvance := NewEqualizer()
	moves := g.Moves()
	positions := g.Positions()
	for i, mv := range moves {
		if err := byAdvance.Advance(positions[i], mv); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	byLog := NewEqualizer()
	logMove, err := byLog.SelectMove(context.Background(), g.Position(), LogFromGame(g))
	if err != nil {
		t.Fatalf("select from log: %v", err)
	}
	advMove, err := byAdvance.SelectMove(context.Background(), g.Position(), LogFromGame(g))
	if err != nil {
		t.Fatalf("select after advances: %v", err)
	}

	if byLog.whiteMoved != byAdvance.whiteMoved || byLog.whiteVisited != byAdvance.whiteVisited {
		t.Fatal("white counters diverged between replay paths")
	}
	if byLog.blackMoved != byAdvance.blackMoved || byLog.blackVisited != byAdvance.blackVisited {
		t.Fatal("black counters diverged between replay paths")
	}
	if logMove.String() != advMove.String() {
		t.Fatalf("choices diverged: %s vs %s", logMove, advMove)
	}
}

func TestEqualizerResetRestoresInitialState(t *testing.T) {
	g := playedGame(t, "e2e4", "e7e5", "g1f3")
	e := NewEqualizer()
	if _, err := e.SelectMove(context.Background(), g.Position(), LogFromGame(g)); err != nil {
		t.Fatalf("select: %v", err)
	}

	e.Reset()
	fresh := NewEqualizer()
	if e.whiteMoved != fresh.whiteMoved || e.whiteVisited != fresh.whiteVisited ||
		e.blackMoved != fresh.blackMoved || e.blackVisited != fresh.blackVisited {
		t.Fatal("reset did not restore the initial counters")
	}
	if e.consumed != 0 {
		t.Fatalf("consumed after reset = %d", e.consumed)
	}
}

func TestEqualizerTieBreaksByGenerationOrder(t *testing.T) {
	g := playedGame(t)
	pos := g.Position()
	mv, err := NewEqualizer().SelectMove(context.Background(), pos, LogFromGame(g))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// from the start every origin has moved 0 and every destination has
	// been visited 0 times, so the first generated move wins
	valid := pos.ValidMoves()
	if mv.String() != valid[0].String() {
		t.Fatalf("tie-break picked %s, want first candidate %s", mv, &valid[0])
	}
}
