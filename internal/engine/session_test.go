package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// TestMain doubles as a fake UCI engine so sessions can talk to a real
// child process. The test binary re-executes itself with the
// fake-uci-engine argument and never reaches the test framework.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == "fake-uci-engine" {
		mode := "basic"
		if len(os.Args) > 2 {
			mode = os.Args[2]
		}
		extra := ""
		if len(os.Args) > 3 {
			extra = os.Args[3]
		}
		runFakeEngine(mode, extra)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runFakeEngine(mode, extra string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			fmt.Println("id name fakefish")
			fmt.Println("id author nobody")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "setoption", "ucinewgame", "position", "stop":
			// accepted silently
		case "go":
			switch mode {
			case "silent":
				// never answer, let the caller time out
			case "nobest":
				fmt.Println("bestmove")
			case "none":
				fmt.Println("bestmove (none)")
			case "flaky":
				if _, err := os.Stat(extra); os.IsNotExist(err) {
					os.WriteFile(extra, []byte("crashed"), 0o644)
					os.Exit(1)
				}
				answerBasic()
			default:
				answerBasic()
			}
		case "quit":
			return
		}
	}
}

func answerBasic() {
	fmt.Println("info depth 5 multipv 1 score cp 33 nodes 1000 pv e2e4 e7e5")
	fmt.Println("info depth 5 multipv 2 score cp 12 nodes 900 pv d2d4 d7d5")
	fmt.Println("info depth 5 multipv 3 score mate -2 nodes 800 pv g2g4 e7e5")
	fmt.Println("bestmove e2e4")
}

func fakeEngineSpec(t *testing.T, mode string, extra ...string) Spec {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("locate test binary: %v", err)
	}
	args := append([]string{"fake-uci-engine", mode}, extra...)
	return Spec{Name: "fake-" + mode, Command: exe, Args: args, Depth: 5}
}

func TestSessionSearch(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, fakeEngineSpec(t, "basic"))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	resp, err := s.Search(ctx, SearchRequest{Moves: []string{"e2e4", "e7e5"}, Limits: Limits{Depth: 5}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.BestMove != "e2e4" {
		t.Fatalf("best move = %q, want e2e4", resp.BestMove)
	}
	if len(resp.Candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(resp.Candidates))
	}
	if resp.Candidates[0].Move != "e2e4" || resp.Candidates[0].EvalCP != 33 {
		t.Fatalf("first candidate = %+v", resp.Candidates[0])
	}
	if resp.Candidates[2].MateIn != -2 || resp.Candidates[2].EvalCP != -30000 {
		t.Fatalf("mate candidate = %+v", resp.Candidates[2])
	}
}

func TestSessionSearchNoMove(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, fakeEngineSpec(t, "none"))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	resp, err := s.Search(ctx, SearchRequest{Limits: Limits{Depth: 5}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.BestMove != "" {
		t.Fatalf("best move = %q, want empty for (none)", resp.BestMove)
	}
}

func TestSessionClosedSend(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, fakeEngineSpec(t, "basic"))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	_ = s.Close()

	if _, err := s.Search(ctx, SearchRequest{Limits: Limits{Depth: 5}}); err == nil {
		t.Fatal("search after close should fail")
	}
}

func TestParseInfo(t *testing.T) {
	mv, cand, ok := parseInfo("info depth 12 seldepth 16 multipv 2 score cp -41 nodes 52000 nps 100 pv d7d5 e4d5")
	if !ok {
		t.Fatal("parseInfo rejected a valid line")
	}
	if mv != 2 || cand.Move != "d7d5" || cand.EvalCP != -41 {
		t.Fatalf("parsed = multipv %d cand %+v", mv, cand)
	}
	if len(cand.Principal) != 2 {
		t.Fatalf("principal = %v", cand.Principal)
	}

	if _, _, ok := parseInfo("info string NNUE evaluation enabled"); ok {
		t.Fatal("info without pv should be ignored")
	}
}

func TestBuildGoTokens(t *testing.T) {
	tokens, err := buildGoTokens(Limits{Depth: 10, MoveTimeMillis: 250})
	if err != nil {
		t.Fatalf("build go tokens: %v", err)
	}
	got := strings.Join(tokens, " ")
	if got != "go depth 10 movetime 250" {
		t.Fatalf("go command = %q", got)
	}

	if _, err := buildGoTokens(Limits{}); err == nil {
		t.Fatal("empty limits should be rejected")
	}
	if _, err := buildGoTokens(Limits{Depth: -1}); err == nil {
		t.Fatal("negative depth should be rejected")
	}
}

func TestComputeSearchTimeout(t *testing.T) {
	if d := computeSearchTimeout(Limits{MoveTimeMillis: 1000}); d != 5*time.Second {
		t.Fatalf("movetime timeout = %v", d)
	}
	if d := computeSearchTimeout(Limits{Depth: 4}); d != 8*time.Second {
		t.Fatalf("shallow depth should hit the floor, got %v", d)
	}
	if d := computeSearchTimeout(Limits{Depth: 100}); d != 30*time.Second {
		t.Fatalf("deep search should hit the cap, got %v", d)
	}
}
