package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

func sampleRecord(id string, endedAt time.Time) *domain.GameRecord {
	return &domain.GameRecord{
		ID:          id,
		White:       "random",
		Black:       "huddle",
		Result:      "1-0",
		Termination: domain.TerminationCheckmate,
		MovesUCI:    []string{"e2e4", "e7e5"},
		MovesSAN:    []string{"e4", "e5"},
		FinalFEN:    "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		PlyCount:    2,
		StartedAt:   endedAt.Add(-time.Minute),
		EndedAt:     endedAt,
		Duration:    time.Minute,
	}
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	rec := sampleRecord("g1", time.Now())
	if err := repo.SaveGame(ctx, rec); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	got, err := repo.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got == nil || got.ID != "g1" || got.Result != "1-0" || len(got.MovesUCI) != 2 {
		t.Fatalf("GetGame = %+v", got)
	}

	missing, err := repo.GetGame(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing game: rec=%v err=%v", missing, err)
	}
}

func TestMemoryRepositoryListRecent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		rec := sampleRecord(fmt.Sprintf("g%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := repo.SaveGame(ctx, rec); err != nil {
			t.Fatalf("SaveGame %d: %v", i, err)
		}
	}

	recent, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d games, want 3", len(recent))
	}
	if recent[0].ID != "g4" || recent[1].ID != "g3" || recent[2].ID != "g2" {
		t.Fatalf("wrong order: %s %s %s", recent[0].ID, recent[1].ID, recent[2].ID)
	}
}

func TestMemoryRepositorySaveIsUpsert(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	rec := sampleRecord("g1", time.Now())
	if err := repo.SaveGame(ctx, rec); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	rec.Result = "0-1"
	if err := repo.SaveGame(ctx, rec); err != nil {
		t.Fatalf("SaveGame again: %v", err)
	}

	all, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(all) != 1 || all[0].Result != "0-1" {
		t.Fatalf("upsert failed: %+v", all)
	}
}

func TestRecordSinkSavesResult(t *testing.T) {
	repo := NewMemoryRepository()
	sink := NewRecordSink(repo)
	ctx := context.Background()

	if err := sink.OnPly(ctx, domain.PlyEvent{GameID: "g1", Ply: 1}); err != nil {
		t.Fatalf("OnPly: %v", err)
	}
	if err := sink.OnResult(ctx, sampleRecord("g1", time.Now())); err != nil {
		t.Fatalf("OnResult: %v", err)
	}

	got, err := repo.GetGame(ctx, "g1")
	if err != nil || got == nil {
		t.Fatalf("game not stored: rec=%v err=%v", got, err)
	}
}
