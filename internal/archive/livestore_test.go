package archive

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

func newTestLiveStore(t *testing.T) (*LiveStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLiveStore(rdb, time.Minute), mr
}

func TestLiveStoreSnapshotRoundTrip(t *testing.T) {
	store, _ := newTestLiveStore(t)
	ctx := context.Background()

	sink := NewLiveSink(store, "random", "stockfish")
	ev := domain.PlyEvent{
		GameID:  "game-1",
		Ply:     3,
		Side:    domain.SideWhite,
		MoveUCI: "g1f3",
		MoveSAN: "Nf3",
		FEN:     "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		At:      time.Now(),
	}
	if err := sink.OnPly(ctx, ev); err != nil {
		t.Fatalf("OnPly: %v", err)
	}

	id, err := store.CurrentID(ctx)
	if err != nil {
		t.Fatalf("CurrentID: %v", err)
	}
	if id != "game-1" {
		t.Fatalf("current id = %q, want game-1", id)
	}

	snap, err := store.GetLive(ctx, "game-1")
	if err != nil {
		t.Fatalf("GetLive: %v", err)
	}
	if snap == nil || snap.Ply != 3 || snap.LastSAN != "Nf3" || snap.White != "random" || snap.Finished {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLiveStoreFinishedMarker(t *testing.T) {
	store, _ := newTestLiveStore(t)
	ctx := context.Background()

	sink := NewLiveSink(store, "w", "b")
	rec := sampleRecord("game-2", time.Now())
	if err := sink.OnResult(ctx, rec); err != nil {
		t.Fatalf("OnResult: %v", err)
	}

	snap, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if snap == nil || !snap.Finished || snap.Result != "1-0" || snap.GameID != "game-2" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLiveStoreMissingIsNil(t *testing.T) {
	store, _ := newTestLiveStore(t)
	ctx := context.Background()

	snap, err := store.GetLive(ctx, "nothing")
	if err != nil || snap != nil {
		t.Fatalf("GetLive missing: snap=%v err=%v", snap, err)
	}
	id, err := store.CurrentID(ctx)
	if err != nil || id != "" {
		t.Fatalf("CurrentID empty: id=%q err=%v", id, err)
	}
	cur, err := store.Current(ctx)
	if err != nil || cur != nil {
		t.Fatalf("Current empty: snap=%v err=%v", cur, err)
	}
}

func TestLiveStoreEntriesExpire(t *testing.T) {
	store, mr := newTestLiveStore(t)
	ctx := context.Background()

	sink := NewLiveSink(store, "w", "b")
	if err := sink.OnPly(ctx, domain.PlyEvent{GameID: "game-3", Ply: 1, FEN: "fen"}); err != nil {
		t.Fatalf("OnPly: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	snap, err := store.GetLive(ctx, "game-3")
	if err != nil || snap != nil {
		t.Fatalf("expected expiry, got snap=%v err=%v", snap, err)
	}
}
