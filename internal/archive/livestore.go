package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thearst3rd/chess-tournament/internal/domain"
	"github.com/thearst3rd/chess-tournament/pkg/arenadto"
)

const defaultLiveTTL = time.Hour

// LiveStore keeps the snapshot of the running game in redis so other
// processes (the watch service, remote followers) can pick it up.
type LiveStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLiveStore(rdb *redis.Client, ttl time.Duration) *LiveStore {
	if ttl <= 0 {
		ttl = defaultLiveTTL
	}
	return &LiveStore{rdb: rdb, ttl: ttl}
}

func (s *LiveStore) keyLive(id string) string { return "arena:live:" + id }
func (s *LiveStore) keyCurrent() string       { return "arena:live:current" }

// PutSnapshot writes the snapshot and marks its game as current.
func (s *LiveStore) PutSnapshot(ctx context.Context, snap *arenadto.LiveSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.keyLive(snap.GameID), raw, s.ttl).Err(); err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.keyCurrent(), snap.GameID, s.ttl).Err()
}

// GetLive returns (nil, nil) when no snapshot exists for the id.
func (s *LiveStore) GetLive(ctx context.Context, id string) (*arenadto.LiveSnapshot, error) {
	raw, err := s.rdb.Get(ctx, s.keyLive(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap arenadto.LiveSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// CurrentID returns the id of the most recently updated game, or ""
// when nothing is live.
func (s *LiveStore) CurrentID(ctx context.Context) (string, error) {
	id, err := s.rdb.Get(ctx, s.keyCurrent()).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

// Current is CurrentID followed by GetLive.
func (s *LiveStore) Current(ctx context.Context) (*arenadto.LiveSnapshot, error) {
	id, err := s.CurrentID(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	return s.GetLive(ctx, id)
}

// LiveSink feeds a LiveStore from arena events. Player names are fixed
// up front because ply events do not carry them.
type LiveSink struct {
	store *LiveStore
	white string
	black string
}

func NewLiveSink(store *LiveStore, white, black string) *LiveSink {
	return &LiveSink{store: store, white: white, black: black}
}

func (s *LiveSink) OnPly(ctx context.Context, ev domain.PlyEvent) error {
	return s.store.PutSnapshot(ctx, &arenadto.LiveSnapshot{
		GameID:    ev.GameID,
		White:     s.white,
		Black:     s.black,
		Ply:       ev.Ply,
		FEN:       ev.FEN,
		LastUCI:   ev.MoveUCI,
		LastSAN:   ev.MoveSAN,
		UpdatedAt: ev.At,
	})
}

func (s *LiveSink) OnResult(ctx context.Context, rec *domain.GameRecord) error {
	return s.store.PutSnapshot(ctx, &arenadto.LiveSnapshot{
		GameID:    rec.ID,
		White:     rec.White,
		Black:     rec.Black,
		Ply:       rec.PlyCount,
		FEN:       rec.FinalFEN,
		Finished:  true,
		Result:    rec.Result,
		UpdatedAt: rec.EndedAt,
	})
}
