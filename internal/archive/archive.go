// Package archive persists finished games and publishes the live state
// of the one currently running.
package archive

import (
	"context"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

// Repository stores finished game records. GetGame returns (nil, nil)
// when no game has that id.
type Repository interface {
	SaveGame(ctx context.Context, rec *domain.GameRecord) error
	GetGame(ctx context.Context, id string) (*domain.GameRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.GameRecord, error)
}

// RecordSink saves each finished game into a repository. Plies pass
// through untouched.
type RecordSink struct {
	repo Repository
}

func NewRecordSink(repo Repository) *RecordSink {
	return &RecordSink{repo: repo}
}

func (s *RecordSink) OnPly(context.Context, domain.PlyEvent) error { return nil }

func (s *RecordSink) OnResult(ctx context.Context, rec *domain.GameRecord) error {
	return s.repo.SaveGame(ctx, rec)
}
