package strategy

import (
	"context"
	"math/rand"
	"sync"
	"time"

	chesslib "github.com/corentings/chess/v2"
)

// lockedRand guards a rand.Rand because a strategy may be driven from a
// search worker goroutine.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Random plays a uniformly random legal move.
type Random struct {
	rnd *lockedRand
}

// NewRandom builds a random strategy with its own source. Seed 0 means
// time-based seeding.
func NewRandom(seed int64) *Random {
	return &Random{rnd: newLockedRand(seed)}
}

func (s *Random) Name() string { return "random" }

func (s *Random) SelectMove(_ context.Context, pos *chesslib.Position, _ *MoveLog) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}
	return &moves[s.rnd.Intn(len(moves))], nil
}
