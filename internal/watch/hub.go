// Package watch serves arena games over HTTP: a small REST surface, a
// websocket live feed, and the client half a follower uses to consume a
// remote arena's feed.
package watch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/thearst3rd/chess-tournament/internal/domain"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/pkg/arenadto"
)

const subscriberQueue = 64

// Hub fans arena sink events out to feed subscribers. Every subscriber
// owns a buffered queue; one that falls a full queue behind is dropped
// so the game loop never blocks on a slow reader.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan arenadto.Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan arenadto.Event)}
}

// Subscribe returns the subscriber's event queue and a cancel func. The
// queue is closed when the subscriber is cancelled or dropped.
func (h *Hub) Subscribe() (<-chan arenadto.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan arenadto.Event, subscriberQueue)
	h.subs[id] = ch
	return ch, func() { h.drop(id) }
}

func (h *Hub) drop(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) broadcast(ev arenadto.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			delete(h.subs, id)
			close(ch)
			obslog.L().Warn("live subscriber dropped", zap.Int("subscriber", id))
		}
	}
}

func (h *Hub) OnPly(_ context.Context, ev domain.PlyEvent) error {
	ply := arenadto.PlyFromEvent(ev)
	h.broadcast(arenadto.Event{Type: arenadto.EventPly, Ply: &ply})
	return nil
}

func (h *Hub) OnResult(_ context.Context, rec *domain.GameRecord) error {
	detail := arenadto.DetailFromRecord(rec)
	h.broadcast(arenadto.Event{Type: arenadto.EventResult, Result: &detail})
	return nil
}
