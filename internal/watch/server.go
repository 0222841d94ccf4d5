package watch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/thearst3rd/chess-tournament/internal/archive"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/internal/render"
	"github.com/thearst3rd/chess-tournament/pkg/arenadto"
)

const (
	defaultListLimit = 10
	shutdownGrace    = 5 * time.Second
)

// Server exposes archived and live games. The websocket side requires
// net/http handlers, which is why this half does not use fasthttp.
type Server struct {
	repo archive.Repository
	live *archive.LiveStore // nil without redis
	hub  *Hub
}

func NewServer(repo archive.Repository, live *archive.LiveStore, hub *Hub) *Server {
	return &Server{repo: repo, live: live, hub: hub}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/games", s.handleGames)
	mux.HandleFunc("GET /api/games/{id}", s.handleGame)
	mux.HandleFunc("GET /api/games/{id}/board.png", s.handleBoard)
	mux.HandleFunc("GET /api/live", s.handleLive)
	mux.HandleFunc("GET /live", s.handleLiveFeed)
	return mux
}

// ListenAndServe blocks until ctx is cancelled, then drains with a
// short grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	obslog.L().Info("watch server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.repo.ListRecent(r.Context(), limit)
	if err != nil {
		obslog.L().Error("list games failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list games failed")
		return
	}
	out := make([]arenadto.GameSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, arenadto.SummaryFromRecord(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	rec, err := s.repo.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		obslog.L().Error("get game failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get game failed")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, arenadto.DetailFromRecord(rec))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	rec, err := s.repo.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		obslog.L().Error("get game failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get game failed")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	opts := render.Options{Flip: r.URL.Query().Get("flip") == "1"}
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 16 || n > 256 {
			writeError(w, http.StatusBadRequest, "size must be 16..256")
			return
		}
		opts.SquareSize = n
	}
	if n := len(rec.MovesUCI); n > 0 {
		opts.LastMove = rec.MovesUCI[n-1]
	}

	png, err := render.Render(rec.FinalFEN, opts)
	if err != nil {
		obslog.L().Error("board render failed", zap.String("game_id", rec.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.live == nil {
		writeError(w, http.StatusNotFound, "live store not configured")
		return
	}
	snap, err := s.live.Current(r.Context())
	if err != nil {
		obslog.L().Error("live lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "live lookup failed")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no live game")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLiveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		obslog.L().Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "feed closed")

	events, cancel := s.hub.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				// dropped by the hub for falling behind
				conn.Close(websocket.StatusTryAgainLater, "too slow")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(wctx, conn, ev)
			wcancel()
			if err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obslog.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, arenadto.ErrorPayload{Error: msg})
}
