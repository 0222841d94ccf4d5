// Package arenadto holds the wire types served by the watch service and
// consumed by remote followers.
package arenadto

import (
	"time"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

type GameSummary struct {
	ID          string    `json:"id"`
	White       string    `json:"white"`
	Black       string    `json:"black"`
	Result      string    `json:"result"`
	Termination string    `json:"termination"`
	PlyCount    int       `json:"ply_count"`
	EndedAt     time.Time `json:"ended_at"`
}

type GameDetail struct {
	GameSummary
	Method     string   `json:"method,omitempty"`
	MovesUCI   []string `json:"moves_uci"`
	MovesSAN   []string `json:"moves_san"`
	FinalFEN   string   `json:"final_fen"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64    `json:"duration_ms"`
	FailedSide string   `json:"failed_side,omitempty"`
	FailedPly  int      `json:"failed_ply,omitempty"`
	FailReason string   `json:"fail_reason,omitempty"`
}

// LiveSnapshot is the current state of an in-progress (or just finished)
// game, written per ply so late joiners can pick up mid-game.
type LiveSnapshot struct {
	GameID    string    `json:"game_id"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Ply       int       `json:"ply"`
	FEN       string    `json:"fen"`
	LastUCI   string    `json:"last_uci,omitempty"`
	LastSAN   string    `json:"last_san,omitempty"`
	Finished  bool      `json:"finished"`
	Result    string    `json:"result,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	EventPly    = "ply"
	EventResult = "result"
)

// Event is one message on the live websocket feed.
type Event struct {
	Type   string      `json:"type"`
	Ply    *Ply        `json:"ply,omitempty"`
	Result *GameDetail `json:"result,omitempty"`
}

type Ply struct {
	GameID  string    `json:"game_id"`
	Ply     int       `json:"ply"`
	Side    string    `json:"side"`
	MoveUCI string    `json:"move_uci"`
	MoveSAN string    `json:"move_san"`
	FEN     string    `json:"fen"`
	At      time.Time `json:"at"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func SummaryFromRecord(rec *domain.GameRecord) GameSummary {
	return GameSummary{
		ID:          rec.ID,
		White:       rec.White,
		Black:       rec.Black,
		Result:      rec.Result,
		Termination: string(rec.Termination),
		PlyCount:    rec.PlyCount,
		EndedAt:     rec.EndedAt,
	}
}

func DetailFromRecord(rec *domain.GameRecord) GameDetail {
	return GameDetail{
		GameSummary: SummaryFromRecord(rec),
		Method:      rec.Method,
		MovesUCI:    rec.MovesUCI,
		MovesSAN:    rec.MovesSAN,
		FinalFEN:    rec.FinalFEN,
		StartedAt:   rec.StartedAt,
		DurationMS:  rec.Duration.Milliseconds(),
		FailedSide:  string(rec.FailedSide),
		FailedPly:   rec.FailedPly,
		FailReason:  rec.FailReason,
	}
}

// Record rebuilds the domain form of a game detail on the follower side.
func (d GameDetail) Record() *domain.GameRecord {
	return &domain.GameRecord{
		ID:          d.ID,
		White:       d.White,
		Black:       d.Black,
		Result:      d.Result,
		Termination: domain.Termination(d.Termination),
		Method:      d.Method,
		MovesUCI:    d.MovesUCI,
		MovesSAN:    d.MovesSAN,
		FinalFEN:    d.FinalFEN,
		PlyCount:    d.PlyCount,
		StartedAt:   d.StartedAt,
		EndedAt:     d.EndedAt,
		Duration:    time.Duration(d.DurationMS) * time.Millisecond,
		FailedSide:  domain.Side(d.FailedSide),
		FailedPly:   d.FailedPly,
		FailReason:  d.FailReason,
	}
}

func PlyFromEvent(ev domain.PlyEvent) Ply {
	return Ply{
		GameID:  ev.GameID,
		Ply:     ev.Ply,
		Side:    string(ev.Side),
		MoveUCI: ev.MoveUCI,
		MoveSAN: ev.MoveSAN,
		FEN:     ev.FEN,
		At:      ev.At,
	}
}

// Domain converts a wire ply back into the event form the sinks consume.
func (p Ply) Domain() domain.PlyEvent {
	return domain.PlyEvent{
		GameID:  p.GameID,
		Ply:     p.Ply,
		Side:    domain.Side(p.Side),
		MoveUCI: p.MoveUCI,
		MoveSAN: p.MoveSAN,
		FEN:     p.FEN,
		At:      p.At,
	}
}
