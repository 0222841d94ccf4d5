package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS arena_games (
		id          TEXT PRIMARY KEY,
		white       TEXT NOT NULL,
		black       TEXT NOT NULL,
		result      TEXT NOT NULL,
		termination TEXT NOT NULL,
		method      TEXT NOT NULL DEFAULT '',
		moves_uci   JSONB NOT NULL,
		moves_san   JSONB NOT NULL,
		final_fen   TEXT NOT NULL,
		ply_count   INTEGER NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		ended_at    TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		failed_side TEXT NOT NULL DEFAULT '',
		failed_ply  INTEGER NOT NULL DEFAULT 0,
		fail_reason TEXT NOT NULL DEFAULT ''
	)`

// PostgresRepository stores games in an arena_games table. The
// constructor creates the table when missing.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(ctx context.Context, db *sql.DB) (*PostgresRepository, error) {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("create arena_games table: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) SaveGame(ctx context.Context, rec *domain.GameRecord) error {
	if rec == nil {
		return fmt.Errorf("nil game record")
	}

	movesUCI, err := json.Marshal(rec.MovesUCI)
	if err != nil {
		return fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(rec.MovesSAN)
	if err != nil {
		return fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO arena_games (
			id,
			white,
			black,
			result,
			termination,
			method,
			moves_uci,
			moves_san,
			final_fen,
			ply_count,
			started_at,
			ended_at,
			duration_ms,
			failed_side,
			failed_ply,
			fail_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			result      = EXCLUDED.result,
			termination = EXCLUDED.termination,
			method      = EXCLUDED.method,
			moves_uci   = EXCLUDED.moves_uci,
			moves_san   = EXCLUDED.moves_san,
			final_fen   = EXCLUDED.final_fen,
			ply_count   = EXCLUDED.ply_count,
			ended_at    = EXCLUDED.ended_at,
			duration_ms = EXCLUDED.duration_ms,
			failed_side = EXCLUDED.failed_side,
			failed_ply  = EXCLUDED.failed_ply,
			fail_reason = EXCLUDED.fail_reason`

	_, err = r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.White,
		rec.Black,
		rec.Result,
		string(rec.Termination),
		rec.Method,
		movesUCI,
		movesSAN,
		rec.FinalFEN,
		rec.PlyCount,
		rec.StartedAt,
		rec.EndedAt,
		rec.Duration.Milliseconds(),
		string(rec.FailedSide),
		rec.FailedPly,
		rec.FailReason,
	)
	if err != nil {
		return fmt.Errorf("insert arena game: %w", err)
	}
	return nil
}

const selectColumns = `
		id,
		white,
		black,
		result,
		termination,
		method,
		moves_uci,
		moves_san,
		final_fen,
		ply_count,
		started_at,
		ended_at,
		duration_ms,
		failed_side,
		failed_ply,
		fail_reason`

func (r *PostgresRepository) GetGame(ctx context.Context, id string) (*domain.GameRecord, error) {
	query := `SELECT` + selectColumns + ` FROM arena_games WHERE id = $1`

	rec, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select arena game: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + selectColumns + ` FROM arena_games ORDER BY ended_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select arena games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.GameRecord, 0, limit)
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan arena game: %w", err)
		}
		games = append(games, rec)
	}
	return games, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.GameRecord, error) {
	var (
		rec          domain.GameRecord
		termination  string
		movesUCIJSON []byte
		movesSANJSON []byte
		durationMS   sql.NullInt64
		failedSide   string
	)
	err := row.Scan(
		&rec.ID,
		&rec.White,
		&rec.Black,
		&rec.Result,
		&termination,
		&rec.Method,
		&movesUCIJSON,
		&movesSANJSON,
		&rec.FinalFEN,
		&rec.PlyCount,
		&rec.StartedAt,
		&rec.EndedAt,
		&durationMS,
		&failedSide,
		&rec.FailedPly,
		&rec.FailReason,
	)
	if err != nil {
		return nil, err
	}
	rec.Termination = domain.Termination(termination)
	rec.FailedSide = domain.Side(failedSide)
	if durationMS.Valid {
		rec.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	if err := json.Unmarshal(movesUCIJSON, &rec.MovesUCI); err != nil {
		return nil, fmt.Errorf("unmarshal moves_uci: %w", err)
	}
	if err := json.Unmarshal(movesSANJSON, &rec.MovesSAN); err != nil {
		return nil, fmt.Errorf("unmarshal moves_san: %w", err)
	}
	return &rec, nil
}
