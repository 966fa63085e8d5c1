package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const Schema = `
	CREATE TABLE IF NOT EXISTS arena_matches (
		match_id        TEXT PRIMARY KEY,
		player_name     TEXT NOT NULL,
		local_player    TEXT NOT NULL,
		opponent_name   TEXT NOT NULL,
		opponent_rating INTEGER NOT NULL,
		mode            TEXT NOT NULL,
		time_control    TEXT NOT NULL,
		ranked          BOOLEAN NOT NULL,
		outcome         TEXT NOT NULL,
		reason          TEXT NOT NULL,
		result          TEXT NOT NULL,
		moves_uci       JSONB NOT NULL,
		moves_san       JSONB NOT NULL,
		eco             TEXT NOT NULL DEFAULT '',
		opening         TEXT NOT NULL DEFAULT '',
		pgn             TEXT NOT NULL,
		rating_before   INTEGER NOT NULL,
		rating_after    INTEGER NOT NULL,
		started_at      TIMESTAMPTZ NOT NULL,
		ended_at        TIMESTAMPTZ NOT NULL,
		duration_ms     BIGINT NOT NULL
	)`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create arena_matches: %w", err)
	}
	return nil
}

// Save upserts by match id.
func (p *Postgres) Save(ctx context.Context, e Entry) error {
	movesUCI, err := json.Marshal(e.MovesUCI)
	if err != nil {
		return fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(e.MovesSAN)
	if err != nil {
		return fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO arena_matches (
			match_id, player_name, local_player, opponent_name, opponent_rating,
			mode, time_control, ranked, outcome, reason, result,
			moves_uci, moves_san, eco, opening, pgn, rating_before, rating_after,
			started_at, ended_at, duration_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12::jsonb, $13::jsonb, $14, $15, $16, $17, $18, $19, $20, $21
		) ON CONFLICT (match_id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			reason = EXCLUDED.reason,
			result = EXCLUDED.result,
			moves_uci = EXCLUDED.moves_uci,
			moves_san = EXCLUDED.moves_san,
			eco = EXCLUDED.eco,
			opening = EXCLUDED.opening,
			pgn = EXCLUDED.pgn,
			rating_before = EXCLUDED.rating_before,
			rating_after = EXCLUDED.rating_after,
			ended_at = EXCLUDED.ended_at,
			duration_ms = EXCLUDED.duration_ms`

	_, err = p.db.ExecContext(ctx, query,
		e.MatchID, e.PlayerName, e.LocalPlayer, e.OpponentName, e.OpponentRating,
		e.Mode, e.TimeControl, e.Ranked, e.Outcome, e.Reason, e.Result,
		string(movesUCI), string(movesSAN), e.ECO, e.Opening, e.PGN, e.RatingBefore, e.RatingAfter,
		e.StartedAt, e.EndedAt, e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert arena match: %w", err)
	}
	return nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT
			match_id, player_name, local_player, opponent_name, opponent_rating,
			mode, time_control, ranked, outcome, reason, result,
			moves_uci, moves_san, eco, opening, pgn, rating_before, rating_after,
			started_at, ended_at, duration_ms
		FROM arena_matches
		ORDER BY ended_at DESC
		LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select arena matches: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e            Entry
			movesUCIJSON []byte
			movesSANJSON []byte
			durationMS   sql.NullInt64
		)
		if err := rows.Scan(
			&e.MatchID, &e.PlayerName, &e.LocalPlayer, &e.OpponentName, &e.OpponentRating,
			&e.Mode, &e.TimeControl, &e.Ranked, &e.Outcome, &e.Reason, &e.Result,
			&movesUCIJSON, &movesSANJSON, &e.ECO, &e.Opening, &e.PGN, &e.RatingBefore, &e.RatingAfter,
			&e.StartedAt, &e.EndedAt, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan arena match: %w", err)
		}
		if durationMS.Valid {
			e.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		}
		if err := json.Unmarshal(movesUCIJSON, &e.MovesUCI); err != nil {
			return nil, fmt.Errorf("unmarshal moves_uci: %w", err)
		}
		if err := json.Unmarshal(movesSANJSON, &e.MovesSAN); err != nil {
			return nil, fmt.Errorf("unmarshal moves_san: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arena matches: %w", err)
	}
	return out, nil
}
