package profilestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/park285/cheese-arena/internal/domain"
)

// Schema creates the table used by Postgres.
const Schema = `
	CREATE TABLE IF NOT EXISTS arena_profiles (
		player_name  TEXT PRIMARY KEY,
		rating       INTEGER NOT NULL,
		games_played INTEGER NOT NULL DEFAULT 0,
		wins         INTEGER NOT NULL DEFAULT 0,
		losses       INTEGER NOT NULL DEFAULT 0,
		draws        INTEGER NOT NULL DEFAULT 0,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies Schema. Safe to call on every start.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create arena_profiles: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, playerName string) (*domain.RatingRecord, error) {
	const query = `
		SELECT
			player_name,
			rating,
			games_played,
			wins,
			losses,
			draws,
			updated_at
		FROM arena_profiles
		WHERE player_name = $1
		LIMIT 1`

	var rec domain.RatingRecord
	err := p.db.QueryRowContext(ctx, query, strings.TrimSpace(playerName)).Scan(
		&rec.PlayerName,
		&rec.Rating,
		&rec.GamesPlayed,
		&rec.Wins,
		&rec.Losses,
		&rec.Draws,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select arena profile: %w", err)
	}
	return &rec, nil
}

func (p *Postgres) Save(ctx context.Context, rec domain.RatingRecord) error {
	const query = `
		INSERT INTO arena_profiles (
			player_name,
			rating,
			games_played,
			wins,
			losses,
			draws,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (player_name)
		DO UPDATE SET
			rating = EXCLUDED.rating,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			updated_at = NOW()`

	_, err := p.db.ExecContext(ctx, query,
		strings.TrimSpace(rec.PlayerName),
		rec.Rating,
		rec.GamesPlayed,
		rec.Wins,
		rec.Losses,
		rec.Draws,
	)
	if err != nil {
		return fmt.Errorf("upsert arena profile: %w", err)
	}
	return nil
}
