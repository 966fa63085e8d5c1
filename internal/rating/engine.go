package rating

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/obslog"
	"go.uber.org/zap"
)

// ProfileStore persists the rating record. Load returns nil, nil when the
// player has no record yet.
type ProfileStore interface {
	Load(ctx context.Context, playerName string) (*domain.RatingRecord, error)
	Save(ctx context.Context, rec domain.RatingRecord) error
}

// Update describes one applied result.
type Update struct {
	Before domain.RatingRecord
	After  domain.RatingRecord
	Delta  int
	Rated  bool
	Saved  bool
}

// Engine owns the single process-wide rating record.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	rec   domain.RatingRecord
	dirty bool

	store  ProfileStore
	pub    events.Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(cfg Config, store ProfileStore, pub events.Publisher, logger *zap.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	if pub == nil {
		pub = events.Nop()
	}
	if logger == nil {
		logger = obslog.L()
	}
	cfg = cfg.normalized()
	return &Engine{
		cfg:    cfg,
		rec:    domain.RatingRecord{PlayerName: cfg.PlayerName, Rating: cfg.InitialRating},
		store:  store,
		pub:    pub,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Load reads the record once at startup. A missing record keeps defaults.
// Stored values are re-clamped and the counters reconciled.
func (e *Engine) Load(ctx context.Context) error {
	rec, err := e.store.Load(ctx, e.cfg.PlayerName)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec == nil {
		e.logger.Info("rating_load_default", zap.String("player", e.cfg.PlayerName), zap.Int("rating", e.rec.Rating))
		return nil
	}
	r := *rec
	r.PlayerName = e.cfg.PlayerName
	r.Rating = clamp(r.Rating, e.cfg.MinRating, e.cfg.MaxRating)
	if r.Wins < 0 {
		r.Wins = 0
	}
	if r.Losses < 0 {
		r.Losses = 0
	}
	if r.Draws < 0 {
		r.Draws = 0
	}
	r.GamesPlayed = r.Wins + r.Losses + r.Draws
	e.rec = r
	e.logger.Info("rating_load",
		zap.String("player", r.PlayerName),
		zap.Int("rating", r.Rating),
		zap.Int("games", r.GamesPlayed),
	)
	return nil
}

func (e *Engine) Current() domain.RatingRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec
}

// Dirty reports whether the last save failed and is pending retry.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// UpdateRating applies a rated result and persists immediately.
func (e *Engine) UpdateRating(ctx context.Context, o domain.Outcome, opponentRating int) Update {
	e.mu.Lock()
	before := e.rec
	after, delta := Apply(before, o, opponentRating, e.cfg)
	after.UpdatedAt = e.now()
	e.rec = after
	saved := e.persistLocked(ctx)
	e.mu.Unlock()

	e.logger.Info("rating_update",
		zap.String("outcome", string(o)),
		zap.Int("opponent", opponentRating),
		zap.Int("before", before.Rating),
		zap.Int("after", after.Rating),
		zap.Int("delta", delta),
	)
	e.publish(after)
	return Update{Before: before, After: after, Delta: delta, Rated: true, Saved: saved}
}

// RecordUnrated counts the game without touching the rating.
func (e *Engine) RecordUnrated(ctx context.Context, o domain.Outcome) Update {
	e.mu.Lock()
	before := e.rec
	after := count(before, o)
	after.UpdatedAt = e.now()
	e.rec = after
	saved := e.persistLocked(ctx)
	e.mu.Unlock()

	e.logger.Info("rating_record_unrated", zap.String("outcome", string(o)), zap.Int("games", after.GamesPlayed))
	e.publish(after)
	return Update{Before: before, After: after, Rated: false, Saved: saved}
}

// Reset restores the initial rating and clears the counters.
func (e *Engine) Reset(ctx context.Context) domain.RatingRecord {
	e.mu.Lock()
	e.rec = domain.RatingRecord{PlayerName: e.cfg.PlayerName, Rating: e.cfg.InitialRating, UpdatedAt: e.now()}
	e.persistLocked(ctx)
	rec := e.rec
	e.mu.Unlock()
	e.logger.Info("rating_reset", zap.String("player", rec.PlayerName))
	e.publish(rec)
	return rec
}

// Flush retries a pending save.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dirty {
		return nil
	}
	if err := e.store.Save(ctx, e.rec); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// persistLocked never fails the caller; a failed save leaves the record dirty
// and is retried on the next mutation.
func (e *Engine) persistLocked(ctx context.Context) bool {
	if err := e.store.Save(ctx, e.rec); err != nil {
		e.dirty = true
		e.logger.Error("rating_save_failed", zap.String("player", e.rec.PlayerName), zap.Error(err))
		return false
	}
	if e.dirty {
		e.logger.Info("rating_save_recovered", zap.String("player", e.rec.PlayerName))
	}
	e.dirty = false
	return true
}

func (e *Engine) publish(rec domain.RatingRecord) {
	e.pub.Publish(events.Event{Kind: events.RatingChanged, Rating: &rec})
}
