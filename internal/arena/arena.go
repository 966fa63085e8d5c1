package arena

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/park285/cheese-arena/internal/adapter/arenapresenter"
	"github.com/park285/cheese-arena/internal/clock"
	"github.com/park285/cheese-arena/internal/config"
	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/gamemode"
	"github.com/park285/cheese-arena/internal/history"
	"github.com/park285/cheese-arena/internal/match"
	"github.com/park285/cheese-arena/internal/matchmaking"
	"github.com/park285/cheese-arena/internal/metrics"
	"github.com/park285/cheese-arena/internal/msgcat"
	"github.com/park285/cheese-arena/internal/notify"
	"github.com/park285/cheese-arena/internal/opponent"
	"github.com/park285/cheese-arena/internal/oracle"
	"github.com/park285/cheese-arena/internal/rating"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMatchInProgress = errors.New("a match is in progress")
	ErrNoMatch         = errors.New("no match")
)

// Arena owns every long-lived component of the process and the current
// match. A found opponent starts a match automatically.
type Arena struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	bus        *events.Bus
	modes      *gamemode.Modes
	opponents  *opponent.Catalog
	msgs       *msgcat.Catalog
	formatter  *arenapresenter.Formatter
	rating     *rating.Engine
	matchmaker *matchmaking.Matchmaker
	journal    *history.Journal
	metrics    *metrics.Metrics
	notifier   *notify.Notifier

	rdb *redis.Client
	db  *sql.DB

	difficulty opponent.Difficulty
	tick       time.Duration

	mu      sync.Mutex
	baseCtx context.Context
	current *match.Controller
	runner  *clock.Runner
	closed  bool
}

// Start records ctx as the parent of clock runners.
func (a *Arena) Start(ctx context.Context) {
	a.mu.Lock()
	a.baseCtx = ctx
	a.mu.Unlock()
}

// Close stops the search and the clock, flushes a pending rating save and
// releases the stores. Safe to call twice.
func (a *Arena) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	runner := a.runner
	a.runner = nil
	a.mu.Unlock()

	a.matchmaker.Close()
	if runner != nil {
		runner.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.rating.Flush(ctx); err != nil {
		a.logger.Warn("rating_flush_failed", zap.Error(err))
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	closeAll(a.rdb, a.db)
}

func (a *Arena) Bus() *events.Bus                    { return a.bus }
func (a *Arena) Formatter() *arenapresenter.Formatter { return a.formatter }
func (a *Arena) Metrics() *metrics.Metrics           { return a.metrics }
func (a *Arena) Modes() []domain.MatchMode           { return a.modes.All() }
func (a *Arena) Opponents() []opponent.Profile       { return a.opponents.All() }
func (a *Arena) Profile() domain.RatingRecord        { return a.rating.Current() }

func (a *Arena) ResetProfile(ctx context.Context) domain.RatingRecord {
	return a.rating.Reset(ctx)
}

func (a *Arena) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return a.journal.Recent(ctx, limit)
}

// StartSearch validates the mode and difficulty and begins matchmaking.
// It returns false when a search is already running.
func (a *Arena) StartSearch(modeName, difficulty string) (bool, error) {
	mode, err := a.modes.Get(modeName)
	if err != nil {
		return false, err
	}
	d := a.difficulty
	if difficulty != "" {
		if d, err = opponent.ParseDifficulty(difficulty); err != nil {
			return false, err
		}
	}
	if c := a.Current(); c != nil && c.State() == match.InProgress {
		return false, ErrMatchInProgress
	}
	return a.matchmaker.StartSearch(mode, d), nil
}

func (a *Arena) CancelSearch() bool { return a.matchmaker.CancelSearch() }

func (a *Arena) Searching() bool { return a.matchmaker.Searching() }

func (a *Arena) LastFound() (matchmaking.Found, bool) { return a.matchmaker.LastFound() }

// Current returns the latest match, ended or not. Nil before the first one.
func (a *Arena) Current() *match.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// StartMatch tears down the previous match and begins a new one against opp.
func (a *Arena) StartMatch(opp opponent.Profile, mode domain.MatchMode) (*match.Controller, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, errors.New("arena closed")
	}
	if a.current != nil && a.current.State() == match.InProgress {
		a.mu.Unlock()
		return nil, ErrMatchInProgress
	}
	if a.runner != nil {
		a.runner.Stop()
	}
	clk := clock.New(a.logger.Named("clock"))
	c := match.New(oracle.NewBoard(), clk, a.rating, a.bus,
		match.WithRecorder(a.journal),
		match.WithLogger(a.logger.Named("match")),
	)
	a.current = c
	a.runner = clock.NewRunner(clk, a.tick)
	base := a.baseCtx
	if base == nil {
		base = context.Background()
	}
	a.runner.Start(base)
	a.mu.Unlock()

	c.BeginMatch(opp, mode)
	return c, nil
}

func (a *Arena) withMatch(fn func(c *match.Controller) bool) (bool, error) {
	c := a.Current()
	if c == nil {
		return false, ErrNoMatch
	}
	return fn(c), nil
}

func (a *Arena) SelectSquare(sq domain.Square) (bool, error) {
	return a.withMatch(func(c *match.Controller) bool { return c.SelectSquare(sq) })
}

func (a *Arena) TryMove(from, to domain.Square) (bool, error) {
	return a.withMatch(func(c *match.Controller) bool { return c.TryMove(from, to) })
}

func (a *Arena) Resign() (bool, error) {
	return a.withMatch(func(c *match.Controller) bool { return c.Resign() })
}

func (a *Arena) OfferDraw() (bool, error) {
	return a.withMatch(func(c *match.Controller) bool { return c.OfferDraw() })
}

func (a *Arena) AcceptDraw() (bool, error) {
	return a.withMatch(func(c *match.Controller) bool { return c.AcceptDrawOffer() })
}

func (a *Arena) DeclineDraw() (bool, error) {
	return a.withMatch(func(c *match.Controller) bool { return c.DeclineDrawOffer() })
}

func (a *Arena) onEvent(e events.Event) {
	if e.Kind != events.OpponentFound || e.Opponent == nil || e.Mode == nil {
		return
	}
	if _, err := a.StartMatch(*e.Opponent, *e.Mode); err != nil {
		a.logger.Warn("match_autostart_failed", zap.String("opponent", e.Opponent.Name), zap.Error(err))
	}
}
