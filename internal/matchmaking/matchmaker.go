package matchmaking

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/msgcat"
	"github.com/park285/cheese-arena/internal/obslog"
	"github.com/park285/cheese-arena/internal/opponent"
	"go.uber.org/zap"
)

// UnratedPlayerRating is used when no rating source is attached.
const UnratedPlayerRating = 1000

type Config struct {
	SearchTimeMin       time.Duration
	SearchTimeMax       time.Duration
	PollStep            time.Duration
	MaxRatingDifference int
}

func DefaultConfig() Config {
	return Config{
		SearchTimeMin:       2 * time.Second,
		SearchTimeMax:       8 * time.Second,
		PollStep:            100 * time.Millisecond,
		MaxRatingDifference: 150,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.SearchTimeMin < 0 {
		c.SearchTimeMin = 0
	}
	if c.SearchTimeMax < c.SearchTimeMin {
		c.SearchTimeMax = c.SearchTimeMin
	}
	if c.PollStep <= 0 {
		c.PollStep = d.PollStep
	}
	if c.MaxRatingDifference < 0 {
		c.MaxRatingDifference = d.MaxRatingDifference
	}
	return c
}

// RatingSource supplies the searching player's current record.
type RatingSource interface {
	Current() domain.RatingRecord
}

// Found is the resolution of a completed search.
type Found struct {
	Opponent   opponent.Profile
	Mode       domain.MatchMode
	Difficulty opponent.Difficulty
	Fallback   bool
	Waited     time.Duration
}

// Matchmaker runs at most one cancellable opponent search at a time.
type Matchmaker struct {
	cfg     Config
	catalog *opponent.Catalog
	ratings RatingSource
	pub     events.Publisher
	msgs    *msgcat.Catalog
	logger  *zap.Logger

	// statusMu orders search statuses against cancellation; taken before mu.
	statusMu sync.Mutex

	mu        sync.Mutex
	rng       *rand.Rand
	searching bool
	gen       uint64
	cancel    context.CancelFunc
	last      *Found
	wg        sync.WaitGroup
}

type Option func(*Matchmaker)

func WithRand(r *rand.Rand) Option { return func(m *Matchmaker) { m.rng = r } }

func WithMessages(c *msgcat.Catalog) Option { return func(m *Matchmaker) { m.msgs = c } }

func WithLogger(l *zap.Logger) Option {
	return func(m *Matchmaker) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(cfg Config, catalog *opponent.Catalog, ratings RatingSource, pub events.Publisher, opts ...Option) (*Matchmaker, error) {
	if catalog == nil {
		return nil, errors.New("opponent catalog is required")
	}
	if pub == nil {
		pub = events.Nop()
	}
	m := &Matchmaker{
		cfg:     cfg.normalized(),
		catalog: catalog,
		ratings: ratings,
		pub:     pub,
		logger:  obslog.L(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m, nil
}

func (m *Matchmaker) Searching() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searching
}

// LastFound returns the most recent successful search.
func (m *Matchmaker) LastFound() (Found, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return Found{}, false
	}
	return *m.last, true
}

// StartSearch begins a search for mode. It reports false when one is
// already running.
func (m *Matchmaker) StartSearch(mode domain.MatchMode, difficulty opponent.Difficulty) bool {
	m.mu.Lock()
	if m.searching {
		m.mu.Unlock()
		return false
	}
	if difficulty == "" {
		difficulty = opponent.Intermediate
	}
	m.searching = true
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	wait := m.sampleLocked()
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("search_start",
		zap.String("mode", mode.Name),
		zap.String("difficulty", string(difficulty)),
		zap.Duration("wait", wait),
	)
	m.pub.Publish(events.Event{Kind: events.SearchStarted, Mode: &mode})
	m.status(m.msgs.Text("search.started", nil, "Procurando oponente..."))

	go m.run(ctx, gen, mode, difficulty, wait)
	return true
}

// CancelSearch stops the running search. No OpponentFound is emitted for a
// cancelled search.
func (m *Matchmaker) CancelSearch() bool {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.mu.Lock()
	if !m.searching {
		m.mu.Unlock()
		return false
	}
	m.searching = false
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.logger.Info("search_cancel")
	m.pub.Publish(events.Event{Kind: events.SearchCancelled})
	m.status(m.msgs.Text("search.cancelled", nil, "Busca cancelada"))
	return true
}

// Close cancels any search and waits for its goroutine.
func (m *Matchmaker) Close() {
	m.CancelSearch()
	m.wg.Wait()
}

func (m *Matchmaker) run(ctx context.Context, gen uint64, mode domain.MatchMode, difficulty opponent.Difficulty, wait time.Duration) {
	defer m.wg.Done()
	start := time.Now()
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	poll := time.NewTicker(m.cfg.PollStep)
	defer poll.Stop()

waitLoop:
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			break waitLoop
		case <-poll.C:
			dots := Dots(time.Since(start))
			if !m.progress(gen, m.msgs.Text("search.status", map[string]any{"Dots": dots}, "Procurando oponente"+dots)) {
				return
			}
		}
	}

	rating := m.playerRating()
	prof, ok := m.catalog.FindOpponent(rating, m.cfg.MaxRatingDifference)
	if !ok {
		prof = opponent.Generic(rating)
	}
	found := Found{
		Opponent:   opponent.Adjust(prof, difficulty),
		Mode:       mode,
		Difficulty: difficulty,
		Fallback:   !ok,
		Waited:     time.Since(start),
	}

	m.mu.Lock()
	if ctx.Err() != nil || gen != m.gen || !m.searching {
		m.mu.Unlock()
		return
	}
	m.searching = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.last = &found
	m.mu.Unlock()

	m.logger.Info("search_found",
		zap.String("opponent", found.Opponent.Name),
		zap.Int("opponent_rating", found.Opponent.Rating),
		zap.Int("player_rating", rating),
		zap.Bool("fallback", found.Fallback),
		zap.Duration("waited", found.Waited),
	)
	if found.Fallback {
		m.status(m.msgs.Text("search.fallback", map[string]any{"Opponent": found.Opponent.Name}, "Nenhum oponente disponível"))
	}
	opp := found.Opponent.Clone()
	m.pub.Publish(events.Event{Kind: events.OpponentFound, Opponent: &opp, Mode: &found.Mode})
	m.status(m.msgs.Text("search.found", map[string]any{"Opponent": opp.Name}, "Partida encontrada vs "+opp.Name+"!"))
}

func (m *Matchmaker) playerRating() int {
	if m.ratings == nil {
		return UnratedPlayerRating
	}
	return m.ratings.Current().Rating
}

func (m *Matchmaker) sampleLocked() time.Duration {
	span := m.cfg.SearchTimeMax - m.cfg.SearchTimeMin
	if span <= 0 {
		return m.cfg.SearchTimeMin
	}
	return m.cfg.SearchTimeMin + time.Duration(m.rng.Int64N(int64(span)+1))
}

// progress publishes a searching status only while gen is the live search.
func (m *Matchmaker) progress(gen uint64, text string) bool {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.mu.Lock()
	live := m.searching && gen == m.gen
	m.mu.Unlock()
	if live {
		m.status(text)
	}
	return live
}

func (m *Matchmaker) status(text string) {
	m.pub.Publish(events.Event{Kind: events.SearchStatus, Status: text})
}

// Dots animates the searching indicator at two frames per second.
func Dots(elapsed time.Duration) string {
	n := int(elapsed.Seconds()*2) % 4
	return strings.Repeat(".", n)
}
