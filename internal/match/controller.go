package match

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-arena/internal/clock"
	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/obslog"
	"github.com/park285/cheese-arena/internal/opponent"
	"github.com/park285/cheese-arena/internal/rating"
	"go.uber.org/zap"
)

// State is the controller's lifecycle position.
type State string

const (
	Setup      State = "setup"
	InProgress State = "in_progress"
	Ended      State = "ended"
)

// Oracle answers every chess-rule question the controller needs.
type Oracle interface {
	IsLegal(from, to domain.Square) bool
	Apply(from, to domain.Square) error
	HasAnyLegalMoves(p domain.Player) bool
	IsInCheck(p domain.Player) bool
	LegalDestinationsFrom(sq domain.Square) []domain.Square
	OccupantAt(sq domain.Square) (domain.Piece, bool)
}

// Rater receives exactly one call per finished match.
type Rater interface {
	UpdateRating(ctx context.Context, o domain.Outcome, opponentRating int) rating.Update
	RecordUnrated(ctx context.Context, o domain.Outcome) rating.Update
	Current() domain.RatingRecord
}

// Recorder stores finished matches. Failures are logged only.
type Recorder interface {
	Record(ctx context.Context, res domain.MatchResult) error
}

const persistTimeout = 5 * time.Second

// Controller runs a single match from setup to its one result.
type Controller struct {
	mu sync.Mutex

	id       string
	state    State
	turn     domain.Player
	local    domain.Player
	opponent opponent.Profile
	mode     domain.MatchMode

	drawOffered      bool
	awaitingResponse bool
	selected         *domain.Square

	moves     []domain.Move
	startedAt time.Time
	result    *domain.MatchResult
	unsub     func()

	oracle   Oracle
	clk      *clock.Clock
	rater    Rater
	recorder Recorder
	pub      events.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Controller)

// WithLocalPlayer sets the side whose perspective the result is reported from.
func WithLocalPlayer(p domain.Player) Option { return func(c *Controller) { c.local = p } }

func WithRecorder(r Recorder) Option { return func(c *Controller) { c.recorder = r } }

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithNow(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func New(oracle Oracle, clk *clock.Clock, rater Rater, pub events.Publisher, opts ...Option) *Controller {
	if pub == nil {
		pub = events.Nop()
	}
	c := &Controller{
		state:  Setup,
		turn:   domain.White,
		local:  domain.White,
		oracle: oracle,
		clk:    clk,
		rater:  rater,
		pub:    pub,
		logger: obslog.L(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BeginMatch arms the clock and starts play. Only valid in Setup.
func (c *Controller) BeginMatch(opp opponent.Profile, mode domain.MatchMode) bool {
	c.mu.Lock()
	if c.state != Setup || c.oracle == nil || c.clk == nil {
		c.mu.Unlock()
		return false
	}
	c.id = uuid.NewString()
	c.state = InProgress
	c.turn = domain.White
	c.opponent = opp.Clone()
	c.mode = mode
	c.startedAt = c.now()
	c.unsub = c.clk.Subscribe(c.clockListener(c.id))
	c.clk.Initialize(mode.Base, mode.MoveMax, mode.Increment)
	c.clk.Start()
	id, turn, oppCopy := c.id, c.turn, c.opponent.Clone()
	c.mu.Unlock()

	c.logger.Info("match_start",
		zap.String("match_id", id),
		zap.String("mode", mode.Name),
		zap.String("opponent", opp.Name),
		zap.Int("opponent_rating", opp.Rating),
		zap.Bool("ranked", mode.Ranked),
	)
	c.pub.Publish(events.Event{Kind: events.MatchStarted, MatchID: id, Opponent: &oppCopy, Mode: &mode, Player: events.PlayerPtr(c.local)})
	c.pub.Publish(events.Event{Kind: events.TurnChanged, MatchID: id, Player: events.PlayerPtr(turn)})
	return true
}

// TryMove attempts from→to for the side to move. Rejections leave the
// match untouched and return false.
func (c *Controller) TryMove(from, to domain.Square) bool {
	c.mu.Lock()
	evs, end, ok := c.tryMoveLocked(from, to)
	c.mu.Unlock()
	c.publishAll(evs)
	if end != nil {
		c.finish(end)
	}
	return ok
}

func (c *Controller) tryMoveLocked(from, to domain.Square) ([]events.Event, *domain.MatchResult, bool) {
	if c.state != InProgress || c.clk.State() != clock.Running {
		return nil, nil, false
	}
	piece, ok := c.oracle.OccupantAt(from)
	if !ok || piece.Owner != c.turn {
		return nil, nil, false
	}
	if !c.oracle.IsLegal(from, to) {
		return nil, nil, false
	}
	if err := c.oracle.Apply(from, to); err != nil {
		c.logger.Warn("match_apply_failed", zap.String("match_id", c.id), zap.String("move", from.String()+to.String()), zap.Error(err))
		return nil, nil, false
	}
	mv := domain.Move{From: from, To: to}
	c.moves = append(c.moves, mv)
	mover := c.turn
	evs := []events.Event{{Kind: events.PieceMoved, MatchID: c.id, Player: events.PlayerPtr(mover), Move: &mv}}

	c.clk.SwitchPlayer()
	c.turn = mover.Opponent()
	evs = append(evs, events.Event{Kind: events.TurnChanged, MatchID: c.id, Player: events.PlayerPtr(c.turn)})

	next := c.turn
	if c.oracle.HasAnyLegalMoves(next) {
		if c.oracle.IsInCheck(next) {
			evs = append(evs, events.Event{Kind: events.Check, MatchID: c.id, Player: events.PlayerPtr(next)})
		}
		return evs, nil, true
	}
	if c.oracle.IsInCheck(next) {
		return evs, c.endLocked(domain.ReasonCheckmate, &mover), true
	}
	return evs, c.endLocked(domain.ReasonStalemate, nil), true
}

// SelectSquare implements tap-to-move: the first tap selects one of the
// mover's pieces, the second tap attempts the move and clears the selection.
func (c *Controller) SelectSquare(sq domain.Square) bool {
	c.mu.Lock()
	if c.state != InProgress {
		c.mu.Unlock()
		return false
	}
	if c.selected != nil {
		from := *c.selected
		c.selected = nil
		id := c.id
		c.mu.Unlock()
		c.pub.Publish(events.Event{Kind: events.SquareUnhighlighted, MatchID: id, Square: &from})
		c.pub.Publish(events.Event{Kind: events.DestinationsHidden, MatchID: id})
		if from == sq {
			return true
		}
		return c.TryMove(from, sq)
	}
	piece, ok := c.oracle.OccupantAt(sq)
	if !ok || piece.Owner != c.turn {
		c.mu.Unlock()
		return false
	}
	sel := sq
	c.selected = &sel
	dests := c.oracle.LegalDestinationsFrom(sq)
	id := c.id
	c.mu.Unlock()
	c.pub.Publish(events.Event{Kind: events.SquareHighlighted, MatchID: id, Square: &sel})
	c.pub.Publish(events.Event{Kind: events.DestinationsShown, MatchID: id, Square: &sel, Squares: dests})
	return true
}

// Resign concedes the match for the local player.
func (c *Controller) Resign() bool {
	c.mu.Lock()
	loser := c.local
	c.mu.Unlock()
	return c.ResignAs(loser)
}

// ResignAs concedes the match for p; the other side wins.
func (c *Controller) ResignAs(p domain.Player) bool {
	c.mu.Lock()
	if c.state != InProgress {
		c.mu.Unlock()
		return false
	}
	winner := p.Opponent()
	res := c.endLocked(domain.ReasonResignation, &winner)
	c.mu.Unlock()
	c.finish(res)
	return true
}

func (c *Controller) OfferDraw() bool {
	c.mu.Lock()
	if c.state != InProgress || c.drawOffered || c.awaitingResponse {
		c.mu.Unlock()
		return false
	}
	c.drawOffered = true
	c.awaitingResponse = true
	id := c.id
	c.mu.Unlock()
	c.logger.Info("match_draw_offer", zap.String("match_id", id))
	c.pub.Publish(events.Event{Kind: events.DrawOfferChanged, MatchID: id, Pending: true})
	return true
}

func (c *Controller) AcceptDrawOffer() bool {
	c.mu.Lock()
	if c.state != InProgress || !c.drawOffered || !c.awaitingResponse {
		c.mu.Unlock()
		return false
	}
	res := c.endLocked(domain.ReasonDrawAgreement, nil)
	c.mu.Unlock()
	c.finish(res)
	return true
}

func (c *Controller) DeclineDrawOffer() bool {
	c.mu.Lock()
	if c.state != InProgress || !c.awaitingResponse {
		c.mu.Unlock()
		return false
	}
	c.drawOffered = false
	c.awaitingResponse = false
	id := c.id
	c.mu.Unlock()
	c.logger.Info("match_draw_declined", zap.String("match_id", id))
	c.pub.Publish(events.Event{Kind: events.DrawOfferChanged, MatchID: id, Pending: false})
	return true
}

func (c *Controller) clockListener(id string) clock.Listener {
	return clock.Listener{
		OnProgress: func(s clock.Snapshot) {
			c.pub.Publish(events.Event{Kind: events.ClockChanged, MatchID: id, Clock: &events.ClockValues{
				White: s.White, Black: s.Black, Move: s.Move, Elapsed: s.Elapsed,
			}})
		},
		OnTimeExpired:     func(p domain.Player) { c.onExpiry(domain.ReasonTimeExpired, p) },
		OnMoveTimeExpired: func(p domain.Player) { c.onExpiry(domain.ReasonMoveTimeExpired, p) },
	}
}

func (c *Controller) onExpiry(reason domain.Reason, loser domain.Player) {
	c.mu.Lock()
	if c.state != InProgress {
		c.mu.Unlock()
		return
	}
	winner := loser.Opponent()
	res := c.endLocked(reason, &winner)
	c.mu.Unlock()
	c.finish(res)
}

// endLocked is the single transition into Ended. Callers hold c.mu and must
// pass the returned result to finish after unlocking.
func (c *Controller) endLocked(reason domain.Reason, winner *domain.Player) *domain.MatchResult {
	c.state = Ended
	c.clk.Stop()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.drawOffered = false
	c.awaitingResponse = false
	c.selected = nil
	snap := c.clk.Snapshot()
	res := &domain.MatchResult{
		MatchID:        c.id,
		Outcome:        domain.OutcomeFor(c.local, winner),
		Reason:         reason,
		Winner:         winner,
		LocalPlayer:    c.local,
		OpponentName:   c.opponent.Name,
		OpponentRating: c.opponent.Rating,
		Mode:           c.mode,
		Moves:          append([]domain.Move(nil), c.moves...),
		StartedAt:      c.startedAt,
		EndedAt:        c.now(),
		WhiteLeft:      snap.White,
		BlackLeft:      snap.Black,
	}
	if c.rater != nil {
		cur := c.rater.Current().Rating
		res.RatingBefore, res.RatingAfter = cur, cur
	}
	stored := *res
	c.result = &stored
	return res
}

// finish runs outside the lock: one rater call, result publication and the
// optional history write.
func (c *Controller) finish(res *domain.MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if c.rater != nil {
		var u rating.Update
		if res.Mode.Ranked {
			u = c.rater.UpdateRating(ctx, res.Outcome, res.OpponentRating)
		} else {
			u = c.rater.RecordUnrated(ctx, res.Outcome)
		}
		res.RatingBefore = u.Before.Rating
		res.RatingAfter = u.After.Rating
	}

	c.mu.Lock()
	if c.result != nil && c.result.MatchID == res.MatchID {
		c.result.RatingBefore = res.RatingBefore
		c.result.RatingAfter = res.RatingAfter
	}
	c.mu.Unlock()

	fields := []zap.Field{
		zap.String("match_id", res.MatchID),
		zap.String("reason", string(res.Reason)),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("moves", len(res.Moves)),
		zap.Int("rating_before", res.RatingBefore),
		zap.Int("rating_after", res.RatingAfter),
	}
	if res.Winner != nil {
		fields = append(fields, zap.String("winner", res.Winner.String()))
	}
	c.logger.Info("match_end", fields...)

	published := *res
	c.pub.Publish(events.Event{Kind: events.MatchEnded, MatchID: res.MatchID, Player: res.Winner, Result: &published})

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, *res); err != nil {
			c.logger.Warn("match_record_failed", zap.String("match_id", res.MatchID), zap.Error(err))
		}
	}
}

func (c *Controller) publishAll(evs []events.Event) {
	for _, e := range evs {
		c.pub.Publish(e)
	}
}

func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Turn() domain.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turn
}

func (c *Controller) LocalPlayer() domain.Player { return c.local }

func (c *Controller) Opponent() opponent.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opponent.Clone()
}

func (c *Controller) Mode() domain.MatchMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// DrawOffered reports the offered and awaiting-response flags.
func (c *Controller) DrawOffered() (offered, awaiting bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawOffered, c.awaitingResponse
}

func (c *Controller) Selected() (domain.Square, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return domain.Square{}, false
	}
	return *c.selected, true
}

func (c *Controller) Moves() []domain.Move {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Move(nil), c.moves...)
}

// InCheck asks the oracle about either side independently of the turn.
func (c *Controller) InCheck(p domain.Player) bool {
	if c.oracle == nil {
		return false
	}
	return c.oracle.IsInCheck(p)
}

// Result returns the match result once the match has ended.
func (c *Controller) Result() (domain.MatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return domain.MatchResult{}, false
	}
	return *c.result, true
}

// Clock exposes a snapshot of the match clock.
func (c *Controller) Clock() clock.Snapshot { return c.clk.Snapshot() }
