package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/obslog"
	"go.uber.org/zap"
)

// State is the clock's lifecycle position.
type State int

const (
	Idle State = iota
	Running
	Expired
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "idle"
	}
}

// ExpiryKind tells which budget ran out.
type ExpiryKind int

const (
	NoExpiry ExpiryKind = iota
	TotalTime
	MoveTime
)

func (k ExpiryKind) String() string {
	switch k {
	case TotalTime:
		return "total_time"
	case MoveTime:
		return "move_time"
	default:
		return "none"
	}
}

// Snapshot is a copy of the clock values.
type Snapshot struct {
	State     State
	Expiry    ExpiryKind
	Current   domain.Player
	White     time.Duration
	Black     time.Duration
	Move      time.Duration
	Elapsed   time.Duration
	MoveMax   time.Duration
	Increment time.Duration
}

// Remaining returns the total budget left for p.
func (s Snapshot) Remaining(p domain.Player) time.Duration {
	if p == domain.Black {
		return s.Black
	}
	return s.White
}

// Listener receives clock notifications. Any field may be nil.
type Listener struct {
	OnProgress        func(Snapshot)
	OnTimeExpired     func(domain.Player)
	OnMoveTimeExpired func(domain.Player)
}

type listenerEntry struct {
	id int
	l  Listener
}

// Clock enforces a per-move deadline nested inside per-player game budgets.
type Clock struct {
	mu sync.Mutex

	state     State
	expiry    ExpiryKind
	current   domain.Player
	white     time.Duration
	black     time.Duration
	move      time.Duration
	elapsed   time.Duration
	moveMax   time.Duration
	increment time.Duration

	listeners []listenerEntry
	nextID    int

	logger *zap.Logger
}

func New(logger *zap.Logger) *Clock {
	if logger == nil {
		logger = obslog.L()
	}
	return &Clock{logger: logger}
}

// Subscribe registers l and returns a function that removes it.
// The returned function is safe to call more than once.
func (c *Clock) Subscribe(l Listener) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listenerEntry{id: id, l: l})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Clock) unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.listeners {
		if e.id == id {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount is used by owners to verify teardown.
func (c *Clock) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Initialize resets both players to game, the move budget to moveMax and
// makes White current. The clock is left Idle.
func (c *Clock) Initialize(game, moveMax, increment time.Duration) {
	c.mu.Lock()
	c.state = Idle
	c.expiry = NoExpiry
	c.current = domain.White
	c.white = clampZero(game)
	c.black = clampZero(game)
	c.moveMax = clampZero(moveMax)
	c.move = c.moveMax
	c.elapsed = 0
	c.increment = clampZero(increment)
	snap := c.snapshotLocked()
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.logger.Debug("clock_init",
		zap.Duration("game", game),
		zap.Duration("move_max", moveMax),
		zap.Duration("increment", increment),
	)
	emitProgress(ls, snap)
}

// Start moves Idle or Expired to Running and re-arms the move budget.
func (c *Clock) Start() bool {
	c.mu.Lock()
	if c.state == Running {
		c.mu.Unlock()
		return false
	}
	c.state = Running
	c.expiry = NoExpiry
	c.move = c.moveMax
	c.mu.Unlock()
	return true
}

// Stop moves Running to Idle and keeps the remaining budgets.
func (c *Clock) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return false
	}
	c.state = Idle
	return true
}

// Tick advances the clock by d. Move time is checked before total time and
// at most one expiry fires per call.
func (c *Clock) Tick(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return
	}
	c.elapsed += d
	c.move -= d
	player := c.current

	if c.move <= 0 {
		c.move = 0
		c.expire(MoveTime)
		ls := c.listenersLocked()
		c.mu.Unlock()
		c.logger.Info("clock_move_time_expired", zap.String("player", player.String()))
		for _, e := range ls {
			if e.l.OnMoveTimeExpired != nil {
				e.l.OnMoveTimeExpired(player)
			}
		}
		return
	}

	left := c.sub(player, d)
	if left <= 0 {
		c.setRemaining(player, 0)
		c.expire(TotalTime)
		ls := c.listenersLocked()
		c.mu.Unlock()
		c.logger.Info("clock_time_expired", zap.String("player", player.String()))
		for _, e := range ls {
			if e.l.OnTimeExpired != nil {
				e.l.OnTimeExpired(player)
			}
		}
		return
	}

	snap := c.snapshotLocked()
	ls := c.listenersLocked()
	c.mu.Unlock()
	emitProgress(ls, snap)
}

// SwitchPlayer credits the increment to the player who just moved, flips the
// current player and re-arms the move budget. It only acts while Running.
func (c *Clock) SwitchPlayer() bool {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return false
	}
	mover := c.current
	c.setRemaining(mover, c.remaining(mover)+c.increment)
	c.current = mover.Opponent()
	c.move = c.moveMax
	snap := c.snapshotLocked()
	ls := c.listenersLocked()
	c.mu.Unlock()
	emitProgress(ls, snap)
	return true
}

func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clock) expire(kind ExpiryKind) {
	c.state = Expired
	c.expiry = kind
}

func (c *Clock) remaining(p domain.Player) time.Duration {
	if p == domain.Black {
		return c.black
	}
	return c.white
}

func (c *Clock) setRemaining(p domain.Player, d time.Duration) {
	if p == domain.Black {
		c.black = d
		return
	}
	c.white = d
}

func (c *Clock) sub(p domain.Player, d time.Duration) time.Duration {
	left := c.remaining(p) - d
	c.setRemaining(p, left)
	return left
}

func (c *Clock) snapshotLocked() Snapshot {
	return Snapshot{
		State:     c.state,
		Expiry:    c.expiry,
		Current:   c.current,
		White:     c.white,
		Black:     c.black,
		Move:      c.move,
		Elapsed:   c.elapsed,
		MoveMax:   c.moveMax,
		Increment: c.increment,
	}
}

func (c *Clock) listenersLocked() []listenerEntry {
	out := make([]listenerEntry, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func emitProgress(ls []listenerEntry, snap Snapshot) {
	for _, e := range ls {
		if e.l.OnProgress != nil {
			e.l.OnProgress(snap)
		}
	}
}

func clampZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// FormatTime renders d as SS, MM:SS or HH:MM:SS depending on magnitude.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	case m > 0:
		return fmt.Sprintf("%02d:%02d", m, s)
	default:
		return fmt.Sprintf("%02d", s)
	}
}
