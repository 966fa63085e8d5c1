package notify

import (
	"context"
	"sync"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/obslog"
	"github.com/park285/cheese-arena/internal/opponent"
	"go.uber.org/zap"
)

// Payload is the webhook body.
type Payload struct {
	Kind     events.Kind          `json:"kind"`
	MatchID  string               `json:"match_id,omitempty"`
	At       time.Time            `json:"at"`
	Text     string               `json:"text,omitempty"`
	Result   *domain.MatchResult  `json:"result,omitempty"`
	Rating   *domain.RatingRecord `json:"rating,omitempty"`
	Opponent *opponent.Profile    `json:"opponent,omitempty"`
}

// Formatter renders the human-readable line for an event. ok=false skips it.
type Formatter func(e events.Event) (text string, ok bool)

type Poster interface {
	Post(ctx context.Context, in any) error
}

const defaultQueue = 64

// Notifier forwards selected events to a webhook on its own goroutine.
// When the queue is full the event is dropped and logged.
type Notifier struct {
	poster Poster
	format Formatter
	kinds  map[events.Kind]bool
	logger *zap.Logger

	queue chan Payload
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// DefaultKinds are the events forwarded when none are given.
var DefaultKinds = []events.Kind{events.OpponentFound, events.MatchEnded, events.RatingChanged}

func NewNotifier(poster Poster, format Formatter, logger *zap.Logger, kinds ...events.Kind) *Notifier {
	if logger == nil {
		logger = obslog.L()
	}
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	n := &Notifier{
		poster: poster,
		format: format,
		kinds:  make(map[events.Kind]bool, len(kinds)),
		logger: logger,
		queue:  make(chan Payload, defaultQueue),
		done:   make(chan struct{}),
	}
	for _, k := range kinds {
		n.kinds[k] = true
	}
	n.wg.Add(1)
	go n.loop()
	return n
}

// Handle is an events.Handler. It never blocks the publisher.
func (n *Notifier) Handle(e events.Event) {
	if !n.kinds[e.Kind] {
		return
	}
	p := Payload{Kind: e.Kind, MatchID: e.MatchID, At: e.At, Result: e.Result, Rating: e.Rating, Opponent: e.Opponent}
	if n.format != nil {
		if text, ok := n.format(e); ok {
			p.Text = text
		}
	}
	select {
	case <-n.done:
		return
	default:
	}
	select {
	case n.queue <- p:
	default:
		n.logger.Warn("notify_dropped", zap.String("kind", string(e.Kind)), zap.String("match_id", e.MatchID))
	}
}

// Close stops the worker after draining queued payloads.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.done) })
	n.wg.Wait()
}

func (n *Notifier) loop() {
	defer n.wg.Done()
	for {
		select {
		case p := <-n.queue:
			n.send(p)
		case <-n.done:
			for {
				select {
				case p := <-n.queue:
					n.send(p)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) send(p Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.poster.Post(ctx, p); err != nil {
		n.logger.Warn("notify_failed", zap.String("kind", string(p.Kind)), zap.String("match_id", p.MatchID), zap.Error(err))
		return
	}
	n.logger.Debug("notify_sent", zap.String("kind", string(p.Kind)), zap.String("match_id", p.MatchID))
}
