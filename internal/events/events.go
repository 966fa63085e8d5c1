package events

import (
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/opponent"
)

// Kind names a notification emitted by the arena core.
type Kind string

const (
	TurnChanged         Kind = "turn_changed"
	SquareHighlighted   Kind = "square_highlighted"
	SquareUnhighlighted Kind = "square_unhighlighted"
	DestinationsShown   Kind = "destinations_shown"
	DestinationsHidden  Kind = "destinations_hidden"
	PieceMoved          Kind = "piece_moved"
	Check               Kind = "check"
	MatchStarted        Kind = "match_started"
	MatchEnded          Kind = "match_ended"
	DrawOfferChanged    Kind = "draw_offer_changed"
	ClockChanged        Kind = "clock_changed"
	SearchStarted       Kind = "search_started"
	SearchStatus        Kind = "search_status"
	SearchCancelled     Kind = "search_cancelled"
	OpponentFound       Kind = "opponent_found"
	RatingChanged       Kind = "rating_changed"
)

// ClockValues mirrors the clock at one instant.
type ClockValues struct {
	White   time.Duration `json:"white"`
	Black   time.Duration `json:"black"`
	Move    time.Duration `json:"move"`
	Elapsed time.Duration `json:"elapsed"`
}

// Event is a fire-and-forget notification. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind     Kind                 `json:"kind"`
	At       time.Time            `json:"at"`
	MatchID  string               `json:"match_id,omitempty"`
	Player   *domain.Player       `json:"player,omitempty"`
	Square   *domain.Square       `json:"square,omitempty"`
	Squares  []domain.Square      `json:"squares,omitempty"`
	Move     *domain.Move         `json:"move,omitempty"`
	Pending  bool                 `json:"pending,omitempty"`
	Clock    *ClockValues         `json:"clock,omitempty"`
	Status   string               `json:"status,omitempty"`
	Opponent *opponent.Profile    `json:"opponent,omitempty"`
	Mode     *domain.MatchMode    `json:"mode,omitempty"`
	Result   *domain.MatchResult  `json:"result,omitempty"`
	Rating   *domain.RatingRecord `json:"rating,omitempty"`
}

// Publisher accepts events. Implementations must not block for long.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Nop discards every event.
func Nop() Publisher { return nopPublisher{} }

func PlayerPtr(p domain.Player) *domain.Player { return &p }
