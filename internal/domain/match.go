package domain

import (
	"fmt"
	"strings"
	"time"
)

// MatchMode is an immutable time-control preset.
type MatchMode struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Base        time.Duration `json:"base" yaml:"base"`
	MoveMax     time.Duration `json:"move_max" yaml:"move_max"`
	Increment   time.Duration `json:"increment" yaml:"increment"`
	Ranked      bool          `json:"ranked" yaml:"ranked"`
}

// TimeControlText renders the mode as "5min + 1s".
func (m MatchMode) TimeControlText() string {
	return fmt.Sprintf("%dmin + %ds", int(m.Base/time.Minute), int(m.Increment/time.Second))
}

// Validate reports whether the mode can arm a clock.
func (m MatchMode) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("mode name is required")
	}
	if m.Base <= 0 {
		return fmt.Errorf("mode %s: base must be positive", m.Name)
	}
	if m.MoveMax <= 0 {
		return fmt.Errorf("mode %s: move_max must be positive", m.Name)
	}
	if m.Increment < 0 {
		return fmt.Errorf("mode %s: increment must not be negative", m.Name)
	}
	return nil
}

// Outcome is a match result from the local player's perspective.
type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
	Draw Outcome = "draw"
)

// Reason names the termination path that ended a match.
type Reason string

const (
	ReasonCheckmate       Reason = "checkmate"
	ReasonStalemate       Reason = "stalemate"
	ReasonTimeExpired     Reason = "time_expired"
	ReasonMoveTimeExpired Reason = "move_time_expired"
	ReasonResignation     Reason = "resignation"
	ReasonDrawAgreement   Reason = "draw_agreement"
)

// OutcomeFor converts a winner (nil for draw) into the outcome seen by local.
func OutcomeFor(local Player, winner *Player) Outcome {
	if winner == nil {
		return Draw
	}
	if *winner == local {
		return Win
	}
	return Loss
}

type MatchResult struct {
	MatchID        string        `json:"match_id"`
	Outcome        Outcome       `json:"outcome"`
	Reason         Reason        `json:"reason"`
	Winner         *Player       `json:"winner,omitempty"`
	LocalPlayer    Player        `json:"local_player"`
	OpponentName   string        `json:"opponent_name"`
	OpponentRating int           `json:"opponent_rating"`
	Mode           MatchMode     `json:"mode"`
	RatingBefore   int           `json:"rating_before"`
	RatingAfter    int           `json:"rating_after"`
	Moves          []Move        `json:"moves"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        time.Time     `json:"ended_at"`
	WhiteLeft      time.Duration `json:"white_left"`
	BlackLeft      time.Duration `json:"black_left"`
}

func (r MatchResult) Duration() time.Duration {
	d := r.EndedAt.Sub(r.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// RatingRecord is the persisted per-player statistics row.
type RatingRecord struct {
	PlayerName  string    `json:"player_name"`
	Rating      int       `json:"rating"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WinRate is wins over games played in percent.
func (r RatingRecord) WinRate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.GamesPlayed) * 100
}
