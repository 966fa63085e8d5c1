package arenadto

import "time"

// Event is the websocket frame sent to subscribers.
type Event struct {
	Kind     string       `json:"kind"`
	At       time.Time    `json:"at"`
	MatchID  string       `json:"match_id,omitempty"`
	Player   string       `json:"player,omitempty"`
	Square   string       `json:"square,omitempty"`
	Squares  []string     `json:"squares,omitempty"`
	Move     string       `json:"move,omitempty"`
	Pending  *bool        `json:"pending,omitempty"`
	Clock    *ClockState  `json:"clock,omitempty"`
	Status   string       `json:"status,omitempty"`
	Opponent *Opponent    `json:"opponent,omitempty"`
	Mode     *Mode        `json:"mode,omitempty"`
	Result   *MatchResult `json:"result,omitempty"`
	Profile  *Profile     `json:"profile,omitempty"`
	Text     string       `json:"text,omitempty"`
}
