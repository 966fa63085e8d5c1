package arenadto

import "time"

// ClockState carries remaining budgets in milliseconds plus display text.
type ClockState struct {
	State     string `json:"state"`
	Current   string `json:"current"`
	WhiteMS   int64  `json:"white_ms"`
	BlackMS   int64  `json:"black_ms"`
	MoveMS    int64  `json:"move_ms"`
	WhiteText string `json:"white_text"`
	BlackText string `json:"black_text"`
	MoveText  string `json:"move_text"`
}

type MatchState struct {
	ID               string       `json:"id"`
	State            string       `json:"state"`
	Turn             string       `json:"turn"`
	LocalPlayer      string       `json:"local_player"`
	Opponent         Opponent     `json:"opponent"`
	Mode             Mode         `json:"mode"`
	DrawOffered      bool         `json:"draw_offered"`
	AwaitingResponse bool         `json:"awaiting_response"`
	Selected         string       `json:"selected,omitempty"`
	Moves            []string     `json:"moves"`
	InCheck          string       `json:"in_check,omitempty"`
	Clock            ClockState   `json:"clock"`
	Result           *MatchResult `json:"result,omitempty"`
}

type MatchResult struct {
	MatchID        string    `json:"match_id"`
	Outcome        string    `json:"outcome"`
	Reason         string    `json:"reason"`
	Winner         string    `json:"winner,omitempty"`
	OpponentName   string    `json:"opponent_name"`
	OpponentRating int       `json:"opponent_rating"`
	Mode           string    `json:"mode"`
	RatingBefore   int       `json:"rating_before"`
	RatingAfter    int       `json:"rating_after"`
	RatingDelta    int       `json:"rating_delta"`
	Moves          []string  `json:"moves"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	DurationMS     int64     `json:"duration_ms"`
	Summary        string    `json:"summary"`
}

type SearchState struct {
	Searching  bool      `json:"searching"`
	LastFound  *Opponent `json:"last_found,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	Fallback   bool      `json:"fallback,omitempty"`
}
