package arenadto

import "time"

type HistoryEntry struct {
	MatchID        string    `json:"match_id"`
	OpponentName   string    `json:"opponent_name"`
	OpponentRating int       `json:"opponent_rating"`
	Mode           string    `json:"mode"`
	TimeControl    string    `json:"time_control"`
	Ranked         bool      `json:"ranked"`
	Outcome        string    `json:"outcome"`
	Reason         string    `json:"reason"`
	Result         string    `json:"result"`
	MovesSAN       []string  `json:"moves_san"`
	ECO            string    `json:"eco,omitempty"`
	Opening        string    `json:"opening,omitempty"`
	PGN            string    `json:"pgn"`
	RatingBefore   int       `json:"rating_before"`
	RatingAfter    int       `json:"rating_after"`
	EndedAt        time.Time `json:"ended_at"`
	DurationMS     int64     `json:"duration_ms"`
}
