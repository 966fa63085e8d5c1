package arenadto

import "time"

type Profile struct {
	PlayerName  string    `json:"player_name"`
	Rating      int       `json:"rating"`
	Title       string    `json:"title"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	WinRate     float64   `json:"win_rate"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	Summary     string    `json:"summary"`
}
