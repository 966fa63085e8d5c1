package arenadto

type Mode struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	TimeControl      string `json:"time_control"`
	BaseSeconds      int    `json:"base_seconds"`
	MoveMaxSeconds   int    `json:"move_max_seconds"`
	IncrementSeconds int    `json:"increment_seconds"`
	Ranked           bool   `json:"ranked"`
}

type Opponent struct {
	Name                   string  `json:"name"`
	Rating                 int     `json:"rating"`
	Description            string  `json:"description"`
	Personality            string  `json:"personality"`
	ThinkingTimeMultiplier float64 `json:"thinking_time_multiplier"`
	BlunderChance          float64 `json:"blunder_chance"`
}
