package arenadto

type SearchRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

type SquareRequest struct {
	Square string `json:"square"`
}

// MoveRequest accepts either From/To or a four-letter Move such as "e2e4".
type MoveRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Move string `json:"move,omitempty"`
}

type ActionResponse struct {
	Accepted bool        `json:"accepted"`
	Match    *MatchState `json:"match,omitempty"`
}
