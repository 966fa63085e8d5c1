package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/oracle"
)

// Entry is one finished match as stored in the history.
type Entry struct {
	MatchID        string        `json:"match_id"`
	PlayerName     string        `json:"player_name"`
	LocalPlayer    string        `json:"local_player"`
	OpponentName   string        `json:"opponent_name"`
	OpponentRating int           `json:"opponent_rating"`
	Mode           string        `json:"mode"`
	TimeControl    string        `json:"time_control"`
	Ranked         bool          `json:"ranked"`
	Outcome        string        `json:"outcome"`
	Reason         string        `json:"reason"`
	Result         string        `json:"result"`
	MovesUCI       []string      `json:"moves_uci"`
	MovesSAN       []string      `json:"moves_san"`
	ECO            string        `json:"eco,omitempty"`
	Opening        string        `json:"opening,omitempty"`
	PGN            string        `json:"pgn"`
	RatingBefore   int           `json:"rating_before"`
	RatingAfter    int           `json:"rating_after"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        time.Time     `json:"ended_at"`
	Duration       time.Duration `json:"duration"`
}

// Store persists entries and lists the latest ones first.
type Store interface {
	Save(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Journal adapts a Store to the match recorder.
type Journal struct {
	store  Store
	player string
}

func NewJournal(store Store, playerName string) *Journal {
	return &Journal{store: store, player: playerName}
}

func (j *Journal) Record(ctx context.Context, res domain.MatchResult) error {
	if j == nil || j.store == nil {
		return nil
	}
	return j.store.Save(ctx, NewEntry(j.player, res))
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil || j.store == nil {
		return []Entry{}, nil
	}
	return j.store.Recent(ctx, limit)
}

// NewEntry converts a result. SAN and PGN come from replaying the moves;
// a replay failure keeps the UCI list and leaves SAN short.
func NewEntry(playerName string, res domain.MatchResult) Entry {
	uci := make([]string, 0, len(res.Moves))
	for _, m := range res.Moves {
		uci = append(uci, m.String())
	}
	board := oracle.NewBoard()
	_ = board.Replay(res.Moves...)

	e := Entry{
		MatchID:        res.MatchID,
		PlayerName:     playerName,
		LocalPlayer:    res.LocalPlayer.String(),
		OpponentName:   res.OpponentName,
		OpponentRating: res.OpponentRating,
		Mode:           res.Mode.Name,
		TimeControl:    res.Mode.TimeControlText(),
		Ranked:         res.Mode.Ranked,
		Outcome:        string(res.Outcome),
		Reason:         string(res.Reason),
		Result:         pgnResult(res.Winner),
		MovesUCI:       uci,
		MovesSAN:       board.SAN(),
		RatingBefore:   res.RatingBefore,
		RatingAfter:    res.RatingAfter,
		StartedAt:      res.StartedAt,
		EndedAt:        res.EndedAt,
		Duration:       res.Duration(),
	}
	if o, ok := board.Opening(); ok {
		e.ECO, e.Opening = o.Code, o.Title
	}
	e.PGN = buildPGN(e, res)
	return e
}

func pgnResult(winner *domain.Player) string {
	if winner == nil {
		return "1/2-1/2"
	}
	if *winner == domain.White {
		return "1-0"
	}
	return "0-1"
}

func buildPGN(e Entry, res domain.MatchResult) string {
	white, black := e.PlayerName, e.OpponentName
	if res.LocalPlayer == domain.Black {
		white, black = black, white
	}
	date := e.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	var b strings.Builder
	b.WriteString("[Event \"Cheese Arena\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(white)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(black)))
	if tc := pgnTimeControl(res.Mode); tc != "" {
		b.WriteString(fmt.Sprintf("[TimeControl \"%s\"]\n", tc))
	}
	if e.ECO != "" {
		b.WriteString(fmt.Sprintf("[ECO \"%s\"]\n", e.ECO))
		b.WriteString(fmt.Sprintf("[Opening \"%s\"]\n", sanitizePGN(e.Opening)))
	}
	b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(e.Reason)))
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", e.Result))

	for i := 0; i < len(e.MovesSAN); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, e.MovesSAN[i]))
		if i+1 < len(e.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(e.MovesSAN[i+1])
		}
		b.WriteString(" ")
	}
	b.WriteString(e.Result)
	return b.String()
}

// pgnTimeControl renders base+increment in seconds, e.g. "300+0".
func pgnTimeControl(m domain.MatchMode) string {
	if m.Base <= 0 {
		return ""
	}
	return fmt.Sprintf("%d+%d", int(m.Base.Seconds()), int(m.Increment.Seconds()))
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
