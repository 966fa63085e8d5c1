package arenapresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/msgcat"
	"github.com/park285/cheese-arena/internal/rating"
)

// Formatter renders arena state into the player-facing Portuguese text.
type Formatter struct {
	msgs *msgcat.Catalog
}

func NewFormatter(msgs *msgcat.Catalog) *Formatter {
	return &Formatter{msgs: msgs}
}

func (f *Formatter) catalog() *msgcat.Catalog {
	if f == nil {
		return nil
	}
	return f.msgs
}

func (f *Formatter) Player(p domain.Player) string {
	if p == domain.Black {
		return f.catalog().Text("player.black", nil, "Pretas")
	}
	return f.catalog().Text("player.white", nil, "Brancas")
}

func (f *Formatter) Outcome(o domain.Outcome) string {
	return f.catalog().Text("result."+string(o), nil, string(o))
}

func (f *Formatter) Reason(r domain.Reason) string {
	return f.catalog().Text("reason."+string(r), nil, string(r))
}

// Result renders the end-of-match block: outcome line plus rating line.
func (f *Formatter) Result(res domain.MatchResult) string {
	var sb strings.Builder
	sb.WriteString(f.catalog().Text("summary.ended", map[string]any{
		"Result":   f.Outcome(res.Outcome),
		"Reason":   f.Reason(res.Reason),
		"Opponent": res.OpponentName,
	}, fmt.Sprintf("%s (%s)", res.Outcome, res.Reason)))
	sb.WriteString("\n")
	if res.Mode.Ranked {
		sb.WriteString(f.catalog().Text("summary.rating", map[string]any{
			"Before": res.RatingBefore,
			"After":  res.RatingAfter,
			"Delta":  signed(res.RatingAfter - res.RatingBefore),
		}, fmt.Sprintf("%d → %d", res.RatingBefore, res.RatingAfter)))
	} else {
		sb.WriteString(f.catalog().Text("summary.unrated", map[string]any{"After": res.RatingAfter}, fmt.Sprintf("%d", res.RatingAfter)))
	}
	return sb.String()
}

func (f *Formatter) Profile(rec domain.RatingRecord) string {
	return f.catalog().Text("summary.profile", map[string]any{
		"Name":    rec.PlayerName,
		"Rating":  rec.Rating,
		"Title":   rating.RankTitle(rec.Rating),
		"Wins":    rec.Wins,
		"Losses":  rec.Losses,
		"Draws":   rec.Draws,
		"WinRate": fmt.Sprintf("%.1f", rec.WinRate()),
	}, fmt.Sprintf("%s: %d", rec.PlayerName, rec.Rating))
}

func (f *Formatter) MatchStarted(opp string, oppRating int, mode domain.MatchMode) string {
	return f.catalog().Text("match.started", map[string]any{
		"Mode":           mode.Name,
		"TimeControl":    mode.TimeControlText(),
		"Opponent":       opp,
		"OpponentRating": oppRating,
	}, fmt.Sprintf("%s vs %s", mode.Name, opp))
}

// Event renders the line shown for e. ok is false for events that have no
// text, such as clock ticks and highlights.
func (f *Formatter) Event(e events.Event) (string, bool) {
	switch e.Kind {
	case events.SearchStarted, events.SearchStatus, events.SearchCancelled:
		return e.Status, e.Status != ""
	case events.OpponentFound:
		if e.Opponent == nil {
			return "", false
		}
		return f.catalog().Text("search.found", map[string]any{"Opponent": e.Opponent.Name}, e.Opponent.Name), true
	case events.MatchStarted:
		if e.Opponent == nil || e.Mode == nil {
			return "", false
		}
		return f.MatchStarted(e.Opponent.Name, e.Opponent.Rating, *e.Mode), true
	case events.Check:
		if e.Player == nil {
			return "", false
		}
		return f.catalog().Text("match.check", map[string]any{"Player": f.Player(*e.Player)}, "xeque"), true
	case events.DrawOfferChanged:
		if e.Pending {
			return f.catalog().Text("match.draw_offered", nil, "draw offered"), true
		}
		return f.catalog().Text("match.draw_declined", nil, "draw declined"), true
	case events.MatchEnded:
		if e.Result == nil {
			return "", false
		}
		return f.Result(*e.Result), true
	case events.RatingChanged:
		if e.Rating == nil {
			return "", false
		}
		return f.Profile(*e.Rating), true
	default:
		return "", false
	}
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}
