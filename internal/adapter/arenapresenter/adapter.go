package arenapresenter

import (
	"github.com/park285/cheese-arena/internal/clock"
	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/history"
	"github.com/park285/cheese-arena/internal/match"
	"github.com/park285/cheese-arena/internal/opponent"
	"github.com/park285/cheese-arena/internal/rating"
	"github.com/park285/cheese-arena/pkg/arenadto"
)

func ToDTOMode(m domain.MatchMode) arenadto.Mode {
	return arenadto.Mode{
		Name:             m.Name,
		Description:      m.Description,
		TimeControl:      m.TimeControlText(),
		BaseSeconds:      int(m.Base.Seconds()),
		MoveMaxSeconds:   int(m.MoveMax.Seconds()),
		IncrementSeconds: int(m.Increment.Seconds()),
		Ranked:           m.Ranked,
	}
}

func ToDTOModes(list []domain.MatchMode) []arenadto.Mode {
	out := make([]arenadto.Mode, 0, len(list))
	for _, m := range list {
		out = append(out, ToDTOMode(m))
	}
	return out
}

func ToDTOOpponent(p opponent.Profile) arenadto.Opponent {
	return arenadto.Opponent{
		Name:                   p.Name,
		Rating:                 p.Rating,
		Description:            p.Description,
		Personality:            string(p.Personality),
		ThinkingTimeMultiplier: p.ThinkingTimeMultiplier,
		BlunderChance:          p.BlunderChance,
	}
}

func ToDTOOpponents(list []opponent.Profile) []arenadto.Opponent {
	out := make([]arenadto.Opponent, 0, len(list))
	for _, p := range list {
		out = append(out, ToDTOOpponent(p))
	}
	return out
}

func (f *Formatter) ToDTOProfile(rec domain.RatingRecord) arenadto.Profile {
	return arenadto.Profile{
		PlayerName:  rec.PlayerName,
		Rating:      rec.Rating,
		Title:       rating.RankTitle(rec.Rating),
		GamesPlayed: rec.GamesPlayed,
		Wins:        rec.Wins,
		Losses:      rec.Losses,
		Draws:       rec.Draws,
		WinRate:     rec.WinRate(),
		UpdatedAt:   rec.UpdatedAt,
		Summary:     f.Profile(rec),
	}
}

func ToDTOClock(s clock.Snapshot) arenadto.ClockState {
	return arenadto.ClockState{
		State:     s.State.String(),
		Current:   s.Current.String(),
		WhiteMS:   s.White.Milliseconds(),
		BlackMS:   s.Black.Milliseconds(),
		MoveMS:    s.Move.Milliseconds(),
		WhiteText: clock.FormatTime(s.White),
		BlackText: clock.FormatTime(s.Black),
		MoveText:  clock.FormatTime(s.Move),
	}
}

func clockValues(v events.ClockValues) arenadto.ClockState {
	return arenadto.ClockState{
		WhiteMS:   v.White.Milliseconds(),
		BlackMS:   v.Black.Milliseconds(),
		MoveMS:    v.Move.Milliseconds(),
		WhiteText: clock.FormatTime(v.White),
		BlackText: clock.FormatTime(v.Black),
		MoveText:  clock.FormatTime(v.Move),
	}
}

func (f *Formatter) ToDTOResult(res domain.MatchResult) *arenadto.MatchResult {
	out := &arenadto.MatchResult{
		MatchID:        res.MatchID,
		Outcome:        string(res.Outcome),
		Reason:         string(res.Reason),
		OpponentName:   res.OpponentName,
		OpponentRating: res.OpponentRating,
		Mode:           res.Mode.Name,
		RatingBefore:   res.RatingBefore,
		RatingAfter:    res.RatingAfter,
		RatingDelta:    res.RatingAfter - res.RatingBefore,
		Moves:          moveStrings(res.Moves),
		StartedAt:      res.StartedAt,
		EndedAt:        res.EndedAt,
		DurationMS:     res.Duration().Milliseconds(),
		Summary:        f.Result(res),
	}
	if res.Winner != nil {
		out.Winner = res.Winner.String()
	}
	return out
}

// ToDTOMatch snapshots a controller. Returns nil for a nil controller.
func (f *Formatter) ToDTOMatch(c *match.Controller) *arenadto.MatchState {
	if c == nil {
		return nil
	}
	offered, awaiting := c.DrawOffered()
	out := &arenadto.MatchState{
		ID:               c.ID(),
		State:            string(c.State()),
		Turn:             c.Turn().String(),
		LocalPlayer:      c.LocalPlayer().String(),
		Opponent:         ToDTOOpponent(c.Opponent()),
		Mode:             ToDTOMode(c.Mode()),
		DrawOffered:      offered,
		AwaitingResponse: awaiting,
		Moves:            moveStrings(c.Moves()),
		Clock:            ToDTOClock(c.Clock()),
	}
	if sq, ok := c.Selected(); ok {
		out.Selected = sq.String()
	}
	for _, p := range []domain.Player{domain.White, domain.Black} {
		if c.InCheck(p) {
			out.InCheck = p.String()
		}
	}
	if res, ok := c.Result(); ok {
		out.Result = f.ToDTOResult(res)
	}
	return out
}

func ToDTOHistory(list []history.Entry) []arenadto.HistoryEntry {
	out := make([]arenadto.HistoryEntry, 0, len(list))
	for _, e := range list {
		out = append(out, arenadto.HistoryEntry{
			MatchID:        e.MatchID,
			OpponentName:   e.OpponentName,
			OpponentRating: e.OpponentRating,
			Mode:           e.Mode,
			TimeControl:    e.TimeControl,
			Ranked:         e.Ranked,
			Outcome:        e.Outcome,
			Reason:         e.Reason,
			Result:         e.Result,
			MovesSAN:       append([]string(nil), e.MovesSAN...),
			ECO:            e.ECO,
			Opening:        e.Opening,
			PGN:            e.PGN,
			RatingBefore:   e.RatingBefore,
			RatingAfter:    e.RatingAfter,
			EndedAt:        e.EndedAt,
			DurationMS:     e.Duration.Milliseconds(),
		})
	}
	return out
}

// ToDTOEvent converts a bus event into a websocket frame.
func (f *Formatter) ToDTOEvent(e events.Event) arenadto.Event {
	out := arenadto.Event{
		Kind:    string(e.Kind),
		At:      e.At,
		MatchID: e.MatchID,
		Status:  e.Status,
	}
	if e.Player != nil {
		out.Player = e.Player.String()
	}
	if e.Square != nil {
		out.Square = e.Square.String()
	}
	for _, sq := range e.Squares {
		out.Squares = append(out.Squares, sq.String())
	}
	if e.Move != nil {
		out.Move = e.Move.String()
	}
	if e.Kind == events.DrawOfferChanged {
		pending := e.Pending
		out.Pending = &pending
	}
	if e.Clock != nil {
		cs := clockValues(*e.Clock)
		out.Clock = &cs
	}
	if e.Opponent != nil {
		o := ToDTOOpponent(*e.Opponent)
		out.Opponent = &o
	}
	if e.Mode != nil {
		m := ToDTOMode(*e.Mode)
		out.Mode = &m
	}
	if e.Result != nil {
		out.Result = f.ToDTOResult(*e.Result)
	}
	if e.Rating != nil {
		p := f.ToDTOProfile(*e.Rating)
		out.Profile = &p
	}
	if text, ok := f.Event(e); ok {
		out.Text = text
	}
	return out
}

func moveStrings(moves []domain.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	return out
}
