package rating

import (
	"math"

	"github.com/park285/cheese-arena/internal/domain"
)

const (
	DefaultKFactor       = 32
	DefaultMinRating     = 100
	DefaultMaxRating     = 3000
	DefaultInitialRating = 1200
	DefaultPlayerName    = "player"
)

// Config holds the fixed ELO parameters.
type Config struct {
	KFactor       int
	MinRating     int
	MaxRating     int
	InitialRating int
	PlayerName    string
}

func DefaultConfig() Config {
	return Config{
		KFactor:       DefaultKFactor,
		MinRating:     DefaultMinRating,
		MaxRating:     DefaultMaxRating,
		InitialRating: DefaultInitialRating,
		PlayerName:    DefaultPlayerName,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.KFactor <= 0 {
		c.KFactor = d.KFactor
	}
	if c.MinRating <= 0 {
		c.MinRating = d.MinRating
	}
	if c.MaxRating <= 0 || c.MaxRating < c.MinRating {
		c.MaxRating = d.MaxRating
	}
	if c.InitialRating <= 0 {
		c.InitialRating = d.InitialRating
	}
	c.InitialRating = clamp(c.InitialRating, c.MinRating, c.MaxRating)
	if c.PlayerName == "" {
		c.PlayerName = d.PlayerName
	}
	return c
}

// ExpectedScore is the probability that a player rated a beats one rated b.
func ExpectedScore(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

func ActualScore(o domain.Outcome) float64 {
	switch o {
	case domain.Win:
		return 1.0
	case domain.Loss:
		return 0.0
	default:
		return 0.5
	}
}

// Delta is the unclamped rating change for one result.
func Delta(rating, opponent int, o domain.Outcome, k int) int {
	return int(math.Round(float64(k) * (ActualScore(o) - ExpectedScore(rating, opponent))))
}

// Apply returns rec updated by one rated result and the applied change.
func Apply(rec domain.RatingRecord, o domain.Outcome, opponent int, cfg Config) (domain.RatingRecord, int) {
	cfg = cfg.normalized()
	before := rec.Rating
	rec.Rating = clamp(rec.Rating+Delta(rec.Rating, opponent, o, cfg.KFactor), cfg.MinRating, cfg.MaxRating)
	rec = count(rec, o)
	return rec, rec.Rating - before
}

// count records the game without touching the rating.
func count(rec domain.RatingRecord, o domain.Outcome) domain.RatingRecord {
	rec.GamesPlayed++
	switch o {
	case domain.Win:
		rec.Wins++
	case domain.Loss:
		rec.Losses++
	default:
		rec.Draws++
	}
	return rec
}

var rankThresholds = []struct {
	below int
	title string
}{
	{800, "Iniciante"},
	{1000, "Aprendiz"},
	{1200, "Amador"},
	{1400, "Intermediário"},
	{1600, "Avançado"},
	{1800, "Expert"},
	{2000, "Mestre"},
	{2200, "Mestre Internacional"},
}

// RankTitle maps a rating onto one of nine ascending tiers.
func RankTitle(rating int) string {
	for _, t := range rankThresholds {
		if rating < t.below {
			return t.title
		}
	}
	return "Grande Mestre"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
