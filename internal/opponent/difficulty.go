package opponent

import (
	"fmt"
	"math"
	"strings"
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
	Master       Difficulty = "master"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Beginner, Intermediate, Advanced, Master:
		return d, nil
	case "":
		return Intermediate, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

type tier struct {
	ratingOffset int
	ratingMin    int
	ratingMax    int
	blunder      func(float64) float64
	thinking     func(float64) float64
}

var tiers = map[Difficulty]tier{
	Beginner: {
		ratingOffset: -300, ratingMin: 600, ratingMax: 2600,
		blunder:  func(b float64) float64 { return math.Max(b, 0.12) },
		thinking: func(m float64) float64 { return math.Max(0.8, m*0.9) },
	},
	Intermediate: {
		ratingOffset: 0, ratingMin: 800, ratingMax: 2700,
		blunder:  func(b float64) float64 { return math.Max(b, 0.08) },
		thinking: func(m float64) float64 { return clampf(m, 0.9, 1.3) },
	},
	Advanced: {
		ratingOffset: 150, ratingMin: 1000, ratingMax: 2800,
		blunder:  func(b float64) float64 { return math.Min(b, 0.05) },
		thinking: func(m float64) float64 { return clampf(m*1.15, 1.0, 1.6) },
	},
	Master: {
		ratingOffset: 300, ratingMin: 1200, ratingMax: 2900,
		blunder:  func(b float64) float64 { return math.Min(b, 0.02) },
		thinking: func(m float64) float64 { return clampf(m*1.3, 1.1, 1.8) },
	},
}

// Adjust returns a difficulty-scaled copy of p. Each field is clamped to the
// tier's range; unknown difficulties yield an unmodified copy.
func Adjust(p Profile, d Difficulty) Profile {
	out := p.Clone()
	t, ok := tiers[d]
	if !ok {
		return out
	}
	out.Rating = clampi(p.Rating+t.ratingOffset, t.ratingMin, t.ratingMax)
	out.BlunderChance = clampf(t.blunder(p.BlunderChance), 0, 1)
	out.ThinkingTimeMultiplier = clampf(t.thinking(p.ThinkingTimeMultiplier), minThinking, maxThinking)
	return out
}

func clampf(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
