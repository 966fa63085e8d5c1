package opponent

import (
	"fmt"
	"strings"
)

// Personality tags the playing style consumed by move selection.
type Personality string

const (
	Aggressive    Personality = "aggressive"
	Defensive     Personality = "defensive"
	Balanced      Personality = "balanced"
	Unpredictable Personality = "unpredictable"
)

func ParsePersonality(s string) (Personality, error) {
	switch p := Personality(strings.ToLower(strings.TrimSpace(s))); p {
	case Aggressive, Defensive, Balanced, Unpredictable:
		return p, nil
	case "":
		return Balanced, nil
	default:
		return "", fmt.Errorf("unknown personality %q", s)
	}
}

const (
	minThinking = 0.1
	maxThinking = 3.0
)

// Profile describes a computer opponent.
type Profile struct {
	Name                   string      `json:"name" yaml:"name"`
	Rating                 int         `json:"rating" yaml:"rating"`
	Description            string      `json:"description" yaml:"description"`
	Personality            Personality `json:"personality" yaml:"personality"`
	ThinkingTimeMultiplier float64     `json:"thinking_time_multiplier" yaml:"thinking_time_multiplier"`
	BlunderChance          float64     `json:"blunder_chance" yaml:"blunder_chance"`
}

// Clone returns an independent copy.
func (p Profile) Clone() Profile { return p }

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("opponent name is required")
	}
	if p.Rating <= 0 {
		return fmt.Errorf("opponent %s: rating must be positive", p.Name)
	}
	if p.ThinkingTimeMultiplier < minThinking || p.ThinkingTimeMultiplier > maxThinking {
		return fmt.Errorf("opponent %s: thinking_time_multiplier %.2f out of [%.1f,%.1f]", p.Name, p.ThinkingTimeMultiplier, minThinking, maxThinking)
	}
	if p.BlunderChance < 0 || p.BlunderChance > 1 {
		return fmt.Errorf("opponent %s: blunder_chance %.2f out of [0,1]", p.Name, p.BlunderChance)
	}
	if _, err := ParsePersonality(string(p.Personality)); err != nil {
		return fmt.Errorf("opponent %s: %w", p.Name, err)
	}
	return nil
}

// GenericName is the synthesized fallback opponent's name.
const GenericName = "Bot Genérico"

// Generic synthesizes an opponent at the given rating.
func Generic(rating int) Profile {
	return Profile{
		Name:                   GenericName,
		Rating:                 rating,
		Description:            "Oponente gerado",
		Personality:            Balanced,
		ThinkingTimeMultiplier: 1.0,
		BlunderChance:          0.08,
	}
}
