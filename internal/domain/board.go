package domain

import (
	"fmt"
	"strings"
)

// Player identifies one side of the board. White always moves first.
type Player int

const (
	White Player = iota
	Black
)

func (p Player) Opponent() Player {
	if p == White {
		return Black
	}
	return White
}

func (p Player) String() string {
	if p == Black {
		return "black"
	}
	return "white"
}

func (p Player) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Player) UnmarshalText(b []byte) error {
	v, err := ParsePlayer(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePlayer accepts "white"/"black" and their one-letter forms.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("unknown player %q", s)
	}
}

// BoardSize is the edge length collaborators assume.
const BoardSize = 8

// Square is a 0-based (file, rank) pair. a1 is {0,0}.
type Square struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < BoardSize && s.Rank >= 0 && s.Rank < BoardSize
}

func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.File, s.Rank)
	}
	return string(rune('a'+s.File)) + string(rune('1'+s.Rank))
}

// ParseSquare parses coordinate notation such as "e2".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	sq := Square{File: int(s[0] - 'a'), Rank: int(s[1] - '1')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

type PieceType string

const (
	Pawn   PieceType = "pawn"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Rook   PieceType = "rook"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// Piece is the occupant of a square.
type Piece struct {
	Type  PieceType `json:"type"`
	Owner Player    `json:"owner"`
}

// Move is an accepted move attempt.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string { return m.From.String() + m.To.String() }
