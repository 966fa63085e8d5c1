package oracle

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-arena/internal/domain"
)

func sq(t *testing.T, s string) domain.Square {
	t.Helper()
	v, err := domain.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return v
}

func play(t *testing.T, b *Board, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if err := b.Apply(sq(t, m[:2]), sq(t, m[2:4])); err != nil {
			t.Fatalf("Apply(%s): %v", m, err)
		}
	}
}

func TestInitialPosition(t *testing.T) {
	b := NewBoard()
	if b.Turn() != domain.White {
		t.Fatalf("white must move first")
	}
	p, ok := b.OccupantAt(sq(t, "e1"))
	if !ok || p.Type != domain.King || p.Owner != domain.White {
		t.Fatalf("unexpected e1 occupant: %+v ok=%v", p, ok)
	}
	p, ok = b.OccupantAt(sq(t, "d8"))
	if !ok || p.Type != domain.Queen || p.Owner != domain.Black {
		t.Fatalf("unexpected d8 occupant: %+v ok=%v", p, ok)
	}
	if _, ok := b.OccupantAt(sq(t, "e4")); ok {
		t.Fatalf("e4 should be empty")
	}
	if _, ok := b.OccupantAt(domain.Square{File: 9, Rank: 0}); ok {
		t.Fatalf("off-board square reported occupied")
	}
	if !b.HasAnyLegalMoves(domain.White) || !b.HasAnyLegalMoves(domain.Black) {
		t.Fatalf("both sides have moves in the initial position")
	}
}

func TestLegality(t *testing.T) {
	b := NewBoard()
	if !b.IsLegal(sq(t, "e2"), sq(t, "e4")) {
		t.Fatalf("e2e4 should be legal")
	}
	if b.IsLegal(sq(t, "e2"), sq(t, "e5")) {
		t.Fatalf("e2e5 should be illegal")
	}
	if b.IsLegal(sq(t, "e7"), sq(t, "e5")) {
		t.Fatalf("black cannot move first")
	}
	err := b.Apply(sq(t, "e2"), sq(t, "e5"))
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	play(t, b, "e2e4")
	if b.Turn() != domain.Black {
		t.Fatalf("turn did not pass to black")
	}
	if got := b.UCI(); len(got) != 1 || got[0] != "e2e4" {
		t.Fatalf("unexpected UCI history: %v", got)
	}
}

func TestLegalDestinations(t *testing.T) {
	b := NewBoard()
	got := b.LegalDestinationsFrom(sq(t, "g1"))
	want := []domain.Square{sq(t, "f3"), sq(t, "h3")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("knight destinations mismatch (-want +got):\n%s", diff)
	}
	if d := b.LegalDestinationsFrom(sq(t, "e1")); len(d) != 0 {
		t.Fatalf("king should be boxed in: %v", d)
	}
}

func TestCheckAndCheckmate(t *testing.T) {
	b := NewBoard()
	play(t, b, "f2f3", "e7e5", "g2g4")
	if b.IsInCheck(domain.White) || b.IsInCheck(domain.Black) {
		t.Fatalf("no side should be in check yet")
	}
	play(t, b, "d8h4")
	if !b.IsInCheck(domain.White) {
		t.Fatalf("white should be in check")
	}
	if b.IsInCheck(domain.Black) {
		t.Fatalf("black cannot be in check")
	}
	if b.HasAnyLegalMoves(domain.White) {
		t.Fatalf("white is mated and has no moves")
	}
	if !b.HasAnyLegalMoves(domain.Black) {
		t.Fatalf("black still has moves")
	}
	want := []string{"f3", "e5", "g4", "Qh4#"}
	if diff := cmp.Diff(want, b.SAN()); diff != "" {
		t.Fatalf("SAN mismatch (-want +got):\n%s", diff)
	}
}

func TestOpeningClassification(t *testing.T) {
	b := NewBoard()
	if _, ok := b.Opening(); ok {
		t.Fatalf("empty game classified")
	}
	play(t, b, "e2e4", "d7d5")
	o, ok := b.Opening()
	if !ok || o.Code != "B01" || o.Title == "" {
		t.Fatalf("unexpected opening: %+v ok=%v", o, ok)
	}
}

func TestStalemate(t *testing.T) {
	b := NewBoard()
	play(t, b,
		"e2e3", "a7a5",
		"d1h5", "a8a6",
		"h5a5", "h7h5",
		"h2h4", "a6h6",
		"a5c7", "f7f6",
		"c7d7", "e8f7",
		"d7b7", "d8d3",
		"b7b8", "d3h7",
		"b8c8", "f7g6",
		"c8e6",
	)
	if b.Turn() != domain.Black {
		t.Fatalf("black should be to move")
	}
	if b.IsInCheck(domain.Black) {
		t.Fatalf("stalemate is not check")
	}
	if b.HasAnyLegalMoves(domain.Black) {
		t.Fatalf("black should have no legal moves")
	}
}

func TestPromotionAutoQueens(t *testing.T) {
	b := NewBoard()
	play(t, b, "h2h4", "g7g5", "h4g5", "g8f6", "g5g6", "f6e4", "g6g7", "e4f6", "g7h8")
	p, ok := b.OccupantAt(sq(t, "h8"))
	if !ok || p.Type != domain.Queen || p.Owner != domain.White {
		t.Fatalf("expected white queen on h8, got %+v ok=%v", p, ok)
	}
}

func TestReset(t *testing.T) {
	b := NewBoard()
	play(t, b, "e2e4")
	b.Reset()
	if b.Turn() != domain.White || len(b.Moves()) != 0 || len(b.SAN()) != 0 {
		t.Fatalf("reset did not restore initial position")
	}
	if err := b.Replay(domain.Move{From: sq(t, "d2"), To: sq(t, "d4")}); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(b.Moves()) != 1 {
		t.Fatalf("replay not recorded")
	}
}
