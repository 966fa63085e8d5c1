package gamemode

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-arena/internal/domain"
)

func TestDefaultModes(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	bullet, err := m.Get("bullet")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := domain.MatchMode{
		Name:        "Bullet",
		Description: "1 minuto por jogador",
		Base:        time.Minute,
		MoveMax:     30 * time.Second,
		Increment:   time.Second,
		Ranked:      true,
	}
	if diff := cmp.Diff(want, bullet); diff != "" {
		t.Fatalf("bullet mismatch (-want +got):\n%s", diff)
	}
	if got := bullet.TimeControlText(); got != "1min + 1s" {
		t.Fatalf("TimeControlText=%q", got)
	}
	casual, _ := m.Get("Casual")
	if casual.Ranked {
		t.Fatalf("casual must be unranked")
	}
	if len(m.All()) != 4 || m.First().Name != "Blitz" {
		t.Fatalf("unexpected mode list: %+v", m.All())
	}
}

func TestGetUnknown(t *testing.T) {
	m, _ := Default()
	if _, err := m.Get("hyper"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte("modes:\n  - name: Broken\n    base: 0s\n    move_max: 10s\n")); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Parse([]byte("modes: []\n")); err == nil {
		t.Fatalf("expected error for empty list")
	}
	dup := "modes:\n  - {name: A, base: 1m, move_max: 10s}\n  - {name: a, base: 2m, move_max: 10s}\n"
	if _, err := Parse([]byte(dup)); !errors.Is(err, ErrDuplicateMode) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
