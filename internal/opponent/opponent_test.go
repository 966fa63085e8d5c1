package opponent

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default(rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c := newTestCatalog(t)
	want := []int{800, 1000, 1200, 1400, 1600, 1800, 2200}
	all := c.All()
	if len(all) != len(want) {
		t.Fatalf("expected %d profiles, got %d", len(want), len(all))
	}
	for i, p := range all {
		if p.Rating != want[i] {
			t.Fatalf("profile %d rating=%d want %d", i, p.Rating, want[i])
		}
	}
}

func TestFindOpponentRespectsWindow(t *testing.T) {
	c := newTestCatalog(t)
	for i := 0; i < 50; i++ {
		p, ok := c.FindOpponent(1000, 150)
		if !ok {
			t.Fatalf("no opponent found")
		}
		if p.Rating != 1000 {
			t.Fatalf("rating %d outside window 150", p.Rating)
		}
	}

	allowed := map[int]bool{800: true, 1000: true, 1200: true}
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		p, ok := c.FindOpponent(1000, 200)
		if !ok {
			t.Fatalf("no opponent found")
		}
		if !allowed[p.Rating] {
			t.Fatalf("rating %d outside window 200", p.Rating)
		}
		seen[p.Rating] = true
	}
	if len(seen) != 3 {
		t.Fatalf("selection not spread across window: %v", seen)
	}
}

func TestFindOpponentWidens(t *testing.T) {
	c := newTestCatalog(t)
	p, ok := c.FindOpponent(3000, 50)
	if !ok || p.Rating != 2200 {
		t.Fatalf("expected widened match to 2200, got %+v ok=%v", p, ok)
	}
}

func TestFindOpponentEmptyCatalog(t *testing.T) {
	c, err := NewCatalog(nil, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, ok := c.FindOpponent(1200, 150); ok {
		t.Fatalf("empty catalog returned a profile")
	}
}

func TestReadsReturnCopies(t *testing.T) {
	c := newTestCatalog(t)
	p, _ := c.GetByName("Magnus IA")
	p.Rating = 1
	p.Name = "mutated"
	again, ok := c.GetByName("magnus ia")
	if !ok || again.Rating != 2200 {
		t.Fatalf("catalog entry mutated through copy: %+v", again)
	}
	all := c.All()
	all[0].BlunderChance = 0.99
	if first := c.All()[0]; first.BlunderChance != 0.3 {
		t.Fatalf("All leaked backing slice")
	}
}

func TestGetByNameMissing(t *testing.T) {
	c := newTestCatalog(t)
	if _, ok := c.GetByName("nobody"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestNewCatalogRejectsInvalid(t *testing.T) {
	cases := []Profile{
		{Name: "", Rating: 1000, ThinkingTimeMultiplier: 1},
		{Name: "x", Rating: 1000, ThinkingTimeMultiplier: 5},
		{Name: "x", Rating: 1000, ThinkingTimeMultiplier: 1, BlunderChance: 2},
		{Name: "x", Rating: 1000, ThinkingTimeMultiplier: 1, Personality: "sneaky"},
	}
	for _, p := range cases {
		if _, err := NewCatalog([]Profile{p}, nil); err == nil {
			t.Fatalf("expected error for %+v", p)
		}
	}
	dup := []Profile{
		{Name: "A", Rating: 1000, ThinkingTimeMultiplier: 1},
		{Name: "a", Rating: 1100, ThinkingTimeMultiplier: 1},
	}
	if _, err := NewCatalog(dup, nil); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestLoadFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opps.yaml")
	body := "opponents:\n  - name: Solo\n    rating: 1500\n    thinking_time_multiplier: 1.0\n    blunder_chance: 0.1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	p, ok := c.FindOpponent(800, 0)
	if !ok || p.Name != "Solo" || p.Personality != Balanced {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestAdjustTable(t *testing.T) {
	base := Profile{Name: "x", Rating: 1400, ThinkingTimeMultiplier: 0.7, BlunderChance: 0.12, Personality: Aggressive}
	cases := []struct {
		d        Difficulty
		rating   int
		blunder  float64
		thinking float64
	}{
		{Beginner, 1100, 0.12, 0.8},
		{Intermediate, 1400, 0.12, 0.9},
		{Advanced, 1550, 0.05, 1.0},
		{Master, 1700, 0.02, 1.1},
	}
	for _, c := range cases {
		got := Adjust(base, c.d)
		want := base
		want.Rating, want.BlunderChance, want.ThinkingTimeMultiplier = c.rating, c.blunder, c.thinking
		if diff := cmp.Diff(want, got, cmp.Comparer(approxEqual)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", c.d, diff)
		}
	}
	if base.Rating != 1400 {
		t.Fatalf("Adjust mutated its input")
	}
}

func TestAdjustIsBounded(t *testing.T) {
	p := Profile{Name: "x", Rating: 2200, ThinkingTimeMultiplier: 2.0, BlunderChance: 0.02}
	for i := 0; i < 10; i++ {
		p = Adjust(p, Master)
	}
	if p.Rating != 2900 || p.ThinkingTimeMultiplier != 1.8 || p.BlunderChance != 0.02 {
		t.Fatalf("master adjustments compounded: %+v", p)
	}
	q := Profile{Name: "y", Rating: 800, ThinkingTimeMultiplier: 0.5, BlunderChance: 0.3}
	for i := 0; i < 10; i++ {
		q = Adjust(q, Beginner)
	}
	if q.Rating != 600 || q.ThinkingTimeMultiplier != 0.8 || q.BlunderChance != 0.3 {
		t.Fatalf("beginner adjustments compounded: %+v", q)
	}
}

func TestParseDifficulty(t *testing.T) {
	if d, err := ParseDifficulty(" Master "); err != nil || d != Master {
		t.Fatalf("ParseDifficulty: %v %v", d, err)
	}
	if d, _ := ParseDifficulty(""); d != Intermediate {
		t.Fatalf("empty difficulty should default to intermediate, got %v", d)
	}
	if _, err := ParseDifficulty("godlike"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGeneric(t *testing.T) {
	g := Generic(1337)
	if g.Name != GenericName || g.Rating != 1337 || g.Personality != Balanced || g.BlunderChance != 0.08 {
		t.Fatalf("unexpected generic profile: %+v", g)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("generic profile invalid: %v", err)
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
