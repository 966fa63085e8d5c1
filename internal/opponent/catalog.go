package opponent

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed opponents.yaml
var defaultOpponents []byte

// WidenStep is added to the rating window while no opponent matches.
const WidenStep = 100

var ErrDuplicateName = errors.New("duplicate opponent name")

type catalogFile struct {
	Opponents []Profile `yaml:"opponents"`
}

// Catalog is an immutable ordered pool of profiles. Every read returns copies.
type Catalog struct {
	profiles []Profile
	byName   map[string]int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewCatalog copies profiles into a new catalog. A nil rng uses a random seed.
func NewCatalog(profiles []Profile, rng *rand.Rand) (*Catalog, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := &Catalog{
		profiles: make([]Profile, 0, len(profiles)),
		byName:   make(map[string]int, len(profiles)),
		rng:      rng,
	}
	for _, p := range profiles {
		if p.Personality == "" {
			p.Personality = Balanced
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := nameKey(p.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		c.byName[key] = len(c.profiles)
		c.profiles = append(c.profiles, p.Clone())
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default(rng *rand.Rand) (*Catalog, error) {
	return Parse(defaultOpponents, rng)
}

// Parse builds a catalog from YAML.
func Parse(raw []byte, rng *rand.Rand) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse opponents: %w", err)
	}
	return NewCatalog(f.Opponents, rng)
}

// LoadFile reads a catalog override. An empty path yields the default.
func LoadFile(path string, rng *rand.Rand) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(rng)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read opponents: %w", err)
	}
	return Parse(raw, rng)
}

func (c *Catalog) Len() int { return len(c.profiles) }

func (c *Catalog) All() []Profile {
	out := make([]Profile, len(c.profiles))
	for i, p := range c.profiles {
		out[i] = p.Clone()
	}
	return out
}

func (c *Catalog) GetByName(name string) (Profile, bool) {
	i, ok := c.byName[nameKey(name)]
	if !ok {
		return Profile{}, false
	}
	return c.profiles[i].Clone(), true
}

// FindOpponent picks uniformly among profiles within maxDiff of rating,
// widening the window by WidenStep while nothing matches. Widening stops once
// the window covers the whole pool, so only an empty catalog reports false.
func (c *Catalog) FindOpponent(rating, maxDiff int) (Profile, bool) {
	if len(c.profiles) == 0 {
		return Profile{}, false
	}
	if maxDiff < 0 {
		maxDiff = 0
	}
	spread := c.spreadFrom(rating)
	for {
		matches := c.within(rating, maxDiff)
		if len(matches) > 0 {
			c.rngMu.Lock()
			i := matches[c.rng.IntN(len(matches))]
			c.rngMu.Unlock()
			return c.profiles[i].Clone(), true
		}
		if maxDiff >= spread {
			return Profile{}, false
		}
		maxDiff += WidenStep
	}
}

// Within lists copies of the profiles inside the window, in catalog order.
func (c *Catalog) Within(rating, maxDiff int) []Profile {
	idx := c.within(rating, maxDiff)
	out := make([]Profile, len(idx))
	for i, j := range idx {
		out[i] = c.profiles[j].Clone()
	}
	return out
}

func (c *Catalog) within(rating, maxDiff int) []int {
	var out []int
	for i, p := range c.profiles {
		if abs(p.Rating-rating) <= maxDiff {
			out = append(out, i)
		}
	}
	return out
}

func (c *Catalog) spreadFrom(rating int) int {
	max := 0
	for _, p := range c.profiles {
		if d := abs(p.Rating - rating); d > max {
			max = d
		}
	}
	return max
}

func nameKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
