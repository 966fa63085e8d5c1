package gamemode

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/park285/cheese-arena/internal/domain"
	yaml "gopkg.in/yaml.v3"
)

//go:embed modes.yaml
var defaultModes []byte

var (
	ErrUnknownMode   = errors.New("unknown match mode")
	ErrDuplicateMode = errors.New("duplicate match mode")
)

type modesFile struct {
	Modes []domain.MatchMode `yaml:"modes"`
}

// Modes is the immutable list of selectable time controls.
type Modes struct {
	list   []domain.MatchMode
	byName map[string]int
}

func New(list []domain.MatchMode) (*Modes, error) {
	m := &Modes{byName: make(map[string]int, len(list))}
	for _, mode := range list {
		if err := mode.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(strings.TrimSpace(mode.Name))
		if _, dup := m.byName[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMode, mode.Name)
		}
		m.byName[key] = len(m.list)
		m.list = append(m.list, mode)
	}
	if len(m.list) == 0 {
		return nil, errors.New("at least one match mode is required")
	}
	return m, nil
}

func Default() (*Modes, error) { return Parse(defaultModes) }

func Parse(raw []byte) (*Modes, error) {
	var f modesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse modes: %w", err)
	}
	return New(f.Modes)
}

// LoadFile reads an override file; an empty path yields the defaults.
func LoadFile(path string) (*Modes, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modes: %w", err)
	}
	return Parse(raw)
}

func (m *Modes) All() []domain.MatchMode {
	return append([]domain.MatchMode(nil), m.list...)
}

func (m *Modes) Get(name string) (domain.MatchMode, error) {
	i, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.MatchMode{}, fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	return m.list[i], nil
}

// First is the default selection.
func (m *Modes) First() domain.MatchMode { return m.list[0] }
