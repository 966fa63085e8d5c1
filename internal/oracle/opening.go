package oracle

import (
	"sync"

	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

// Opening is an ECO classification such as B01 "Scandinavian Defense".
type Opening struct {
	Code  string
	Title string
}

// Opening classifies the moves played so far against the ECO table.
func (b *Board) Opening() (Opening, bool) {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	b.mu.RLock()
	defer b.mu.RUnlock()
	eco := ecoBook.Find(b.game.Moves())
	if eco == nil {
		return Opening{}, false
	}
	return Opening{Code: eco.Code(), Title: eco.Title()}, true
}
