package oracle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-arena/internal/domain"
)

var ErrIllegalMove = errors.New("illegal move")

// Board answers legality questions against a full chess position.
// Pawn promotions always promote to a queen.
type Board struct {
	mu      sync.RWMutex
	game    *nchess.Game
	inCheck bool
	history []domain.Move
	san     []string
}

func NewBoard() *Board {
	return &Board{game: nchess.NewGame()}
}

// Reset returns the board to the initial position.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.game = nchess.NewGame()
	b.inCheck = false
	b.history = nil
	b.san = nil
}

// Replay applies moves in order from the current position.
func (b *Board) Replay(moves ...domain.Move) error {
	for _, m := range moves {
		if err := b.Apply(m.From, m.To); err != nil {
			return fmt.Errorf("replay %s: %w", m, err)
		}
	}
	return nil
}

func (b *Board) IsLegal(from, to domain.Square) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.findLocked(from, to)
}

func (b *Board) Apply(from, to domain.Square) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.findLocked(from, to) {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}
	uci := from.String() + to.String()
	if b.promotesLocked(from, to) {
		uci += "q"
	}
	pos := b.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return fmt.Errorf("decode %s: %w", uci, err)
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := b.game.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
		return fmt.Errorf("push %s: %w", uci, err)
	}
	b.inCheck = false
	if moves := b.game.Moves(); len(moves) > 0 {
		b.inCheck = moves[len(moves)-1].HasTag(nchess.Check)
	}
	b.history = append(b.history, domain.Move{From: from, To: to})
	b.san = append(b.san, san)
	return nil
}

func (b *Board) HasAnyLegalMoves(p domain.Player) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if toPlayer(b.game.Position().Turn()) == p {
		return len(b.game.ValidMoves()) > 0
	}
	g, err := b.flippedLocked()
	if err != nil {
		return false
	}
	return len(g.ValidMoves()) > 0
}

// IsInCheck reports whether p's king is attacked. Only the side to move can
// be in check in a legal position.
func (b *Board) IsInCheck(p domain.Player) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inCheck && toPlayer(b.game.Position().Turn()) == p
}

func (b *Board) LegalDestinationsFrom(sq domain.Square) []domain.Square {
	b.mu.RLock()
	defer b.mu.RUnlock()
	from := toSquare(sq)
	seen := make(map[domain.Square]struct{})
	var out []domain.Square
	moves := b.game.ValidMoves()
	for i := range moves {
		mv := moves[i]
		if mv.S1() != from {
			continue
		}
		d := fromSquare(mv.S2())
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].File < out[j].File
	})
	return out
}

func (b *Board) OccupantAt(sq domain.Square) (domain.Piece, bool) {
	if !sq.Valid() {
		return domain.Piece{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	pc := b.game.Position().Board().Piece(toSquare(sq))
	if pc == nchess.NoPiece {
		return domain.Piece{}, false
	}
	t, ok := pieceTypes[pc.Type()]
	if !ok {
		return domain.Piece{}, false
	}
	return domain.Piece{Type: t, Owner: toPlayer(pc.Color())}, true
}

// Turn is the side to move in the position.
func (b *Board) Turn() domain.Player {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return toPlayer(b.game.Position().Turn())
}

func (b *Board) FEN() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.game.FEN()
}

// Moves returns the applied moves in order.
func (b *Board) Moves() []domain.Move {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Move(nil), b.history...)
}

// UCI returns the applied moves in UCI notation.
func (b *Board) UCI() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	moves := b.game.Moves()
	out := make([]string, 0, len(moves))
	for i := range moves {
		out = append(out, moves[i].String())
	}
	return out
}

// SAN returns the applied moves in standard algebraic notation.
func (b *Board) SAN() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.san...)
}

func (b *Board) findLocked(from, to domain.Square) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	s1, s2 := toSquare(from), toSquare(to)
	moves := b.game.ValidMoves()
	for i := range moves {
		mv := moves[i]
		if mv.S1() == s1 && mv.S2() == s2 {
			return true
		}
	}
	return false
}

func (b *Board) promotesLocked(from, to domain.Square) bool {
	pc := b.game.Position().Board().Piece(toSquare(from))
	return pc.Type() == nchess.Pawn && (to.Rank == 0 || to.Rank == domain.BoardSize-1)
}

// flippedLocked builds the position with the other side to move. En passant
// rights belong to the real mover and are dropped.
func (b *Board) flippedLocked() (*nchess.Game, error) {
	fields := strings.Fields(b.game.FEN())
	if len(fields) < 4 {
		return nil, fmt.Errorf("unexpected fen %q", b.game.FEN())
	}
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	opt, err := nchess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, err
	}
	return nchess.NewGame(opt), nil
}

var pieceTypes = map[nchess.PieceType]domain.PieceType{
	nchess.Pawn:   domain.Pawn,
	nchess.Knight: domain.Knight,
	nchess.Bishop: domain.Bishop,
	nchess.Rook:   domain.Rook,
	nchess.Queen:  domain.Queen,
	nchess.King:   domain.King,
}

func toSquare(sq domain.Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.File), nchess.Rank(sq.Rank))
}

func fromSquare(sq nchess.Square) domain.Square {
	return domain.Square{File: int(sq.File()), Rank: int(sq.Rank())}
}

func toPlayer(c nchess.Color) domain.Player {
	if c == nchess.Black {
		return domain.Black
	}
	return domain.White
}
