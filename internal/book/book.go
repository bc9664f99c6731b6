package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/hailam/chesscore/internal/board"
)

// BookEntry is one recorded reply for a position: a move and the weight
// Polyglot assigns it (higher plays more often under weighted selection).
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book holds an opening book's positions, each keyed by its Polyglot hash
// and mapping to every recorded reply for that position.
type Book struct {
	entries map[uint64][]BookEntry
}

// New returns an empty book.
func New() *Book {
	return &Book{entries: make(map[uint64][]BookEntry)}
}

// LoadPolyglot reads a Polyglot-format (.bin) opening book from disk.
func LoadPolyglot(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadPolyglotReader(file)
}

const polyglotEntrySize = 16 // 8 key + 2 move + 2 weight + 4 learn (ignored)

// LoadPolyglotReader reads a Polyglot-format book from r: a flat sequence
// of fixed-size, big-endian entries (position key, move, weight, and a
// learn field this engine doesn't use).
func LoadPolyglotReader(r io.Reader) (*Book, error) {
	book := New()
	var raw [polyglotEntrySize]byte

	for {
		_, err := io.ReadFull(r, raw[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(raw[0:8])
		moveData := binary.BigEndian.Uint16(raw[8:10])
		weight := binary.BigEndian.Uint16(raw[10:12])

		if move := decodePolyglotMove(moveData); move != board.NoMove {
			book.entries[key] = append(book.entries[key], BookEntry{Move: move, Weight: weight})
		}
	}

	return book, nil
}

// polyglotCastlingFixups rewrites Polyglot's king-captures-rook castling
// encoding (from e1/e8, to the rook's own square) to this engine's
// king-travels-two-squares encoding.
var polyglotCastlingFixups = map[[2]board.Square]board.Square{
	{board.E1, board.H1}: board.G1,
	{board.E1, board.A1}: board.C1,
	{board.E8, board.H8}: board.G8,
	{board.E8, board.A8}: board.C8,
}

// polyglotPromotionTypes maps Polyglot's 3-bit promotion code (0=none,
// 1=knight..4=queen) to a PieceType; index 0 is never consulted.
var polyglotPromotionTypes = [5]board.PieceType{0, board.Knight, board.Bishop, board.Rook, board.Queen}

// decodePolyglotMove unpacks a Polyglot 16-bit move code: bits 0-5 are
// the destination square, 6-11 the origin, 12-14 a promotion piece index.
func decodePolyglotMove(data uint16) board.Move {
	to := board.NewSquare(int(data&7), int((data>>3)&7))
	from := board.NewSquare(int((data>>6)&7), int((data>>9)&7))
	promo := (data >> 12) & 7

	if fixed, ok := polyglotCastlingFixups[[2]board.Square{from, to}]; ok {
		to = fixed
	}

	if promo > 0 {
		return board.NewPromotion(from, to, polyglotPromotionTypes[promo])
	}
	return board.NewMove(from, to)
}

// Probe looks up pos in the book and, if any replies are recorded, picks
// one by weighted random selection (entries with weight 0 throughout fall
// back to the first, by Polyglot's own convention).
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}

	entries, ok := b.entries[pos.PolyglotHash()]
	if !ok || len(entries) == 0 {
		return board.NoMove, false
	}
	sortByWeightDesc(entries)

	picked := pickWeighted(entries)
	return verifyAndConvert(pos, picked), true
}

// pickWeighted chooses one entry by weighted random selection, or the
// first entry if every weight is zero.
func pickWeighted(entries []BookEntry) board.Move {
	var total uint32
	for _, e := range entries {
		total += uint32(e.Weight)
	}
	if total == 0 {
		return entries[0].Move
	}

	roll := rand.Uint32() % total
	var cumulative uint32
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if roll < cumulative {
			return e.Move
		}
	}
	return entries[0].Move
}

func sortByWeightDesc(entries []BookEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})
}

// ProbeAll returns every recorded reply for pos, sorted by weight
// descending, without picking one.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[pos.PolyglotHash()]
	if !ok {
		return nil
	}

	result := make([]BookEntry, len(entries))
	copy(result, entries)
	sortByWeightDesc(result)
	return result
}

// verifyAndConvert re-resolves a book move against pos's actual legal
// moves, since Polyglot's encoding alone can't carry flags like en
// passant; it returns NoMove if no matching legal move exists.
func verifyAndConvert(pos *board.Position, move board.Move) board.Move {
	from, to := move.From(), move.To()

	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		lm := legal.Get(i)
		if lm.From() != from || lm.To() != to {
			continue
		}
		if move.IsPromotion() != lm.IsPromotion() {
			continue
		}
		if move.IsPromotion() && move.Promotion() != lm.Promotion() {
			continue
		}
		return lm
	}

	return board.NoMove
}

// Size returns the number of distinct positions recorded in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
