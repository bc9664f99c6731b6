package board

import "fmt"

// Move packs a move into 16 bits:
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-13: promotion piece (Knight=0, Bishop=1, Rook=2, Queen=3)
//	bits 14-15: flag (normal, promotion, en passant, castling)
type Move uint16

const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14

	flagMask uint16 = 0xC000
	sqMask   Move   = 0x3F
)

// NoMove is the zero value, used as a null/invalid move sentinel.
const NoMove Move = 0

// NewMove builds a non-special move from one square to another.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a pawn promotion to the given piece type.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | Move(FlagPromotion)
}

// NewEnPassant builds an en passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling builds a castling move, encoded as the king's own travel
// (e.g. e1 to g1 for White kingside).
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagCastling)
}

// From returns m's origin square.
func (m Move) From() Square {
	return Square(m & sqMask)
}

// To returns m's destination square.
func (m Move) To() Square {
	return Square((m >> 6) & sqMask)
}

// Flag returns m's move-kind flag bits.
func (m Move) Flag() uint16 {
	return uint16(m) & flagMask
}

// Promotion returns the piece type m promotes to. Only meaningful when
// IsPromotion() is true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool { return m.Flag() == FlagPromotion }
func (m Move) IsCastling() bool  { return m.Flag() == FlagCastling }
func (m Move) IsEnPassant() bool { return m.Flag() == FlagEnPassant }

// IsCapture reports whether playing m on pos takes an enemy piece.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || !pos.IsEmpty(m.To())
}

// IsQuiet reports whether m is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// promotionChars holds the UCI suffix letter for each promotion piece,
// indexed by promo-Knight (so Knight=0 ... Queen=3).
const promotionChars = "nbrq"

// String renders m in UCI long algebraic form ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promotionChars[m.Promotion()-Knight])
	}
	return s
}

var promotionFromChar = map[byte]PieceType{
	'n': Knight,
	'b': Bishop,
	'r': Rook,
	'q': Queen,
}

// ParseMove parses a UCI long algebraic move string against pos, which
// supplies the context needed to recognize castling and en passant
// (UCI itself encodes those as plain from-to pairs).
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		promo, ok := promotionFromChar[s[4]]
		if !ok {
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}

	switch pt := piece.Type(); {
	case pt == King && abs(int(to)-int(from)) == 2:
		return NewCastling(from, to), nil
	case pt == Pawn && to == pos.EnPassant:
		return NewEnPassant(from, to), nil
	default:
		return NewMove(from, to), nil
	}
}

// MoveList is a fixed-capacity move buffer sized for the worst-case legal
// move count in a single position, avoiding per-node heap allocation
// during move generation and search.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList returns an empty MoveList.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends m to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves currently in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges the moves at indices i and j, used by in-place move
// ordering sorts.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list without releasing its backing array.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether m appears anywhere in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the list's contents as a plain slice, backed by the same
// array (valid only until the list is next mutated).
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
