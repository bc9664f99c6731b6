package board

import "fmt"

// Square names a board cell 0..63 under the LERF convention: a1=0, h1=7,
// a8=56, h8=63. NoSquare is a sentinel for "nowhere" (empty en passant
// target, captured-square markers, and similar).
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare
)

var squareNames = [64]string{
	"a1", "b1", "c1", "d1", "e1", "f1", "g1", "h1",
	"a2", "b2", "c2", "d2", "e2", "f2", "g2", "h2",
	"a3", "b3", "c3", "d3", "e3", "f3", "g3", "h3",
	"a4", "b4", "c4", "d4", "e4", "f4", "g4", "h4",
	"a5", "b5", "c5", "d5", "e5", "f5", "g5", "h5",
	"a6", "b6", "c6", "d6", "e6", "f6", "g6", "h6",
	"a7", "b7", "c7", "d7", "e7", "f7", "g7", "h7",
	"a8", "b8", "c8", "d8", "e8", "f8", "g8", "h8",
}

// NewSquare builds the square at the given 0-based file (a=0..h=7) and
// rank (1=0..8=7). Out-of-range inputs simply address outside 0..63;
// callers that accept external input validate before calling this.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns the square's 0-based file, a=0 through h=7.
func (s Square) File() int {
	return int(s) & 7
}

// Rank returns the square's 0-based rank, rank1=0 through rank8=7.
func (s Square) Rank() int {
	return int(s) >> 3
}

// RelativeRank returns the square's rank as seen by color c: rank 1 is
// always 0 from that color's own side, regardless of board orientation.
func (s Square) RelativeRank(c Color) int {
	if c == White {
		return s.Rank()
	}
	return 7 - s.Rank()
}

// Mirror flips a square across the board's horizontal midline (rank r
// becomes rank 7-r, file unchanged); used to share tables between colors.
func (s Square) Mirror() Square {
	return s ^ 56
}

// IsValid reports whether s is an actual board square, as opposed to the
// NoSquare sentinel or a larger out-of-range value.
func (s Square) IsValid() bool {
	return s < NoSquare
}

// String renders s in algebraic notation ("e4"), or "-" for NoSquare.
func (s Square) String() string {
	if s >= NoSquare {
		return "-"
	}
	return squareNames[s]
}

// ParseSquare parses algebraic notation ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	return NewSquare(int(file-'a'), int(rank-'1')), nil
}
